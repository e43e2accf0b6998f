package kafka

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lrukv/internal/interfaces"
)

// An InMemoryDeadLetterQueue keeps messages the consumer couldn't store, oldest first
type InMemoryDeadLetterQueue struct {
	mu       sync.RWMutex
	messages map[string]*interfaces.DeadLetterMessage
	order    []string
	logger   *zerolog.Logger
}

// NewInMemoryDeadLetterQueue creates a new instance of in-memory dead letter queue
func NewInMemoryDeadLetterQueue(logger *zerolog.Logger) *InMemoryDeadLetterQueue {
	return &InMemoryDeadLetterQueue{
		messages: make(map[string]*interfaces.DeadLetterMessage),
		logger:   logger,
	}
}

// Send stores a copy of the message together with where it came from and why it failed
func (dlq *InMemoryDeadLetterQueue) Send(
	message []byte, topic string, partition int, offset int64, reason string,
	originalError error,
) error {
	errorMsg := ""
	if originalError != nil {
		errorMsg = originalError.Error()
	}

	dlqMessage := &interfaces.DeadLetterMessage{
		ID:            "dlq_" + uuid.NewString(),
		OriginalTopic: topic,
		Partition:     partition,
		Offset:        offset,
		Message:       slices.Clone(message),
		Reason:        reason,
		Error:         errorMsg,
		Timestamp:     time.Now(),
	}

	dlq.mu.Lock()
	dlq.messages[dlqMessage.ID] = dlqMessage
	dlq.order = append(dlq.order, dlqMessage.ID)
	dlq.mu.Unlock()

	dlq.logger.Warn().
		Str("message_id", dlqMessage.ID).
		Str("topic", topic).
		Int("partition", partition).
		Int64("offset", offset).
		Str("reason", reason).
		Str("error", errorMsg).
		Int("message_size", len(message)).
		Msg("Message sent to dead letter queue")

	return nil
}

// Get returns not more than limit oldest messages
func (dlq *InMemoryDeadLetterQueue) Get(limit int) ([]interfaces.DeadLetterMessage, error) {
	return dlq.collect(limit, func(*interfaces.DeadLetterMessage) bool { return true }), nil
}

// GetByReason returns not more than limit oldest messages that have specified reason
func (dlq *InMemoryDeadLetterQueue) GetByReason(reason string, limit int) ([]interfaces.DeadLetterMessage, error) {
	return dlq.collect(limit, func(m *interfaces.DeadLetterMessage) bool { return m.Reason == reason }), nil
}

// Retry marks a message as retried once more
func (dlq *InMemoryDeadLetterQueue) Retry(messageID string) error {
	dlq.mu.Lock()
	defer dlq.mu.Unlock()

	message, ok := dlq.messages[messageID]
	if !ok {
		return fmt.Errorf("dead letter message with ID %s not found", messageID)
	}

	message.RetryCount++
	return nil
}

// GetMessageCount returns the total number of messages in the dead letter queue
func (dlq *InMemoryDeadLetterQueue) GetMessageCount() int {
	dlq.mu.RLock()
	defer dlq.mu.RUnlock()

	return len(dlq.messages)
}

// Clear removes all the messages from the dead letter queue
func (dlq *InMemoryDeadLetterQueue) Clear() {
	dlq.mu.Lock()
	defer dlq.mu.Unlock()

	clear(dlq.messages)
	dlq.order = dlq.order[:0]
}

// Statistics counts stored messages by reason and by topic
func (dlq *InMemoryDeadLetterQueue) Statistics() map[string]any {
	dlq.mu.RLock()
	defer dlq.mu.RUnlock()

	byReason := make(map[string]int)
	byTopic := make(map[string]int)
	for _, msg := range dlq.messages {
		byReason[msg.Reason]++
		byTopic[msg.OriginalTopic]++
	}

	return map[string]any{
		"total_messages":     len(dlq.messages),
		"messages_by_reason": byReason,
		"messages_by_topic":  byTopic,
	}
}

// collect copies matching messages in arrival order
func (dlq *InMemoryDeadLetterQueue) collect(
	limit int, match func(*interfaces.DeadLetterMessage) bool,
) []interfaces.DeadLetterMessage {
	dlq.mu.RLock()
	defer dlq.mu.RUnlock()

	messages := make([]interfaces.DeadLetterMessage, 0, max(limit, 0))
	for _, id := range dlq.order {
		if len(messages) >= limit {
			break
		}
		msg := dlq.messages[id]
		if !match(msg) {
			continue
		}
		msgCopy := *msg
		msgCopy.Message = slices.Clone(msg.Message)
		messages = append(messages, msgCopy)
	}
	return messages
}
