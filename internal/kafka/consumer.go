// Package kafka implements the consumer that feeds entry updates into the cache
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"

	"lrukv/internal/config"
	"lrukv/internal/interfaces"
	"lrukv/internal/models"
)

// fetchBackoff is the pause after a failed fetch
const fetchBackoff = time.Second

// A messageReader is the part of kafka.Reader the consumer needs
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader          messageReader
	config          config.KafkaConfig
	brokers         []string
	mu              sync.RWMutex
	running         bool
	done            chan struct{}
	processor       interfaces.EntryProcessor
	logger          *zerolog.Logger
	circuitBreaker  *gobreaker.CircuitBreaker
	deadLetterQueue interfaces.DeadLetterQueue
}

func NewConsumer(cfg config.Config, processor interfaces.EntryProcessor, logger *zerolog.Logger) *Consumer {
	deadLetterQueue := NewInMemoryDeadLetterQueue(logger)
	cb := gobreaker.NewCircuitBreaker(
		gobreaker.Settings{
			Name:        "kafka-consumer",
			MaxRequests: uint32(cfg.CircuitBreaker.HalfOpenMaxCalls),
			Interval:    cfg.CircuitBreaker.Timeout,
			Timeout:     cfg.CircuitBreaker.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(cfg.CircuitBreaker.MaxFailers)
			},
			// an idle topic is not a broker failure
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.DeadlineExceeded)
			},
		},
	)

	return &Consumer{
		config:          cfg.Kafka,
		brokers:         cfg.GetBrokers(),
		processor:       processor,
		logger:          logger,
		circuitBreaker:  cb,
		deadLetterQueue: deadLetterQueue,
	}
}

func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("consumer is already running")
	}

	if c.reader == nil {
		if len(c.brokers) == 0 {
			return errors.New("no kafka brokers configured")
		}
		c.reader = kafka.NewReader(
			kafka.ReaderConfig{
				Brokers:     c.brokers,
				Topic:       c.config.Topic,
				GroupID:     c.config.GroupID,
				StartOffset: kafka.LastOffset,
				MinBytes:    10e3,
				MaxBytes:    10e6,
				MaxWait:     time.Second,
				ErrorLogger: kafka.LoggerFunc(
					func(msg string, args ...interface{}) {
						c.logger.Error().
							Str("kafka_error", fmt.Sprintf(msg, args...)).
							Msg("kafka reader error")
					},
				),
			},
		)
	}

	if strings.TrimSpace(c.config.GroupID) == "" {
		c.logger.Warn().Msg("Kafka GroupID is empty, offsets will NOT be committed")
	}

	c.running = true
	c.done = make(chan struct{})

	go c.consume(ctx, c.reader, c.done)

	return nil
}

func (c *Consumer) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	reader, done := c.reader, c.done
	c.reader = nil
	c.mu.Unlock()

	// closing the reader unblocks a pending FetchMessage
	if err := reader.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Error closing Kafka reader")
		return fmt.Errorf("failed to close Kafka reader: %w", err)
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Consumer) isRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

func (c *Consumer) consume(ctx context.Context, reader messageReader, done chan struct{}) {
	defer close(done)

	for c.isRunning() {
		result, err := c.circuitBreaker.Execute(
			func() (any, error) {
				fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
				defer cancel()
				return reader.FetchMessage(fetchCtx)
			},
		)

		if err != nil {
			if ctx.Err() != nil || !c.isRunning() {
				return
			}
			c.logger.Error().Err(err).Msg("Error fetching Kafka message")

			select {
			case <-ctx.Done():
				return
			case <-time.After(fetchBackoff):
			}
			continue
		}
		message := result.(kafka.Message)

		if err := c.processMessage(ctx, message); err != nil {
			c.logger.Error().
				Err(err).
				Str("topic", message.Topic).
				Int("partition", message.Partition).
				Int64("offset", message.Offset).
				Msg("Message moved to dead letter queue")
		}

		if strings.TrimSpace(c.config.GroupID) != "" {
			c.commit(ctx, reader, message)
		}
	}
}

func (c *Consumer) commit(ctx context.Context, reader messageReader, message kafka.Message) {
	err := retry.Do(
		func() error {
			return reader.CommitMessages(ctx, message)
		},
		retry.Attempts(5),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
	)

	if err != nil {
		c.logger.Error().
			Err(err).
			Str("topic", message.Topic).
			Int("partition", message.Partition).
			Int64("offset", message.Offset).
			Msg("Failed to commit message after retries")
	}
}

// processMessage decodes one message and hands it to the processor.
// Messages that can't be stored end up in the dead letter queue
func (c *Consumer) processMessage(ctx context.Context, message kafka.Message) error {
	start := time.Now()

	var entry models.Entry
	if err := json.Unmarshal(message.Value, &entry); err != nil {
		c.sendToDeadLetterQueue(message, "json_unmarshal_error", err)
		return fmt.Errorf("failed to unmarshal entry JSON: %w", err)
	}

	if entry.Key == "" && len(message.Key) > 0 {
		entry.Key = string(message.Key)
	}

	if err := entry.Validate(); err != nil {
		c.sendToDeadLetterQueue(message, "validation_error", err)
		return fmt.Errorf("entry validation failed: %w", err)
	}

	processCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := c.processor.ProcessEntry(processCtx, &entry); err != nil {
		c.sendToDeadLetterQueue(message, "processing_error", err)
		return fmt.Errorf("failed to process entry: %w", err)
	}

	c.logger.Debug().
		Str("key", entry.Key).
		Int64("offset", message.Offset).
		Dur("duration", time.Since(start)).
		Msg("Entry consumed")
	return nil
}

func (c *Consumer) sendToDeadLetterQueue(message kafka.Message, reason string, cause error) {
	err := c.deadLetterQueue.Send(
		message.Value,
		message.Topic,
		message.Partition,
		message.Offset,
		reason,
		cause,
	)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("reason", reason).
			Int64("offset", message.Offset).
			Msg("Failed to send message to dead letter queue")
	}
}

func (c *Consumer) GetDeadLetterQueue() interfaces.DeadLetterQueue {
	return c.deadLetterQueue
}
