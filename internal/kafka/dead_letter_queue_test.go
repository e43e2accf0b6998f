package kafka

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestDeadLetterQueue() *InMemoryDeadLetterQueue {
	logger := zerolog.New(io.Discard)
	return NewInMemoryDeadLetterQueue(&logger)
}

func TestDeadLetterQueue_Send(t *testing.T) {
	dlq := newTestDeadLetterQueue()
	payload := []byte(`{"key":"a"}`)

	if err := dlq.Send(payload, "entries", 0, 7, "validation_error", errors.New("bad")); err != nil {
		t.Fatalf("error: %v", err)
	}
	payload[0] = 'X'

	msgs, err := dlq.Get(10)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("error: expected one message, got %d", len(msgs))
	}
	m := msgs[0]
	if !strings.HasPrefix(m.ID, "dlq_") {
		t.Errorf("error: unexpected id %s", m.ID)
	}
	if string(m.Message) != `{"key":"a"}` {
		t.Errorf("error: stored message should be a copy, got %s", m.Message)
	}
	if m.Offset != 7 || m.Reason != "validation_error" || m.Error != "bad" {
		t.Errorf("error: unexpected message %+v", m)
	}
}

func TestDeadLetterQueue_UniqueIDs(t *testing.T) {
	dlq := newTestDeadLetterQueue()
	for i := 0; i < 100; i++ {
		_ = dlq.Send(nil, "entries", 0, int64(i), "r", nil)
	}
	if dlq.GetMessageCount() != 100 {
		t.Errorf("error: expected 100 distinct messages, got %d", dlq.GetMessageCount())
	}
}

func TestDeadLetterQueue_Retry(t *testing.T) {
	dlq := newTestDeadLetterQueue()
	_ = dlq.Send([]byte("x"), "entries", 0, 1, "r", nil)
	msgs, _ := dlq.Get(1)

	if err := dlq.Retry(msgs[0].ID); err != nil {
		t.Fatalf("error: %v", err)
	}
	msgs, _ = dlq.Get(1)
	if msgs[0].RetryCount != 1 {
		t.Errorf("error: expected retry count 1, got %d", msgs[0].RetryCount)
	}
	if err := dlq.Retry("unknown"); err == nil {
		t.Errorf("error: expected error for unknown id")
	}
}

func TestDeadLetterQueue_Statistics(t *testing.T) {
	dlq := newTestDeadLetterQueue()
	_ = dlq.Send(nil, "entries", 0, 1, "validation_error", nil)
	_ = dlq.Send(nil, "entries", 0, 2, "validation_error", nil)
	_ = dlq.Send(nil, "other", 0, 3, "processing_error", nil)

	stats := dlq.Statistics()
	if stats["total_messages"] != 3 {
		t.Errorf("error: expected 3 messages, got %v", stats["total_messages"])
	}
	byTopic := stats["messages_by_topic"].(map[string]int)
	if byTopic["entries"] != 2 || byTopic["other"] != 1 {
		t.Errorf("error: unexpected topic counts %v", byTopic)
	}
	byReason := stats["messages_by_reason"].(map[string]int)
	if byReason["validation_error"] != 2 {
		t.Errorf("error: unexpected reason counts %v", byReason)
	}

	dlq.Clear()
	if dlq.GetMessageCount() != 0 {
		t.Errorf("error: expected empty queue after Clear")
	}
}
