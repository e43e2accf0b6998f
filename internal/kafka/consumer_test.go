package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"lrukv/internal/config"
	"lrukv/internal/models"
)

// A mockProcessor records processed entries
type mockProcessor struct {
	mu      sync.Mutex
	entries []models.Entry
	err     error
}

func (m *mockProcessor) ProcessEntry(ctx context.Context, entry *models.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockProcessor) processed() []models.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Entry(nil), m.entries...)
}

// A fakeReader hands out queued messages and then blocks until closed
type fakeReader struct {
	messages  chan kafka.Message
	closed    chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
	committed []int64
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	r := &fakeReader{messages: make(chan kafka.Message, len(msgs)), closed: make(chan struct{})}
	for _, m := range msgs {
		r.messages <- m
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.messages:
		return m, nil
	case <-r.closed:
		return kafka.Message{}, io.EOF
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closeOnce.Do(func() { close(r.closed) })
	return nil
}

func (r *fakeReader) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func newTestConsumer(processor *mockProcessor) *Consumer {
	logger := zerolog.New(io.Discard)
	cfg := config.Config{
		Kafka:          config.KafkaConfig{Topic: "entries", GroupID: "test", Listeners: "localhost:9092"},
		CircuitBreaker: config.CircuitBreakerConfig{MaxFailers: 5, Timeout: time.Second, HalfOpenMaxCalls: 1},
	}
	return NewConsumer(cfg, processor, &logger)
}

func message(offset int64, key, value string) kafka.Message {
	return kafka.Message{Topic: "entries", Offset: offset, Key: []byte(key), Value: []byte(value)}
}

func TestConsumer_ProcessMessage(t *testing.T) {
	processor := &mockProcessor{}
	c := newTestConsumer(processor)
	dlq := c.GetDeadLetterQueue().(*InMemoryDeadLetterQueue)

	cases := []struct {
		name    string
		msg     kafka.Message
		wantErr bool
		reason  string
	}{
		{"valid", message(1, "", `{"key":"a","value":{"v":1}}`), false, ""},
		{"key from message key", message(2, "b", `{"value":2}`), false, ""},
		{"broken json", message(3, "", `{"key":`), true, "json_unmarshal_error"},
		{"missing value", message(4, "", `{"key":"c"}`), true, "validation_error"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			dlq.Clear()
			err := c.processMessage(context.Background(), tt.msg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("processMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if dlq.GetMessageCount() != 0 {
					t.Errorf("error: valid message shouldn't reach dead letter queue")
				}
				return
			}
			msgs, _ := dlq.GetByReason(tt.reason, 10)
			if len(msgs) != 1 {
				t.Errorf("error: expected one %s message, got %d", tt.reason, len(msgs))
			}
		})
	}

	got := processor.processed()
	if len(got) != 2 || got[0].Key != "a" || got[1].Key != "b" {
		t.Errorf("error: unexpected processed entries %+v", got)
	}
}

func TestConsumer_ProcessMessage_ProcessorError(t *testing.T) {
	c := newTestConsumer(&mockProcessor{err: errors.New("db down")})
	dlq := c.GetDeadLetterQueue().(*InMemoryDeadLetterQueue)

	if err := c.processMessage(context.Background(), message(1, "a", `{"value":1}`)); err == nil {
		t.Fatalf("error: expected error")
	}
	if msgs, _ := dlq.GetByReason("processing_error", 10); len(msgs) != 1 {
		t.Errorf("error: expected one processing_error message, got %d", len(msgs))
	}
}

func TestConsumer_StartStop(t *testing.T) {
	processor := &mockProcessor{}
	c := newTestConsumer(processor)
	reader := newFakeReader(
		message(1, "a", `{"value":1}`),
		message(2, "b", `{"value":2}`),
		message(3, "", `not json`),
	)
	c.reader = reader

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := c.Start(ctx); err != nil {
		t.Fatalf("error: %v", err)
	}
	if err := c.Start(ctx); err == nil {
		t.Errorf("error: expected second start to fail")
	}

	deadline := time.Now().Add(2 * time.Second)
	for reader.commits() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := c.Stop(stopCtx); err != nil {
		t.Fatalf("error: %v", err)
	}
	if err := c.Stop(stopCtx); err != nil {
		t.Errorf("error: second stop should be a no-op, got %v", err)
	}

	if got := len(processor.processed()); got != 2 {
		t.Errorf("error: expected 2 processed entries, got %d", got)
	}
	if reader.commits() != 3 {
		t.Errorf("error: expected every message committed, got %d", reader.commits())
	}
	if c.GetDeadLetterQueue().(*InMemoryDeadLetterQueue).GetMessageCount() != 1 {
		t.Errorf("error: expected malformed message in dead letter queue")
	}
}

func TestConsumer_StartWithoutBrokers(t *testing.T) {
	logger := zerolog.New(io.Discard)
	c := NewConsumer(config.Config{Kafka: config.KafkaConfig{Topic: "entries"}}, &mockProcessor{}, &logger)

	if err := c.Start(context.Background()); err == nil {
		t.Errorf("error: expected error without brokers")
	}
}
