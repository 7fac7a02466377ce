package broker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teagate/internal/config"
	"teagate/internal/logger"
	"teagate/pkg/logging"
	"teagate/pkg/models"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	messages  chan kafka.Message
	mu        sync.Mutex
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.messages:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func encode(t *testing.T, msg *models.MessageEnvelope, offset int64) kafka.Message {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return kafka.Message{Topic: "inspection_events", Offset: offset, Value: body}
}

func TestKafkaProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaProducer{writer: w, logger: logger.NopLogger(), serviceName: "test"}

	ctx := logging.WithTraceID(context.Background(), "trace-1")
	msg := models.NewMessageEnvelopeBuilder().WithID("m-1").WithType(models.MessageTypeVerdict).Build()

	require.NoError(t, p.Publish(ctx, "lot_verdicts", *msg))
	require.Len(t, w.messages, 1)

	written := w.messages[0]
	assert.Equal(t, "lot_verdicts", written.Topic)
	assert.Equal(t, []byte("m-1"), written.Key)

	var decoded models.MessageEnvelope
	require.NoError(t, json.Unmarshal(written.Value, &decoded))
	assert.Equal(t, "trace-1", decoded.Metadata.TraceID)
	assert.Equal(t, models.MessageTypeVerdict, decoded.Type)
}

func TestKafkaProducer_PublishError(t *testing.T) {
	p := &KafkaProducer{writer: &fakeWriter{err: errors.New("leader not available")}, logger: logger.NopLogger()}
	err := p.Publish(context.Background(), "lot_verdicts", *models.NewMessageEnvelopeBuilder().Build())
	assert.ErrorContains(t, err, "leader not available")
}

func newTestConsumer(reader *fakeReader, dlq Producer) *KafkaConsumer {
	c := NewKafkaConsumer(config.KafkaConfig{
		DLQTopic: "teagate_dlq",
		Retry: config.RetryConfig{
			MaxAttempts:     2,
			InitialInterval: time.Millisecond,
			MaxInterval:     time.Millisecond,
		},
	}, logger.NopLogger())
	c.newReader = func(string) messageReader { return reader }
	c.dlqProducer = dlq
	return c
}

func TestKafkaConsumer_HandlesAndCommits(t *testing.T) {
	reader := &fakeReader{messages: make(chan kafka.Message, 4)}
	c := newTestConsumer(reader, nil)

	msg := models.NewMessageEnvelopeBuilder().WithID("insp-1").WithType(models.MessageTypeInspection).WithSource("scale-01").Build()
	reader.messages <- encode(t, msg, 7)

	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan models.MessageEnvelope, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.Consume(ctx, "inspection_events", func(_ context.Context, m models.MessageEnvelope) error {
			received <- m
			return nil
		})
	}()

	select {
	case m := <-received:
		assert.Equal(t, "insp-1", m.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}

	assert.Eventually(t, func() bool { return reader.committedCount() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	require.NoError(t, c.Close())
}

type recordingProducer struct {
	mu   sync.Mutex
	sent []models.MessageEnvelope
}

func (p *recordingProducer) Publish(_ context.Context, _ string, msg models.MessageEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, msg)
	return nil
}

func (p *recordingProducer) Close() error { return nil }

func TestKafkaConsumer_ParksFailuresOnDLQ(t *testing.T) {
	reader := &fakeReader{messages: make(chan kafka.Message, 4)}
	dlq := &recordingProducer{}
	c := newTestConsumer(reader, dlq)

	msg := models.NewMessageEnvelopeBuilder().WithID("insp-2").WithType(models.MessageTypeInspection).WithSource("scale-01").Build()
	reader.messages <- encode(t, msg, 9)

	calls := 0
	c.handleMessage(context.Background(), <-reader.messages, func(context.Context, models.MessageEnvelope) error {
		calls++
		return errors.New("mongo unavailable")
	})

	assert.Equal(t, 2, calls)
	require.Len(t, dlq.sent, 1)
	info := dlq.sent[0].Metadata.DLQ
	require.NotNil(t, info)
	assert.Equal(t, "inspection_events", info.SourceTopic)
	assert.Equal(t, 2, info.Attempts)
	assert.Contains(t, info.Reason, "mongo unavailable")
}

func TestKafkaConsumer_DropsMalformedMessage(t *testing.T) {
	reader := &fakeReader{messages: make(chan kafka.Message, 1)}
	dlq := &recordingProducer{}
	c := newTestConsumer(reader, dlq)

	called := false
	c.handleMessage(context.Background(), kafka.Message{Topic: "inspection_events", Value: []byte("{")},
		func(context.Context, models.MessageEnvelope) error {
			called = true
			return nil
		})

	assert.False(t, called)
	assert.Empty(t, dlq.sent)
}

func TestKafkaConsumer_ParksInvalidEnvelopeWithoutRetry(t *testing.T) {
	reader := &fakeReader{messages: make(chan kafka.Message, 1)}
	dlq := &recordingProducer{}
	c := newTestConsumer(reader, dlq)

	msg := models.NewMessageEnvelopeBuilder().WithID("insp-3").WithType(models.MessageTypeInspection).Build()

	called := false
	c.handleMessage(context.Background(), encode(t, msg, 11), func(context.Context, models.MessageEnvelope) error {
		called = true
		return nil
	})

	assert.False(t, called)
	require.Len(t, dlq.sent, 1)
	info := dlq.sent[0].Metadata.DLQ
	require.NotNil(t, info)
	assert.Equal(t, 1, info.Attempts)
	assert.Contains(t, info.Reason, "source")
}
