package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"teagate/internal/config"
	"teagate/internal/constants"
	"teagate/internal/logger"
	"teagate/pkg/errors"
	"teagate/pkg/logging"
	"teagate/pkg/metrics"
	"teagate/pkg/models"
	"teagate/pkg/retry"
	"teagate/pkg/tracing"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducer struct {
	writer      messageWriter
	logger      logger.Logger
	serviceName string
}

func NewKafkaProducer(cfg config.KafkaConfig, serviceName string, log logger.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           constants.KafkaBatchTimeout,
		WriteTimeout:           constants.KafkaWriteTimeout,
		AllowAutoTopicCreation: true,
	}
	return &KafkaProducer{writer: w, logger: log, serviceName: serviceName}
}

// Publish writes msg keyed by its ID. The trace id of ctx is copied into the
// envelope when the caller did not set one.
func (p *KafkaProducer) Publish(ctx context.Context, topic string, msg models.MessageEnvelope) error {
	if msg.Metadata.TraceID == "" {
		msg.Metadata.TraceID = logging.GetTraceID(ctx)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return retry.NewFatalError(fmt.Errorf("failed to marshal message: %w", err))
	}

	headers := tracing.InjectTraceContext(ctx, []kafka.Header{
		{Key: "message-type", Value: []byte(msg.Type)},
	})

	start := time.Now()
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic:   topic,
		Key:     []byte(msg.ID),
		Value:   body,
		Headers: headers,
		Time:    start,
	})
	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	metrics.ObserveKafkaWriteDuration(p.serviceName, topic, time.Since(start))
	metrics.IncKafkaMessagesWritten(p.serviceName, topic)
	metrics.ObserveKafkaMessageSize(p.serviceName, topic, "out", len(body))
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

type KafkaConsumer struct {
	cfg         config.KafkaConfig
	logger      logger.Logger
	dlqProducer Producer
	serviceName string
	newReader   func(topic string) messageReader

	mu      sync.Mutex
	readers []messageReader
	wg      sync.WaitGroup
}

func NewKafkaConsumer(cfg config.KafkaConfig, log logger.Logger) *KafkaConsumer {
	consumer := &KafkaConsumer{
		cfg:         cfg,
		logger:      log,
		serviceName: "unknown",
	}
	consumer.newReader = func(topic string) messageReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.Brokers,
			GroupID:  cfg.GroupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		})
	}

	if cfg.DLQTopic != "" {
		consumer.dlqProducer = NewKafkaProducer(cfg, "dlq", log)
	}

	return consumer
}

func (c *KafkaConsumer) SetServiceName(name string) {
	c.serviceName = name
}

func (c *KafkaConsumer) Consume(ctx context.Context, topic string, handler HandlerFunc) error {
	c.logger.Infow("Creating Kafka reader",
		"topic", topic,
		"brokers", c.cfg.Brokers,
		"group_id", c.cfg.GroupID,
		"service_name", c.serviceName,
	)

	reader := c.newReader(topic)
	c.mu.Lock()
	c.readers = append(c.readers, reader)
	c.mu.Unlock()

	c.wg.Add(1)
	defer c.wg.Done()

	consumeCtx := logging.WithServiceName(ctx, c.serviceName)
	c.logger.InfowCtx(consumeCtx, "Started consuming", "topic", topic)

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.InfowCtx(consumeCtx, "Stopped consuming",
					"topic", topic,
					"reason", "context canceled",
				)
				return ctx.Err()
			}
			c.logger.ErrorwCtx(consumeCtx, "Error fetching kafka message",
				"error", err,
				"topic", topic,
			)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		c.handleMessage(consumeCtx, m, handler)

		if err := reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.logger.ErrorwCtx(consumeCtx, "Failed to commit message",
				"error", err,
				"topic", m.Topic,
				"offset", m.Offset,
			)
		}
	}
}

func (c *KafkaConsumer) handleMessage(ctx context.Context, m kafka.Message, handler HandlerFunc) {
	metrics.IncKafkaMessagesRead(c.serviceName, m.Topic)
	metrics.ObserveKafkaMessageSize(c.serviceName, m.Topic, "in", len(m.Value))

	var envelope models.MessageEnvelope
	if err := json.Unmarshal(m.Value, &envelope); err != nil {
		c.logger.ErrorwCtx(ctx, "Failed to unmarshal message",
			"error", err,
			"topic", m.Topic,
			"offset", m.Offset,
		)
		metrics.DLQMessagesTotal.WithLabelValues(c.serviceName, m.Topic, "malformed").Inc()
		return
	}
	if err := models.ValidateMessageEnvelope(&envelope); err != nil {
		c.parkInvalid(ctx, envelope, retry.NewFatalError(err), m)
		return
	}

	msgCtx, span := tracing.StartSpanFromKafkaMessage(ctx, "kafka.consume", m)
	defer span.End()

	if envelope.Metadata.TraceID != "" && logging.GetTraceID(msgCtx) == "" {
		msgCtx = logging.WithTraceID(msgCtx, envelope.Metadata.TraceID)
	}

	attempts, err := c.processMessageWithRetry(msgCtx, envelope, handler, m.Topic)
	if err == nil {
		return
	}

	c.logger.ErrorwCtx(msgCtx, "Failed to process message after retries",
		"error", err,
		"topic", m.Topic,
		"attempts", attempts,
	)
	if c.dlqProducer == nil {
		c.logger.WarnwCtx(msgCtx, "No DLQ configured, committing message to avoid blocking",
			"topic", m.Topic,
		)
		return
	}
	if dlqErr := c.sendToDLQ(msgCtx, envelope, err, m.Topic, attempts); dlqErr != nil {
		c.logger.ErrorwCtx(msgCtx, "Failed to send message to DLQ",
			"error", dlqErr,
			"topic", m.Topic,
		)
	}
}

// parkInvalid sends an envelope that failed validation straight to the DLQ.
// Retrying it cannot succeed.
func (c *KafkaConsumer) parkInvalid(ctx context.Context, envelope models.MessageEnvelope, err error, m kafka.Message) {
	c.logger.WarnwCtx(ctx, "Invalid message envelope",
		"error", err,
		"topic", m.Topic,
		"offset", m.Offset,
		"message_id", envelope.ID,
	)
	if c.dlqProducer == nil {
		return
	}
	if dlqErr := c.sendToDLQ(ctx, envelope, err, m.Topic, 1); dlqErr != nil {
		c.logger.ErrorwCtx(ctx, "Failed to send message to DLQ",
			"error", dlqErr,
			"topic", m.Topic,
		)
	}
}

func (c *KafkaConsumer) Close() error {
	c.mu.Lock()
	readers := c.readers
	c.readers = nil
	c.mu.Unlock()

	var err error
	for _, r := range readers {
		if closeErr := r.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	c.wg.Wait()

	if c.dlqProducer != nil {
		if closeErr := c.dlqProducer.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

func (c *KafkaConsumer) processMessageWithRetry(ctx context.Context, envelope models.MessageEnvelope, handler HandlerFunc, topic string) (int, error) {
	policy := retry.PolicyFromConfig(c.cfg.Retry)
	attempts := 0

	err := retry.RetryWithCallback(ctx, policy, func() (err error) {
		attempts++
		defer func() {
			if r := recover(); r != nil {
				err = errors.RecoverPanic(r)
				c.logger.ErrorwCtx(ctx, "Panic recovered during message processing",
					"error", err,
					"topic", topic,
				)
			}
		}()
		return handler(ctx, envelope)
	}, func(attempt int, err error, nextDelay time.Duration) {
		metrics.RetryAttemptsTotal.WithLabelValues(c.serviceName, topic).Inc()
		c.logger.WarnwCtx(ctx, "Retrying message processing",
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"next_delay", nextDelay,
			"error", err,
			"topic", topic,
		)
	})
	return attempts, err
}

func (c *KafkaConsumer) sendToDLQ(ctx context.Context, envelope models.MessageEnvelope, originalErr error, sourceTopic string, attempts int) error {
	envelope.Metadata.DLQ = &models.DLQInfo{
		Reason:      originalErr.Error(),
		SourceTopic: sourceTopic,
		Attempts:    attempts,
		FailedAt:    time.Now().UTC(),
	}

	if err := c.dlqProducer.Publish(ctx, c.cfg.DLQTopic, envelope); err != nil {
		return fmt.Errorf("failed to publish to DLQ: %w", err)
	}

	reason := "max_retries_exceeded"
	if attempts == 1 {
		reason = "fatal"
	}
	metrics.DLQMessagesTotal.WithLabelValues(c.serviceName, sourceTopic, reason).Inc()
	c.logger.InfowCtx(ctx, "Message sent to DLQ",
		"source_topic", sourceTopic,
		"dlq_topic", c.cfg.DLQTopic,
		"reason", originalErr.Error(),
	)
	return nil
}
