package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"teagate/internal/broker"
	"teagate/internal/config"
	"teagate/internal/logger"
	"teagate/pkg/tracing"
)

// Base holds what every teagate binary shares: config, logger, tracing and
// the broker clients.
type Base struct {
	Config      *config.Config
	Logger      logger.Logger
	ServiceName string
	Producer    broker.Producer
	Consumers   []broker.Consumer
	Tracer      *tracing.TracerProvider
}

func NewBase(cfg *config.Config, serviceName string, log logger.Logger) *Base {
	return &Base{
		Config:      cfg,
		Logger:      log,
		ServiceName: serviceName,
	}
}

func (b *Base) InitTracing() error {
	tp, err := tracing.Init(b.Config.Tracing, b.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	b.Tracer = tp
	return nil
}

// InitProducer is a no-op when no broker type is configured.
func (b *Base) InitProducer() error {
	if b.Config.Broker.Type == "" {
		b.Logger.Warn("No broker configured, events will not be published")
		return nil
	}
	producer, err := broker.NewProducer(b.Config.Broker, b.ServiceName, b.Logger)
	if err != nil {
		return fmt.Errorf("failed to create producer: %w", err)
	}
	b.Producer = producer
	return nil
}

// NewConsumer creates a consumer in groupID and tracks it for shutdown. An
// empty groupID keeps the configured one.
func (b *Base) NewConsumer(groupID string) (broker.Consumer, error) {
	cfg := b.Config.Broker
	if groupID != "" {
		cfg.Kafka.GroupID = groupID
	}
	consumer, err := broker.NewConsumer(cfg, b.ServiceName, b.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}
	b.Consumers = append(b.Consumers, consumer)
	return consumer, nil
}

func (b *Base) ShutdownBroker() []error {
	var errs []error

	for _, c := range b.Consumers {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("consumer close error: %w", err))
		}
	}
	if b.Producer != nil {
		if err := b.Producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("producer close error: %w", err))
		}
	}

	return errs
}

func (b *Base) Shutdown(ctx context.Context, additionalShutdown func(ctx context.Context) []error) error {
	b.Logger.Info("Shutting down application...")

	var errs []error
	if additionalShutdown != nil {
		errs = append(errs, additionalShutdown(ctx)...)
	}
	errs = append(errs, b.ShutdownBroker()...)
	if b.Tracer != nil {
		if err := b.Tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown error: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	b.Logger.Info("Application exited successfully")
	return nil
}
