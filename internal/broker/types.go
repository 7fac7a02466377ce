package broker

import (
	"context"

	"teagate/pkg/models"
)

type Producer interface {
	Publish(ctx context.Context, topic string, msg models.MessageEnvelope) error
	Close() error
}

type Consumer interface {
	// Consume blocks until ctx is done. Each message is handed to handler
	// and committed once it was handled, parked on the DLQ or dropped.
	Consume(ctx context.Context, topic string, handler HandlerFunc) error
	Close() error
	SetServiceName(name string)
}

type HandlerFunc func(ctx context.Context, msg models.MessageEnvelope) error
