package messaging

import (
	"context"
	"fmt"
	"strings"
)

// Handler processes one message; a non-nil error leaves the message unacknowledged for redelivery.
type Handler func(ctx context.Context, subject string, data []byte) error

// Bus publishes JSON-encoded facts and delivers them to queue-group subscribers.
type Bus interface {
	Publish(ctx context.Context, subject string, data any) error
	Subscribe(subject, queue string, handler Handler) error
	Close() error
}

const (
	DriverNone     = "none"
	DriverNATS     = "nats"
	DriverRabbitMQ = "rabbitmq"
)

type Config struct {
	Driver string
	NATS   NATSConfig
	AMQP   AMQPConfig
}

// New connects to the broker selected by cfg.Driver.
func New(cfg Config) (Bus, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverNone:
		return NoopBus{}, nil
	case DriverNATS:
		return NewNATSClient(cfg.NATS)
	case DriverRabbitMQ:
		return NewRabbitClient(cfg.AMQP)
	default:
		return nil, fmt.Errorf("unknown messaging driver %q", cfg.Driver)
	}
}

// NoopBus drops every message. Used when no broker is configured.
type NoopBus struct{}

func (NoopBus) Publish(context.Context, string, any) error { return nil }

func (NoopBus) Subscribe(string, string, Handler) error { return nil }

func (NoopBus) Close() error { return nil }
