package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type AMQPConfig struct {
	URL      string
	Exchange string
}

// RabbitClient publishes to a durable topic exchange; the routing key is the subject.
// Messages a handler fails twice are dead-lettered to <exchange>.dlx and kept in <exchange>.dead.
type RabbitClient struct {
	conn     *amqp.Connection
	exchange string

	mu sync.Mutex
	ch *amqp.Channel
}

func NewRabbitClient(cfg AMQPConfig) (*RabbitClient, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	if err := declareDeadLetter(ch, cfg.Exchange); err != nil {
		conn.Close()
		return nil, err
	}

	slog.Info("Connected to RabbitMQ", "exchange", cfg.Exchange)

	return &RabbitClient{conn: conn, ch: ch, exchange: cfg.Exchange}, nil
}

func deadLetterExchange(exchange string) string { return exchange + ".dlx" }

func declareDeadLetter(ch *amqp.Channel, exchange string) error {
	dlx := deadLetterExchange(exchange)
	if err := ch.ExchangeDeclare(dlx, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", dlx, err)
	}
	q, err := ch.QueueDeclare(exchange+".dead", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare dead letter queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", dlx, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", q.Name, err)
	}
	return nil
}

func (rc *RabbitClient) Publish(ctx context.Context, subject string, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	err = rc.ch.PublishWithContext(ctx, rc.exchange, subject, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}

	slog.Debug("Published message", "subject", subject)
	return nil
}

// Subscribe binds a durable queue named queue.subject and consumes it on its own channel.
func (rc *RabbitClient) Subscribe(subject, queue string, handler Handler) (err error) {
	ch, err := rc.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() {
		if err != nil {
			_ = ch.Close()
		}
	}()

	q, err := ch.QueueDeclare(queue+"."+subject, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": deadLetterExchange(rc.exchange),
	})
	if err != nil {
		return fmt.Errorf("failed to declare queue for %s: %w", subject, err)
	}

	if err := ch.QueueBind(q.Name, subject, rc.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", q.Name, err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	deliveries, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume queue %s: %w", q.Name, err)
	}

	go func() {
		for d := range deliveries {
			deliver(d, handler)
		}
		slog.Info("Delivery channel closed", "queue", q.Name)
	}()

	slog.Info("Subscribed to subject", "subject", subject, "queue", q.Name)
	return nil
}

// deliver runs the handler and settles the delivery.
// A failed message is requeued once; a failed redelivery goes to the dead letter exchange.
func deliver(d amqp.Delivery, handler Handler) {
	err := handler(context.Background(), d.RoutingKey, d.Body)
	if err == nil {
		_ = d.Ack(false)
		return
	}

	if d.Redelivered {
		slog.Error("Dead-lettering message", "subject", d.RoutingKey, "error", err)
		_ = d.Nack(false, false)
		return
	}

	slog.Warn("Failed to handle message, requeueing", "subject", d.RoutingKey, "error", err)
	_ = d.Nack(false, true)
}

func (rc *RabbitClient) Close() error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.ch != nil {
		_ = rc.ch.Close()
	}
	if rc.conn != nil {
		return rc.conn.Close()
	}
	return nil
}
