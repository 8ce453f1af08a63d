// Package events publishes user lifecycle events to RabbitMQ. Errors are
// logged and returned so callers can ignore failures without interrupting
// the main request flow.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// QueueUserRegistered receives UserRegisteredEvent messages.
	QueueUserRegistered = "user.registered"
	// QueueUserDeactivated receives UserDeactivatedEvent messages.
	QueueUserDeactivated = "user.deactivated"
)

// UserRegisteredEvent is published after an account is created.
type UserRegisteredEvent struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	RegisteredAt string `json:"registered_at"`
}

// UserDeactivatedEvent is published after an account is marked inactive.
// Downstream consumers can use it to re-drive the product cascade.
type UserDeactivatedEvent struct {
	UserID        uint   `json:"user_id"`
	DeactivatedAt string `json:"deactivated_at"`
}

// Publisher emits lifecycle events. Implementations are best-effort.
type Publisher interface {
	PublishUserRegistered(ctx context.Context, event UserRegisteredEvent) error
	PublishUserDeactivated(ctx context.Context, event UserDeactivatedEvent) error
}

// AMQPPublisher publishes persistent JSON messages to durable queues.
type AMQPPublisher struct {
	url    string
	logger *slog.Logger
}

// NewAMQPPublisher creates a publisher for the given broker URL.
func NewAMQPPublisher(url string, logger *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, logger: logger}
}

// PublishUserRegistered implements Publisher.
func (p *AMQPPublisher) PublishUserRegistered(ctx context.Context, event UserRegisteredEvent) error {
	return p.publish(ctx, QueueUserRegistered, event)
}

// PublishUserDeactivated implements Publisher.
func (p *AMQPPublisher) PublishUserDeactivated(ctx context.Context, event UserDeactivatedEvent) error {
	return p.publish(ctx, QueueUserDeactivated, event)
}

func (p *AMQPPublisher) publish(ctx context.Context, queue string, event interface{}) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Error("rabbitmq dial failed", "queue", queue, "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Error("rabbitmq channel open failed", "queue", queue, "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.logger.Error("rabbitmq queue declare failed", "queue", queue, "error", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("rabbitmq marshal event failed", "queue", queue, "error", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		p.logger.Error("rabbitmq publish failed", "queue", queue, "error", err)
		return err
	}
	return nil
}

// NoopPublisher drops all events. Used when no broker is configured.
type NoopPublisher struct{}

// PublishUserRegistered implements Publisher.
func (NoopPublisher) PublishUserRegistered(ctx context.Context, event UserRegisteredEvent) error {
	return nil
}

// PublishUserDeactivated implements Publisher.
func (NoopPublisher) PublishUserDeactivated(ctx context.Context, event UserDeactivatedEvent) error {
	return nil
}
