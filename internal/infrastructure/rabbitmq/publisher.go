package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	config "github.com/mailcode/registrator/configs"
	"github.com/mailcode/registrator/internal/core/domain/registration"
	"github.com/mailcode/registrator/internal/core/ports"
)

// Publisher hands code notifications to a RabbitMQ queue. Messages are
// fire-and-forget: no publisher confirms, no retries. The queue is
// declared non-durable; losing a code on broker restart only means the
// user requests a new one after the TTL.
type Publisher struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
	logger *logrus.Logger
}

// Ensure Publisher implements ports.NotificationPublisher
var _ ports.NotificationPublisher = (*Publisher)(nil)

func NewPublisher(cfg *config.RabbitMQConfig, logger *logrus.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if _, err := ch.QueueDeclare(cfg.QueueName, false, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.QueueName, err)
	}

	return &Publisher{conn: conn, ch: ch, queue: cfg.QueueName, logger: logger}, nil
}

func (p *Publisher) Publish(ctx context.Context, n *registration.CodeNotification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	if p.logger != nil {
		p.logger.WithField("email", n.Email).Debug("amqp: code notification published")
	}

	return nil
}

// Ping reports whether the broker connection is still alive.
func (p *Publisher) Ping(ctx context.Context) error {
	if p.conn.IsClosed() {
		return errors.New("amqp connection closed")
	}
	return nil
}

func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}
