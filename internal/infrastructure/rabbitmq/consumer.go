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
)

// Consumer reads code notifications off the mail queue. Messages are
// auto-acked: a failed delivery attempt is logged and dropped, matching
// the best-effort contract of the publishing side.
type Consumer struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
	logger *logrus.Logger
}

func NewConsumer(cfg *config.RabbitMQConfig, logger *logrus.Logger) (*Consumer, error) {
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

	return &Consumer{conn: conn, ch: ch, queue: cfg.QueueName, logger: logger}, nil
}

// Consume blocks, feeding each decoded notification to handle until the
// context is canceled or the delivery channel closes.
func (c *Consumer) Consume(ctx context.Context, handle func(ctx context.Context, n *registration.CodeNotification) error) error {
	deliveries, err := c.ch.Consume(c.queue, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming queue %s: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("amqp delivery channel closed")
			}

			var n registration.CodeNotification
			if err := json.Unmarshal(d.Body, &n); err != nil {
				if c.logger != nil {
					c.logger.WithError(err).Warn("amqp: dropping malformed notification")
				}
				continue
			}

			if err := handle(ctx, &n); err != nil {
				if c.logger != nil {
					c.logger.WithField("email", n.Email).WithError(err).Error("failed to handle code notification")
				}
			}
		}
	}
}

func (c *Consumer) Close() error {
	if err := c.ch.Close(); err != nil {
		return err
	}
	return c.conn.Close()
}
