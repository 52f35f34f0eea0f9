package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	config "github.com/mailcode/registrator/configs"
	"github.com/mailcode/registrator/internal/infrastructure/email"
	"github.com/mailcode/registrator/internal/infrastructure/rabbitmq"
)

// The mailer consumes code notifications from the queue and turns each one
// into a delivery email. It has no feedback channel back to the server: a
// failed delivery is logged and the message is gone.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := logrus.New()
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting mailer...")

	consumer, err := rabbitmq.NewConsumer(&cfg.RabbitMQ, logger)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer consumer.Close()

	logger.Infof("Connected to RabbitMQ, waiting for messages on %s", cfg.RabbitMQ.QueueName)

	mailer := email.NewCodeMailer(&cfg.Email, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Consume(ctx, mailer.SendCode); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Consumer stopped:", err)
	}

	logger.Info("Mailer exited")
}
