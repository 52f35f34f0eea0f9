package health

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/mailcode/registrator/internal/core/ports"
	infraDB "github.com/mailcode/registrator/internal/infrastructure/db"
	"github.com/mailcode/registrator/internal/infrastructure/rabbitmq"
)

// dbHealthChecker wraps the database for health checks.
type dbHealthChecker struct{ db *infraDB.Database }

func (d *dbHealthChecker) Name() string                    { return "database" }
func (d *dbHealthChecker) Check(ctx context.Context) error { return d.db.DB.PingContext(ctx) }

// redisHealthChecker wraps the redis client for health checks.
type redisHealthChecker struct{ client *redis.Client }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// amqpHealthChecker wraps the queue publisher for health checks.
type amqpHealthChecker struct{ pub *rabbitmq.Publisher }

func (a *amqpHealthChecker) Name() string                    { return "rabbitmq" }
func (a *amqpHealthChecker) Check(ctx context.Context) error { return a.pub.Ping(ctx) }

// NewDBHealthChecker creates a health checker for the database.
func NewDBHealthChecker(db *infraDB.Database) ports.HealthChecker { return &dbHealthChecker{db: db} }

// NewRedisHealthChecker creates a health checker for Redis.
func NewRedisHealthChecker(client *redis.Client) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}

// NewAMQPHealthChecker creates a health checker for the RabbitMQ connection.
func NewAMQPHealthChecker(pub *rabbitmq.Publisher) ports.HealthChecker {
	return &amqpHealthChecker{pub: pub}
}
