package ports

import (
	"context"

	"github.com/mailcode/registrator/internal/core/domain/registration"
)

// NotificationPublisher hands code-delivery notifications to the mail
// queue. Delivery is best-effort and at-most-once: callers log publish
// failures and move on, they never retry or surface them.
type NotificationPublisher interface {
	Publish(ctx context.Context, n *registration.CodeNotification) error
}
