package ports

import (
	"context"

	"github.com/mailcode/registrator/internal/core/domain/registration"
)

// EmailSender turns a code notification into a delivered email. Used by
// the queue consumer, not by the issuing service.
type EmailSender interface {
	SendCode(ctx context.Context, n *registration.CodeNotification) error
}
