package email

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	config "github.com/mailcode/registrator/configs"
	"github.com/mailcode/registrator/internal/core/domain/registration"
	"github.com/mailcode/registrator/internal/core/ports"
)

// CodeMailer delivers one-time codes via SendGrid. When no API key is
// configured it logs the code instead of sending, which keeps local
// development free of external dependencies.
type CodeMailer struct {
	client *sendgrid.Client
	from   *mail.Email
	logger *logrus.Logger
}

// Ensure CodeMailer implements ports.EmailSender
var _ ports.EmailSender = (*CodeMailer)(nil)

func NewCodeMailer(cfg *config.EmailConfig, logger *logrus.Logger) *CodeMailer {
	var client *sendgrid.Client
	if cfg.SendGridAPIKey != "" {
		client = sendgrid.NewSendClient(cfg.SendGridAPIKey)
	}

	return &CodeMailer{
		client: client,
		from:   mail.NewEmail(cfg.FromName, cfg.FromEmail),
		logger: logger,
	}
}

func (m *CodeMailer) SendCode(ctx context.Context, n *registration.CodeNotification) error {
	if m.client == nil {
		if m.logger != nil {
			m.logger.WithFields(logrus.Fields{"email": n.Email, "code": n.Code}).Info("sendgrid not configured; logging code instead of sending")
		}
		return nil
	}

	subject := "Your registration code"
	body := fmt.Sprintf("Your registration code is %s. It expires at %s.", n.Code, n.ExpiresAt.UTC().Format(time.RFC1123))
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", n.Email), body, "")

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send code email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected message: status %d", resp.StatusCode)
	}

	if m.logger != nil {
		m.logger.WithField("email", n.Email).Info("code email sent")
	}

	return nil
}
