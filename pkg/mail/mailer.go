package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/spicepalace/spicepalace-backend/pkg/config"
)

// Sender delivers transactional email.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Mailer sends email through Resend.
type Mailer struct {
	client *resend.Client
	from   string
}

func New(cfg config.MailConfig) (*Mailer, error) {
	if cfg.ResendAPIKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("mail from address is required")
	}
	return &Mailer{
		client: resend.NewClient(cfg.ResendAPIKey),
		from:   cfg.FromAddress,
	}, nil
}

func (m *Mailer) Send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	if _, err := m.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("sending email to %s: %w", to, err)
	}
	return nil
}
