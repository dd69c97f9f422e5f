package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/mailroom/mailroom/pkg/mailer"
)

// Sender implements mailer.Sender using the Resend API.
type Sender struct {
	client *resend.Client
}

// New creates a Resend sender. The API key is required.
func New(cfg Config) (*Sender, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: resend API key is not set", mailer.ErrConfiguration)
	}
	return &Sender{client: resend.NewClient(cfg.APIKey)}, nil
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) (*mailer.Receipt, error) {
	req := &resend.SendEmailRequest{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Cc:      email.CC,
		Bcc:     email.BCC,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("resend: failed to send email: %w", err)
	}
	return &mailer.Receipt{ID: sent.Id}, nil
}
