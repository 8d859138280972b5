package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/annel0/casino-server/internal/logging"
)

// Mailer sends outbound mail. The context carries the send deadline so a
// slow provider cannot stall the calling handler.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SendGridMailer delivers mail through the SendGrid API.
type SendGridMailer struct {
	apiKey string
	sender string
}

// NewSendGridMailer returns a mailer sending from the given address.
func NewSendGridMailer(apiKey, sender string) *SendGridMailer {
	return &SendGridMailer{apiKey: apiKey, sender: sender}
}

// Send implements Mailer.
func (m *SendGridMailer) Send(ctx context.Context, to, subject, body string) error {
	from := sgmail.NewEmail("", m.sender)
	recipient := sgmail.NewEmail("", to)
	message := sgmail.NewSingleEmail(from, subject, recipient, body, body)

	client := sendgrid.NewSendClient(m.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d", response.StatusCode)
	}
	return nil
}

// LogMailer writes mail to the server log instead of sending it. Used in
// development when no SendGrid API key is configured.
type LogMailer struct{}

// Send implements Mailer.
func (LogMailer) Send(_ context.Context, to, subject, body string) error {
	logging.Info("[MAIL] to=%s subject=%q body=%q", to, subject, body)
	return nil
}
