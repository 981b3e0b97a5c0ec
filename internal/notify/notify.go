// Package notify sends the candidate-facing emails. Subjects carry a
// "Request #<id>" tag so inbound replies can be correlated back to
// their scheduling request.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/susnata2002/ai-scheduling-bot/internal/interval"
)

// Mailer is the raw send capability; SendGrid in production, a fake in
// tests.
type Mailer interface {
	Send(ctx context.Context, toEmail, subject, body string) error
}

// SendGridMailer sends plain-text mail through the SendGrid v3 API.
type SendGridMailer struct {
	client    *sendgrid.Client
	fromEmail string
}

func NewSendGrid(apiKey, fromEmail string) *SendGridMailer {
	return &SendGridMailer{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
	}
}

func (m *SendGridMailer) Send(ctx context.Context, toEmail, subject, body string) error {
	msg := mail.NewSingleEmailPlainText(
		mail.NewEmail("", m.fromEmail),
		subject,
		mail.NewEmail("", toEmail),
		body,
	)
	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// The three mail texts of the scheduling flow.

func AvailabilityAsk(requestID int64) (subject, body string) {
	subject = fmt.Sprintf("Please provide your availability - Request #%d", requestID)
	body = "Hi, please reply with your available times for the interview (e.g., 'Monday 10 AM to 12 PM')."
	return subject, body
}

func Confirmation(requestID int64, slot interval.Interval) (subject, body string) {
	subject = fmt.Sprintf("Interview Scheduled - Request #%d", requestID)
	body = fmt.Sprintf("Your interview is scheduled from %s to %s UTC.",
		slot.Start.UTC().Format(time.RFC1123),
		slot.End.UTC().Format(time.RFC1123))
	return subject, body
}

func NoSlotFound(requestID int64) (subject, body string) {
	subject = fmt.Sprintf("No Available Slots - Request #%d", requestID)
	body = "We couldn't find a matching slot. Please provide more availability."
	return subject, body
}
