package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	DefaultSendGridHost = "https://api.sendgrid.com"
	sendEndpoint        = "/v3/mail/send"
)

// SendGridMailer sends run summaries to a single recipient.
type SendGridMailer struct {
	apiKey string
	host   string
	from   *mail.Email
	to     *mail.Email
}

// NewSendGridMailer creates a mailer. An empty host means DefaultSendGridHost.
func NewSendGridMailer(apiKey, host, from, to string) *SendGridMailer {
	if host == "" {
		host = DefaultSendGridHost
	}
	return &SendGridMailer{
		apiKey: apiKey,
		host:   host,
		from:   mail.NewEmail("Strava Upload", from),
		to:     mail.NewEmail("", to),
	}
}

func (m *SendGridMailer) SendEmail(ctx context.Context, subject, htmlBody string) error {
	msg := mail.NewSingleEmail(m.from, subject, m.to, "", htmlBody)

	req := sendgrid.GetRequest(m.apiKey, sendEndpoint, m.host)
	req.Method = "POST"
	req.Body = mail.GetRequestBody(msg)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}

	slog.Debug("Email sent", "subject", subject, "to", m.to.Address, "status", resp.StatusCode)
	return nil
}

// LogNotifier logs emails instead of sending them, for local runs.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) SendEmail(ctx context.Context, subject, htmlBody string) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("[LogNotifier] MOCK EMAIL", "subject", subject, "body", htmlBody)
	return nil
}
