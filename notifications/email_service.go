package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const brevoURL = "https://api.brevo.com/v3/smtp/email"

// Mailer sends a single transactional email.
type Mailer interface {
	SendEmail(ctx context.Context, toName, toEmail, subject, htmlContent string) error
}

type BrevoService struct {
	client      *resty.Client
	endpoint    string
	senderEmail string
	senderName  string
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

// NewMailer returns a Brevo-backed mailer, or a no-op mailer when the
// service is not configured.
func NewMailer(apiKey, senderEmail, senderName string, logger *slog.Logger) Mailer {
	if apiKey == "" || senderEmail == "" || senderName == "" {
		logger.Warn("email service not configured, emails will be skipped")
		return NoopMailer{Logger: logger}
	}

	client := resty.New().
		SetTimeout(10*time.Second).
		SetHeader("accept", "application/json").
		SetHeader("api-key", apiKey)

	logger.Info("email service initialized", "sender", senderEmail)
	return &BrevoService{client: client, endpoint: brevoURL, senderEmail: senderEmail, senderName: senderName}
}

func (s *BrevoService) SendEmail(ctx context.Context, toName, toEmail, subject, htmlContent string) error {
	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}

	recipientName := toName
	if recipientName == "" {
		recipientName = toEmail[:strings.Index(toEmail, "@")]
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(brevoPayload{
			Sender:      map[string]string{"name": s.senderName, "email": s.senderEmail},
			To:          []map[string]string{{"email": toEmail, "name": recipientName}},
			Subject:     subject,
			HTMLContent: htmlContent,
		}).
		Post(s.endpoint)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return fmt.Errorf("failed to send email via Brevo: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

type NoopMailer struct {
	Logger *slog.Logger
}

func (m NoopMailer) SendEmail(ctx context.Context, _, toEmail, subject, _ string) error {
	if m.Logger != nil {
		m.Logger.DebugContext(ctx, "email skipped", "to", toEmail, "subject", subject)
	}
	return nil
}
