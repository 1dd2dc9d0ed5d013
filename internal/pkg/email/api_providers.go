// internal/pkg/email/api_providers.go
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/fashion-store/internal/config"
)

const resendEndpoint = "https://api.resend.com/emails"

// Resend API structures
type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// resendSender sends email using the Resend HTTP API
type resendSender struct {
	cfg      config.EmailConfig
	endpoint string
	client   *http.Client
}

func newResendSender(cfg config.EmailConfig, endpoint string) (*resendSender, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Resend API key not configured")
	}
	return &resendSender{
		cfg:      cfg,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (s *resendSender) Send(ctx context.Context, email *Email) error {
	body, err := json.Marshal(resendEmailRequest{
		From:    formatFrom(s.cfg),
		To:      email.To,
		Subject: email.Subject,
		HTML:    email.HTMLContent,
		ReplyTo: s.cfg.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal Resend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create Resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Resend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Resend API returned status %d", resp.StatusCode)
	}
	return nil
}

// logSender writes messages to the log instead of delivering them. Used in
// development.
type logSender struct {
	logger *logrus.Logger
}

func (s *logSender) Send(_ context.Context, email *Email) error {
	s.logger.WithFields(logrus.Fields{
		"to":      email.To,
		"subject": email.Subject,
		"type":    email.Type,
	}).Info("Email (log provider)")
	return nil
}
