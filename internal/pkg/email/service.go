// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/fashion-store/internal/config"
)

// EmailService renders and delivers transactional mail. Notifications are
// delivered off the caller's goroutine; Close waits for them to finish.
type EmailService struct {
	config    *config.Config
	logger    *logrus.Logger
	sender    Sender
	templates *template.Template
	wg        sync.WaitGroup
	now       func() time.Time
}

// NewEmailService creates an email service for the configured provider
func NewEmailService(cfg *config.Config, logger *logrus.Logger) (*EmailService, error) {
	var (
		sender Sender
		err    error
	)

	switch cfg.Email.Provider {
	case "smtp":
		sender, err = newSMTPSender(cfg.Email)
	case "resend":
		sender, err = newResendSender(cfg.Email, resendEndpoint)
	case "log", "":
		sender = &logSender{logger: logger}
	default:
		err = fmt.Errorf("unsupported email provider: %s", cfg.Email.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewEmailServiceWithSender(cfg, logger, sender), nil
}

// NewEmailServiceWithSender creates an email service delivering through sender
func NewEmailServiceWithSender(cfg *config.Config, logger *logrus.Logger, sender Sender) *EmailService {
	return &EmailService{
		config:    cfg,
		logger:    logger,
		sender:    sender,
		templates: template.Must(template.New("email").Parse(emailTemplates)),
		now:       time.Now,
	}
}

// Send delivers one HTML message, retrying on failure. It reports whether the
// message was accepted by the provider.
func (s *EmailService) Send(ctx context.Context, to, subject, html string) bool {
	return s.deliver(ctx, &Email{To: []string{to}, Subject: subject, HTMLContent: html})
}

// Close blocks until all dispatched messages are delivered or given up
func (s *EmailService) Close() {
	s.wg.Wait()
}

// dispatch delivers email in the background. The request context may end
// before delivery does, so only its values are kept.
func (s *EmailService) dispatch(ctx context.Context, email *Email) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.deliver(context.WithoutCancel(ctx), email)
	}()
}

func (s *EmailService) deliver(ctx context.Context, email *Email) bool {
	attempts := s.config.Email.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	log := s.logger.WithFields(logrus.Fields{
		"to":      email.To,
		"subject": email.Subject,
		"type":    email.Type,
	})

	for attempt := 1; attempt <= attempts; attempt++ {
		err := s.sender.Send(ctx, email)
		if err == nil {
			log.WithField("attempt", attempt).Debug("Email sent")
			return true
		}

		log.WithError(err).WithField("attempt", attempt).Warn("Email delivery failed")
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			log.WithError(ctx.Err()).Error("Email delivery abandoned")
			return false
		case <-time.After(s.config.Email.RetryDelay * time.Duration(attempt)):
		}
	}

	log.Error("Email delivery gave up")
	return false
}

// renderTemplate renders an email template with data
func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (s *EmailService) baseData(userName, userEmail string) EmailTemplateData {
	return baseTemplateData(
		s.config.App.CompanyName,
		s.config.App.BaseURL,
		s.config.App.CompanyEmail,
		userName,
		userEmail,
		s.now(),
	)
}
