// Package notifications sends the overdue inspection digest and runs the
// nightly maintenance jobs.
package notifications

import (
	"fmt"

	"tts-guard-backend/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Mailer interface {
	Send(to []string, subject, htmlBody string) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailerFromEnv builds a mailer from SMTP_HOST, SMTP_PORT, SMTP_USER,
// SMTP_PASSWORD and SMTP_FROM.
func NewSMTPMailerFromEnv() (*SMTPMailer, error) {
	host := config.GetEnv("SMTP_HOST")
	if host == "" {
		return nil, fmt.Errorf("SMTP_HOST is not set")
	}
	from := config.GetEnvDefault("SMTP_FROM", config.GetEnv("SMTP_USER"))
	if from == "" {
		return nil, fmt.Errorf("SMTP_FROM is not set")
	}
	port := config.GetEnvInt("SMTP_PORT", 587)

	config.Logger.Info("Mailer initialized", zap.String("host", host), zap.Int("port", port))
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, config.GetEnv("SMTP_USER"), config.GetEnv("SMTP_PASSWORD")),
		from:   from,
	}, nil
}

func (m *SMTPMailer) Send(to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		config.Logger.Error("Failed to send email via SMTP",
			zap.Strings("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}
	config.Logger.Info("Email sent", zap.Strings("to", to), zap.String("subject", subject))
	return nil
}
