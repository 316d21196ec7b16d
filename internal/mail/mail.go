// Package mail delivers account emails: activation codes and password reset links.
package mail

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"webmail/internal/config"
)

// Sender delivers the account emails sent during registration and password recovery.
type Sender interface {
	SendActivationCode(ctx context.Context, toEmail, name string, code int) error
	SendPasswordReset(ctx context.Context, toEmail, token string) error
}

// Message is a rendered email ready for a provider.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// New returns the sender selected by cfg.Mail.Provider: "mailgun", "resend" or "log".
func New(cfg *config.Config, logger *zap.Logger) (Sender, error) {
	from := cfg.Mail.FromAddress
	if cfg.Mail.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.Mail.FromName, cfg.Mail.FromAddress)
	}

	var t transport
	switch strings.ToLower(cfg.Mail.Provider) {
	case "mailgun":
		if cfg.Mail.MailgunDomain == "" || cfg.Mail.MailgunAPIKey == "" {
			return nil, fmt.Errorf("mailgun provider requires MAILGUN_DOMAIN and MAILGUN_API_KEY")
		}
		t = newMailgunTransport(cfg.Mail.MailgunDomain, cfg.Mail.MailgunAPIKey, from)
	case "resend":
		if cfg.Mail.ResendAPIKey == "" {
			return nil, fmt.Errorf("resend provider requires RESEND_API_KEY")
		}
		t = newResendTransport(cfg.Mail.ResendAPIKey, from)
	case "", "log":
		t = newLogTransport(logger)
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Mail.Provider)
	}

	return &templatedSender{
		transport: t,
		appURL:    strings.TrimRight(cfg.AppURL, "/"),
		logger:    logger,
	}, nil
}

// transport hands a rendered message to a provider.
type transport interface {
	deliver(ctx context.Context, msg Message) error
}

type templatedSender struct {
	transport transport
	appURL    string
	logger    *zap.Logger
}

func (s *templatedSender) SendActivationCode(ctx context.Context, toEmail, name string, code int) error {
	msg := Message{
		To:      toEmail,
		Subject: "Activate your account",
		Text: fmt.Sprintf("Hello %s,\n\nYour activation code is %06d.\n"+
			"Enter it on the activation page to confirm your email address.\n", name, code),
		HTML: fmt.Sprintf("<p>Hello %s,</p><p>Your activation code is <strong>%06d</strong>.</p>"+
			"<p>Enter it on the activation page to confirm your email address.</p>", name, code),
	}
	if err := s.transport.deliver(ctx, msg); err != nil {
		return fmt.Errorf("send activation code: %w", err)
	}
	s.logger.Info("Activation code sent", zap.String("to", toEmail))
	return nil
}

func (s *templatedSender) SendPasswordReset(ctx context.Context, toEmail, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.appURL, token)
	msg := Message{
		To:      toEmail,
		Subject: "Reset your password",
		Text: fmt.Sprintf("We received a request to reset your password.\n\n%s\n\n"+
			"If you did not request this, you can ignore this email.\n", link),
		HTML: fmt.Sprintf("<p>We received a request to reset your password.</p>"+
			"<p><a href=\"%s\">Reset password</a></p>"+
			"<p>If you did not request this, you can ignore this email.</p>", link),
	}
	if err := s.transport.deliver(ctx, msg); err != nil {
		return fmt.Errorf("send password reset: %w", err)
	}
	s.logger.Info("Password reset link sent", zap.String("to", toEmail))
	return nil
}
