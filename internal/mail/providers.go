package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/resend/resend-go/v3"
	"go.uber.org/zap"
)

const sendTimeout = 10 * time.Second

type mailgunTransport struct {
	mg   mailgun.Mailgun
	from string
}

func newMailgunTransport(domain, apiKey, from string) *mailgunTransport {
	return &mailgunTransport{
		mg:   mailgun.NewMailgun(domain, apiKey),
		from: from,
	}
}

func (t *mailgunTransport) deliver(ctx context.Context, msg Message) error {
	m := mailgun.NewMessage(t.from, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		m.SetHtml(msg.HTML)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if _, _, err := t.mg.Send(ctx, m); err != nil {
		return fmt.Errorf("mailgun: %w", err)
	}
	return nil
}

type resendTransport struct {
	client *resend.Client
	from   string
}

func newResendTransport(apiKey, from string) *resendTransport {
	return &resendTransport{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (t *resendTransport) deliver(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	params := &resend.SendEmailRequest{
		From:    t.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if _, err := t.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

// logTransport writes messages to the log instead of sending them. Used in development.
type logTransport struct {
	logger *zap.Logger
}

func newLogTransport(logger *zap.Logger) *logTransport {
	return &logTransport{logger: logger}
}

func (t *logTransport) deliver(_ context.Context, msg Message) error {
	t.logger.Info("Outgoing email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text))
	return nil
}
