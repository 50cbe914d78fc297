package notify

import (
	"context"
	"fmt"

	"opengalaxy/logger"

	"go.uber.org/zap/zapcore"
	"gopkg.in/gomail.v2"
)

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer sends plain-text mail over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)
	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. Used when no
// SMTP credentials are configured.
type LogSender struct {
	Logger *logger.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	s.Logger.Log(zapcore.InfoLevel, "", "Mail delivery disabled, message logged", map[string]any{
		"to":      msg.To,
		"subject": msg.Subject,
	}, "NOTIFY", nil)
	return nil
}
