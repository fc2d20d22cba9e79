package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"

	"github.com/jordan-wright/email"
)

type SMTPConfig struct {
	Addr     string // host:port
	Username string
	Password string
	From     string
	To       []string
}

// Email sends each message as a plain-text mail.
type Email struct {
	cfg  SMTPConfig
	send func(e *email.Email) error
}

func NewEmail(cfg SMTPConfig) *Email {
	m := &Email{cfg: cfg}
	m.send = func(e *email.Email) error {
		var auth smtp.Auth
		if cfg.Username != "" {
			host, _, err := net.SplitHostPort(cfg.Addr)
			if err != nil {
				return err
			}
			auth = smtp.PlainAuth("", cfg.Username, cfg.Password, host)
		}
		return e.Send(cfg.Addr, auth)
	}
	return m
}

const subject = "[srtres] reservation update"

func (m *Email) message(text string) *email.Email {
	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = m.cfg.To
	e.Subject = subject
	e.Text = []byte(text)
	return e
}

// Notify ignores ctx cancellation once the SMTP exchange has started; the
// mail library has no context support.
func (m *Email) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.send(m.message(text)); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	return nil
}
