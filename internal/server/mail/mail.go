// Package mail sends account notifications. SMTPMailer delivers through an
// SMTP relay; LogMailer only logs and is used when no relay is configured.
package mail

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophaccount/internal/logging"
	gomail "github.com/wneessen/go-mail"
)

// Mailer sends a plain-text email.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// sender is the part of *gomail.Client used here.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

type SMTPMailer struct {
	from   string
	client sender
}

// NewSMTPMailer builds a mailer for cfg. TLS is used when the server offers
// it; authentication only when a username is set.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &SMTPMailer{from: cfg.From, client: client}, nil
}

func (m *SMTPMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	msg, err := buildMessage(m.from, to, subject, body)
	if err != nil {
		return err
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)
	return msg, nil
}

// LogMailer logs instead of sending. The body carries reset tokens, so it
// is logged at debug level only.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	return &LogMailer{log: log.With("module", "mail")}
}

func (m *LogMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	m.log.Info(ctx, "email not sent, no smtp relay configured", "to", to, "subject", subject)
	m.log.Debug(ctx, "email body", "to", to, "body", body)
	return nil
}
