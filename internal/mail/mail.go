// Package mail sends admin notifications over SMTP, or logs them when no
// SMTP server is configured.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// Message is a plain-text notification.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// deliverFunc hands a built message to the relay.
type deliverFunc func(ctx context.Context, m *gomail.Msg) error

// SMTPSender sends messages through an SMTP relay.
type SMTPSender struct {
	cfg     Config
	deliver deliverFunc
	now     func() time.Time
	logger  *slog.Logger
}

// NewSMTPSender creates a sender for cfg. STARTTLS is used when the relay
// offers it; credentials switch on PLAIN auth.
func NewSMTPSender(cfg Config, logger *slog.Logger) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(30 * time.Second),
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
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &SMTPSender{
		cfg: cfg,
		deliver: func(ctx context.Context, m *gomail.Msg) error {
			return client.DialAndSendWithContext(ctx, m)
		},
		now:    time.Now,
		logger: logger,
	}, nil
}

// Send delivers msg. Cancelling ctx aborts the SMTP session.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return nil
	}

	m, err := s.compose(msg)
	if err != nil {
		return fmt.Errorf("build mail %q: %w", msg.Subject, err)
	}
	if err := s.deliver(ctx, m); err != nil {
		return fmt.Errorf("send mail %q: %w", msg.Subject, err)
	}

	s.logger.Info("notification sent", "subject", msg.Subject, "recipients", len(msg.To))
	return nil
}

func (s *SMTPSender) compose(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(s.now())
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return m, nil
}

// LogSender writes messages to the log instead of sending them.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a log-only sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs msg.
func (l *LogSender) Send(_ context.Context, msg Message) error {
	l.logger.Info("notification (smtp disabled)",
		"to", strings.Join(msg.To, ","),
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
