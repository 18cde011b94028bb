package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"gopkg.in/gomail.v2"
)

// Message is a rendered email ready for a Mailer.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	Kind     string
	// LinkHost is the host of any link in the body, kept for logging.
	LinkHost string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type messageSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	from   string
	dialer messageSender
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.TextBody)
	if msg.HTMLBody != "" {
		gm.AddAlternative("text/html", msg.HTMLBody)
	}
	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("smtp send %s: %w", msg.Kind, err)
	}
	return nil
}

// LogMailer stands in for SMTP in local environments. Envelope data is always
// logged; the text body, which carries codes and reset links, only when
// showBody is set.
type LogMailer struct {
	logger   *slog.Logger
	showBody bool
}

func NewLogMailer(logger *slog.Logger, showBody bool) *LogMailer {
	return &LogMailer{logger: logger, showBody: showBody}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	attrs := []any{
		"to", msg.To,
		"kind", msg.Kind,
		"subject", msg.Subject,
		"link_host", msg.LinkHost,
	}
	if m.showBody {
		attrs = append(attrs, "body", msg.TextBody)
	}
	m.logger.InfoContext(ctx, "email delivered to log mailer", attrs...)
	return nil
}

func linkHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
