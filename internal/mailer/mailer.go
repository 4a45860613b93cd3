package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/olegkuprianov/webapp-starter/internal/logger"
)

// Message is a plain-text mail ready to send.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages to users.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	Addr     string
	From     string
	Username string
	Password string
}

// NewSMTPMailer creates a mailer talking to addr (host:port) as from.
func NewSMTPMailer(addr, from, username, password string) *SMTPMailer {
	return &SMTPMailer{
		Addr:     addr,
		From:     from,
		Username: username,
		Password: password,
	}
}

// Send delivers the message, honoring context cancellation before the
// SMTP dialogue starts.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.Username != "" {
		host, _, _ := strings.Cut(m.Addr, ":")
		auth = smtp.PlainAuth("", m.Username, m.Password, host)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)

	return smtp.SendMail(m.Addr, auth, m.From, []string{msg.To}, []byte(b.String()))
}

// LogMailer writes messages to the application log instead of sending
// them. Used when no SMTP relay is configured.
type LogMailer struct{}

// NewLogMailer creates a LogMailer.
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// Send logs the message and succeeds.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	logger.Log.Infow("outgoing mail",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
