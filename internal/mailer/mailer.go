// Package mailer sends newsletter mail over SMTP.
package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender delivers mail through a plain SMTP relay with AUTH when a
// password is configured.
type SMTPSender struct {
	host     string
	port     string
	from     string
	password string
}

// NewSMTPSender constructs an SMTP sender.
func NewSMTPSender(host, port, from, password string) *SMTPSender {
	return &SMTPSender{host: host, port: port, from: from, password: password}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if s.password != "" {
		auth = smtp.PlainAuth("", s.from, s.password, s.host)
	}
	addr := net.JoinHostPort(s.host, s.port)
	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
