// Package mail sends outbound notification mail. The core only depends on
// the Sender interface; delivery failures propagate to the caller untouched.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"golang.org/x/time/rate"
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender delivers via a plain SMTP relay. A token-bucket limiter keeps
// bursts of signups from flooding the relay.
type SMTPSender struct {
	addr    string
	from    string
	auth    smtp.Auth
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewSMTPSender(host string, port int, username, password, from string, perSecond float64, logger *slog.Logger) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		addr:    fmt.Sprintf("%s:%d", host, port),
		from:    from,
		auth:    auth,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		logger:  logger,
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg.String())); err != nil {
		s.logger.Error("smtp send failed", "to", to, "error", err)
		return err
	}
	s.logger.Info("mail sent", "to", to, "subject", subject)
	return nil
}
