package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"

	mail "github.com/go-mail/mail/v2"
	"github.com/google/uuid"
)

// SMTP delivers messages over SMTP with mandatory STARTTLS.
type SMTP struct {
	from   string
	dialer *mail.Dialer
	logger *slog.Logger
}

// NewSMTP creates an SMTP sender from cfg.
func NewSMTP(cfg *Config, logger *slog.Logger) *SMTP {
	d := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.SMTPHost,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}

	return &SMTP{
		from:   cfg.From,
		dialer: d,
		logger: logger,
	}
}

func (s *SMTP) Mode() string { return ModeSMTP }

func (s *SMTP) Send(ctx context.Context, msg Message) (string, error) {
	if len(msg.To) == 0 {
		return "", ErrNoRecipient
	}

	id := fmt.Sprintf("<%s@consult>", uuid.NewString())

	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", id)
	m.SetBody("text/html", msg.HTML)

	// DialAndSend has no context; the result is abandoned on cancellation.
	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("smtp send: %w", err)
		}
	}

	s.logger.Info("email sent", "message_id", id, "to", msg.To)
	return id, nil
}
