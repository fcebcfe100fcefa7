// Package mailer delivers rendered decision emails through a configurable backend:
// a local stub, SMTP, or an n8n-style webhook.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoRecipient indicates a message without any To address.
var ErrNoRecipient = errors.New("message has no recipient")

// Message is a single HTML email. Metadata is forwarded verbatim by backends
// that support it and carries the consultation fields for the webhook.
type Message struct {
	To       []string          `json:"to"`
	Subject  string            `json:"subject"`
	HTML     string            `json:"html"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Sender delivers messages and returns the backend's id for the sent message.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
	Mode() string
}

// New returns the Sender selected by cfg.Mode.
func New(cfg *Config, logger *slog.Logger) (Sender, error) {
	logger = logger.With("system", "mailer", "mode", cfg.Mode)

	switch cfg.Mode {
	case ModeStub:
		return NewStub(cfg.StubLatencyDuration(), cfg.StubFailureRate, nil, logger), nil
	case ModeSMTP:
		return NewSMTP(cfg, logger), nil
	case ModeWebhook:
		return NewWebhook(cfg.WebhookURL, cfg.WebhookSecret, cfg.WebhookTimeoutDuration(), logger), nil
	default:
		return nil, fmt.Errorf("unknown mail mode %q", cfg.Mode)
	}
}
