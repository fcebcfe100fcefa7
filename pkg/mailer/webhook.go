package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SecretHeader carries the shared webhook secret.
const SecretHeader = "X-N8N-SECRET"

// Webhook posts messages as JSON to an automation endpoint that performs delivery.
type Webhook struct {
	url        string
	secret     string
	httpClient *http.Client
	logger     *slog.Logger
}

type webhookRequest struct {
	Message
	Timestamp time.Time `json:"timestamp"`
}

type webhookResponse struct {
	EmailID string `json:"email_id"`
}

// NewWebhook creates a Webhook sender.
func NewWebhook(url, secret string, timeout time.Duration, logger *slog.Logger) *Webhook {
	return &Webhook{
		url:        url,
		secret:     secret,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (w *Webhook) Mode() string { return ModeWebhook }

func (w *Webhook) Send(ctx context.Context, msg Message) (string, error) {
	body, err := json.Marshal(webhookRequest{Message: msg, Timestamp: time.Now().UTC()})
	if err != nil {
		return "", fmt.Errorf("marshal webhook request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if w.secret != "" {
		req.Header.Set(SecretHeader, w.secret)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(b))
	}

	var result webhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil && err != io.EOF {
		return "", fmt.Errorf("decode webhook response: %w", err)
	}

	if result.EmailID == "" {
		result.EmailID = uuid.NewString()
	}

	w.logger.Info("email dispatched via webhook", "email_id", result.EmailID)
	return result.EmailID, nil
}
