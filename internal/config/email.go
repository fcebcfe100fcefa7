package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/JaimeStill/consult/pkg/mailer"
)

const (
	EnvEmailTimeout     = "CONSULT_EMAIL_TIMEOUT"
	EnvEmailConcurrency = "CONSULT_EMAIL_CONCURRENCY"
	EnvEmailMaxBatch    = "CONSULT_EMAIL_MAX_BATCH"
)

var mailerEnv = &mailer.Env{
	Mode:            "CONSULT_MAIL_MODE",
	From:            "CONSULT_MAIL_FROM",
	SMTPHost:        "CONSULT_MAIL_SMTP_HOST",
	SMTPPort:        "CONSULT_MAIL_SMTP_PORT",
	SMTPUser:        "CONSULT_MAIL_SMTP_USER",
	SMTPPassword:    "CONSULT_MAIL_SMTP_PASSWORD",
	SkipTLSVerify:   "CONSULT_MAIL_SKIP_TLS_VERIFY",
	WebhookURL:      "CONSULT_MAIL_WEBHOOK_URL",
	WebhookSecret:   "CONSULT_MAIL_WEBHOOK_SECRET",
	WebhookTimeout:  "CONSULT_MAIL_WEBHOOK_TIMEOUT",
	StubLatency:     "CONSULT_MAIL_STUB_LATENCY",
	StubFailureRate: "CONSULT_MAIL_STUB_FAILURE_RATE",
}

// EmailConfig holds decision email dispatch settings and the mail backend.
type EmailConfig struct {
	Timeout     string        `toml:"timeout"`
	Concurrency int           `toml:"concurrency"`
	MaxBatch    int           `toml:"max_batch"`
	Mailer      mailer.Config `toml:"mailer"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *EmailConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation
// for the email config and its nested mailer config.
func (c *EmailConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Mailer.Finalize(mailerEnv); err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *EmailConfig) Merge(overlay *EmailConfig) {
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.MaxBatch != 0 {
		c.MaxBatch = overlay.MaxBatch
	}
	c.Mailer.Merge(&overlay.Mailer)
}

func (c *EmailConfig) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.Concurrency == 0 {
		c.Concurrency = 4
	}
	if c.MaxBatch == 0 {
		c.MaxBatch = 100
	}
}

func (c *EmailConfig) loadEnv() {
	if v := os.Getenv(EnvEmailTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvEmailConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency = n
		}
	}
	if v := os.Getenv(EnvEmailMaxBatch); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxBatch = n
		}
	}
}

func (c *EmailConfig) validate() error {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	if c.MaxBatch < 1 {
		return fmt.Errorf("max_batch must be at least 1")
	}
	return nil
}
