package mailer

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Backend modes.
const (
	ModeStub    = "stub"
	ModeSMTP    = "smtp"
	ModeWebhook = "webhook"
)

// Config holds mail delivery settings. Mode selects the backend; the remaining
// fields apply to the backend they are named for.
type Config struct {
	Mode            string  `toml:"mode"`
	From            string  `toml:"from"`
	SMTPHost        string  `toml:"smtp_host"`
	SMTPPort        int     `toml:"smtp_port"`
	SMTPUser        string  `toml:"smtp_user"`
	SMTPPassword    string  `toml:"smtp_password"`
	SkipTLSVerify   bool    `toml:"skip_tls_verify"`
	WebhookURL      string  `toml:"webhook_url"`
	WebhookSecret   string  `toml:"webhook_secret"`
	WebhookTimeout  string  `toml:"webhook_timeout"`
	StubLatency     string  `toml:"stub_latency"`
	StubFailureRate float64 `toml:"stub_failure_rate"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Mode            string
	From            string
	SMTPHost        string
	SMTPPort        string
	SMTPUser        string
	SMTPPassword    string
	SkipTLSVerify   string
	WebhookURL      string
	WebhookSecret   string
	WebhookTimeout  string
	StubLatency     string
	StubFailureRate string
}

// StubLatencyDuration returns StubLatency as a time.Duration.
func (c *Config) StubLatencyDuration() time.Duration {
	d, _ := time.ParseDuration(c.StubLatency)
	return d
}

// WebhookTimeoutDuration returns WebhookTimeout as a time.Duration.
func (c *Config) WebhookTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.WebhookTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
	if overlay.From != "" {
		c.From = overlay.From
	}
	if overlay.SMTPHost != "" {
		c.SMTPHost = overlay.SMTPHost
	}
	if overlay.SMTPPort != 0 {
		c.SMTPPort = overlay.SMTPPort
	}
	if overlay.SMTPUser != "" {
		c.SMTPUser = overlay.SMTPUser
	}
	if overlay.SMTPPassword != "" {
		c.SMTPPassword = overlay.SMTPPassword
	}
	if overlay.SkipTLSVerify {
		c.SkipTLSVerify = true
	}
	if overlay.WebhookURL != "" {
		c.WebhookURL = overlay.WebhookURL
	}
	if overlay.WebhookSecret != "" {
		c.WebhookSecret = overlay.WebhookSecret
	}
	if overlay.WebhookTimeout != "" {
		c.WebhookTimeout = overlay.WebhookTimeout
	}
	if overlay.StubLatency != "" {
		c.StubLatency = overlay.StubLatency
	}
	if overlay.StubFailureRate != 0 {
		c.StubFailureRate = overlay.StubFailureRate
	}
}

func (c *Config) loadDefaults() {
	if c.Mode == "" {
		c.Mode = ModeStub
	}
	if c.From == "" {
		c.From = "Consultations <no-reply@consult.local>"
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = 587
	}
	if c.WebhookTimeout == "" {
		c.WebhookTimeout = "30s"
	}
	if c.StubLatency == "" {
		c.StubLatency = "1500ms"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Mode != "" {
		if v := os.Getenv(env.Mode); v != "" {
			c.Mode = v
		}
	}
	if env.From != "" {
		if v := os.Getenv(env.From); v != "" {
			c.From = v
		}
	}
	if env.SMTPHost != "" {
		if v := os.Getenv(env.SMTPHost); v != "" {
			c.SMTPHost = v
		}
	}
	if env.SMTPPort != "" {
		if v := os.Getenv(env.SMTPPort); v != "" {
			if port, err := strconv.Atoi(v); err == nil {
				c.SMTPPort = port
			}
		}
	}
	if env.SMTPUser != "" {
		if v := os.Getenv(env.SMTPUser); v != "" {
			c.SMTPUser = v
		}
	}
	if env.SMTPPassword != "" {
		if v := os.Getenv(env.SMTPPassword); v != "" {
			c.SMTPPassword = v
		}
	}
	if env.SkipTLSVerify != "" {
		if v := os.Getenv(env.SkipTLSVerify); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.SkipTLSVerify = b
			}
		}
	}
	if env.WebhookURL != "" {
		if v := os.Getenv(env.WebhookURL); v != "" {
			c.WebhookURL = v
		}
	}
	if env.WebhookSecret != "" {
		if v := os.Getenv(env.WebhookSecret); v != "" {
			c.WebhookSecret = v
		}
	}
	if env.WebhookTimeout != "" {
		if v := os.Getenv(env.WebhookTimeout); v != "" {
			c.WebhookTimeout = v
		}
	}
	if env.StubLatency != "" {
		if v := os.Getenv(env.StubLatency); v != "" {
			c.StubLatency = v
		}
	}
	if env.StubFailureRate != "" {
		if v := os.Getenv(env.StubFailureRate); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.StubFailureRate = f
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeStub:
		if _, err := time.ParseDuration(c.StubLatency); err != nil {
			return fmt.Errorf("invalid stub_latency: %w", err)
		}
		if c.StubFailureRate < 0 || c.StubFailureRate > 1 {
			return fmt.Errorf("stub_failure_rate must be between 0 and 1")
		}
	case ModeSMTP:
		if c.SMTPHost == "" {
			return fmt.Errorf("smtp_host required")
		}
		if c.From == "" {
			return fmt.Errorf("from required")
		}
	case ModeWebhook:
		if c.WebhookURL == "" {
			return fmt.Errorf("webhook_url required")
		}
		if _, err := time.ParseDuration(c.WebhookTimeout); err != nil {
			return fmt.Errorf("invalid webhook_timeout: %w", err)
		}
	default:
		return fmt.Errorf("unknown mail mode %q", c.Mode)
	}
	return nil
}
