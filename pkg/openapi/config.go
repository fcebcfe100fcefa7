package openapi

import "os"

const (
	defaultTitle       = "Consult API"
	defaultDescription = "Consultation request tracking: deadline classification, calendars, dashboards, and decision emails."
)

// Config supplies the info block of the generated document. The version
// comes from the build, not from configuration.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
}

// Env names the environment variables that override Config fields.
type Env struct {
	Title       string
	Description string
}

// Finalize fills defaults then applies env overrides. It never fails.
func (c *Config) Finalize(env *Env) error {
	if c.Title == "" {
		c.Title = defaultTitle
	}
	if c.Description == "" {
		c.Description = defaultDescription
	}
	if env == nil {
		return nil
	}
	override(&c.Title, env.Title)
	override(&c.Description, env.Description)
	return nil
}

// Merge copies the non-empty fields of overlay onto c.
func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
}

func override(field *string, name string) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		*field = v
	}
}
