package middleware

import (
	"os"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig is the cross-origin policy for browser dashboards calling the API.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// CORSEnv names the environment variables that override CORSConfig fields.
// List values are comma-separated.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	AllowCredentials string
	MaxAge           string
}

var (
	defaultMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	defaultHeaders = []string{"Content-Type", "Authorization", RequestIDHeader}
)

const defaultMaxAge = 3600

// Finalize fills the method, header and max-age defaults then applies env overrides.
func (c *CORSConfig) Finalize(env *CORSEnv) error {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = slices.Clone(defaultMethods)
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = slices.Clone(defaultHeaders)
	}
	if c.MaxAge <= 0 {
		c.MaxAge = defaultMaxAge
	}

	if env != nil {
		envBool(&c.Enabled, env.Enabled)
		envList(&c.Origins, env.Origins)
		envList(&c.AllowedMethods, env.AllowedMethods)
		envList(&c.AllowedHeaders, env.AllowedHeaders)
		envBool(&c.AllowCredentials, env.AllowCredentials)
		if v := lookup(env.MaxAge); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.MaxAge = n
			}
		}
	}
	return nil
}

// Merge applies overlay onto c. The boolean switches always take the
// overlay's value; lists and max age apply only when set.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	c.Enabled = overlay.Enabled
	c.AllowCredentials = overlay.AllowCredentials

	if overlay.Origins != nil {
		c.Origins = overlay.Origins
	}
	if overlay.AllowedMethods != nil {
		c.AllowedMethods = overlay.AllowedMethods
	}
	if overlay.AllowedHeaders != nil {
		c.AllowedHeaders = overlay.AllowedHeaders
	}
	if overlay.MaxAge > 0 {
		c.MaxAge = overlay.MaxAge
	}
}

func lookup(key string) string {
	if key == "" {
		return ""
	}
	return os.Getenv(key)
}

func envBool(dst *bool, key string) {
	if b, err := strconv.ParseBool(lookup(key)); err == nil {
		*dst = b
	}
}

func envList(dst *[]string, key string) {
	v := lookup(key)
	if v == "" {
		return
	}
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}
