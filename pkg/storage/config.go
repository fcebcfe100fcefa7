package storage

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
)

// MaxListCap bounds the number of blobs returned by a single List call.
const MaxListCap int32 = 500

const (
	defaultContainer   = "drafts"
	defaultMaxListSize = 50
)

// Container names are 3-63 characters of lowercase letters, digits and single
// hyphens, starting and ending with a letter or digit.
var containerName = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9]|-[a-z0-9]){2,62}$`)

// Config describes the blob container holding rendered email drafts.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	MaxListSize      int32  `toml:"max_list_size"`
}

// Env names the environment variables that override Config fields.
type Env struct {
	ContainerName    string
	ConnectionString string
	MaxListSize      string
}

// Finalize fills defaults, applies env overrides, clamps the list size and validates.
func (c *Config) Finalize(env *Env) error {
	if c.ContainerName == "" {
		c.ContainerName = defaultContainer
	}
	if c.MaxListSize <= 0 {
		c.MaxListSize = defaultMaxListSize
	}

	if env != nil {
		c.loadEnv(env)
	}

	c.MaxListSize = min(c.MaxListSize, MaxListCap)
	return c.validate()
}

// Merge copies the non-zero fields of overlay onto c.
func (c *Config) Merge(overlay *Config) {
	if v := overlay.ContainerName; v != "" {
		c.ContainerName = v
	}
	if v := overlay.ConnectionString; v != "" {
		c.ConnectionString = v
	}
	if v := overlay.MaxListSize; v != 0 {
		c.MaxListSize = v
	}
}

func (c *Config) loadEnv(env *Env) {
	lookup := func(name string) string {
		if name == "" {
			return ""
		}
		return os.Getenv(name)
	}

	if v := lookup(env.ContainerName); v != "" {
		c.ContainerName = v
	}
	if v := lookup(env.ConnectionString); v != "" {
		c.ConnectionString = v
	}
	if v := lookup(env.MaxListSize); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil && n > 0 {
			c.MaxListSize = int32(n)
		}
	}
}

func (c *Config) validate() error {
	if c.ConnectionString == "" {
		return fmt.Errorf("connection_string required")
	}
	if len(c.ContainerName) > 63 || !containerName.MatchString(c.ContainerName) {
		return fmt.Errorf("invalid container_name %q", c.ContainerName)
	}
	return nil
}
