package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/consult/pkg/database"
	"github.com/JaimeStill/consult/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	// EnvConsultConfig points at the base config file. Overlays are looked up
	// in the same directory.
	EnvConsultConfig          = "CONSULT_CONFIG"
	EnvConsultEnv             = "CONSULT_ENV"
	EnvConsultShutdownTimeout = "CONSULT_SHUTDOWN_TIMEOUT"
	EnvConsultVersion         = "CONSULT_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "CONSULT_DB_HOST",
	Port:            "CONSULT_DB_PORT",
	Name:            "CONSULT_DB_NAME",
	User:            "CONSULT_DB_USER",
	Password:        "CONSULT_DB_PASSWORD",
	SSLMode:         "CONSULT_DB_SSL_MODE",
	MaxOpenConns:    "CONSULT_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "CONSULT_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "CONSULT_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "CONSULT_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "CONSULT_STORAGE_CONTAINER_NAME",
	ConnectionString: "CONSULT_STORAGE_CONNECTION_STRING",
	MaxListSize:      "CONSULT_STORAGE_MAX_LIST_SIZE",
}

// Config is the root configuration for the consultation tracking service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Email           EmailConfig     `toml:"email"`
	API             APIConfig       `toml:"api"`
	Log             LogConfig       `toml:"log"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env names the deployment environment, "local" unless CONSULT_ENV is set.
func (c *Config) Env() string {
	return withDefault(os.Getenv(EnvConsultEnv), "local")
}

// ShutdownTimeoutDuration bounds the lifecycle shutdown hooks as a whole.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return duration(c.ShutdownTimeout)
}

// Load resolves the full service configuration: the base file when present,
// then the CONSULT_ENV overlay, then defaults, env overrides and validation
// for every section. A missing base file is not an error.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	return cfg, nil
}

// LoadDatabase resolves only the database section, for tools such as the
// migrator that need a connection without the service's other settings.
func LoadDatabase() (*database.Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Database.Finalize(databaseEnv); err != nil {
		return nil, fmt.Errorf("finalize database config: %w", err)
	}
	return &cfg.Database, nil
}

// Merge overwrites non-zero fields from overlay across all sections.
func (c *Config) Merge(overlay *Config) {
	mergeString(&c.ShutdownTimeout, overlay.ShutdownTimeout)
	mergeString(&c.Version, overlay.Version)
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Email.Merge(&overlay.Email)
	c.API.Merge(&overlay.API)
	c.Log.Merge(&overlay.Log)
}

func read() (*Config, error) {
	base := withDefault(os.Getenv(EnvConsultConfig), BaseConfigFile)

	cfg := &Config{}
	found, err := decode(base, cfg)
	if err != nil {
		return nil, err
	}
	if !found && os.Getenv(EnvConsultConfig) != "" {
		return nil, fmt.Errorf("config file %s not found", base)
	}

	if env := os.Getenv(EnvConsultEnv); env != "" {
		path := filepath.Join(filepath.Dir(base), fmt.Sprintf(OverlayConfigPattern, env))
		overlay := &Config{}
		found, err := decode(path, overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		if found {
			cfg.Merge(overlay)
		}
	}

	return cfg, nil
}

// decode reads path into cfg, reporting false when the file does not exist.
func decode(path string, cfg *Config) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return false, fmt.Errorf("parse config %s: %w", path, err)
	}
	return true, nil
}

func (c *Config) finalize() error {
	c.ShutdownTimeout = withDefault(c.ShutdownTimeout, "30s")
	c.Version = withDefault(c.Version, "0.1.0")
	mergeString(&c.ShutdownTimeout, os.Getenv(EnvConsultShutdownTimeout))
	mergeString(&c.Version, os.Getenv(EnvConsultVersion))

	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"email", c.Email.Finalize},
		{"api", c.API.Finalize},
		{"log", c.Log.Finalize},
	}
	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}
