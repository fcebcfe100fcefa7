// Package infrastructure assembles the shared systems every domain depends on:
// lifecycle coordination, logging, the consultation database, draft storage,
// the mail sender, and the clock used for deadline classification.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/JaimeStill/consult/internal/config"
	"github.com/JaimeStill/consult/pkg/database"
	"github.com/JaimeStill/consult/pkg/lifecycle"
	"github.com/JaimeStill/consult/pkg/mailer"
	"github.com/JaimeStill/consult/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Mailer    mailer.Sender
	Clock     func() time.Time
}

// New wires the shared systems from cfg, logging to stderr. Nothing connects
// until Start registers the lifecycle hooks.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithLogger(cfg, cfg.Log.NewLogger(os.Stderr))
}

// NewWithLogger is New with a caller-supplied logger.
func NewWithLogger(cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{
		Lifecycle: lifecycle.New(logger),
		Logger:    logger,
		Clock:     time.Now,
	}

	var err error
	if infra.Database, err = database.New(&cfg.Database, logger); err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	if infra.Storage, err = storage.New(&cfg.Storage, logger); err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}
	if infra.Mailer, err = mailer.New(&cfg.Email.Mailer, logger); err != nil {
		return nil, fmt.Errorf("mailer init failed: %w", err)
	}

	logger.Debug("infrastructure assembled",
		"database", cfg.Database.Host,
		"container", cfg.Storage.ContainerName,
		"mail_mode", infra.Mailer.Mode(),
	)
	return infra, nil
}

// Start registers the database and storage hooks with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	systems := []struct {
		name  string
		start func(*lifecycle.Coordinator) error
	}{
		{"database", i.Database.Start},
		{"storage", i.Storage.Start},
	}
	for _, s := range systems {
		if err := s.start(i.Lifecycle); err != nil {
			return fmt.Errorf("%s start failed: %w", s.name, err)
		}
	}
	return nil
}
