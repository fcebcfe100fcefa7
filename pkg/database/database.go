// Package database provides the PostgreSQL connection pool backing the
// consultation store, with startup ping and shutdown close hooks.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/consult/pkg/lifecycle"
)

// System manages the connection pool and its lifecycle hooks.
type System interface {
	// Connection returns the underlying connection pool.
	Connection() *sql.DB
	// Start registers the startup ping and shutdown close with lc.
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	target      string
	connTimeout time.Duration
}

// New opens a pgx-backed pool and applies the pool limits from cfg.
// No connection is made until Start's startup hook pings the server.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:        db,
		logger:      logger.With("system", "database", "host", cfg.Host, "name", cfg.Name),
		target:      net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup("database", func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, d.connTimeout)
		defer cancel()

		if err := d.conn.PingContext(pingCtx); err != nil {
			return fmt.Errorf("%w: ping %s: %w", ErrNotReady, d.target, err)
		}

		d.logger.Info("database connection established")
		return nil
	})

	lc.OnShutdown("database", func(ctx context.Context) error {
		if err := d.conn.Close(); err != nil {
			return fmt.Errorf("close: %w", err)
		}

		d.logger.Info("database connection closed")
		return nil
	})

	return nil
}
