package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/consult/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "CONSULT_DB_DSN"

// migrator is the subset of *migrate.Migrate the commands drive.
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Force(version int) error
	Version() (uint, bool, error)
}

type action int

const (
	actionUsage action = iota
	actionVersion
	actionForce
	actionUp
	actionDown
	actionSteps
)

type options struct {
	dsn    string
	action action
	n      int
}

func main() {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	opts := parseFlags(fs, os.Args[1:])

	if opts.action == actionUsage {
		fmt.Fprintln(os.Stderr, "usage: migrate [-dsn <url>] [-up|-down|-steps N|-version|-force N]")
		fs.PrintDefaults()
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	url, err := resolveURL(opts.dsn)
	if err != nil {
		log.Fatalf("resolve database url: %v", err)
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		log.Fatalf("open migration source: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		log.Fatalf("create migrator: %v", err)
	}
	defer m.Close()

	if err := run(m, opts, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// parseFlags reads the command line. When several actions are given the
// first of version, force, up, down, steps wins.
func parseFlags(fs *flag.FlagSet, args []string) options {
	var (
		dsn     = fs.String("dsn", "", "Database URL (default: $CONSULT_DB_DSN, then the resolved database config)")
		up      = fs.Bool("up", false, "Apply all pending migrations")
		down    = fs.Bool("down", false, "Revert all migrations")
		steps   = fs.Int("steps", 0, "Migrate N steps (positive up, negative down)")
		version = fs.Bool("version", false, "Print the current migration version")
		force   = fs.Int("force", -1, "Set the version without migrating, clearing the dirty flag")
	)
	fs.Parse(args)

	forced := false
	fs.Visit(func(f *flag.Flag) {
		forced = forced || f.Name == "force"
	})

	opts := options{dsn: *dsn}
	switch {
	case *version:
		opts.action = actionVersion
	case forced:
		opts.action, opts.n = actionForce, *force
	case *up:
		opts.action = actionUp
	case *down:
		opts.action = actionDown
	case *steps != 0:
		opts.action, opts.n = actionSteps, *steps
	}
	return opts
}

func run(m migrator, opts options, out io.Writer) error {
	switch opts.action {
	case actionVersion:
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Fprintln(out, "version: none")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		fmt.Fprintf(out, "version: %d, dirty: %v\n", v, dirty)
	case actionForce:
		if err := m.Force(opts.n); err != nil {
			return fmt.Errorf("force version %d: %w", opts.n, err)
		}
		fmt.Fprintf(out, "forced to version %d\n", opts.n)
	case actionUp:
		return report(out, m.Up(), "up", "migrations applied")
	case actionDown:
		return report(out, m.Down(), "down", "migrations reverted")
	case actionSteps:
		return report(out, m.Steps(opts.n), "steps", fmt.Sprintf("applied %d migration steps", opts.n))
	}
	return nil
}

func report(out io.Writer, err error, op, done string) error {
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		fmt.Fprintln(out, "no change")
	case err != nil:
		return fmt.Errorf("migrate %s: %w", op, err)
	default:
		fmt.Fprintln(out, done)
	}
	return nil
}

func resolveURL(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}

	db, err := config.LoadDatabase()
	if err != nil {
		return "", err
	}
	return db.URL(), nil
}
