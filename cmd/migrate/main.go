// ==============================================================================
// DATABASE MIGRATION - cmd/migrate/main.go
// ==============================================================================
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"umbra/pkg/config"
	"umbra/pkg/logger"
)

func main() {
	source := flag.String("source", "file://migrations", "migration source URL")
	flag.Parse()

	config.LoadDotEnv()
	cfg := config.Load()
	log := logger.NewWithWriter("umbra-migrate", os.Stdout, cfg.Log.Level)

	if cfg.Database.URL == "" {
		fatal(log, "DATABASE_URL environment variable is required", nil)
	}

	args := flag.Args()
	if len(args) < 1 {
		fatal(log, "Usage: migrate [-source URL] [up|down|version|force VERSION]", nil)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		fatal(log, "Failed to connect to database", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		fatal(log, "Failed to create migration driver", err)
	}

	m, err := migrate.NewWithDatabaseInstance(*source, "postgres", driver)
	if err != nil {
		fatal(log, "Failed to create migrate instance", err)
	}

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fatal(log, "Migration failed", err)
		}
		log.Info("Migrations applied", nil)

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fatal(log, "Migration rollback failed", err)
		}
		log.Info("Migrations rolled back", nil)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			fatal(log, "Failed to get version", err)
		}
		fmt.Printf("Current version: %d (dirty: %t)\n", version, dirty)

	case "force":
		if len(args) < 2 {
			fatal(log, "Usage: migrate force VERSION", nil)
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			fatal(log, "VERSION must be an integer", err)
		}
		if err := m.Force(version); err != nil {
			fatal(log, "Force migration failed", err)
		}
		log.Info("Forced migration version", map[string]interface{}{"version": version})

	default:
		fatal(log, "Unknown command", fmt.Errorf("%s", args[0]))
	}
}

func fatal(log logger.Logger, msg string, err error) {
	fields := map[string]interface{}{}
	if err != nil {
		fields["error"] = err.Error()
	}
	log.Error(msg, fields)
	os.Exit(1)
}
