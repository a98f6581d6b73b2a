package main

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"deposit-telegram/config"
	"deposit-telegram/db"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Migrations are embedded so `deposit-telegram migrate` works regardless of
// the working directory.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

func applyMigrations(cfg *config.Config, verbose bool) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	// The pgx/v5 migrate driver registers under the pgx5 scheme.
	url := strings.Replace(db.DSN(cfg.DB), "postgres://", "pgx5://", 1)
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("open migrator: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		if verbose {
			fmt.Println("Schema already up to date.")
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if verbose {
		fmt.Println("Migrations applied.")
	}
	return nil
}
