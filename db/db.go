package db

import (
	"context"
	"fmt"

	"deposit-telegram/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

func Init(cfg config.DBConfig) error {
	var err error
	Pool, err = pgxpool.New(context.Background(), DSN(cfg))
	return err
}

// DSN builds the postgres connection string used by both the pool and the
// migration runner.
func DSN(cfg config.DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, sslMode,
	)
}

func Close() {
	if Pool != nil {
		Pool.Close()
	}
}
