package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"deposit-telegram/bot"
	"deposit-telegram/config"
	"deposit-telegram/db"
	"deposit-telegram/logger"
	"deposit-telegram/services"
	"deposit-telegram/sheets"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	debug := false
	if v := strings.TrimSpace(os.Getenv("DEBUG")); v == "1" || strings.EqualFold(v, "true") {
		debug = true
	}
	logger.Init(debug)
	defer logger.Sync()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := applyMigrations(cfg, true); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
		return
	}

	// `deposit-telegram superadmin <user_id>` bootstraps the first role row.
	// It talks only to the database, so no bot token is required.
	if len(os.Args) > 2 && os.Args[1] == "superadmin" {
		userID, err := strconv.ParseInt(os.Args[2], 10, 64)
		if err != nil || userID <= 0 {
			fmt.Fprintln(os.Stderr, "superadmin: invalid user id")
			os.Exit(1)
		}
		if err := db.Init(cfg.DB); err != nil {
			fmt.Fprintln(os.Stderr, "db:", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := services.SeedSuperadmin(context.Background(), userID); err != nil {
			fmt.Fprintln(os.Stderr, "superadmin:", err)
			os.Exit(1)
		}
		fmt.Println("Superadmin seeded:", userID)
		return
	}

	if cfg.Telegram.Token == "" {
		fmt.Fprintln(os.Stderr, "TOKEN not set")
		os.Exit(1)
	}

	// Set AUTO_MIGRATE=1 (or "true") to bring a fresh database up on boot.
	if v := strings.TrimSpace(os.Getenv("AUTO_MIGRATE")); v == "1" || strings.EqualFold(v, "true") {
		if err := applyMigrations(cfg, false); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	}

	if err := db.Init(cfg.DB); err != nil {
		fmt.Fprintln(os.Stderr, "db:", err)
		os.Exit(1)
	}
	defer db.Close()

	services.ConfigureRateLimit(cfg.RateLimit)

	var exporter bot.Exporter
	if exp, err := sheets.New(context.Background(), cfg.Sheets); err == nil {
		exporter = exp
		services.SetMirror(exp)
		logger.L.Infow("spreadsheet mirror enabled", "sheet", cfg.Sheets.SheetName)
	} else {
		logger.L.Infow("spreadsheet mirror disabled", "reason", err)
	}

	b, err := bot.New(cfg, exporter)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bot:", err)
		os.Exit(1)
	}

	logger.L.Infow("bot started")
	b.Start()
}
