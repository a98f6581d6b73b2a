package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DB        DBConfig
	Telegram  TelegramConfig
	RateLimit RateLimitConfig
	Intake    IntakeConfig
	Payments  PaymentsConfig
	Sheets    SheetsConfig
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type TelegramConfig struct {
	Token string
}

type RateLimitConfig struct {
	Cooldown time.Duration // minimum interval between accepted submissions
	DailyCap int           // accepted submissions per calendar day
}

type IntakeConfig struct {
	ProofTimeout time.Duration // how long to wait for the proof upload
	MaxFileSize  int64         // bytes
}

type PaymentsConfig struct {
	ProviderToken string // may also be set at runtime via bot settings
	Currency      string
}

type SheetsConfig struct {
	CredentialsFile string
	SpreadsheetID   string
	SheetName       string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))

	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "deposit"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Telegram: TelegramConfig{
			Token: getEnv("TOKEN", ""),
		},
		RateLimit: RateLimitConfig{
			Cooldown: getEnvDuration("SUBMIT_COOLDOWN", time.Minute),
			DailyCap: getEnvInt("MAX_APPLICATIONS_PER_DAY", 3),
		},
		Intake: IntakeConfig{
			ProofTimeout: getEnvDuration("PROOF_TIMEOUT", 15*time.Minute),
			MaxFileSize:  int64(getEnvInt("MAX_FILE_SIZE", 10485760)),
		},
		Payments: PaymentsConfig{
			ProviderToken: getEnv("PAYMENT_PROVIDER_TOKEN", ""),
			Currency:      getEnv("PAYMENT_CURRENCY", "USD"),
		},
		Sheets: SheetsConfig{
			CredentialsFile: getEnv("SHEETS_CREDENTIALS_FILE", ""),
			SpreadsheetID:   getEnv("SHEETS_SPREADSHEET_ID", ""),
			SheetName:       getEnv("SHEETS_SHEET_NAME", "Applications"),
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}
