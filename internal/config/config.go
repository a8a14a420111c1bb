// Package config loads service settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	DBDriver           string
	Storage            string
	RunMigrations      bool
	RabbitMQURL        string
	CORSOrigins        []string
	RateLimitPerMinute int

	MailHost     string
	MailPort     int
	MailUser     string
	MailPassword string
	MailFrom     string
	MailTo       string

	KommoAPIToken string
	KommoBaseURL  string
}

// Load reads the environment. Binaries that need storage call Validate.
func Load() (*Config, error) {
	_ = godotenv.Load()

	mailPort, err := getEnvInt("MAIL_PORT", 587)
	if err != nil {
		return nil, err
	}
	rateLimit, err := getEnvInt("RATE_LIMIT_PER_MINUTE", 60)
	if err != nil {
		return nil, err
	}
	runMigrations, err := getEnvBool("RUN_MIGRATIONS", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DBDriver:           getEnv("DB_DRIVER", "pgx"),
		Storage:            strings.ToLower(getEnv("STORAGE", StoragePostgres)),
		RunMigrations:      runMigrations,
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitPerMinute: rateLimit,

		MailHost:     getEnv("MAIL_HOST", ""),
		MailPort:     mailPort,
		MailUser:     getEnv("MAIL_USER", ""),
		MailPassword: getEnv("MAIL_PASS", ""),
		MailFrom:     getEnv("MAIL_FROM", "nao-responda@liguemedicina.com"),
		MailTo:       getEnv("MAIL_TO", ""),

		KommoAPIToken: getEnv("KOMMO_API_TOKEN", ""),
		KommoBaseURL:  getEnv("KOMMO_BASE_URL", ""),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORAGE=postgres"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Storage))
	}

	if c.DBDriver != "pgx" && c.DBDriver != "postgres" {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be \"pgx\" or \"postgres\", got %q", c.DBDriver))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
