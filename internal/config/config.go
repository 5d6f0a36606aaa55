package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		Port string
	}
	Postgres struct {
		URL            string
		MigrationsPath string
	}
	Auth struct {
		JWTSecret string
	}
	Stripe struct {
		SecretKey string
	}
	Redis struct {
		Addr     string
		Password string
	}
}

// Load reads configuration from the environment, optionally seeding it from a
// .env file first. DATABASE_URL and JWT_SECRET are required; everything else
// has a default or degrades a feature (empty STRIPE_SECRET_KEY selects the
// mock payment processor, empty REDIS_ADDR keeps the realtime hub
// process-local).
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}

	cfg.App.Port = os.Getenv("APP_PORT")
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	cfg.Postgres.URL = os.Getenv("DATABASE_URL")
	if cfg.Postgres.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	cfg.Postgres.MigrationsPath = os.Getenv("MIGRATIONS_PATH")
	if cfg.Postgres.MigrationsPath == "" {
		cfg.Postgres.MigrationsPath = "migrations"
	}

	cfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg.Stripe.SecretKey = os.Getenv("STRIPE_SECRET_KEY")

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")

	return cfg, nil
}
