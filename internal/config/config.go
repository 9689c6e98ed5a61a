package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable the service reads from the environment.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`
	Env  string `env:"SERVICE_ENV" envDefault:"dev"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"postgres"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// RSA key pair for access tokens; HMAC secret for refresh tokens.
	PrivateKeyPath     string `env:"PRIVATE_KEY_PATH" envDefault:"certs/private.pem"`
	PublicKeyPath      string `env:"PUBLIC_KEY_PATH" envDefault:"certs/public.pem"`
	RefreshTokenSecret string `env:"REFRESH_TOKEN_SECRET,required"`

	FrontendURL  string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	CookieDomain string `env:"COOKIE_DOMAIN" envDefault:"localhost"`
}

// Load reads configs/.env when present, then parses the environment.
func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment directly.
	_ = godotenv.Load("configs/.env")

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// DSN assembles the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// IsProduction reports whether the service runs with production hardening.
func (c *Config) IsProduction() bool { return c.Env == "production" }
