package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds all configuration for the auth module.
type Config struct {
	// JWT Configuration. An empty secret disables login and rejects every token.
	JWTSecretKey   string        `env:"JWT_SECRET_KEY"`
	JWTIssuer      string        `env:"JWT_ISSUER" envDefault:"panchayat-docstore"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"12h"`

	// Admin account. The hash is a bcrypt hash of the password.
	AdminUsername     string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
	AdminRole         string `env:"ADMIN_ROLE" envDefault:"admin"`

	// Login rate limit per client IP.
	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"1m"`
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load auth configuration from environment: " + err.Error())
	}

	cfg.AdminUsername = strings.TrimSpace(cfg.AdminUsername)
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "panchayat-docstore"
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, errors.New("ACCESS_TOKEN_TTL must be positive")
	}
	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 10
	}
	if cfg.LoginRateWindow <= 0 {
		cfg.LoginRateWindow = time.Minute
	}
	return cfg, nil
}

// LoginEnabled reports whether tokens can be issued.
func (c *Config) LoginEnabled() bool {
	return c.JWTSecretKey != ""
}
