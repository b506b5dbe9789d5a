package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// StoreConfig holds all configuration for the document store module.
type StoreConfig struct {
	Driver       string        `env:"STORE_DRIVER" envDefault:"mongo" json:"driver"`
	MongoDBURI   string        `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017" json:"mongodb_uri"`
	DatabaseName string        `env:"DATABASE_NAME" envDefault:"panchayat" json:"database_name"`
	QueryTimeout time.Duration `env:"QUERY_TIMEOUT" envDefault:"10s" json:"query_timeout"`

	Redis RedisConfig `json:"redis"`
	Rules RulesConfig `json:"rules"`
}

// RedisConfig configures the list-result cache. An empty Addr disables it.
type RedisConfig struct {
	Addr      string        `env:"REDIS_ADDR" json:"addr"`
	Password  string        `env:"REDIS_PASSWORD" json:"-"`
	Database  int           `env:"REDIS_DB" envDefault:"0" json:"db"`
	PoolSize  int           `env:"REDIS_POOL_SIZE" envDefault:"10" json:"pool_size"`
	EnableTLS bool          `env:"REDIS_TLS" envDefault:"false" json:"tls"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"30s" json:"cache_ttl"`
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

// RulesConfig holds the CEL expressions guarding reads and writes.
type RulesConfig struct {
	Read  string `env:"READ_RULE" envDefault:"true" json:"read"`
	Write string `env:"WRITE_RULE" envDefault:"auth != null" json:"write"`
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*StoreConfig, error) {
	cfg := &StoreConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load store configuration from environment: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultStoreConfig returns a StoreConfig with default values.
func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		Driver:       DriverMongo,
		MongoDBURI:   "mongodb://localhost:27017",
		DatabaseName: "panchayat",
		QueryTimeout: 10 * time.Second,
		Redis: RedisConfig{
			PoolSize: 10,
			CacheTTL: 30 * time.Second,
		},
		Rules: RulesConfig{
			Read:  "true",
			Write: "auth != null",
		},
	}
}

// Validate normalizes the driver name and checks required fields.
func (c *StoreConfig) Validate() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case DriverMongo:
		if c.MongoDBURI == "" {
			return errors.New("MONGODB_URI is required when STORE_DRIVER=mongo")
		}
		if c.DatabaseName == "" {
			return errors.New("DATABASE_NAME is required when STORE_DRIVER=mongo")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want %q or %q)", c.Driver, DriverMongo, DriverMemory)
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = 10 * time.Second
	}
	if c.Redis.CacheTTL <= 0 {
		c.Redis.CacheTTL = 30 * time.Second
	}
	if strings.TrimSpace(c.Rules.Read) == "" {
		c.Rules.Read = "true"
	}
	if strings.TrimSpace(c.Rules.Write) == "" {
		c.Rules.Write = "auth != null"
	}
	return nil
}
