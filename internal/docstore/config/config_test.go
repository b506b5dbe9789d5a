package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"STORE_DRIVER", "MONGODB_URI", "DATABASE_NAME", "QUERY_TIMEOUT", "REDIS_ADDR", "CACHE_TTL", "READ_RULE", "WRITE_RULE"} {
		unsetEnv(t, key)
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverMongo, cfg.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDBURI)
	assert.Equal(t, "panchayat", cfg.DatabaseName)
	assert.Equal(t, 10*time.Second, cfg.QueryTimeout)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, "true", cfg.Rules.Read)
	assert.Equal(t, "auth != null", cfg.Rules.Write)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", " Memory ")
	t.Setenv("QUERY_TIMEOUT", "3s")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("WRITE_RULE", "auth != null && auth.role == 'admin'")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Driver)
	assert.Equal(t, 3*time.Second, cfg.QueryTimeout)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 2, cfg.Redis.Database)
	assert.Equal(t, time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, "auth != null && auth.role == 'admin'", cfg.Rules.Write)
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "unknown STORE_DRIVER")
}

func TestLoadConfig_BadDuration(t *testing.T) {
	t.Setenv("QUERY_TIMEOUT", "soon")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "failed to load store configuration")
}

func TestDefaultStoreConfig_IsValid(t *testing.T) {
	cfg := DefaultStoreConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DriverMongo, cfg.Driver)
}

func TestNewRedisClient(t *testing.T) {
	client := NewRedisClient(RedisConfig{Addr: "cache.internal:6380", Database: 3, PoolSize: 4, EnableTLS: true})
	defer client.Close()

	opts := client.Options()
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 4, opts.PoolSize)
	require.NotNil(t, opts.TLSConfig)
	assert.Equal(t, "cache.internal", opts.TLSConfig.ServerName)
}

// unsetEnv removes key for the duration of the test. env.Parse treats a
// present-but-empty variable as a value, not as missing.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}
