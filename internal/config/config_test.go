package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.True(t, cfg.Database.Migrate)
	assert.Equal(t, []string{"*"}, cfg.Security.Origins())
	assert.Equal(t, 30*time.Second, cfg.Cache.TTLDuration())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"port": "9090"},
		"database": {"driver": "postgres", "dsn": "postgres://file", "seed": true},
		"events": {"enabled": true, "kafka_brokers": "k1:9092, k2:9092"}
	}`), 0o600))

	t.Setenv("DATABASE_DSN", "postgres://env")
	t.Setenv("CACHE_ENABLED", "1")
	t.Setenv("CACHE_TTL", "5")
	t.Setenv("RATE_LIMIT_RATE", "not-a-number")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.True(t, cfg.Database.Seed)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Cache.TTLDuration())
	assert.Equal(t, 100, cfg.RateLimit.Rate)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.Brokers())
	assert.Equal(t, "price-resolutions", cfg.Events.KafkaTopic)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to load config file")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty port", func(c *Config) { c.Server.Port = "" }, "server port is required"},
		{"tls without files", func(c *Config) { c.Server.EnableTLS = true }, "tls requires"},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, "unsupported database driver"},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }, "database dsn is required"},
		{"zero rate", func(c *Config) { c.RateLimit.Rate = 0 }, "rate limit rate"},
		{"zero window", func(c *Config) { c.RateLimit.Window = 0 }, "rate limit window"},
		{"zero ttl", func(c *Config) { c.Cache.Enabled = true; c.Cache.TTL = 0 }, "cache ttl"},
		{"no topic", func(c *Config) {
			c.Events.Enabled = true
			c.Events.KafkaBrokers = "k:9092"
			c.Events.KafkaTopic = ""
		}, "kafka topic"},
		{"no tracing endpoint", func(c *Config) { c.Tracing.Enabled = true; c.Tracing.Endpoint = "" }, "tracing endpoint"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}
}
