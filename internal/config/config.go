package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Security  SecurityConfig  `json:"security"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Cache     CacheConfig     `json:"cache"`
	Events    EventsConfig    `json:"events"`
	Tracing   TracingConfig   `json:"tracing"`
	Logging   LoggingConfig   `json:"logging"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port      string `json:"port"`
	Host      string `json:"host"`
	EnableTLS bool   `json:"enable_tls"`
	CertFile  string `json:"cert_file"`
	KeyFile   string `json:"key_file"`
	// Seconds to wait for in-flight requests on shutdown
	ShutdownTimeout int `json:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	// sqlite3 or postgres
	Driver string `json:"driver"`
	// File path for sqlite3, connection URL for postgres
	DSN     string `json:"dsn"`
	Migrate bool   `json:"migrate"`
	// Load the sample price list on startup
	Seed bool `json:"seed"`
}

// SecurityConfig holds security-related configuration.
type SecurityConfig struct {
	// Allowed CORS origins (comma-separated)
	AllowedOrigins string `json:"allowed_origins"`
}

// Origins splits AllowedOrigins.
func (s SecurityConfig) Origins() []string {
	return splitList(s.AllowedOrigins)
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool `json:"enabled"`
	Rate    int  `json:"rate"`
	Window  int  `json:"window"` // in seconds
}

// CacheConfig holds the price cache configuration.
type CacheConfig struct {
	Enabled bool `json:"enabled"`
	// Empty address selects the in-process cache
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
	TTL           int    `json:"ttl"` // in seconds
}

// TTLDuration returns TTL as a duration.
func (c CacheConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// EventsConfig holds resolution event publishing configuration.
type EventsConfig struct {
	Enabled bool `json:"enabled"`
	// Comma-separated broker list; empty disables the Kafka sink
	KafkaBrokers string `json:"kafka_brokers"`
	KafkaTopic   string `json:"kafka_topic"`
}

// Brokers splits KafkaBrokers.
func (e EventsConfig) Brokers() []string {
	return splitList(e.KafkaBrokers)
}

// TracingConfig holds OpenTelemetry configuration.
type TracingConfig struct {
	Enabled     bool   `json:"enabled"`
	Endpoint    string `json:"endpoint"`
	ServiceName string `json:"service_name"`
	Environment string `json:"environment"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Driver:  "sqlite3",
			DSN:     "./prices.db",
			Migrate: true,
			Seed:    false,
		},
		Security: SecurityConfig{
			AllowedOrigins: "*",
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Rate:    100,
			Window:  60,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     30,
		},
		Events: EventsConfig{
			Enabled:    false,
			KafkaTopic: "price-resolutions",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Endpoint:    "http://localhost:14268/api/traces",
			ServiceName: "price-resolution-api",
			Environment: "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from defaults, an optional JSON file and
// environment variables. Environment variables take precedence over file values.
func LoadConfig(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	overrideFromEnv(cfg)

	return cfg, nil
}

// loadFromFile loads configuration from a JSON file.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, cfg)
}

// overrideFromEnv overrides configuration with environment variables.
func overrideFromEnv(cfg *Config) {
	setString(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.Server.Host, "SERVER_HOST")
	setBool(&cfg.Server.EnableTLS, "SERVER_ENABLE_TLS")
	setString(&cfg.Server.CertFile, "SERVER_CERT_FILE")
	setString(&cfg.Server.KeyFile, "SERVER_KEY_FILE")
	setInt(&cfg.Server.ShutdownTimeout, "SERVER_SHUTDOWN_TIMEOUT")

	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Database.DSN, "DATABASE_DSN")
	setBool(&cfg.Database.Migrate, "DATABASE_MIGRATE")
	setBool(&cfg.Database.Seed, "DATABASE_SEED")

	setString(&cfg.Security.AllowedOrigins, "ALLOWED_ORIGINS")

	setBool(&cfg.RateLimit.Enabled, "RATE_LIMIT_ENABLED")
	setInt(&cfg.RateLimit.Rate, "RATE_LIMIT_RATE")
	setInt(&cfg.RateLimit.Window, "RATE_LIMIT_WINDOW")

	setBool(&cfg.Cache.Enabled, "CACHE_ENABLED")
	setString(&cfg.Cache.RedisAddr, "REDIS_ADDR")
	setString(&cfg.Cache.RedisPassword, "REDIS_PASSWORD")
	setInt(&cfg.Cache.RedisDB, "REDIS_DB")
	setInt(&cfg.Cache.TTL, "CACHE_TTL")

	setBool(&cfg.Events.Enabled, "EVENTS_ENABLED")
	setString(&cfg.Events.KafkaBrokers, "KAFKA_BROKERS")
	setString(&cfg.Events.KafkaTopic, "KAFKA_TOPIC")

	setBool(&cfg.Tracing.Enabled, "TRACING_ENABLED")
	setString(&cfg.Tracing.Endpoint, "TRACING_ENDPOINT")
	setString(&cfg.Tracing.ServiceName, "TRACING_SERVICE_NAME")
	setString(&cfg.Tracing.Environment, "TRACING_ENVIRONMENT")

	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func setBool(dst *bool, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = strings.ToLower(value) == "true" || value == "1"
	}
}

func setInt(dst *int, key string) {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			*dst = i
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.EnableTLS && (c.Server.CertFile == "" || c.Server.KeyFile == "") {
		return fmt.Errorf("tls requires both cert_file and key_file")
	}
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Rate <= 0 {
			return fmt.Errorf("rate limit rate must be positive")
		}
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("rate limit window must be positive")
		}
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive")
	}
	if c.Events.Enabled && len(c.Events.Brokers()) > 0 && c.Events.KafkaTopic == "" {
		return fmt.Errorf("kafka topic is required when brokers are set")
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing endpoint is required")
	}
	return nil
}
