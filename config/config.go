package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Platform PlatformConfig `mapstructure:"platform"`
	Frontend FrontendConfig `mapstructure:"frontend"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GatewayConfig configures the third-party payment gateway client.
type GatewayConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	AccessKey   string        `mapstructure:"access_key"`
	SecretKey   string        `mapstructure:"secret_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
	WebhookPath string        `mapstructure:"webhook_path"` // advertised to the gateway
}

// PlatformConfig points at the platform's internal notification and receipt
// services.
type PlatformConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// FrontendConfig holds the browser redirect targets per final state.
type FrontendConfig struct {
	SuccessURL string `mapstructure:"success_url"`
	RetryURL   string `mapstructure:"retry_url"`
	FailureURL string `mapstructure:"failure_url"`
}

// JobsConfig configures the background poll and side-effect sweep jobs.
type JobsConfig struct {
	// PushWindow is how long the engine waits for a webhook before the poll
	// job queries the gateway itself.
	PushWindow    time.Duration `mapstructure:"push_window"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	BatchSize     int           `mapstructure:"batch_size"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: PRE_ (Payment
// Reconciliation Engine). Nested keys use underscore: PRE_DATABASE_HOST,
// PRE_GATEWAY_SECRET_KEY, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "payments")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("gateway.base_url", "")
	v.SetDefault("gateway.access_key", "")
	v.SetDefault("gateway.secret_key", "")
	v.SetDefault("gateway.timeout", "10s")
	v.SetDefault("gateway.webhook_path", "/api/v1/payments/webhook")
	v.SetDefault("platform.base_url", "http://localhost:8081")
	v.SetDefault("platform.api_key", "")
	v.SetDefault("platform.timeout", "5s")
	v.SetDefault("frontend.success_url", "http://localhost:3000/payment/success")
	v.SetDefault("frontend.retry_url", "http://localhost:3000/payment/retry")
	v.SetDefault("frontend.failure_url", "http://localhost:3000/payment/failure")
	v.SetDefault("jobs.push_window", "3m")
	v.SetDefault("jobs.poll_interval", "1m")
	v.SetDefault("jobs.sweep_interval", "2m")
	v.SetDefault("jobs.batch_size", 100)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: PRE_DATABASE_HOST -> database.host
	v.SetEnvPrefix("PRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
