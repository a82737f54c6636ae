package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Push     PushConfig     `yaml:"push"`
	Mail     MailConfig     `yaml:"mail"`
	Outbox   OutboxConfig   `yaml:"outbox"`
	Admin    AdminConfig    `yaml:"admin"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration. The pool caps
// are the bound on concurrent request work against the store.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// PushConfig holds the VAPID keys for push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// MailConfig holds outbound mail settings.
type MailConfig struct {
	From       string `yaml:"from"`
	OpsMailbox string `yaml:"ops_mailbox"`
}

// OutboxConfig holds the configuration for the notification outbox workers.
type OutboxConfig struct {
	Workers              int           `yaml:"workers"`
	SweepIntervalSeconds int           `yaml:"sweep_interval_seconds"`
	SweepInterval        time.Duration `yaml:"-"`
	BatchSize            int           `yaml:"batch_size"`
	MaxAttempts          int           `yaml:"max_attempts"`
}

// AdminConfig holds admin-panel behavior settings.
type AdminConfig struct {
	// Timezone is the fixed zone date-range filters are interpreted in.
	Timezone string `yaml:"timezone"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.Outbox.Workers <= 0 {
		log.Printf("outbox.workers is not set or invalid; defaulting to 2")
		cfg.Outbox.Workers = 2
	}
	if cfg.Outbox.SweepIntervalSeconds <= 0 {
		cfg.Outbox.SweepIntervalSeconds = 30
	}
	cfg.Outbox.SweepInterval = time.Duration(cfg.Outbox.SweepIntervalSeconds) * time.Second
	if cfg.Outbox.BatchSize <= 0 {
		cfg.Outbox.BatchSize = 100
	}
	if cfg.Outbox.MaxAttempts <= 0 {
		cfg.Outbox.MaxAttempts = 5
	}

	if cfg.Admin.Timezone == "" {
		cfg.Admin.Timezone = "Asia/Dubai"
	}

	return &cfg, nil
}
