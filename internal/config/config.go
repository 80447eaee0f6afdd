// Package config loads the campaign execution core's configuration from
// environment variables (with optional .env and YAML-overlay support),
// following the reference repo's Load/LoadFromEnv convention: defaults
// applied after an optional YAML parse, then env vars override everything.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/outreachcore/campaign-engine/internal/logger"
)

// EmailProvider selects the EmailTransport adapter wired at startup.
type EmailProvider string

const (
	ProviderSparkPost EmailProvider = "sparkpost"
	ProviderSES       EmailProvider = "ses"
)

// ReplyMode selects how replies reach the Reply Ingestor.
type ReplyMode string

const (
	ReplyModeWebhook   ReplyMode = "webhook"
	ReplyModeSimulated ReplyMode = "simulated"
)

// Config holds all configuration for the campaign execution core.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Email    EmailConfig    `yaml:"email"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Worker   WorkerConfig   `yaml:"worker"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Auth     AuthConfig     `yaml:"auth"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds the PostgreSQL connection string.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// EmailConfig holds transport wiring: which provider and its credentials.
// FromAddress, FromName and ReplyTo are loaded but not read by any sender:
// the dispatcher sends from the campaign owner's address with no Reply-To.
type EmailConfig struct {
	Provider      EmailProvider `yaml:"provider"`
	SparkPostKey  string        `yaml:"sparkpost_api_key"`
	SESRegion     string        `yaml:"ses_region"`
	FromAddress   string        `yaml:"from_address"`
	FromName      string        `yaml:"from_name"`
	ReplyTo       string        `yaml:"reply_to"`
}

// WebhookConfig holds inbound Basic-auth credentials and the reply mode.
type WebhookConfig struct {
	Username  string    `yaml:"username"`
	Password  string    `yaml:"password"`
	ReplyMode ReplyMode `yaml:"reply_mode"`
}

// WorkerConfig holds dispatcher polling cadence and retry limits.
type WorkerConfig struct {
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	BatchSize           int `yaml:"batch_size"`
	MaxRetryAttempts    int `yaml:"max_retry_attempts"`
}

func (c WorkerConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// RedisConfig holds the optional Redis URL backing the lifecycle
// distributed lock; when empty the lock falls back to Postgres advisory
// locks on the same database connection.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// LoggingConfig holds the ambient structured-logging settings.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII bool   `yaml:"redact_pii"`
}

// AuthConfig holds the secret used to sign session tokens, an external
// collaborator this core never issues itself (see §1 out-of-scope).
type AuthConfig struct {
	SecretKey string `yaml:"secret_key"`
}

// Load reads and parses an optional YAML configuration file, applying
// defaults for anything left unset. A missing path is not an error: the
// zero-value Config with defaults is returned so LoadFromEnv can still
// populate everything from the environment.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Worker.PollIntervalSeconds == 0 {
		cfg.Worker.PollIntervalSeconds = 5
	}
	if cfg.Worker.BatchSize == 0 {
		cfg.Worker.BatchSize = 10
	}
	if cfg.Worker.MaxRetryAttempts == 0 {
		cfg.Worker.MaxRetryAttempts = 3
	}
	if cfg.Webhook.ReplyMode == "" {
		cfg.Webhook.ReplyMode = ReplyModeWebhook
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Email.SESRegion == "" {
		cfg.Email.SESRegion = "us-east-1"
	}
}

// LoadFromEnv loads an optional YAML file via Load, then overrides with
// environment variables, loading a .env file first (no error if missing)
// so secrets can live in .env locally and in real env vars in production.
// Missing optional values are logged as startup warnings rather than
// causing a crash; DATABASE_URL and SECRET_KEY are the only hard
// requirements and return an error if absent.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("config: DATABASE_URL is required")
	}

	if v := os.Getenv("SECRET_KEY"); v != "" {
		cfg.Auth.SecretKey = v
	}
	if cfg.Auth.SecretKey == "" {
		return nil, fmt.Errorf("config: SECRET_KEY is required")
	}

	if v := os.Getenv("EMAIL_PROVIDER"); v != "" {
		cfg.Email.Provider = EmailProvider(v)
	}
	if v := os.Getenv("SPARKPOST_API_KEY"); v != "" {
		cfg.Email.SparkPostKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.Email.SESRegion = v
	}
	if v := os.Getenv("EMAIL_FROM_ADDRESS"); v != "" {
		cfg.Email.FromAddress = v
	}
	if v := os.Getenv("EMAIL_FROM_NAME"); v != "" {
		cfg.Email.FromName = v
	}
	if v := os.Getenv("EMAIL_REPLY_TO"); v != "" {
		cfg.Email.ReplyTo = v
	}

	if v := os.Getenv("WEBHOOK_USERNAME"); v != "" {
		cfg.Webhook.Username = v
	}
	if v := os.Getenv("WEBHOOK_PASSWORD"); v != "" {
		cfg.Webhook.Password = v
	}
	if v := os.Getenv("REPLY_MODE"); v != "" {
		cfg.Webhook.ReplyMode = ReplyMode(v)
	}

	if v := os.Getenv("WORKER_POLL_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Worker.PollIntervalSeconds = n
		}
	}
	if v := os.Getenv("WORKER_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Worker.BatchSize = n
		}
	}
	if v := os.Getenv("MAX_RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Worker.MaxRetryAttempts = n
		}
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_REDACT_PII"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Logging.RedactPII = b
		}
	} else {
		cfg.Logging.RedactPII = true
	}

	warnOnMissingOptionalConfig(cfg)
	return cfg, nil
}

func warnOnMissingOptionalConfig(cfg *Config) {
	switch cfg.Email.Provider {
	case ProviderSparkPost:
		if cfg.Email.SparkPostKey == "" {
			logger.Warn("config: EMAIL_PROVIDER=sparkpost but SPARKPOST_API_KEY is unset; sends will fail")
		}
	case ProviderSES:
		// SES credentials are resolved by the default AWS credential chain,
		// not a config field; nothing to warn on here.
	case "":
		logger.Warn("config: EMAIL_PROVIDER unset; defaulting transport wiring to the logging/no-op adapter")
	}
	if cfg.Webhook.Username == "" || cfg.Webhook.Password == "" {
		logger.Warn("config: WEBHOOK_USERNAME/WEBHOOK_PASSWORD unset; inbound webhook auth will reject all requests")
	}
	if cfg.Redis.URL == "" {
		logger.Warn("config: REDIS_URL unset; lifecycle lock falls back to PostgreSQL advisory locks")
	}
}
