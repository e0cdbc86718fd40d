// Package config provides configuration management and environment variable handling for the application
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Lead storage backends
const (
	BackendShards   = "shards"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Writer lock providers
const (
	LockMemory = "memory"
	LockRedis  = "redis"
)

// Config holds all configuration of the lead tracker
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Lock     LockConfig     `yaml:"lock"`
	JWT      JWTConfig      `yaml:"jwt"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"15s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" env-default:"30s"`
	// BodyLimit bounds lead uploads, in bytes
	BodyLimit      int      `yaml:"body_limit" env:"SERVER_BODY_LIMIT" env-default:"33554432"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS" env-separator:","`
}

// Address is the listen address of the HTTP server
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type StorageConfig struct {
	DataDir     string `yaml:"data_dir" env:"STORAGE_DATA_DIR" env-default:"./data"`
	ShardFormat string `yaml:"shard_format" env:"STORAGE_SHARD_FORMAT" env-default:"xlsx"`
	LeadBackend string `yaml:"lead_backend" env:"STORAGE_LEAD_BACKEND" env-default:"shards"`
	ReadWorkers int    `yaml:"read_workers" env:"STORAGE_READ_WORKERS" env-default:"4"`
	// WatchShards logs shard files changed outside this process
	WatchShards bool          `yaml:"watch_shards" env:"STORAGE_WATCH_SHARDS" env-default:"true"`
	WatchGrace  time.Duration `yaml:"watch_grace" env:"STORAGE_WATCH_GRACE" env-default:"2s"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"DB_PORT" env-default:"5432"`
	Name            string        `yaml:"name" env:"DB_NAME" env-default:"lead_connect"`
	User            string        `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string        `yaml:"password" env:"DB_PASSWORD"`
	SSLMode         string        `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"DB_CONN_MAX_IDLE_TIME" env-default:"10m"`
}

// DSN is the postgres connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type SQLiteConfig struct {
	Path string `yaml:"path" env:"SQLITE_PATH" env-default:"./data/leads.db"`
}

type LockConfig struct {
	Provider string        `yaml:"provider" env:"LOCK_PROVIDER" env-default:"memory"`
	RedisURL string        `yaml:"redis_url" env:"LOCK_REDIS_URL" env-default:"redis://localhost:6379/0"`
	Key      string        `yaml:"key" env:"LOCK_KEY" env-default:"lead-connect:store"`
	TTL      time.Duration `yaml:"ttl" env:"LOCK_TTL" env-default:"30s"`
	WaitFor  time.Duration `yaml:"wait_for" env:"LOCK_WAIT_FOR" env-default:"10s"`
}

type JWTConfig struct {
	SecretKey      string        `yaml:"secret_key" env:"JWT_SECRET_KEY"`
	PrivateKey     string        `yaml:"private_key" env:"JWT_PRIVATE_KEY"` // RSA private key in PEM format
	PublicKey      string        `yaml:"public_key" env:"JWT_PUBLIC_KEY"`   // RSA public key in PEM format
	UseRSAKeys     bool          `yaml:"use_rsa_keys" env:"JWT_USE_RSA_KEYS" env-default:"false"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"JWT_ACCESS_TOKEN_TTL" env-default:"12h"`
	Issuer         string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"lead-connect"`
	Audience       string        `yaml:"audience" env:"JWT_AUDIENCE" env-default:"lead-connect-api"`
}

type LoggingConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`      // debug, info, warn, error
	Format     string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`    // json, console
	Output     string `yaml:"output" env:"LOG_OUTPUT" env-default:"stdout"`  // stdout, file, both
	FilePath   string `yaml:"file_path" env:"LOG_FILE_PATH" env-default:"./logs/lead-connect.log"`
	MaxSize    int    `yaml:"max_size" env:"LOG_MAX_SIZE" env-default:"100"` // MB
	MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS" env-default:"5"`
	MaxAge     int    `yaml:"max_age" env:"LOG_MAX_AGE" env-default:"30"` // days
	Compress   bool   `yaml:"compress" env:"LOG_COMPRESS" env-default:"true"`

	EnableCaller     bool `yaml:"enable_caller" env:"LOG_ENABLE_CALLER" env-default:"true"`
	EnableStacktrace bool `yaml:"enable_stacktrace" env:"LOG_ENABLE_STACKTRACE" env-default:"false"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Path    string `yaml:"path" env:"METRICS_PATH" env-default:"/metrics"`
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults. The file is CONFIG_PATH, or ./config.yaml when it exists.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "SERVER_PORT must be between 1 and 65535")
	}
	if c.Server.BodyLimit <= 0 {
		problems = append(problems, "SERVER_BODY_LIMIT must be positive")
	}

	if strings.TrimSpace(c.Storage.DataDir) == "" {
		problems = append(problems, "STORAGE_DATA_DIR is required")
	}
	switch c.Storage.ShardFormat {
	case "xlsx", "csv":
	default:
		problems = append(problems, "STORAGE_SHARD_FORMAT must be xlsx or csv")
	}
	switch c.Storage.LeadBackend {
	case BackendShards:
	case BackendSQLite:
		if c.SQLite.Path == "" {
			problems = append(problems, "SQLITE_PATH is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.Database.Host == "" {
			problems = append(problems, "DB_HOST is required for the postgres backend")
		}
		if c.Database.Name == "" {
			problems = append(problems, "DB_NAME is required for the postgres backend")
		}
		if c.Database.User == "" {
			problems = append(problems, "DB_USER is required for the postgres backend")
		}
	default:
		problems = append(problems, "STORAGE_LEAD_BACKEND must be shards, sqlite or postgres")
	}
	if c.Storage.ReadWorkers < 1 {
		problems = append(problems, "STORAGE_READ_WORKERS must be at least 1")
	}

	switch c.Lock.Provider {
	case LockMemory:
	case LockRedis:
		if c.Lock.RedisURL == "" {
			problems = append(problems, "LOCK_REDIS_URL is required for the redis lock")
		}
		if c.Lock.TTL <= 0 {
			problems = append(problems, "LOCK_TTL must be positive")
		}
	default:
		problems = append(problems, "LOCK_PROVIDER must be memory or redis")
	}

	if c.JWT.UseRSAKeys {
		if c.JWT.PrivateKey == "" || c.JWT.PublicKey == "" {
			problems = append(problems, "JWT_PRIVATE_KEY and JWT_PUBLIC_KEY are required when JWT_USE_RSA_KEYS is set")
		}
	} else if len(c.JWT.SecretKey) < 32 {
		problems = append(problems, "JWT_SECRET_KEY must be at least 32 characters long")
	}
	if c.JWT.AccessTokenTTL <= 0 {
		problems = append(problems, "JWT_ACCESS_TOKEN_TTL must be positive")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, "LOG_LEVEL must be debug, info, warn or error")
	}
	switch c.Logging.Output {
	case "stdout", "file", "both":
	default:
		problems = append(problems, "LOG_OUTPUT must be stdout, file or both")
	}

	if len(problems) > 0 {
		return errors.New("configuration validation failed:\n  - " + strings.Join(problems, "\n  - "))
	}
	return nil
}
