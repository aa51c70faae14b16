// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads msgboard configuration. Sources are applied in order,
// later ones winning: built-in defaults, an optional YAML file, MSGBOARD_*
// environment variables and finally command-line flags the user actually set.
package config

import (
	"time"

	"github.com/samber/oops"

	"github.com/holomush/msgboard/internal/auth"
	"github.com/holomush/msgboard/internal/logging"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MSGBOARD_"

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// EnvProduction is the env value that turns on secure cookies by default.
const EnvProduction = "production"

// Config is the complete runtime configuration.
type Config struct {
	Env      string         `koanf:"env" env:"ENV"`
	HTTP     HTTPConfig     `koanf:"http" envPrefix:"HTTP_"`
	Metrics  MetricsConfig  `koanf:"metrics" envPrefix:"METRICS_"`
	Storage  StorageConfig  `koanf:"storage" envPrefix:"STORAGE_"`
	Session  SessionConfig  `koanf:"session" envPrefix:"SESSION_"`
	Password PasswordConfig `koanf:"password" envPrefix:"PASSWORD_"`
	Log      LogConfig      `koanf:"log" envPrefix:"LOG_"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr              string        `koanf:"addr" env:"ADDR"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" env:"READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// MetricsConfig configures the observability listener. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr" env:"ADDR"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Driver         string `koanf:"driver" env:"DRIVER"`
	PostgresDSN    string `koanf:"postgres_dsn" env:"POSTGRES_DSN"`
	MongoURI       string `koanf:"mongo_uri" env:"MONGO_URI"`
	MongoDatabase  string `koanf:"mongo_database" env:"MONGO_DATABASE"`
	ConnectRetries uint64 `koanf:"connect_retries" env:"CONNECT_RETRIES"`
	AutoMigrate    bool   `koanf:"auto_migrate" env:"AUTO_MIGRATE"`
}

// SessionConfig configures the session cookie and lifetime.
type SessionConfig struct {
	CookieName string        `koanf:"cookie_name" env:"COOKIE_NAME"`
	TTL        time.Duration `koanf:"ttl" env:"TTL"`
	// Secure is nil unless set explicitly; see SecureCookies.
	Secure *bool `koanf:"secure" env:"SECURE"`
}

// PasswordConfig selects the password hashing algorithm and cost.
type PasswordConfig struct {
	Algorithm string `koanf:"algorithm" env:"ALGORITHM"`
	Cost      int    `koanf:"cost" env:"COST"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Format string `koanf:"format" env:"FORMAT"`
	Level  string `koanf:"level" env:"LEVEL"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":3000",
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Metrics: MetricsConfig{Addr: "127.0.0.1:9100"},
		Storage: StorageConfig{
			Driver:         DriverPostgres,
			MongoURI:       "mongodb://127.0.0.1:27017",
			MongoDatabase:  "message-board",
			ConnectRetries: 5,
		},
		Session: SessionConfig{
			CookieName: "msgboard.sid",
			TTL:        auth.DefaultSessionTTL,
		},
		Password: PasswordConfig{
			Algorithm: auth.AlgorithmBcrypt,
			Cost:      auth.DefaultBcryptCost,
		},
		Log: LogConfig{Format: "json", Level: "info"},
	}
}

// SecureCookies reports whether the session cookie carries the Secure
// attribute: the explicit setting when present, otherwise true only in
// production.
func (c *Config) SecureCookies() bool {
	if c.Session.Secure != nil {
		return *c.Session.Secure
	}
	return c.Env == EnvProduction
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Storage.PostgresDSN == "" {
			return invalid("storage.postgres_dsn is required for the postgres driver")
		}
	case DriverMongo:
		if c.Storage.MongoURI == "" {
			return invalid("storage.mongo_uri is required for the mongo driver")
		}
		if c.Storage.MongoDatabase == "" {
			return invalid("storage.mongo_database is required for the mongo driver")
		}
	case DriverMemory:
	default:
		return invalid("storage.driver must be one of postgres, mongo or memory, got %q", c.Storage.Driver)
	}

	if c.HTTP.Addr == "" {
		return invalid("http.addr is required")
	}
	if c.Session.CookieName == "" {
		return invalid("session.cookie_name is required")
	}
	if c.Session.TTL <= 0 {
		return invalid("session.ttl must be positive, got %s", c.Session.TTL)
	}

	if _, err := auth.NewPasswordHasher(c.Password.Algorithm, c.Password.Cost); err != nil {
		return oops.Code(CodeInvalid).With("key", "password").Wrap(err)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return invalid("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return oops.Code(CodeInvalid).With("key", "log.level").Wrap(err)
	}
	return nil
}

// CodeInvalid marks configuration errors.
const CodeInvalid = "CONFIG_INVALID"

func invalid(format string, args ...any) error {
	return oops.Code(CodeInvalid).Errorf(format, args...)
}
