// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"env":                "env",
	"http-addr":          "http.addr",
	"metrics-addr":       "metrics.addr",
	"storage-driver":     "storage.driver",
	"postgres-dsn":       "storage.postgres_dsn",
	"mongo-uri":          "storage.mongo_uri",
	"mongo-database":     "storage.mongo_database",
	"auto-migrate":       "storage.auto_migrate",
	"session-ttl":        "session.ttl",
	"password-algorithm": "password.algorithm",
	"password-cost":      "password.cost",
	"log-format":         "log.format",
	"log-level":          "log.level",
}

// RegisterFlags adds the configuration flags to fs. Their defaults are for
// help output only: Load applies a flag only when the user set it.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("env", d.Env, "deployment environment (production enables secure cookies)")
	fs.String("http-addr", d.HTTP.Addr, "API listen address")
	fs.String("metrics-addr", d.Metrics.Addr, "metrics/health HTTP address (empty = disabled)")
	fs.String("storage-driver", d.Storage.Driver, "storage backend: postgres, mongo or memory")
	fs.String("postgres-dsn", "", "PostgreSQL connection string")
	fs.String("mongo-uri", d.Storage.MongoURI, "MongoDB connection URI")
	fs.String("mongo-database", d.Storage.MongoDatabase, "MongoDB database name")
	fs.Bool("auto-migrate", d.Storage.AutoMigrate, "apply schema migrations on startup")
	fs.Duration("session-ttl", d.Session.TTL, "session lifetime")
	fs.String("password-algorithm", d.Password.Algorithm, "password hashing algorithm: bcrypt or argon2id")
	fs.Int("password-cost", d.Password.Cost, "password hashing cost")
	fs.String("log-format", d.Log.Format, "log format (json or text)")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
}

// LoadOptions names the sources Load reads.
type LoadOptions struct {
	// File is an optional YAML file path.
	File string
	// Flags holds flags registered with RegisterFlags; nil skips flags.
	Flags *pflag.FlagSet
	// Environ replaces the process environment when non-nil.
	Environ map[string]string
}

// Load builds a Config from defaults, file, environment and flags, then
// validates it.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.File != "" {
		k := koanf.New(".")
		if err := k.Load(file.Provider(opts.File), yaml.Parser()); err != nil {
			return nil, oops.Code(CodeInvalid).
				With("operation", "load config file").
				With("file", opts.File).
				Wrap(err)
		}
		if err := k.Unmarshal("", &cfg); err != nil {
			return nil, oops.Code(CodeInvalid).
				With("operation", "decode config file").
				With("file", opts.File).
				Wrap(err)
		}
	}

	envOpts := env.Options{Prefix: EnvPrefix}
	if opts.Environ != nil {
		envOpts.Environment = opts.Environ
	}
	if err := env.ParseWithOptions(&cfg, envOpts); err != nil {
		return nil, oops.Code(CodeInvalid).With("operation", "read environment").Wrap(err)
	}

	if opts.Flags != nil {
		if err := applyFlags(&cfg, opts.Flags); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyFlags overlays the flags the user changed.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	k := koanf.New(".")
	provider := posflag.ProviderWithFlag(fs, ".", nil, func(f *pflag.Flag) (string, any) {
		key, known := flagKeys[f.Name]
		if !known || !f.Changed {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	})
	if err := k.Load(provider, nil); err != nil {
		return oops.Code(CodeInvalid).With("operation", "read flags").Wrap(err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return oops.Code(CodeInvalid).With("operation", "decode flags").Wrap(err)
	}
	return nil
}
