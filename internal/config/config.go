// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

// Package config loads chatter's configuration.
//
// Values are layered, later sources winning: flag defaults, an optional
// YAML file, flags set on the command line, then the DATABASE_URL and
// REDIS_URL environment variables.
package config

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/chatterhq/chatter/internal/auth"
	"github.com/chatterhq/chatter/internal/store"
)

// Session storage backends.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Environment variables that override the DSNs.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvRedisURL    = "REDIS_URL"
)

// Config is the full runtime configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Store    StoreConfig    `koanf:"store"`
	Sessions SessionsConfig `koanf:"sessions"`
	Redis    RedisConfig    `koanf:"redis"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Auth     AuthConfig     `koanf:"auth"`
}

// DatabaseConfig locates PostgreSQL.
type DatabaseConfig struct {
	URL      string `koanf:"url"`
	MaxConns int32  `koanf:"max_conns"`
}

// StoreConfig tunes repository calls.
type StoreConfig struct {
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// SessionsConfig controls session storage and maintenance.
type SessionsConfig struct {
	Backend        string        `koanf:"backend"`
	SweepInterval  time.Duration `koanf:"sweep_interval"`
	CreateAttempts int           `koanf:"create_attempts"`
}

// RedisConfig locates Redis for the redis session backend.
type RedisConfig struct {
	URL    string `koanf:"url"`
	Prefix string `koanf:"prefix"`
}

// LogConfig selects log output.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// MetricsConfig locates the observability endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// AuthConfig tunes credential handling.
type AuthConfig struct {
	Argon2 Argon2Config `koanf:"argon2"`
}

// Argon2Config holds the argon2id cost parameters. Memory is in KiB.
// Existing hashes keep the parameters they were created with.
type Argon2Config struct {
	Time    uint32 `koanf:"time"`
	Memory  uint32 `koanf:"memory"`
	Threads uint8  `koanf:"threads"`
	KeyLen  uint32 `koanf:"key_len"`
}

// Params converts c to the hasher's parameter set.
func (c Argon2Config) Params() auth.HasherParams {
	return auth.HasherParams{
		Time:    c.Time,
		Memory:  c.Memory,
		Threads: c.Threads,
		KeyLen:  c.KeyLen,
	}
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"database-url":            "database.url",
	"database-max-conns":      "database.max_conns",
	"query-timeout":           "store.query_timeout",
	"session-backend":         "sessions.backend",
	"session-sweep-interval":  "sessions.sweep_interval",
	"session-create-attempts": "sessions.create_attempts",
	"redis-url":               "redis.url",
	"redis-prefix":            "redis.prefix",
	"log-format":              "log.format",
	"log-level":               "log.level",
	"metrics-addr":            "metrics.addr",
	"argon2-time":             "auth.argon2.time",
	"argon2-memory":           "auth.argon2.memory",
	"argon2-threads":          "auth.argon2.threads",
	"argon2-key-len":          "auth.argon2.key_len",
}

// RegisterFlags adds every configuration flag to fs with its default.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("database-url", "", "PostgreSQL connection URL (env "+EnvDatabaseURL+")")
	fs.Int32("database-max-conns", 0, "maximum pool connections (0 = driver default)")
	fs.Duration("query-timeout", store.DefaultQueryTimeout, "deadline for each database call (0 = none)")
	fs.String("session-backend", BackendPostgres, "session storage: postgres or redis")
	fs.Duration("session-sweep-interval", auth.DefaultSweepInterval, "how often expired sessions are deleted")
	fs.Int("session-create-attempts", auth.DefaultCreateAttempts, "tokens tried per session before giving up on collisions")
	fs.String("redis-url", "", "Redis URL for the redis session backend (env "+EnvRedisURL+")")
	fs.String("redis-prefix", "chatter", "Redis key prefix")
	fs.String("log-format", "json", "log format (json or text)")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("metrics-addr", "127.0.0.1:9100", "metrics/health HTTP address (empty = disabled)")

	argon := auth.DefaultHasherParams()
	fs.Uint32("argon2-time", argon.Time, "argon2id iterations")
	fs.Uint32("argon2-memory", argon.Memory, "argon2id memory in KiB")
	fs.Uint8("argon2-threads", argon.Threads, "argon2id parallelism")
	fs.Uint32("argon2-key-len", argon.KeyLen, "argon2id hash length in bytes")
}

// Load builds a Config from fs, the YAML file at path (skipped when empty)
// and the environment. fs must have been populated by RegisterFlags and parsed.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrapf(err, "read config file")
		}
	}

	provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").Wrapf(err, "read flags")
	}

	for env, key := range map[string]string{EnvDatabaseURL: "database.url", EnvRedisURL: "redis.url"} {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			if err := k.Set(key, v); err != nil {
				return nil, oops.Code("CONFIG_LOAD_FAILED").With("env", env).Wrap(err)
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	invalid := func(key, format string, args ...any) error {
		return oops.Code("CONFIG_INVALID").With("key", key).Errorf(format, args...)
	}

	if c.Database.URL == "" {
		return invalid("database.url", "database url is required (set %s or --database-url)", EnvDatabaseURL)
	}
	if c.Database.MaxConns < 0 {
		return invalid("database.max_conns", "max_conns must not be negative")
	}
	if c.Store.QueryTimeout < 0 {
		return invalid("store.query_timeout", "query_timeout must not be negative")
	}

	switch c.Sessions.Backend {
	case BackendPostgres:
	case BackendRedis:
		if c.Redis.URL == "" {
			return invalid("redis.url", "redis url is required for the redis session backend (set %s or --redis-url)", EnvRedisURL)
		}
	default:
		return invalid("sessions.backend", "session backend must be %q or %q, got %q", BackendPostgres, BackendRedis, c.Sessions.Backend)
	}
	if c.Sessions.SweepInterval <= 0 {
		return invalid("sessions.sweep_interval", "sweep_interval must be positive")
	}
	if c.Sessions.CreateAttempts < 1 {
		return invalid("sessions.create_attempts", "create_attempts must be at least 1")
	}

	if err := c.Auth.Argon2.Params().Validate(); err != nil {
		return invalid("auth.argon2", "%v", err)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return invalid("log.format", "log format must be 'json' or 'text', got %q", c.Log.Format)
	}
	return nil
}

// Redacted returns a copy of c with credentials removed from the DSNs,
// suitable for logging.
func (c Config) Redacted() Config {
	c.Database.URL = redactURL(c.Database.URL)
	c.Redis.URL = redactURL(c.Redis.URL)
	return c
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable>"
	}
	return u.Redacted()
}
