// Package config loads squeezer settings from a YAML file and SQUEEZER_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gucorpling/squeezer/internal/logging"
	"github.com/gucorpling/squeezer/internal/runtime"
	"github.com/gucorpling/squeezer/pkg/codec"
	"github.com/gucorpling/squeezer/pkg/persistence/middleware"
)

// EnvPrefix is prepended to every environment override, e.g. SQUEEZER_STORE_DIR.
const EnvPrefix = "SQUEEZER"

// Config holds all application configuration.
type Config struct {
	TargetLayer string        `mapstructure:"target_layer"`
	Dedup       string        `mapstructure:"dedup"`
	DedupStrict bool          `mapstructure:"dedup_strict"`
	Workers     int           `mapstructure:"workers"`
	Log         LogConfig     `mapstructure:"log"`
	Store       StoreConfig   `mapstructure:"store"`
	Lock        LockConfig    `mapstructure:"lock"`
	HTTP        HTTPConfig    `mapstructure:"http"`
	Tracing     TracingConfig `mapstructure:"tracing"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StoreConfig struct {
	Kind   string      `mapstructure:"kind"`
	Dir    string      `mapstructure:"dir"`
	Format string      `mapstructure:"format"`
	Redis  RedisConfig `mapstructure:"redis"`

	// EncryptionKey is a base64 AES-256 key. Empty disables encryption at rest.
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
	// Redact lists patterns over "namespace::name" annotation keys masked on save.
	Redact []string `mapstructure:"redact"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LockConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Store kinds.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("target_layer", "")
	v.SetDefault("dedup", string(runtime.DedupAfter))
	v.SetDefault("dedup_strict", false)
	v.SetDefault("workers", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("store.kind", StoreFile)
	v.SetDefault("store.dir", ".squeezer/documents")
	v.SetDefault("store.format", string(codec.FormatJSON))
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", "squeezer:doc:")
	v.SetDefault("store.redis.ttl", "0s")
	v.SetDefault("store.encryption_key", "")
	v.SetDefault("store.fallback_keys", []string{})
	v.SetDefault("store.redact", []string{})
	v.SetDefault("lock.enabled", false)
	v.SetDefault("lock.ttl", "30s")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.sample_rate", 1.0)
}

// Option adjusts how Load resolves values.
type Option func(*viper.Viper) error

// WithFlag lets a command-line flag override key when the flag was set.
func WithFlag(key string, flag *pflag.Flag) Option {
	return func(v *viper.Viper) error {
		if flag == nil {
			return nil
		}
		return v.BindPFlag(key, flag)
	}
}

// Load reads configuration from defaults, the optional file at path,
// the environment and bound flags, in increasing precedence.
func Load(path string, opts ...Option) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("binding flag: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	var errs []error
	if _, err := runtime.ParseDedupStage(c.Dedup); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Store.Kind {
	case StoreFile, StoreRedis, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store kind %q", c.Store.Kind))
	}
	if c.Store.Format != "" {
		if _, err := codec.ParseFormat(c.Store.Format); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Store.EncryptionKey != "" {
		if _, err := middleware.ParseKey(c.Store.EncryptionKey); err != nil {
			errs = append(errs, fmt.Errorf("store.encryption_key: %w", err))
		}
	}
	for i, k := range c.Store.FallbackKeys {
		if _, err := middleware.ParseKey(k); err != nil {
			errs = append(errs, fmt.Errorf("store.fallback_keys[%d]: %w", i, err))
		}
	}
	if c.Lock.Enabled && c.Store.Kind != StoreRedis {
		errs = append(errs, errors.New("lock.enabled requires store.kind=redis"))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_rate %.2f is outside [0, 1]", c.Tracing.SampleRate))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
