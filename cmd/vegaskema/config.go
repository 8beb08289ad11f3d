package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	vegaskema "github.com/reoring/vegaskema"
)

// Config holds the CLI configuration sourced from VEGASKEMA_* environment
// variables. Command flags override individual fields.
type Config struct {
	// ── Server ───────────────────────────────────────────────────────────────────
	ListenAddr      string        `env:"LISTEN_ADDR"      envDefault:":8080" validate:"required"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"   validate:"gt=0"`
	CacheSize       int           `env:"CACHE_SIZE"       envDefault:"512"   validate:"min=0"`

	// ── Logging ──────────────────────────────────────────────────────────────────
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`

	// ── Parsing ──────────────────────────────────────────────────────────────────
	JSONDriver string `env:"JSON_DRIVER" envDefault:"go-json" validate:"oneof=go-json gojson encoding/json stdlib"`
	MaxBytes   int64  `env:"MAX_BYTES"   envDefault:"1048576" validate:"min=0"`
	MaxDepth   int    `env:"MAX_DEPTH"   envDefault:"32"      validate:"min=0"`
	// Lang selects issue messages.
	Lang string `env:"LANG" envDefault:"en" validate:"oneof=en ja"`
}

const envPrefix = "VEGASKEMA_"

// Load parses the process environment.
func Load() (*Config, error) {
	return load(env.Options{Prefix: envPrefix})
}

// LoadFrom parses the given environment instead of the process one.
func LoadFrom(environ map[string]string) (*Config, error) {
	return load(env.Options{Prefix: envPrefix, Environment: environ})
}

// LoadFile overlays the variables of a dotenv file on the process
// environment and parses the result. Process variables win.
func LoadFile(path string) (*Config, error) {
	fileEnv, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	merged := fileEnv
	for k, v := range env.ToMap(os.Environ()) {
		merged[k] = v
	}
	return LoadFrom(merged)
}

var validate = validator.New()

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// ParseOpt returns the parse limits configured for this process.
func (c *Config) ParseOpt() vegaskema.ParseOpt {
	return vegaskema.ParseOpt{MaxBytes: c.MaxBytes, MaxDepth: c.MaxDepth}
}

func newLogger(cfg *Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
