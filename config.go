package gqltest

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// Config holds settings read from GQLTEST_* environment variables. Only the
// prefixed keys are consulted.
type Config struct {
	// Debug forces debug-level logging. DEBUG=true has the same effect.
	Debug bool `default:"false"`

	// LogLevel is any zerolog level name.
	LogLevel string `split_words:"true" default:"warn"`

	// Metrics toggles the prometheus collectors.
	Metrics bool `default:"true"`
}

// LoadConfig parses the environment.
// Example: GQLTEST_LOG_LEVEL=debug, GQLTEST_METRICS=false
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("GQLTEST", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("invalid GQLTEST_LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	return cfg, nil
}

// Level resolves the effective log level.
func (c Config) Level() zerolog.Level {
	if c.Debug {
		return zerolog.DebugLevel
	}
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.WarnLevel
	}
	return lvl
}

// newLogger returns the default controller logger.
func newLogger(cfg Config) zerolog.Logger {
	return zerolog.New(os.Stderr).With().
		Str("component", "gqltest").
		Timestamp().
		Logger().
		Level(cfg.Level())
}
