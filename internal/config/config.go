// Package config holds the compiler configuration: the runtime names behind
// emitter capabilities and the CLI's output preferences.
package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mth/yeti-sub001/internal/codegen"
)

// EnvConfig names the configuration file used when no path is given.
const EnvConfig = "CASEC_CONFIG"

// Config holds configuration for the case compiler.
type Config struct {
	// Runtime maps capabilities and value shapes to target runtime names.
	// Entries left empty keep their defaults.
	Runtime codegen.Runtime `yaml:"runtime"`

	// LogLevel is one of debug, info, warn or error.
	// Defaults to warn
	LogLevel string `yaml:"log_level"`

	// Listing controls what the compile command prints: "code" for the
	// instruction listing alone, "full" to add the case type and sealed variants.
	// Defaults to code
	Listing string `yaml:"listing"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Runtime:  codegen.DefaultRuntime(),
		LogLevel: "warn",
		Listing:  "code",
	}
}

// Load reads the YAML file at path over the defaults. An empty path falls back
// to $CASEC_CONFIG, and to the defaults alone when that is unset too.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes a YAML configuration over the defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decoding yaml")
	}
	def := DefaultConfig()
	cfg.Runtime = cfg.Runtime.Merge(def.Runtime)
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.Listing == "" {
		cfg.Listing = def.Listing
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	switch cfg.Listing {
	case "code", "full":
	default:
		return nil, errors.Errorf("unknown listing mode %q", cfg.Listing)
	}
	return &cfg, nil
}

// Level converts LogLevel to a slog level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, errors.Errorf("unknown log level %q", c.LogLevel)
	}
	return level, nil
}
