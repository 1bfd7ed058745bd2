// Package config loads rtmsign settings from a YAML file, dotenv files and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/oktsec/rtmsign/internal/safefile"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "rtmsign.yaml"

// DefaultMasterKeyEnv names the variable holding the master key.
const DefaultMasterKeyEnv = "RTM_MASTER_KEY"

// Config is the top-level rtmsign configuration. Every field can be
// overridden by a command-line flag.
type Config struct {
	AppID        string `yaml:"app_id"`
	ClientID     string `yaml:"client_id"`
	MasterKey    string `yaml:"master_key,omitempty"`
	MasterKeyEnv string `yaml:"master_key_env"`
	Output       string `yaml:"output"`    // debug or command
	LogLevel     string `yaml:"log_level"` // debug, info, warn, error
	Trace        bool   `yaml:"trace"`
}

// Defaults returns a config with sensible defaults.
func Defaults() *Config {
	return &Config{
		MasterKeyEnv: DefaultMasterKeyEnv,
		Output:       "debug",
		LogLevel:     "warn",
	}
}

// Load reads and parses a config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := safefile.ReadSecret(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Apply zero-value defaults after unmarshal
	if cfg.MasterKeyEnv == "" {
		cfg.MasterKeyEnv = DefaultMasterKeyEnv
	}
	if cfg.Output == "" {
		cfg.Output = "debug"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	return cfg, nil
}

// LoadOrDefault loads path, falling back to defaults when path is the
// default location and no file exists there.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	return nil, err
}

// Save writes the config to a YAML file at the given path. The file is
// created owner-only since it may hold the master key.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks that the config is consistent.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Output) {
	case "debug", "command", "cmd":
	default:
		return fmt.Errorf("invalid output %q (want debug or command)", c.Output)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MasterKeyEnv != "" && strings.ContainsAny(c.MasterKeyEnv, "= \t") {
		return fmt.Errorf("invalid master_key_env %q", c.MasterKeyEnv)
	}
	return nil
}

// ResolveMasterKey returns the master key from the environment variable
// named by MasterKeyEnv, falling back to the key in the file.
func (c *Config) ResolveMasterKey() string {
	if c.MasterKeyEnv != "" {
		if v := os.Getenv(c.MasterKeyEnv); v != "" {
			return v
		}
	}
	return c.MasterKey
}

// ParseLevel maps a log level name onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelWarn, fmt.Errorf("invalid log_level %q", s)
}

// LoadEnv reads dotenv files into the process environment. Missing files are
// skipped and variables that are already set win.
func LoadEnv(files ...string) error {
	for _, f := range files {
		data, err := safefile.ReadSecret(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", f, err)
		}
		vars, err := godotenv.Unmarshal(string(data))
		if err != nil {
			return fmt.Errorf("parsing %s: %w", f, err)
		}
		for k, v := range vars {
			if _, ok := os.LookupEnv(k); ok {
				continue
			}
			if err := os.Setenv(k, v); err != nil {
				return fmt.Errorf("setting %s: %w", k, err)
			}
		}
	}
	return nil
}
