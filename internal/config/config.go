// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads warden configuration from a YAML file layered under
// command-line flags.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"

	"github.com/holomush/warden/internal/access"
	"github.com/holomush/warden/internal/auth"
	"github.com/holomush/warden/internal/i18n"
	"github.com/holomush/warden/internal/logging"
	"github.com/holomush/warden/internal/password"
	"github.com/holomush/warden/internal/xdg"
)

// Config is the complete warden configuration.
type Config struct {
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Directory DirectoryConfig `koanf:"directory"`
	Password  PasswordConfig  `koanf:"password"`
	Lockout   LockoutConfig   `koanf:"lockout"`
	Locale    string          `koanf:"locale"`

	// Permissions maps role names or IDs to permission patterns. Empty
	// means access.DefaultPermissions.
	Permissions map[string][]string `koanf:"permissions"`
}

// LogConfig configures logging.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// MetricsConfig configures the observability server. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// DirectoryConfig selects where users, roles and groups come from. Exactly
// one source must be set.
type DirectoryConfig struct {
	File        string `koanf:"file"`
	DatabaseURL string `koanf:"database_url"`
}

// PasswordConfig configures hashing and the password policy.
type PasswordConfig struct {
	Algorithm   string          `koanf:"algorithm"`
	Constraints []password.Spec `koanf:"constraints"`
}

// LockoutConfig configures failed-attempt lockout. A threshold of 0
// disables it.
type LockoutConfig struct {
	Threshold int           `koanf:"threshold"`
	Duration  time.Duration `koanf:"duration"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Format: "json", Level: "info"},
		Metrics: MetricsConfig{Addr: "127.0.0.1:9100"},
		Password: PasswordConfig{
			Algorithm: password.AlgorithmSHA512,
			Constraints: []password.Spec{
				{Kind: password.KindMinLength, Value: 8},
			},
		},
		Lockout: LockoutConfig{Threshold: auth.LockoutThreshold, Duration: auth.LockoutDuration},
		Locale:  i18n.Default.String(),
	}
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"log-format":         "log.format",
	"log-level":          "log.level",
	"metrics-addr":       "metrics.addr",
	"directory":          "directory.file",
	"database-url":       "directory.database_url",
	"password-algorithm": "password.algorithm",
	"lockout-threshold":  "lockout.threshold",
	"lockout-duration":   "lockout.duration",
	"locale":             "locale",
}

// RegisterFlags adds the flags that override configuration keys.
func RegisterFlags(fs *pflag.FlagSet) {
	def := Default()
	fs.String("log-format", def.Log.Format, "log format (json|text)")
	fs.String("log-level", def.Log.Level, "log level (debug|info|warn|error)")
	fs.String("metrics-addr", def.Metrics.Addr, "metrics listen address, empty to disable")
	fs.String("directory", "", "directory document (YAML)")
	fs.String("database-url", "", "PostgreSQL URL of the identity database")
	fs.String("password-algorithm", def.Password.Algorithm, "password hash algorithm (sha512|argon2id)")
	fs.Int("lockout-threshold", def.Lockout.Threshold, "consecutive failures before lockout, 0 to disable")
	fs.Duration("lockout-duration", def.Lockout.Duration, "lockout duration")
	fs.String("locale", def.Locale, "default display locale")
}

// Load reads the configuration. An empty path means the XDG default, which
// may be absent; an explicit path must exist. Flags that were set on the
// command line override file values. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		p, err := xdg.ConfigFile()
		if err != nil {
			return nil, oops.Code("CONFIG_PATH_FAILED").Wrap(err)
		}
		path = p
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !isNotExist(path) {
			return nil, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_DECODE_FAILED").With("path", path).Wrap(err)
	}
	if cfg.Directory.File == "" && cfg.Directory.DatabaseURL == "" {
		// Fall back to the XDG data directory; Validate reports it if unknown.
		cfg.Directory.File, _ = xdg.DirectoryFile() //nolint:errcheck // empty on failure
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isNotExist(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, fs.ErrNotExist)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "json", "text":
	default:
		return oops.Code("CONFIG_INVALID").
			With("key", "log.format").
			With("value", c.Log.Format).
			Errorf("log format must be json or text")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return oops.Code("CONFIG_INVALID").With("key", "log.level").Wrap(err)
	}

	hasFile := strings.TrimSpace(c.Directory.File) != ""
	hasDB := strings.TrimSpace(c.Directory.DatabaseURL) != ""
	switch {
	case hasFile && hasDB:
		return oops.Code("CONFIG_INVALID").
			With("key", "directory").
			Errorf("directory.file and directory.database_url are mutually exclusive")
	case !hasFile && !hasDB:
		return oops.Code("CONFIG_INVALID").
			With("key", "directory").
			Errorf("one of directory.file or directory.database_url is required")
	}

	if _, err := c.Hashers(); err != nil {
		return oops.Code("CONFIG_INVALID").With("key", "password.algorithm").Wrap(err)
	}
	if _, err := c.Constraints(); err != nil {
		return oops.Code("CONFIG_INVALID").With("key", "password.constraints").Wrap(err)
	}
	if _, err := c.NewLockout(); err != nil {
		return oops.Code("CONFIG_INVALID").With("key", "lockout").Wrap(err)
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return oops.Code("CONFIG_INVALID").
			With("key", "locale").
			With("value", c.Locale).
			Wrap(err)
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() slog.Level {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// Hashers returns the password hashers with the configured default.
func (c *Config) Hashers() (*password.Hashers, error) {
	return password.NewBuiltinHashers(c.Password.Algorithm) //nolint:wrapcheck // oops error
}

// Constraints returns the configured password policy.
func (c *Config) Constraints() (password.ConstraintList, error) {
	return password.ParseConstraintList(c.Password.Constraints) //nolint:wrapcheck // oops error
}

// NewLockout returns a lockout built from the configuration.
func (c *Config) NewLockout() (*auth.Lockout, error) {
	return auth.NewLockout(c.Lockout.Threshold, c.Lockout.Duration) //nolint:wrapcheck // oops error
}

// RolePermissions returns the configured permissions or the built-in defaults.
func (c *Config) RolePermissions() map[string][]string {
	if len(c.Permissions) == 0 {
		return access.DefaultPermissions()
	}
	return c.Permissions
}

// LocaleTag returns the configured display locale.
func (c *Config) LocaleTag() language.Tag {
	return i18n.Parse(c.Locale)
}
