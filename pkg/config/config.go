// Package config loads settings for the phazer command line tool.
//
// Precedence, lowest to highest: built-in defaults, a .phazer.toml in
// the XDG config directory or the current directory, then PHAZER_*
// environment variables. The library itself takes no configuration;
// everything here governs the demo commands only.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	toml2 "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/phazer/pkg/errors"
	"github.com/arthur-debert/phazer/pkg/phazer"
)

// ConfigFileName is the name of the user configuration file
const ConfigFileName = ".phazer.toml"

// EnvPrefix is the prefix for environment variable overrides
const EnvPrefix = "PHAZER_"

// Config holds all settings for the phazer CLI
type Config struct {
	Commit   CommitConfig   `koanf:"commit" toml:"commit"`
	Download DownloadConfig `koanf:"download" toml:"download"`
	Race     RaceConfig     `koanf:"race" toml:"race"`
}

// CommitConfig selects which commit strategy demo commands use
type CommitConfig struct {
	// Strategy is "simple-rename" or "rename-with-retry"
	Strategy string `koanf:"strategy" toml:"strategy"`
}

// DownloadConfig governs the download command
type DownloadConfig struct {
	TimeoutSeconds int `koanf:"timeout_seconds" toml:"timeout_seconds"`
}

// RaceConfig governs the race command
type RaceConfig struct {
	Contenders int `koanf:"contenders" toml:"contenders"`
}

// Load builds the effective configuration from defaults, an optional
// .phazer.toml, and PHAZER_* environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load default config")
	}

	// 2. User config, first match wins
	for _, path := range configFileCandidates() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path)
			}
			break
		}
	}

	// 3. Environment overrides: PHAZER_COMMIT_STRATEGY, etc.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal config")
	}
	return &cfg, nil
}

func configFileCandidates() []string {
	return []string{
		filepath.Join(xdg.ConfigHome, "phazer", ConfigFileName),
		ConfigFileName,
	}
}

// Render serializes the configuration to TOML, suitable for seeding a
// user's .phazer.toml.
func (c *Config) Render() ([]byte, error) {
	data, err := toml2.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to render config")
	}
	return data, nil
}

// CommitStrategy maps the configured strategy name to its
// implementation.
func (c *Config) CommitStrategy() (phazer.CommitStrategy, error) {
	switch c.Commit.Strategy {
	case "", "simple-rename":
		return phazer.SimpleRename, nil
	case "rename-with-retry":
		return phazer.RenameWithRetry, nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput,
			"unknown commit strategy %q", c.Commit.Strategy)
	}
}
