// Package config loads acmatch settings with viper.
//
// Settings are layered: built-in defaults, then an optional acmatch.toml
// (or the file named by --config), then ACMATCH_* environment variables,
// then flags bound by the CLI.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/corey/acmatch/internal/domain/scheduler"
)

// EnvPrefix prefixes environment overrides, e.g. ACMATCH_SCAN_WORKERS.
const EnvPrefix = "ACMATCH"

// Config is the effective configuration.
type Config struct {
	DB    string      `mapstructure:"db"`
	Log   LogConfig   `mapstructure:"log"`
	Build BuildConfig `mapstructure:"build"`
	Scan  ScanConfig  `mapstructure:"scan"`

	// File is the config file that was read, empty if none.
	File string `mapstructure:"-"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type BuildConfig struct {
	Cooperative bool          `mapstructure:"cooperative"`
	Budget      time.Duration `mapstructure:"budget"`
}

type ScanConfig struct {
	Workers  int  `mapstructure:"workers"`
	Leftmost bool `mapstructure:"leftmost"`
	Decode   bool `mapstructure:"decode"`
}

// New returns a viper instance holding the defaults for a project root.
func New(root string) *viper.Viper {
	v := viper.New()
	v.SetDefault("db", NewPaths(root).DB)
	v.SetDefault("log.level", "info")
	v.SetDefault("build.cooperative", false)
	v.SetDefault("build.budget", scheduler.DefaultBudget)
	v.SetDefault("scan.workers", 8)
	v.SetDefault("scan.leftmost", false)
	v.SetDefault("scan.decode", true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file (or acmatch.toml under root when file is empty) into v
// and decodes the result. A missing default file is not an error; a
// missing explicit file is.
func Load(v *viper.Viper, root, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("acmatch")
		v.SetConfigType("toml")
		v.AddConfigPath(root)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if cfg.DB != "" && !filepath.IsAbs(cfg.DB) {
		cfg.DB = filepath.Join(root, cfg.DB)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	if c.DB == "" {
		return fmt.Errorf("config: db path is empty")
	}
	if c.Scan.Workers < 1 {
		return fmt.Errorf("config: scan.workers must be at least 1, got %d", c.Scan.Workers)
	}
	if c.Build.Budget < 0 {
		return fmt.Errorf("config: build.budget must not be negative, got %s", c.Build.Budget)
	}
	return nil
}

// BuildOptions converts the build settings into scheduler options.
func (c *Config) BuildOptions() []scheduler.Option {
	if !c.Build.Cooperative {
		return nil
	}
	return []scheduler.Option{scheduler.WithCooperative(c.Build.Budget)}
}
