// Package config loads process-wide defaults from an optional
// ~/.config/spell/config.toml: a default layer tier, a natural-scroll
// polarity and a stdout log level. Load only reads these values; of
// them, cmd/spell-demo passes NaturalScroll on to its widget Config and
// only logs DefaultLayer, and nothing reads LogLevel. WidgetConfig itself stays a plain constructed Go
// struct (internal/surface.Config) — Viper only supplies these
// process-wide knobs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the process-wide default set a widget's construction may
// consult before applying explicit CLI/embedder overrides.
type Config struct {
	// DefaultLayer names a LayerTier: "background", "bottom", "top" or
	// "overlay". surface.NewConfig does not consult it; a Config built
	// without WithLayer uses surface.LayerBackground.
	DefaultLayer string `mapstructure:"default_layer"`

	// NaturalScroll is the WidgetConfig.NaturalScroll default.
	NaturalScroll bool `mapstructure:"natural_scroll"`

	// LogLevel names a stdout log level: "debug", "info" or "warn". Load
	// reads and lowercases it; internal/logging does not consult it.
	LogLevel string `mapstructure:"log_level"`
}

// Default returns the built-in defaults used when no config file exists.
func Default() Config {
	return Config{
		DefaultLayer:  "top",
		NaturalScroll: false,
		LogLevel:      "info",
	}
}

// Load reads ~/.config/spell/config.toml if present, layering it over
// Default(). A missing file is not an error.
func Load() (Config, error) {
	cfg := Default()

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("config: resolve home dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(filepath.Join(home, ".config", "spell"))
	v.SetDefault("default_layer", cfg.DefaultLayer)
	v.SetDefault("natural_scroll", cfg.NaturalScroll)
	v.SetDefault("log_level", cfg.LogLevel)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	return cfg, nil
}
