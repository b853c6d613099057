// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Play   PlayConfig   `toml:"play"`
	Policy PolicyConfig `toml:"policy"`
	Log    LogConfig    `toml:"log"`
}

// PlayConfig maps input and output settings of the game screen.
type PlayConfig struct {
	Precision  *int     `toml:"precision"`
	CellWidth  *float64 `toml:"cell-width"`
	CellHeight *float64 `toml:"cell-height"`
	ShareDir   *string  `toml:"share-dir"`
}

// PolicyConfig maps the validation policy. Name selects a preset and the
// remaining fields override single thresholds of it.
type PolicyConfig struct {
	Name               *string  `toml:"name"`
	MinRadius          *float64 `toml:"min-radius"`
	MinSweep           *float64 `toml:"min-sweep"`
	MaxSweep           *float64 `toml:"max-sweep"`
	DirectionTolerance *float64 `toml:"direction-tolerance"`
	Violations         *string  `toml:"violations"`
}

// LogConfig maps diagnostics settings.
type LogConfig struct {
	File  *string `toml:"file"`
	Level *string `toml:"level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
