// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Report  ReportConfig  `toml:"report"`
	History HistoryConfig `toml:"history"`
}

// ReportConfig maps report-related settings.
type ReportConfig struct {
	Input      *string `toml:"input"`
	Output     *string `toml:"output"`
	Prefix     *string `toml:"prefix"`
	UsageRows  *int    `toml:"usage-rows"`
	ChunkWeeks *int    `toml:"chunk-weeks"`
	Basic      *bool   `toml:"basic"`
	Strict     *bool   `toml:"strict"`
}

// HistoryConfig maps run history settings.
type HistoryConfig struct {
	Record *bool   `toml:"record"`
	DB     *string `toml:"db"`
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
