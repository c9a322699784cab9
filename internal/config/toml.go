// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Session SessionConfig `toml:"session"`
	Export  ExportConfig  `toml:"export"`
	Log     LogConfig     `toml:"log"`
}

// SessionConfig maps session settings.
type SessionConfig struct {
	Plate *string `toml:"plate"`
}

// ExportConfig maps export settings.
type ExportConfig struct {
	Dir     *string  `toml:"dir"`
	Sink    *string  `toml:"sink"`
	History *bool    `toml:"history"`
	S3      S3Config `toml:"s3"`
}

// S3Config maps the [export.s3] table. Credentials come from the AWS
// environment and shared config files, never from this file.
type S3Config struct {
	Bucket    *string `toml:"bucket"`
	Region    *string `toml:"region"`
	Endpoint  *string `toml:"endpoint"`
	PathStyle *bool   `toml:"path-style"`
	Prefix    *string `toml:"prefix"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
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
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template is the commented config written by "platemap config".
func Template() string {
	return `# platemap configuration
# Uncomment a value to enable it. CLI flags override config values.

[session]
# plate = "96"              # Plate opened at start (6, 12, 24, 48, 96, 384); empty shows the selector

[export]
# dir = "."                 # Directory for the fs sink
# sink = "fs"               # fs | s3
# history = true            # Record exports in the history database

[export.s3]
# bucket = ""
# region = "us-east-1"
# endpoint = ""             # Custom endpoint for S3-compatible storage
# path-style = false
# prefix = "platemap"

[log]
# level = "info"            # debug | info | warn | error
# file = ""                 # Default: $XDG_STATE_HOME/platemap/platemap.log
`
}
