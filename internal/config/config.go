// Package config handles application configuration and setup
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bjoernQ/svd2html/internal/options"
	"github.com/retroenv/retrogolib/config"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// LoadSettings reads the settings file. An empty path returns the default
// settings. A stylesheet path in the settings file is resolved relative to
// the directory of the settings file and its content is loaded.
func LoadSettings(path string) (options.Settings, error) {
	var settings options.Settings
	if path == "" {
		return settings, nil
	}

	cfg, err := config.Open(path, config.Options{})
	if err != nil {
		return settings, fmt.Errorf("opening settings file '%s': %w", path, err)
	}
	if err := cfg.Unmarshal(&settings); err != nil {
		return settings, fmt.Errorf("parsing settings file '%s': %w", path, err)
	}

	if settings.StylesheetFile != "" {
		stylesheet := settings.StylesheetFile
		if !filepath.IsAbs(stylesheet) {
			stylesheet = filepath.Join(filepath.Dir(path), stylesheet)
		}
		data, err := os.ReadFile(stylesheet)
		if err != nil {
			return settings, fmt.Errorf("reading stylesheet: %w", err)
		}
		settings.Stylesheet = string(data)
	}

	return settings, nil
}
