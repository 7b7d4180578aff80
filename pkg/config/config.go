/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ssargent/rollcall/pkg/roster"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config represents the rollcall configuration
type Config struct {
	DataFile  string  `yaml:"data_file"`
	Backend   string  `yaml:"backend"`
	PebbleDir string  `yaml:"pebble_dir"`
	IDCharset string  `yaml:"id_charset"`
	Logging   Logging `yaml:"logging"`
	Output    Output  `yaml:"output"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // stderr, stdout or a path
}

// Output controls how non-interactive commands print students
type Output struct {
	Format string `yaml:"format"` // table or json
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataFile:  "students.txt",
		Backend:   "text",
		PebbleDir: "students.pebble",
		IDCharset: "decimal",
		Logging: Logging{
			Level: "info",
			File:  "rollcall.log",
		},
		Output: Output{
			Format: "table",
		},
	}
}

// LoadConfig loads configuration from the specified path. Keys missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BootstrapConfig writes a default configuration, pointing at dataFile when
// it is not empty.
func BootstrapConfig(configPath string, dataFile string) (*Config, error) {
	config := DefaultConfig()
	if dataFile != "" {
		config.DataFile = dataFile
	}

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// Validate checks that every value names something rollcall supports
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend {
	case "text":
		if c.DataFile == "" {
			errs = append(errs, errors.New("data_file is required for the text backend"))
		}
	case "pebble":
		if c.PebbleDir == "" {
			errs = append(errs, errors.New("pebble_dir is required for the pebble backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("backend must be text or pebble, got %q", c.Backend))
	}

	if _, err := roster.ParseIDCharset(c.IDCharset); err != nil {
		errs = append(errs, err)
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("invalid logging level: %w", err))
	}

	switch c.Output.Format {
	case "table", "json":
	default:
		errs = append(errs, fmt.Errorf("output format must be table or json, got %q", c.Output.Format))
	}

	return errors.Join(errs...)
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	// Use OS-specific default locations
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./rollcall.yaml"
	}

	// For Linux/macOS, use ~/.config/rollcall/config.yaml
	configDir := filepath.Join(homeDir, ".config", "rollcall")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
