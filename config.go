package stxtconverter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the settings of a conversion
type Config struct {
	// font files of the catalog; empty keeps the Go fonts
	PlainFontFile string  `json:"plain_font_file,omitempty"`
	FixedFontFile string  `json:"fixed_font_file,omitempty"`
	FontSize      float32 `json:"font_size"`
	LogLevel      string  `json:"log_level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		FontSize: DefaultFontSize,
		LogLevel: "warn",
	}
}

// LoadConfig loads the configuration from path; a missing file gives the defaults
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to path
func (c *Config) Save(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FontCatalog returns the catalog of the configured font files
func (c *Config) FontCatalog() (FontCatalog, error) {
	if c.PlainFontFile == "" && c.FixedFontFile == "" && (c.FontSize <= 0 || c.FontSize == DefaultFontSize) {
		return DefaultFontCatalog(), nil
	}
	return LoadFontCatalog(c.PlainFontFile, c.FixedFontFile, c.FontSize)
}

// SlogLevel maps LogLevel onto a slog level; unknown names are warn
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	}
	return slog.LevelWarn
}
