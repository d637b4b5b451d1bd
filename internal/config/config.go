package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

// EnvAPIKey overrides search.api_key when set
const EnvAPIKey = "PIXABAY_API_KEY"

// Config holds the application configuration
type Config struct {
	Search SearchConfig `json:"search" toml:"search"`
	Canvas CanvasConfig `json:"canvas" toml:"canvas"`
	Loader LoaderConfig `json:"loader" toml:"loader"`
	Export ExportConfig `json:"export" toml:"export"`
}

// SearchConfig holds configuration for the stock-photo search
type SearchConfig struct {
	APIKey         string `json:"api_key" toml:"api_key"`
	BaseURL        string `json:"base_url" toml:"base_url"`
	PerPage        int    `json:"per_page" toml:"per_page"`
	SafeSearch     bool   `json:"safe_search" toml:"safe_search"`
	TimeoutSeconds int    `json:"timeout_seconds" toml:"timeout_seconds"`
}

// CanvasConfig holds configuration for the drawing surface
type CanvasConfig struct {
	Width      int    `json:"width" toml:"width"`
	Height     int    `json:"height" toml:"height"`
	Background string `json:"background" toml:"background"`
}

// LoaderConfig holds configuration for bitmap downloads
type LoaderConfig struct {
	TimeoutSeconds int `json:"timeout_seconds" toml:"timeout_seconds"`
}

// ExportConfig holds configuration for output generation
type ExportConfig struct {
	DefaultFormat string  `json:"default_format" toml:"default_format"`
	Quality       float64 `json:"quality" toml:"quality"`
	OutputDir     string  `json:"output_dir" toml:"output_dir"`
	FileName      string  `json:"file_name" toml:"file_name"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			BaseURL:        "https://pixabay.com",
			PerPage:        20,
			SafeSearch:     true,
			TimeoutSeconds: 15,
		},
		Canvas: CanvasConfig{
			Width:      600,
			Height:     400,
			Background: "transparent",
		},
		Loader: LoaderConfig{
			TimeoutSeconds: 30,
		},
		Export: ExportConfig{
			DefaultFormat: "png",
			Quality:       1.0,
			OutputDir:     ".",
			FileName:      "canvas-image.png",
		},
	}
}

// LoadFromFile loads configuration from a JSON or TOML file, chosen by
// extension. Values missing from the file keep their defaults.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return config, nil
}

// Load reads filename when it exists, falls back to defaults otherwise, and
// applies environment overrides.
func Load(filename string) (*Config, error) {
	config := Default()
	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			loaded, err := LoadFromFile(filename)
			if err != nil {
				return nil, err
			}
			config = loaded
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}
	config.ApplyEnv()
	return config, nil
}

// ApplyEnv overlays environment variables
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Search.APIKey = v
	}
}

// SaveToFile saves configuration as JSON or TOML depending on extension
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		data, err = toml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Canvas.Width < 1 || c.Canvas.Height < 1 {
		return fmt.Errorf("canvas.width and canvas.height must be positive")
	}

	if c.Search.PerPage != 0 && (c.Search.PerPage < 3 || c.Search.PerPage > 200) {
		return fmt.Errorf("search.per_page must be between 3 and 200")
	}

	if c.Search.TimeoutSeconds < 0 || c.Loader.TimeoutSeconds < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}

	switch strings.ToLower(c.Export.DefaultFormat) {
	case "png", "jpg", "jpeg", "webp":
	default:
		return fmt.Errorf("export.default_format must be png, jpeg or webp")
	}

	if c.Export.Quality <= 0 || c.Export.Quality > 1 {
		return fmt.Errorf("export.quality must be in (0, 1]")
	}

	return nil
}

// SearchTimeout is the per-request search timeout
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.Search.TimeoutSeconds) * time.Second
}

// LoadTimeout is the per-bitmap download timeout
func (c *Config) LoadTimeout() time.Duration {
	return time.Duration(c.Loader.TimeoutSeconds) * time.Second
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "image-editor", "config.json")
}
