package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for tumdlr
type Config struct {
	// Tumblr API settings
	Tumblr TumblrConfig `yaml:"tumblr" json:"tumblr"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Categorization toggles for save-path composition
	Categorization CategorizationConfig `yaml:"categorization" json:"categorization"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TumblrConfig holds Tumblr-specific configuration
type TumblrConfig struct {
	APIKey    string `yaml:"api_key" json:"api_key"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	SavePath string `yaml:"save_path" json:"save_path"`
}

// CategorizationConfig holds the three independent path toggles.
// Each one adds exactly one kind of segment to resolved save paths.
type CategorizationConfig struct {
	User      bool `yaml:"user" json:"user"`
	PostType  bool `yaml:"post_type" json:"post_type"`
	Photosets bool `yaml:"photosets" json:"photosets"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	ConcurrentDownloads int           `yaml:"concurrent_downloads" json:"concurrent_downloads"`
	DownloadTimeout     time.Duration `yaml:"download_timeout" json:"download_timeout"`
	SaveMetadata        bool          `yaml:"save_metadata" json:"save_metadata"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Tumblr: TumblrConfig{
			UserAgent: "tumdlr/1.0",
		},
		Output: OutputConfig{
			SavePath: "./downloads",
		},
		Categorization: CategorizationConfig{
			User:      true,
			PostType:  true,
			Photosets: true,
		},
		Download: DownloadConfig{
			ConcurrentDownloads: 3,
			DownloadTimeout:     30 * time.Second,
			SaveMetadata:        false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if apiKey := os.Getenv("TUMDLR_API_KEY"); apiKey != "" {
		c.Tumblr.APIKey = apiKey
	}
	if userAgent := os.Getenv("TUMDLR_USER_AGENT"); userAgent != "" {
		c.Tumblr.UserAgent = userAgent
	}

	if savePath := os.Getenv("TUMDLR_SAVE_PATH"); savePath != "" {
		c.Output.SavePath = savePath
	}

	if v := os.Getenv("TUMDLR_CATEGORIZE_USER"); v != "" {
		c.Categorization.User = strings.ToLower(v) == "true"
	}
	if v := os.Getenv("TUMDLR_CATEGORIZE_POST_TYPE"); v != "" {
		c.Categorization.PostType = strings.ToLower(v) == "true"
	}
	if v := os.Getenv("TUMDLR_CATEGORIZE_PHOTOSETS"); v != "" {
		c.Categorization.Photosets = strings.ToLower(v) == "true"
	}

	if concurrent := os.Getenv("TUMDLR_CONCURRENT_DOWNLOADS"); concurrent != "" {
		var val int
		fmt.Sscanf(concurrent, "%d", &val)
		if val > 0 {
			c.Download.ConcurrentDownloads = val
		}
	}

	if rpm := os.Getenv("TUMDLR_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if logLevel := os.Getenv("TUMDLR_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".tumdlr.yaml",
		".tumdlr.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "tumdlr", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "tumdlr", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".tumdlr.yaml"),
		filepath.Join(os.Getenv("HOME"), ".tumdlr.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Tumblr.APIKey == "" {
		errs = append(errs, errors.New("Tumblr API key is required"))
	}

	if c.Output.SavePath == "" {
		errs = append(errs, errors.New("save path is required"))
	}

	if c.Download.ConcurrentDownloads <= 0 {
		errs = append(errs, errors.New("concurrent downloads must be positive"))
	}
	if c.Download.ConcurrentDownloads > 10 {
		errs = append(errs, errors.New("concurrent downloads should not exceed 10"))
	}
	if c.Download.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if apiKey, ok := flags["api-key"].(string); ok && apiKey != "" {
		c.Tumblr.APIKey = apiKey
	}
	if savePath, ok := flags["save-path"].(string); ok && savePath != "" {
		c.Output.SavePath = savePath
	}
	if concurrent, ok := flags["concurrent"].(int); ok && concurrent > 0 {
		c.Download.ConcurrentDownloads = concurrent
	}
	if rpm, ok := flags["requests-per-minute"].(int); ok && rpm > 0 {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if saveMetadata, ok := flags["save-metadata"].(bool); ok {
		c.Download.SaveMetadata = saveMetadata
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".tumdlr.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
