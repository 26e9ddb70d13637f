// Package config loads application configuration from defaults, an optional
// YAML file and MKT_-prefixed environment variables, in ascending precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"mktintel/pkg/contracts/domain"
)

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Dataset  DatasetConfig  `yaml:"dataset" envconfig:"DATASET"`
	Insights InsightsConfig `yaml:"insights" envconfig:"INSIGHTS"`
	Export   ExportConfig   `yaml:"export" envconfig:"EXPORT"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains CORS and rate limiting configuration.
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
	Output string `yaml:"output" envconfig:"OUTPUT"`
	File   string `yaml:"file" envconfig:"FILE"`
}

// DatasetConfig locates the CSV exports and controls row cleaning.
type DatasetConfig struct {
	Dir          string `yaml:"dir" envconfig:"DIR"`
	BusinessFile string `yaml:"business_file" envconfig:"BUSINESS_FILE"`
	// CoerceMissingNumeric keeps rows with blank numeric cells by coercing
	// them to zero instead of rejecting them.
	CoerceMissingNumeric bool `yaml:"coerce_missing_numeric" envconfig:"COERCE_MISSING_NUMERIC"`
	// MarketingFiles maps platform name to file name inside Dir.
	MarketingFiles map[string]string `yaml:"marketing_files" envconfig:"MARKETING_FILES"`
}

// InsightsConfig configures the LLM-backed insight narration. The API key is
// read from APIKeyEnv so the key itself never lands in a config file.
type InsightsConfig struct {
	APIKeyEnv   string        `yaml:"api_key_env" envconfig:"API_KEY_ENV"`
	Model       string        `yaml:"model" envconfig:"MODEL"`
	MaxTokens   int           `yaml:"max_tokens" envconfig:"MAX_TOKENS"`
	Temperature float64       `yaml:"temperature" envconfig:"TEMPERATURE"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// APIKey resolves the configured key, empty when the provider is disabled.
func (c InsightsConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// ExportConfig controls report export output.
type ExportConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR"`
}

// Default returns the configuration used when neither file nor environment
// overrides a value.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
			EnableCORS:     true,
			RateLimit:      RateLimitConfig{Enabled: true, RPS: 100, Burst: 50},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "console",
			File:   "logs/mktintel.log",
		},
		Dataset: DatasetConfig{
			Dir:                  "dataset",
			BusinessFile:         "business.csv",
			CoerceMissingNumeric: true,
			MarketingFiles: map[string]string{
				string(domain.PlatformFacebook): "Facebook.csv",
				string(domain.PlatformGoogle):   "Google.csv",
				string(domain.PlatformTikTok):   "TikTok.csv",
			},
		},
		Insights: InsightsConfig{
			APIKeyEnv:   "GOOGLE_API_KEY",
			Model:       "gemini-2.5-flash",
			MaxTokens:   1000,
			Temperature: 0.7,
			Timeout:     20 * time.Second,
		},
		Export: ExportConfig{Dir: "reports"},
	}
}

// Load builds the configuration: defaults, then the YAML file (config.yaml
// or $MKT_CONFIG_FILE), then MKT_-prefixed environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := configFilePath(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("MKT", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func configFilePath() string {
	if path := os.Getenv("MKT_CONFIG_FILE"); path != "" {
		return path
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	if c.Dataset.Dir == "" {
		return fmt.Errorf("dataset dir is required")
	}
	if c.Dataset.BusinessFile == "" {
		return fmt.Errorf("dataset business_file is required")
	}
	if len(c.Dataset.MarketingFiles) == 0 {
		return fmt.Errorf("at least one marketing source is required")
	}
	for name := range c.Dataset.MarketingFiles {
		if _, err := domain.ParsePlatform(name); err != nil {
			return fmt.Errorf("dataset marketing_files: %w", err)
		}
	}
	return nil
}

// BusinessPath returns the absolute-ish path of the business source.
func (c *Config) BusinessPath() string {
	return filepath.Join(c.Dataset.Dir, c.Dataset.BusinessFile)
}

// MarketingPaths returns the platform source paths keyed by platform.
func (c *Config) MarketingPaths() map[domain.Platform]string {
	out := make(map[domain.Platform]string, len(c.Dataset.MarketingFiles))
	for name, file := range c.Dataset.MarketingFiles {
		platform, err := domain.ParsePlatform(name)
		if err != nil {
			continue
		}
		out[platform] = filepath.Join(c.Dataset.Dir, file)
	}
	return out
}

// SourcePaths returns every source path, business first. The order is
// stable so the list can feed the cache fingerprint.
func (c *Config) SourcePaths() []string {
	paths := []string{c.BusinessPath()}
	for _, platform := range domain.Platforms {
		if file, ok := c.Dataset.MarketingFiles[string(platform)]; ok {
			paths = append(paths, filepath.Join(c.Dataset.Dir, file))
		}
	}
	return paths
}
