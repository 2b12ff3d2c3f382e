package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Analyzer AnalyzerConfig
	Cache    CacheConfig
	Client   ClientConfig
	OCR      OCRConfig
	Workflow WorkflowConfig
}

// ServerConfig holds enrichment server configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AnalyzerConfig holds the upstream ingredient analyzer configuration
type AnalyzerConfig struct {
	URL       string        `mapstructure:"url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	Burst     int           `mapstructure:"burst"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type string        `mapstructure:"type"` // "memory" or "sqlite"
	Path string        `mapstructure:"path"`
	TTL  time.Duration `mapstructure:"ttl"`
}

// ClientConfig holds the labelscan client configuration
type ClientConfig struct {
	ServerURL string        `mapstructure:"server_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// OCRConfig holds text extraction configuration
type OCRConfig struct {
	Language      string `mapstructure:"language"`
	MaxImageWidth int    `mapstructure:"max_image_width"`
}

// WorkflowConfig holds parser and workflow behavior switches
type WorkflowConfig struct {
	Placeholder            string `mapstructure:"placeholder"`
	BalancedParentheses    bool   `mapstructure:"balanced_parentheses"`
	AcknowledgeOnlySuccess bool   `mapstructure:"acknowledge_only_success"`
	Debug                  bool   `mapstructure:"debug"`
}

// Load loads configuration from the environment, an optional .env file and
// an optional config file
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path (empty searches the defaults)
func LoadFile(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/labelscan/")
	}

	// Environment variable settings
	v.SetEnvPrefix("LABELSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Analyzer defaults
	v.SetDefault("analyzer.url", "http://localhost:5002/analyze")
	v.SetDefault("analyzer.timeout", "30s")
	v.SetDefault("analyzer.rate_limit", 5.0)
	v.SetDefault("analyzer.burst", 5)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.path", "labelscan-cache.db")
	v.SetDefault("cache.ttl", "720h") // 30 days

	// Client defaults
	v.SetDefault("client.server_url", "http://localhost:5000")
	v.SetDefault("client.timeout", "30s")

	// OCR defaults
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.max_image_width", 2000)

	// Workflow defaults
	v.SetDefault("workflow.placeholder", "")
	v.SetDefault("workflow.balanced_parentheses", false)
	v.SetDefault("workflow.acknowledge_only_success", false)
	v.SetDefault("workflow.debug", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Analyzer.URL == "" {
		return fmt.Errorf("analyzer URL is required (set LABELSCAN_ANALYZER_URL)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "sqlite" {
		return fmt.Errorf("cache type must be 'memory' or 'sqlite', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "sqlite" && config.Cache.Path == "" {
		return fmt.Errorf("cache path is required when cache type is 'sqlite'")
	}

	if config.Client.ServerURL == "" {
		return fmt.Errorf("client server URL is required (set LABELSCAN_CLIENT_SERVER_URL)")
	}

	if config.OCR.MaxImageWidth < 0 {
		return fmt.Errorf("ocr max image width must not be negative, got: %d", config.OCR.MaxImageWidth)
	}

	return nil
}

// loadEnvFile loads ./.env without overriding variables that are already set.
// A missing file is not an error.
func loadEnvFile() error {
	if err := gotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
