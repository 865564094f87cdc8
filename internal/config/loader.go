package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "pantryd"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "PANTRY"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	// Use the global viper instance to ensure flag bindings work
	return &Loader{v: viper.GetViper()}
}

// Load loads configuration from files, environment variables, and sets defaults.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")

	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// Missing config file is fine, defaults and env vars apply
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for advanced usage.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}

	l.v.AddConfigPath("/etc/pantryd")

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "pantryd"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "pantryd"))
	}
}

// setupEnvironmentVariables configures environment variable handling.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	// Global settings
	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	// Image hardening
	l.v.SetDefault("pipeline.image.max_bytes", defaults.Pipeline.Image.MaxBytes)
	l.v.SetDefault("pipeline.image.allowed_formats", defaults.Pipeline.Image.AllowedFormats)
	l.v.SetDefault("pipeline.image.min_width", defaults.Pipeline.Image.MinWidth)
	l.v.SetDefault("pipeline.image.min_height", defaults.Pipeline.Image.MinHeight)
	l.v.SetDefault("pipeline.image.max_width", defaults.Pipeline.Image.MaxWidth)
	l.v.SetDefault("pipeline.image.max_height", defaults.Pipeline.Image.MaxHeight)

	// OCR
	l.v.SetDefault("pipeline.ocr.engine", defaults.Pipeline.OCR.Engine)
	l.v.SetDefault("pipeline.ocr.languages", defaults.Pipeline.OCR.Languages)
	l.v.SetDefault("pipeline.ocr.timeout_sec", defaults.Pipeline.OCR.TimeoutSec)
	l.v.SetDefault("pipeline.ocr.page_seg_mode", defaults.Pipeline.OCR.PageSegMode)
	l.v.SetDefault("pipeline.ocr.gemini_model", defaults.Pipeline.OCR.GeminiModel)

	// Parser
	l.v.SetDefault("pipeline.parser.min_line_runes", defaults.Pipeline.Parser.MinLineRunes)

	// Matcher
	l.v.SetDefault("pipeline.matcher.fuzzy_floor", defaults.Pipeline.Matcher.FuzzyFloor)
	l.v.SetDefault("pipeline.matcher.max_suggestions", defaults.Pipeline.Matcher.MaxSuggestions)

	// Output
	l.v.SetDefault("output.format", defaults.Output.Format)
	l.v.SetDefault("output.file", defaults.Output.File)

	// Server
	l.v.SetDefault("server.host", defaults.Server.Host)
	l.v.SetDefault("server.port", defaults.Server.Port)
	l.v.SetDefault("server.cors_origin", defaults.Server.CORSOrigin)
	l.v.SetDefault("server.max_upload_mb", defaults.Server.MaxUploadMB)
	l.v.SetDefault("server.timeout_sec", defaults.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout)
	l.v.SetDefault("server.max_concurrent_scans", defaults.Server.MaxConcurrentScans)
	l.v.SetDefault("server.auth_enabled", defaults.Server.AuthEnabled)
	l.v.SetDefault("server.rate_limit_enabled", defaults.Server.RateLimitEnabled)
	l.v.SetDefault("server.requests_per_minute", defaults.Server.RequestsPerMinute)
	l.v.SetDefault("server.requests_per_hour", defaults.Server.RequestsPerHour)
	l.v.SetDefault("server.max_requests_per_day", defaults.Server.MaxRequestsPerDay)
	l.v.SetDefault("server.max_data_per_day_mb", defaults.Server.MaxDataPerDayMB)

	// Vocabulary
	l.v.SetDefault("vocabulary.refresh_interval", defaults.Vocabulary.RefreshInterval)
	l.v.SetDefault("vocabulary.cache_path", defaults.Vocabulary.CachePath)

	// Database
	l.v.SetDefault("database.dsn", defaults.Database.DSN)
	l.v.SetDefault("database.max_conns", defaults.Database.MaxConns)
}
