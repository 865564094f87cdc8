//nolint:lll
package config

import "time"

// Config represents the complete configuration for the pantryd application.
// It includes settings for all commands (serve, scan, vocab) and supports
// loading from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Receipt pipeline configuration
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`

	// Output configuration (for the scan command)
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for the serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Vocabulary cache configuration
	Vocabulary VocabularyConfig `mapstructure:"vocabulary" yaml:"vocabulary" json:"vocabulary"`

	// Datastore configuration
	Database DatabaseConfig `mapstructure:"database" yaml:"database" json:"database"`
}

// PipelineConfig contains receipt pipeline settings.
type PipelineConfig struct {
	// Image hardening settings
	Image ImageConfig `mapstructure:"image" yaml:"image" json:"image"`

	// OCR settings
	OCR OCRConfig `mapstructure:"ocr" yaml:"ocr" json:"ocr"`

	// Line parsing settings
	Parser ParserConfig `mapstructure:"parser" yaml:"parser" json:"parser"`

	// Ingredient matching settings
	Matcher MatcherConfig `mapstructure:"matcher" yaml:"matcher" json:"matcher"`
}

// ImageConfig contains upload validation settings.
type ImageConfig struct {
	MaxBytes       int64    `mapstructure:"max_bytes" yaml:"max_bytes" json:"max_bytes"`
	AllowedFormats []string `mapstructure:"allowed_formats" yaml:"allowed_formats" json:"allowed_formats"`
	MinWidth       int      `mapstructure:"min_width" yaml:"min_width" json:"min_width"`
	MinHeight      int      `mapstructure:"min_height" yaml:"min_height" json:"min_height"`
	MaxWidth       int      `mapstructure:"max_width" yaml:"max_width" json:"max_width"`
	MaxHeight      int      `mapstructure:"max_height" yaml:"max_height" json:"max_height"`
}

// OCRConfig contains OCR engine settings.
type OCRConfig struct {
	Engine      string `mapstructure:"engine" yaml:"engine" json:"engine"` // "tesseract" or "gemini"
	Languages   string `mapstructure:"languages" yaml:"languages" json:"languages"`
	TimeoutSec  int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	PageSegMode int    `mapstructure:"page_seg_mode" yaml:"page_seg_mode" json:"page_seg_mode"`
	GeminiModel string `mapstructure:"gemini_model" yaml:"gemini_model" json:"gemini_model"`
	GeminiKey   string `mapstructure:"gemini_key" yaml:"gemini_key" json:"gemini_key"`
}

// ParserConfig contains receipt line parsing settings.
type ParserConfig struct {
	MinLineRunes int `mapstructure:"min_line_runes" yaml:"min_line_runes" json:"min_line_runes"`
}

// MatcherConfig contains ingredient matching settings.
type MatcherConfig struct {
	FuzzyFloor     float64 `mapstructure:"fuzzy_floor" yaml:"fuzzy_floor" json:"fuzzy_floor"`
	MaxSuggestions int     `mapstructure:"max_suggestions" yaml:"max_suggestions" json:"max_suggestions"`
}

// OutputConfig contains output formatting settings for the scan command.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"` // json, yaml, text
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host               string `mapstructure:"host" yaml:"host" json:"host"`
	Port               int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin         string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB        int64  `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec         int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout    int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	MaxConcurrentScans int    `mapstructure:"max_concurrent_scans" yaml:"max_concurrent_scans" json:"max_concurrent_scans"`

	// Authentication (token verification is delegated to the identity provider)
	AuthEnabled bool   `mapstructure:"auth_enabled" yaml:"auth_enabled" json:"auth_enabled"`
	AuthToken   string `mapstructure:"auth_token" yaml:"auth_token" json:"auth_token"`

	// Rate limiting
	RateLimitEnabled  bool  `mapstructure:"rate_limit_enabled" yaml:"rate_limit_enabled" json:"rate_limit_enabled"`
	RequestsPerMinute int   `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int   `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
	MaxRequestsPerDay int   `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day" json:"max_requests_per_day"`
	MaxDataPerDayMB   int64 `mapstructure:"max_data_per_day_mb" yaml:"max_data_per_day_mb" json:"max_data_per_day_mb"`
}

// VocabularyConfig contains ingredient vocabulary cache settings.
type VocabularyConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval" yaml:"refresh_interval" json:"refresh_interval"`
	CachePath       string        `mapstructure:"cache_path" yaml:"cache_path" json:"cache_path"`
}

// DatabaseConfig contains managed datastore settings.
type DatabaseConfig struct {
	DSN      string `mapstructure:"dsn" yaml:"dsn" json:"dsn"`
	MaxConns int32  `mapstructure:"max_conns" yaml:"max_conns" json:"max_conns"`
}
