package config

import (
	"fmt"
	"strings"
	"time"
)

// DefaultConfig returns a configuration populated with default values.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Pipeline: PipelineConfig{
			Image:   defaultImageConfig(),
			OCR:     defaultOCRConfig(),
			Parser:  defaultParserConfig(),
			Matcher: defaultMatcherConfig(),
		},
		Output: OutputConfig{
			Format: "json",
		},
		Server: ServerConfig{
			Host:               "localhost",
			Port:               8080,
			CORSOrigin:         "*",
			MaxUploadMB:        10,
			TimeoutSec:         60,
			ShutdownTimeout:    10,
			MaxConcurrentScans: 2,
			RateLimitEnabled:   false,
			RequestsPerMinute:  30,
			RequestsPerHour:    300,
			MaxRequestsPerDay:  1000,
			MaxDataPerDayMB:    500,
		},
		Vocabulary: VocabularyConfig{
			RefreshInterval: 168 * time.Hour,
			CachePath:       "vocabulary.db",
		},
		Database: DatabaseConfig{
			MaxConns: 10,
		},
	}
}

func defaultImageConfig() ImageConfig {
	return ImageConfig{
		MaxBytes:       5 * 1024 * 1024,
		AllowedFormats: []string{"jpeg", "png", "webp", "bmp", "tiff"},
		MinWidth:       200,
		MinHeight:      200,
		MaxWidth:       4000,
		MaxHeight:      6000,
	}
}

func defaultOCRConfig() OCRConfig {
	return OCRConfig{
		Engine:      "tesseract",
		Languages:   "eng+deu",
		TimeoutSec:  30,
		PageSegMode: 6, // uniform block of text, suits receipts
		GeminiModel: "gemini-2.5-flash",
	}
}

func defaultParserConfig() ParserConfig {
	return ParserConfig{
		MinLineRunes: 3,
	}
}

func defaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		FuzzyFloor:     60,
		MaxSuggestions: 5,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	if err := c.Pipeline.Image.validate(); err != nil {
		return err
	}
	if err := c.Pipeline.OCR.validate(); err != nil {
		return err
	}
	if err := c.Pipeline.Matcher.validate(); err != nil {
		return err
	}
	if err := c.Server.validate(); err != nil {
		return err
	}
	if c.Vocabulary.RefreshInterval <= 0 {
		return fmt.Errorf("vocabulary.refresh_interval must be positive, got %v", c.Vocabulary.RefreshInterval)
	}
	if !contains([]string{"json", "yaml", "text"}, c.Output.Format) {
		return fmt.Errorf("output.format must be one of json, yaml, text; got %q", c.Output.Format)
	}
	return nil
}

func (c *Config) validateLogLevel() error {
	levels := []string{"debug", "info", "warn", "error"}
	if !contains(levels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("log_level must be one of %v, got %q", levels, c.LogLevel)
	}
	return nil
}

func (ic *ImageConfig) validate() error {
	if ic.MaxBytes <= 0 {
		return fmt.Errorf("pipeline.image.max_bytes must be positive, got %d", ic.MaxBytes)
	}
	if len(ic.AllowedFormats) == 0 {
		return fmt.Errorf("pipeline.image.allowed_formats must not be empty")
	}
	if ic.MinWidth <= 0 || ic.MinHeight <= 0 {
		return fmt.Errorf("pipeline.image minimum dimensions must be positive")
	}
	if ic.MaxWidth < ic.MinWidth || ic.MaxHeight < ic.MinHeight {
		return fmt.Errorf("pipeline.image maximum dimensions must not be smaller than minimums")
	}
	return nil
}

func (oc *OCRConfig) validate() error {
	if !contains([]string{"tesseract", "gemini"}, oc.Engine) {
		return fmt.Errorf("pipeline.ocr.engine must be tesseract or gemini, got %q", oc.Engine)
	}
	if oc.TimeoutSec <= 0 {
		return fmt.Errorf("pipeline.ocr.timeout_sec must be positive, got %d", oc.TimeoutSec)
	}
	if oc.Engine == "gemini" && oc.GeminiKey == "" {
		return fmt.Errorf("pipeline.ocr.gemini_key is required when the gemini engine is selected")
	}
	return nil
}

func (mc *MatcherConfig) validate() error {
	if mc.FuzzyFloor < 0 || mc.FuzzyFloor > 100 {
		return fmt.Errorf("pipeline.matcher.fuzzy_floor must be within [0,100], got %v", mc.FuzzyFloor)
	}
	if mc.MaxSuggestions <= 0 {
		return fmt.Errorf("pipeline.matcher.max_suggestions must be positive, got %d", mc.MaxSuggestions)
	}
	return nil
}

func (sc *ServerConfig) validate() error {
	if sc.Port < 1 || sc.Port > 65535 {
		return fmt.Errorf("server.port must be within [1,65535], got %d", sc.Port)
	}
	if sc.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", sc.MaxUploadMB)
	}
	if sc.MaxConcurrentScans <= 0 {
		return fmt.Errorf("server.max_concurrent_scans must be positive, got %d", sc.MaxConcurrentScans)
	}
	if sc.AuthEnabled && sc.AuthToken == "" {
		return fmt.Errorf("server.auth_token is required when server.auth_enabled is set")
	}
	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
