// Package pipeline orchestrates the receipt ingestion stages: image
// hardening, OCR, line parsing, and ingredient matching. One call is
// one deterministic attempt; retries belong to the caller.
package pipeline

import (
	"errors"
	"log/slog"

	"github.com/openpantry/pantryd/internal/imaging"
	"github.com/openpantry/pantryd/internal/match"
	"github.com/openpantry/pantryd/internal/ocr"
	"github.com/openpantry/pantryd/internal/receipt"
	"github.com/openpantry/pantryd/internal/vocab"
)

// Config holds configuration for the pipeline and its components.
type Config struct {
	Image   imaging.Config
	OCR     ocr.Config
	Parser  receipt.Config
	Matcher match.Config
}

// DefaultConfig returns a pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		Image:   imaging.DefaultConfig(),
		OCR:     ocr.DefaultConfig(),
		Parser:  receipt.DefaultConfig(),
		Matcher: match.DefaultConfig(),
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg    Config
	engine ocr.Engine
	vocab  *vocab.Cache
	logger *slog.Logger
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole component configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithMaxImageBytes sets the upload size limit.
func (b *Builder) WithMaxImageBytes(n int64) *Builder {
	if n > 0 {
		b.cfg.Image.MaxBytes = n
	}
	return b
}

// WithAllowedFormats sets the image format allow-list.
func (b *Builder) WithAllowedFormats(formats []string) *Builder {
	if len(formats) > 0 {
		b.cfg.Image.AllowedFormats = formats
	}
	return b
}

// WithDimensionLimits sets the accepted pixel dimension range.
func (b *Builder) WithDimensionLimits(minW, minH, maxW, maxH int) *Builder {
	b.cfg.Image.MinWidth = minW
	b.cfg.Image.MinHeight = minH
	b.cfg.Image.MaxWidth = maxW
	b.cfg.Image.MaxHeight = maxH
	return b
}

// WithLanguages sets the default OCR language list (e.g. "eng+deu").
func (b *Builder) WithLanguages(languages string) *Builder {
	if languages != "" {
		b.cfg.OCR.Languages = languages
	}
	return b
}

// WithOCRTimeout sets the OCR wall-clock timeout in seconds.
func (b *Builder) WithOCRTimeout(seconds int) *Builder {
	if seconds > 0 {
		b.cfg.OCR.TimeoutSec = seconds
	}
	return b
}

// WithFuzzyFloor sets the minimum fuzzy-match similarity.
func (b *Builder) WithFuzzyFloor(floor float64) *Builder {
	b.cfg.Matcher.FuzzyFloor = floor
	return b
}

// WithMaxSuggestions sets the suggestion list cap per item.
func (b *Builder) WithMaxSuggestions(n int) *Builder {
	if n > 0 {
		b.cfg.Matcher.MaxSuggestions = n
	}
	return b
}

// WithEngine sets the OCR engine. Required.
func (b *Builder) WithEngine(engine ocr.Engine) *Builder {
	b.engine = engine
	return b
}

// WithVocabulary sets the ingredient vocabulary cache. Required.
func (b *Builder) WithVocabulary(cache *vocab.Cache) *Builder {
	b.vocab = cache
	return b
}

// WithLogger sets the structured logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build assembles the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	if b.engine == nil {
		return nil, errors.New("pipeline requires an OCR engine")
	}
	if b.vocab == nil {
		return nil, errors.New("pipeline requires a vocabulary cache")
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		hardener: imaging.NewHardener(b.cfg.Image),
		adapter:  ocr.NewAdapter(b.engine, b.cfg.OCR, logger),
		parser:   receipt.NewParser(b.cfg.Parser),
		matcher:  match.NewMatcher(b.cfg.Matcher),
		vocab:    b.vocab,
		logger:   logger,
	}, nil
}

// Pipeline runs the four receipt stages in sequence.
type Pipeline struct {
	hardener *imaging.Hardener
	adapter  *ocr.Adapter
	parser   *receipt.Parser
	matcher  *match.Matcher
	vocab    *vocab.Cache
	logger   *slog.Logger
}

// Close releases pipeline resources (the OCR engine).
func (p *Pipeline) Close() error {
	return p.adapter.Close()
}
