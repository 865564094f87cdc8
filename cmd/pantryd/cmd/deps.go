package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openpantry/pantryd/internal/config"
	"github.com/openpantry/pantryd/internal/ocr"
	"github.com/openpantry/pantryd/internal/pipeline"
	"github.com/openpantry/pantryd/internal/vocab"
)

// newEngine builds the configured OCR engine.
func newEngine(ctx context.Context, cfg *config.Config) (ocr.Engine, error) {
	switch cfg.Pipeline.OCR.Engine {
	case "", "tesseract":
		return ocr.NewTesseract(ocr.TesseractConfig{
			PageSegMode: cfg.Pipeline.OCR.PageSegMode,
		}), nil
	case "gemini":
		return ocr.NewGemini(ctx, ocr.GeminiConfig{
			APIKey: cfg.Pipeline.OCR.GeminiKey,
			Model:  cfg.Pipeline.OCR.GeminiModel,
		})
	default:
		return nil, fmt.Errorf("unknown OCR engine %q", cfg.Pipeline.OCR.Engine)
	}
}

// newDatabasePool connects to the managed datastore. Returns nil when
// no DSN is configured.
func newDatabasePool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.Database.DSN == "" {
		return nil, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing database DSN: %w", err)
	}
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return pool, nil
}

// newVocabulary builds the vocabulary cache. With a database pool the
// source is the ingredients table; without one the cache can still warm
// from the local snapshot file.
func newVocabulary(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*vocab.Cache, error) {
	var source vocab.Source
	if pool != nil {
		source = vocab.NewPostgresSource(pool)
	} else {
		source = &vocab.StaticSource{Err: errors.New("no database configured")}
	}

	var local *vocab.BoltStore
	if cfg.Vocabulary.CachePath != "" {
		var err error
		local, err = vocab.OpenBoltStore(cfg.Vocabulary.CachePath)
		if err != nil {
			return nil, fmt.Errorf("opening vocabulary cache: %w", err)
		}
	}

	return vocab.NewCache(source, local, cfg.Vocabulary.RefreshInterval, logger), nil
}

// newPipeline assembles the scan pipeline from configuration.
func newPipeline(cfg *config.Config, engine ocr.Engine, cache *vocab.Cache, logger *slog.Logger) (*pipeline.Pipeline, error) {
	pCfg := pipeline.DefaultConfig()
	pCfg.Image.MaxBytes = cfg.Pipeline.Image.MaxBytes
	pCfg.Image.AllowedFormats = cfg.Pipeline.Image.AllowedFormats
	pCfg.Image.MinWidth = cfg.Pipeline.Image.MinWidth
	pCfg.Image.MinHeight = cfg.Pipeline.Image.MinHeight
	pCfg.Image.MaxWidth = cfg.Pipeline.Image.MaxWidth
	pCfg.Image.MaxHeight = cfg.Pipeline.Image.MaxHeight
	pCfg.OCR.Languages = cfg.Pipeline.OCR.Languages
	pCfg.OCR.TimeoutSec = cfg.Pipeline.OCR.TimeoutSec
	pCfg.Parser.MinLineRunes = cfg.Pipeline.Parser.MinLineRunes
	pCfg.Matcher.FuzzyFloor = cfg.Pipeline.Matcher.FuzzyFloor
	pCfg.Matcher.MaxSuggestions = cfg.Pipeline.Matcher.MaxSuggestions

	return pipeline.NewBuilder().
		WithConfig(pCfg).
		WithEngine(engine).
		WithVocabulary(cache).
		WithLogger(logger).
		Build()
}
