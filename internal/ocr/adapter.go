package ocr

import (
	"bytes"
	"context"
	"image/png"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"

	imghard "github.com/openpantry/pantryd/internal/imaging"
)

// Config holds adapter settings.
type Config struct {
	Languages  string
	TimeoutSec int
}

// DefaultConfig returns adapter defaults for English and German receipts.
func DefaultConfig() Config {
	return Config{
		Languages:  "eng+deu",
		TimeoutSec: 30,
	}
}

// Adapter runs a hardened image through an Engine under a wall-clock
// deadline and normalizes the output.
type Adapter struct {
	engine Engine
	cfg    Config
	logger *slog.Logger
}

// NewAdapter creates an adapter around the given engine.
func NewAdapter(engine Engine, cfg Config, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{engine: engine, cfg: cfg, logger: logger}
}

// Close releases the underlying engine.
func (a *Adapter) Close() error {
	return a.engine.Close()
}

// Recognize preprocesses the hardened image, invokes the engine on a
// worker goroutine, and returns normalized regions plus full text.
// langHint overrides the configured languages when non-empty. Exceeding
// the timeout fails with CodeTimeout; engine failures with CodeEngine.
func (a *Adapter) Recognize(ctx context.Context, img *imghard.HardenedImage, langHint string) (*Result, error) {
	languages := a.cfg.Languages
	if langHint != "" {
		languages = langHint
	}

	data, err := a.preprocess(img)
	if err != nil {
		return nil, &Error{Code: CodeEngine, Message: "image preprocessing failed", Err: err}
	}

	timeout := time.Duration(a.cfg.TimeoutSec) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		res *Result
		err error
	}
	// Buffered so the worker can finish after a timeout without leaking
	// a blocked goroutine.
	ch := make(chan outcome, 1)
	go func() {
		res, err := a.engine.Recognize(ctx, data, languages)
		ch <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		a.logger.Warn("ocr timed out", "timeout", timeout, "languages", languages)
		return nil, &Error{
			Code:    CodeTimeout,
			Message: "text recognition did not finish in time",
			Err:     ctx.Err(),
		}
	case o := <-ch:
		if o.err != nil {
			a.logger.Error("ocr engine failed", "error", o.err, "languages", languages)
			return nil, &Error{
				Code:    CodeEngine,
				Message: "text recognition failed",
				Err:     o.err,
			}
		}
		return normalize(o.res), nil
	}
}

// preprocess converts the image to grayscale and upscales small scans,
// then re-encodes as PNG for the engine.
func (a *Adapter) preprocess(img *imghard.HardenedImage) ([]byte, error) {
	gray := imaging.Grayscale(img.Img)
	if gray.Bounds().Dx() < 1200 {
		gray = imaging.Resize(gray, gray.Bounds().Dx()*2, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
