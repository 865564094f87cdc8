package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/openpantry/pantryd/internal/imaging"
)

// TesseractConfig holds Tesseract engine settings.
type TesseractConfig struct {
	// PageSegMode selects the Tesseract page segmentation mode.
	// 6 (single uniform block) works well for till printouts.
	PageSegMode int
}

// DefaultTesseractConfig returns engine defaults for receipts.
func DefaultTesseractConfig() TesseractConfig {
	return TesseractConfig{PageSegMode: 6}
}

// Tesseract is an Engine backed by a local Tesseract installation via
// gosseract. Tesseract reads from a file path, so each call spills the
// image to a secure temp file that is erased before returning.
type Tesseract struct {
	cfg TesseractConfig
}

// NewTesseract creates a Tesseract-backed engine.
func NewTesseract(cfg TesseractConfig) *Tesseract {
	return &Tesseract{cfg: cfg}
}

// Recognize runs Tesseract over the image and collects per-line text,
// confidence, and bounding boxes.
func (t *Tesseract) Recognize(ctx context.Context, png []byte, languages string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmp, err := imaging.NewSecureTempFile("", png)
	if err != nil {
		return nil, fmt.Errorf("staging image for tesseract: %w", err)
	}
	defer func() { _ = tmp.Close() }()

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if langs := splitLanguages(languages); len(langs) > 0 {
		if err := client.SetLanguage(langs...); err != nil {
			return nil, fmt.Errorf("setting tesseract languages %q: %w", languages, err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(t.cfg.PageSegMode)); err != nil {
		return nil, fmt.Errorf("setting tesseract page segmentation mode: %w", err)
	}
	if err := client.SetImage(tmp.Path()); err != nil {
		return nil, fmt.Errorf("loading image into tesseract: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("running tesseract recognition: %w", err)
	}

	res := &Result{Regions: make([]Region, 0, len(boxes))}
	for _, b := range boxes {
		res.Regions = append(res.Regions, Region{
			Text:       b.Word,
			Confidence: b.Confidence,
			X:          b.Box.Min.X,
			Y:          b.Box.Min.Y,
			Width:      b.Box.Dx(),
			Height:     b.Box.Dy(),
		})
	}
	return res, nil
}

// Close implements Engine. The gosseract client is per-call, so there
// is nothing to release here.
func (t *Tesseract) Close() error { return nil }

func splitLanguages(languages string) []string {
	var out []string
	for _, l := range strings.Split(languages, "+") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
