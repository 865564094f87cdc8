// Package ocr adapts external OCR engines into a uniform result shape.
// The engine itself (Tesseract, Gemini) is an external collaborator
// behind the Engine interface; this package owns preprocessing, the
// wall-clock timeout, and normalization of engine output.
package ocr

import (
	"context"
	"fmt"
	"strings"
)

// Error codes for OCR-stage failures.
const (
	CodeTimeout = "OCR_TIMEOUT"
	CodeEngine  = "OCR_ERROR"
)

// Error is a typed OCR-stage failure. Message is safe for callers;
// engine internals stay in Err for logging.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Region is one recognized text fragment with its confidence (0-100)
// and bounding box in pixel coordinates. Regions are ordered as emitted
// by the engine (reading order, not guaranteed geometrically sorted).
type Region struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// Result is normalized engine output: ordered regions plus the full
// text (regions joined with newlines).
type Result struct {
	Regions  []Region `json:"regions"`
	FullText string   `json:"full_text"`
}

// MeanConfidence returns the average region confidence, 0 for no regions.
func (r *Result) MeanConfidence() float64 {
	if len(r.Regions) == 0 {
		return 0
	}
	var sum float64
	for _, reg := range r.Regions {
		sum += reg.Confidence
	}
	return sum / float64(len(r.Regions))
}

// Engine recognizes text in an encoded image. Implementations receive
// PNG bytes after preprocessing and a "+"-separated language list
// (e.g. "eng+deu"). Recognize may block for the full engine runtime;
// the adapter enforces the deadline.
type Engine interface {
	Recognize(ctx context.Context, png []byte, languages string) (*Result, error)
	Close() error
}

// normalize clamps confidences into [0,100], drops empty regions, and
// rebuilds the full text from the surviving regions.
func normalize(res *Result) *Result {
	out := &Result{Regions: make([]Region, 0, len(res.Regions))}
	var lines []string
	for _, reg := range res.Regions {
		text := strings.TrimRight(reg.Text, "\r\n")
		if strings.TrimSpace(text) == "" {
			continue
		}
		if reg.Confidence < 0 {
			reg.Confidence = 0
		} else if reg.Confidence > 100 {
			reg.Confidence = 100
		}
		reg.Text = text
		out.Regions = append(out.Regions, reg)
		lines = append(lines, text)
	}
	out.FullText = strings.Join(lines, "\n")
	return out
}
