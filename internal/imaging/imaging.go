// Package imaging validates and hardens uploaded receipt images before
// they are handed to the OCR stage. Validation is ordered and fails on
// the first violated check: byte size, sniffed format against the
// allow-list and the declared content type, pixel dimensions, embedded
// executable content, and finally a full structural decode.
package imaging

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Validation error codes surfaced to callers.
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
	CodeInvalidDims      = "INVALID_DIMENSIONS"
	CodeMaliciousContent = "MALICIOUS_CONTENT"
	CodeCorruptImage     = "CORRUPT_IMAGE"
)

// ValidationError describes a rejected upload. Message is safe to show
// to the uploading client.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Config holds image hardening limits.
type Config struct {
	MaxBytes       int64
	AllowedFormats []string
	MinWidth       int
	MinHeight      int
	MaxWidth       int
	MaxHeight      int
}

// DefaultConfig returns hardening limits suitable for photographed receipts.
func DefaultConfig() Config {
	return Config{
		MaxBytes:       5 * 1024 * 1024,
		AllowedFormats: []string{"jpeg", "png", "webp", "bmp", "tiff"},
		MinWidth:       200,
		MinHeight:      200,
		MaxWidth:       4000,
		MaxHeight:      6000,
	}
}

// Metadata captures byte and pixel level information about a hardened image.
type Metadata struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	SizeBytes int64  `json:"size_bytes"`
	SHA256    string `json:"sha256"`
}

// HardenedImage is an upload that passed all validation checks.
type HardenedImage struct {
	Data []byte
	Img  image.Image
	Meta Metadata
}

// Hardener validates raw uploads against configured limits.
type Hardener struct {
	cfg Config
}

// NewHardener creates a Hardener with the given limits.
func NewHardener(cfg Config) *Hardener {
	return &Hardener{cfg: cfg}
}

// Harden runs all validation checks against the raw upload, in order,
// short-circuiting on the first failure. declaredType is the MIME type
// claimed by the client (may be empty).
func (h *Hardener) Harden(data []byte, declaredType string) (*HardenedImage, error) {
	if int64(len(data)) > h.cfg.MaxBytes {
		return nil, &ValidationError{
			Code:    CodeFileTooLarge,
			Message: fmt.Sprintf("image is %d bytes, maximum is %d", len(data), h.cfg.MaxBytes),
		}
	}

	format := SniffFormat(data)
	if format == "" {
		return nil, &ValidationError{
			Code:    CodeInvalidImageType,
			Message: "unrecognized image format",
		}
	}
	if !h.formatAllowed(format) {
		return nil, &ValidationError{
			Code:    CodeInvalidImageType,
			Message: fmt.Sprintf("image format %q is not allowed", format),
		}
	}
	if declared := formatFromContentType(declaredType); declared != "" && declared != format {
		return nil, &ValidationError{
			Code:    CodeInvalidImageType,
			Message: fmt.Sprintf("declared content type %q does not match detected format %q", declaredType, format),
		}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &ValidationError{
			Code:    CodeCorruptImage,
			Message: "image header could not be parsed",
		}
	}
	if cfg.Width < h.cfg.MinWidth || cfg.Height < h.cfg.MinHeight ||
		cfg.Width > h.cfg.MaxWidth || cfg.Height > h.cfg.MaxHeight {
		return nil, &ValidationError{
			Code: CodeInvalidDims,
			Message: fmt.Sprintf("image is %dx%d, allowed range is %dx%d to %dx%d",
				cfg.Width, cfg.Height, h.cfg.MinWidth, h.cfg.MinHeight, h.cfg.MaxWidth, h.cfg.MaxHeight),
		}
	}

	if marker := scanEmbeddedCode(data); marker != "" {
		return nil, &ValidationError{
			Code:    CodeMaliciousContent,
			Message: "image contains embedded executable content",
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ValidationError{
			Code:    CodeCorruptImage,
			Message: "image could not be decoded",
		}
	}

	sum := sha256.Sum256(data)
	return &HardenedImage{
		Data: data,
		Img:  img,
		Meta: Metadata{
			Width:     cfg.Width,
			Height:    cfg.Height,
			Format:    format,
			SizeBytes: int64(len(data)),
			SHA256:    hex.EncodeToString(sum[:]),
		},
	}, nil
}

func (h *Hardener) formatAllowed(format string) bool {
	for _, f := range h.cfg.AllowedFormats {
		if f == format {
			return true
		}
	}
	return false
}
