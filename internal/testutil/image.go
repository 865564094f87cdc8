// Package testutil provides helpers for generating synthetic receipt
// images and fixtures used across package tests.
package testutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ImageSize represents image dimensions in pixels.
type ImageSize struct {
	Width  int
	Height int
}

var (
	// ReceiptSize is a typical photographed receipt resolution.
	ReceiptSize = ImageSize{600, 800}
	// SmallSize is below the minimum accepted dimensions.
	SmallSize = ImageSize{100, 100}
)

// ReceiptImageConfig holds configuration for generating synthetic receipts.
type ReceiptImageConfig struct {
	Lines      []string
	Size       ImageSize
	Background color.Color
	Foreground color.Color
	FontFace   font.Face
}

// DefaultReceiptImageConfig returns a config resembling a grocery receipt.
func DefaultReceiptImageConfig() ReceiptImageConfig {
	return ReceiptImageConfig{
		Lines: []string{
			"SUPERMART",
			"Bananas 3x 0.25 = 0.75",
			"Whole Milk 1l 1.19",
			"Bread 2.49",
			"TOTAL: 4.43",
		},
		Size:       ReceiptSize,
		Background: color.White,
		Foreground: color.Black,
		FontFace:   basicfont.Face7x13,
	}
}

// GenerateReceiptImage renders the configured lines onto a blank image,
// one line per row, left-aligned like a till printout.
func GenerateReceiptImage(config ReceiptImageConfig) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, config.Size.Width, config.Size.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{config.Background}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{config.Foreground},
		Face: config.FontFace,
	}

	lineHeight := config.FontFace.Metrics().Height.Ceil() + 6
	y := lineHeight * 2
	for _, line := range config.Lines {
		drawer.Dot = fixed.P(20, y)
		drawer.DrawString(line)
		y += lineHeight
	}
	return img
}

// PNGBytes encodes an image as PNG.
func PNGBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// JPEGBytes encodes an image as JPEG.
func JPEGBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

// ValidReceiptPNG returns PNG bytes for a default synthetic receipt.
func ValidReceiptPNG(t *testing.T) []byte {
	t.Helper()
	return PNGBytes(t, GenerateReceiptImage(DefaultReceiptImageConfig()))
}

// PadTo appends zero bytes until data is exactly n bytes long. Image
// decoders ignore trailing bytes past the end-of-image marker, so the
// result still decodes; useful for exercising byte-size boundaries.
func PadTo(t *testing.T, data []byte, n int) []byte {
	t.Helper()
	if len(data) > n {
		t.Fatalf("cannot pad %d bytes down to %d", len(data), n)
	}
	out := make([]byte, n)
	copy(out, data)
	return out
}

// SolidImage returns a uniformly colored image of the given size.
func SolidImage(size ImageSize, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

// Fingerprint returns a short deterministic description of image bytes,
// handy for assertions about which fixture travelled through a pipeline.
func Fingerprint(data []byte) string {
	var sum uint64
	for _, b := range data {
		sum = sum*131 + uint64(b)
	}
	return fmt.Sprintf("%x:%d", sum, len(data))
}
