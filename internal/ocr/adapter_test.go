package ocr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpantry/pantryd/internal/imaging"
	"github.com/openpantry/pantryd/internal/testutil"
)

func hardenedFixture(t *testing.T) *imaging.HardenedImage {
	t.Helper()
	h := imaging.NewHardener(imaging.DefaultConfig())
	img, err := h.Harden(testutil.ValidReceiptPNG(t), "image/png")
	require.NoError(t, err)
	return img
}

func TestAdapterRecognize(t *testing.T) {
	fake := &Fake{Result: FakeReceiptResult()}
	a := NewAdapter(fake, DefaultConfig(), nil)

	res, err := a.Recognize(context.Background(), hardenedFixture(t), "")
	require.NoError(t, err)
	require.Len(t, res.Regions, 5)
	assert.Equal(t, "SUPERMART", res.Regions[0].Text)
	assert.Contains(t, res.FullText, "Bananas 3x 0.25 = 0.75")
	assert.Contains(t, res.FullText, "TOTAL: 4.43")
	assert.Equal(t, 1, fake.Calls())
	assert.Equal(t, "eng+deu", fake.LastLanguages())
}

func TestAdapterLanguageHintOverridesConfig(t *testing.T) {
	fake := &Fake{Result: FakeReceiptResult()}
	a := NewAdapter(fake, DefaultConfig(), nil)

	_, err := a.Recognize(context.Background(), hardenedFixture(t), "deu")
	require.NoError(t, err)
	assert.Equal(t, "deu", fake.LastLanguages())
}

func TestAdapterTimeout(t *testing.T) {
	fake := &Fake{Result: FakeReceiptResult(), Delay: time.Second}
	cfg := DefaultConfig()
	cfg.TimeoutSec = 1
	a := NewAdapter(fake, cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := a.Recognize(ctx, hardenedFixture(t), "")
	var oerr *Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, CodeTimeout, oerr.Code)
}

func TestAdapterEngineErrorIsWrapped(t *testing.T) {
	cause := errors.New("tesseract exploded")
	fake := &Fake{Err: cause}
	a := NewAdapter(fake, DefaultConfig(), nil)

	_, err := a.Recognize(context.Background(), hardenedFixture(t), "")
	var oerr *Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, CodeEngine, oerr.Code)
	// Engine detail is preserved for logging but not in the safe message.
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, oerr.Message, "exploded")
}

func TestNormalizeDropsEmptyRegionsAndClampsConfidence(t *testing.T) {
	res := normalize(&Result{Regions: []Region{
		{Text: "Milk", Confidence: 120},
		{Text: "   ", Confidence: 50},
		{Text: "", Confidence: 50},
		{Text: "Bread", Confidence: -3},
	}})
	require.Len(t, res.Regions, 2)
	assert.Equal(t, float64(100), res.Regions[0].Confidence)
	assert.Equal(t, float64(0), res.Regions[1].Confidence)
	assert.Equal(t, "Milk\nBread", res.FullText)
}

func TestMeanConfidence(t *testing.T) {
	res := &Result{Regions: []Region{
		{Text: "a", Confidence: 80},
		{Text: "b", Confidence: 100},
	}}
	assert.InDelta(t, 90, res.MeanConfidence(), 0.001)
	assert.Zero(t, (&Result{}).MeanConfidence())
}

func TestParseGeminiRegions(t *testing.T) {
	raw := "```json\n[{\"text\":\"Milk 1.19\",\"confidence\":92,\"box\":[10,20,200,18]}]\n```"
	res, err := parseGeminiRegions(raw)
	require.NoError(t, err)
	require.Len(t, res.Regions, 1)
	assert.Equal(t, "Milk 1.19", res.Regions[0].Text)
	assert.Equal(t, float64(92), res.Regions[0].Confidence)
	assert.Equal(t, 200, res.Regions[0].Width)
}

func TestParseGeminiRegionsRejectsProse(t *testing.T) {
	_, err := parseGeminiRegions("Sure! Here are the lines I found:")
	assert.Error(t, err)
}
