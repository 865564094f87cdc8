package ocr

import (
	"context"
	"sync"
	"time"
)

// Fake is a deterministic in-memory Engine for tests and local
// development without an OCR installation. It returns a fixed result
// (or error) after an optional delay and records how it was called.
type Fake struct {
	Result *Result
	Err    error
	Delay  time.Duration

	mu            sync.Mutex
	calls         int
	lastLanguages string
}

// Recognize returns the configured result. It honors context
// cancellation while waiting out Delay.
func (f *Fake) Recognize(ctx context.Context, png []byte, languages string) (*Result, error) {
	f.mu.Lock()
	f.calls++
	f.lastLanguages = languages
	f.mu.Unlock()

	if f.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.Delay):
		}
	}
	if f.Err != nil {
		return nil, f.Err
	}
	// Copy so callers cannot mutate the fixture.
	out := &Result{Regions: append([]Region(nil), f.Result.Regions...), FullText: f.Result.FullText}
	return out, nil
}

// Close implements Engine.
func (f *Fake) Close() error { return nil }

// Calls returns how many times Recognize ran.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastLanguages returns the language list from the most recent call.
func (f *Fake) LastLanguages() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastLanguages
}

// FakeReceiptResult returns a canned recognition result for a small
// grocery receipt, useful as a shared fixture.
func FakeReceiptResult() *Result {
	return &Result{
		Regions: []Region{
			{Text: "SUPERMART", Confidence: 96, X: 40, Y: 20, Width: 200, Height: 24},
			{Text: "Bananas 3x 0.25 = 0.75", Confidence: 91, X: 20, Y: 60, Width: 300, Height: 20},
			{Text: "Whole Milk 1l 1.19", Confidence: 88, X: 20, Y: 84, Width: 280, Height: 20},
			{Text: "Bread 2.49", Confidence: 93, X: 20, Y: 108, Width: 180, Height: 20},
			{Text: "TOTAL: 4.43", Confidence: 95, X: 20, Y: 140, Width: 160, Height: 20},
		},
	}
}
