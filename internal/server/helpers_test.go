package server

import (
	"bytes"
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openpantry/pantryd/internal/config"
	"github.com/openpantry/pantryd/internal/ocr"
	"github.com/openpantry/pantryd/internal/pipeline"
	"github.com/openpantry/pantryd/internal/store"
	"github.com/openpantry/pantryd/internal/testutil"
	"github.com/openpantry/pantryd/internal/vocab"
)

// mockScanner is a scannerInterface stub for error-path tests.
type mockScanner struct {
	result *pipeline.Result
	err    error
	calls  int
}

func (m *mockScanner) ProcessReceipt(ctx context.Context, data []byte, declaredType, langHint string) (*pipeline.Result, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockScanner) Close() error { return nil }

func testServerConfig() config.ServerConfig {
	cfg := config.DefaultConfig().Server
	cfg.MaxConcurrentScans = 2
	return cfg
}

func warmVocabCache(t *testing.T) *vocab.Cache {
	t.Helper()
	source := &vocab.StaticSource{Ingredients: []vocab.Ingredient{
		{ID: "ing-1", Name: "Banana", Category: "fruit"},
		{ID: "ing-2", Name: "Whole Milk", Category: "dairy"},
		{ID: "ing-3", Name: "Bread", Category: "bakery"},
	}}
	cache := vocab.NewCache(source, nil, time.Hour, slog.Default())
	require.NoError(t, cache.Refresh(context.Background()))
	return cache
}

// newTestServer wires a server around a real pipeline with a fake OCR
// engine, an in-memory pantry store, and a warm static vocabulary.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	cache := warmVocabCache(t)
	p, err := pipeline.NewBuilder().
		WithEngine(&ocr.Fake{Result: ocr.FakeReceiptResult()}).
		WithVocabulary(cache).
		Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	return NewServer(testServerConfig(), p, store.NewMemoryStore(), cache, slog.Default())
}

// newMockServer wires a server around a stubbed scanner.
func newMockServer(t *testing.T, scanner scannerInterface) *Server {
	t.Helper()
	return NewServer(testServerConfig(), scanner, store.NewMemoryStore(), warmVocabCache(t), slog.Default())
}

// multipartImageRequest builds a multipart POST with a PNG under the
// "image" field.
func multipartImageRequest(t *testing.T, target string, imageData []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "receipt.png")
	require.NoError(t, err)
	_, err = part.Write(imageData)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func validReceiptUpload(t *testing.T) *http.Request {
	t.Helper()
	return multipartImageRequest(t, "/receipts/scan", testutil.ValidReceiptPNG(t))
}
