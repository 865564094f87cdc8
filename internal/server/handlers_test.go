package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpantry/pantryd/internal/pipeline"
)

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.healthHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "ready", resp.Vocabulary)
	assert.NotEmpty(t, resp.Time)
}

func TestHealthHandlerMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.healthHandler(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestScanReceiptHandler(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.scanReceiptHandler(rec, validReceiptUpload(t))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ScanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 3, resp.Result.TotalItemsDetected)
	require.NotEmpty(t, resp.Result.DetectedItems)
	assert.Equal(t, "Bananas", resp.Result.DetectedItems[0].Name)
}

func TestScanReceiptHandlerNoFile(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/receipts/scan", nil)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=none")
	rec := httptest.NewRecorder()
	s.scanReceiptHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScanReceiptHandlerPipelineErrors(t *testing.T) {
	tests := []struct {
		name       string
		code       pipeline.ErrorCode
		wantStatus int
	}{
		{"file too large", pipeline.CodeFileTooLarge, http.StatusRequestEntityTooLarge},
		{"invalid type", pipeline.CodeInvalidImageType, http.StatusBadRequest},
		{"invalid dimensions", pipeline.CodeInvalidDims, http.StatusBadRequest},
		{"malicious content", pipeline.CodeMaliciousContent, http.StatusBadRequest},
		{"corrupt image", pipeline.CodeCorruptImage, http.StatusBadRequest},
		{"ocr timeout", pipeline.CodeOCRTimeout, http.StatusGatewayTimeout},
		{"ocr engine error", pipeline.CodeOCRError, http.StatusInternalServerError},
		{"vocabulary unavailable", pipeline.CodeVocabUnavailable, http.StatusServiceUnavailable},
		{"internal", pipeline.CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanner := &mockScanner{err: &pipeline.Error{Code: tt.code, Stage: "test", Message: "rejected"}}
			s := newMockServer(t, scanner)

			rec := httptest.NewRecorder()
			s.scanReceiptHandler(rec, validReceiptUpload(t))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, string(tt.code), resp.Code)
		})
	}
}

func TestScanReceiptHandlerBusy(t *testing.T) {
	s := newTestServer(t)

	// Fill every scan slot so the next request is turned away.
	for i := 0; i < cap(s.scanSlots); i++ {
		s.scanSlots <- struct{}{}
	}

	rec := httptest.NewRecorder()
	s.scanReceiptHandler(rec, validReceiptUpload(t))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestVocabularyStatusHandler(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.vocabularyStatusHandler(rec, httptest.NewRequest(http.MethodGet, "/vocabulary", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp VocabularyStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Entries)
	assert.NotEmpty(t, resp.LoadedAt)
}

func TestVocabularyRefreshHandler(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.vocabularyRefreshHandler(rec, httptest.NewRequest(http.MethodPost, "/vocabulary/refresh", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp VocabularyStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Entries)
}

func TestVocabularyRefreshHandlerMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.vocabularyRefreshHandler(rec, httptest.NewRequest(http.MethodGet, "/vocabulary/refresh", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStatusForCode(t *testing.T) {
	assert.Equal(t, http.StatusRequestEntityTooLarge, statusForCode(pipeline.CodeFileTooLarge))
	assert.Equal(t, http.StatusBadRequest, statusForCode(pipeline.CodeMaliciousContent))
	assert.Equal(t, http.StatusGatewayTimeout, statusForCode(pipeline.CodeOCRTimeout))
	assert.Equal(t, http.StatusServiceUnavailable, statusForCode(pipeline.CodeVocabUnavailable))
	assert.Equal(t, http.StatusInternalServerError, statusForCode(pipeline.ErrorCode("UNKNOWN")))
}
