package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openpantry/pantryd/internal/pipeline"
	"github.com/openpantry/pantryd/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	vocabStatus := "ready"
	if _, err := s.vocab.Snapshot(); err != nil {
		vocabStatus = "unavailable"
	}

	response := HealthResponse{
		Status:     "healthy",
		Version:    version.Version,
		Vocabulary: vocabStatus,
		Time:       time.Now().UTC().Format(time.RFC3339),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// scanReceiptHandler processes a multipart receipt image upload through
// the full scan pipeline.
func (s *Server) scanReceiptHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	select {
	case s.scanSlots <- struct{}{}:
		defer func() { <-s.scanSlots }()
	default:
		s.writeError(w, http.StatusServiceUnavailable, "BUSY", "too many concurrent scans, retry later")
		return
	}

	maxBytes := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "too large") {
			s.writeError(w, http.StatusRequestEntityTooLarge, string(pipeline.CodeFileTooLarge), "uploaded file is too large")
		} else {
			s.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "failed to parse form data")
		}
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "no image file provided")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, string(pipeline.CodeInternal), "failed to read image data")
		return
	}
	uploadSizeBytes.Observe(float64(len(data)))

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout())
	defer cancel()

	start := time.Now()
	res, err := s.scanner.ProcessReceipt(ctx, data, header.Header.Get("Content-Type"), r.FormValue("languages"))
	scanDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		code := pipeline.CodeOf(err)
		scanRequestsTotal.WithLabelValues(string(code)).Inc()
		s.logger.Warn("receipt scan failed", "code", code, "error", err)
		s.writeError(w, statusForCode(code), string(code), publicMessage(err, code))
		return
	}

	scanRequestsTotal.WithLabelValues("ok").Inc()
	scanItemsDetected.Observe(float64(res.TotalItemsDetected))

	s.writeJSON(w, http.StatusOK, ScanResponse{Success: true, Result: res})
}

// vocabularyStatusHandler reports the loaded vocabulary snapshot.
func (s *Server) vocabularyStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap, err := s.vocab.Snapshot()
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, string(pipeline.CodeVocabUnavailable), "ingredient vocabulary is not loaded yet")
		return
	}

	s.writeJSON(w, http.StatusOK, VocabularyStatusResponse{
		Entries:  snap.Len(),
		LoadedAt: snap.LoadedAt.Format(time.RFC3339),
	})
}

// vocabularyRefreshHandler forces a vocabulary refresh from the source.
func (s *Server) vocabularyRefreshHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.vocab.Refresh(r.Context()); err != nil {
		vocabRefreshTotal.WithLabelValues("error").Inc()
		s.logger.Error("vocabulary refresh failed", "error", err)
		s.writeError(w, http.StatusBadGateway, "REFRESH_FAILED", "vocabulary source is unreachable")
		return
	}
	vocabRefreshTotal.WithLabelValues("ok").Inc()

	snap, err := s.vocab.Snapshot()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, string(pipeline.CodeInternal), "vocabulary refresh did not produce a snapshot")
		return
	}

	s.writeJSON(w, http.StatusOK, VocabularyStatusResponse{
		Entries:  snap.Len(),
		LoadedAt: snap.LoadedAt.Format(time.RFC3339),
	})
}

// statusForCode maps pipeline failure codes to HTTP status codes.
func statusForCode(code pipeline.ErrorCode) int {
	switch code {
	case pipeline.CodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case pipeline.CodeInvalidImageType, pipeline.CodeInvalidDims,
		pipeline.CodeMaliciousContent, pipeline.CodeCorruptImage:
		return http.StatusBadRequest
	case pipeline.CodeOCRTimeout:
		return http.StatusGatewayTimeout
	case pipeline.CodeVocabUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the caller-safe message for a pipeline failure.
// Internal and engine errors keep their generic wrapper text.
func publicMessage(err error, code pipeline.ErrorCode) string {
	var perr *pipeline.Error
	if errors.As(err, &perr) {
		return perr.Message
	}
	if code == pipeline.CodeInternal {
		return "internal processing error"
	}
	return string(code)
}

// writeJSON writes a JSON response with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, ErrorResponse{Success: false, Code: code, Error: message})
}
