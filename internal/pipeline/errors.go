package pipeline

import (
	"errors"
	"fmt"

	"github.com/openpantry/pantryd/internal/imaging"
	"github.com/openpantry/pantryd/internal/ocr"
	"github.com/openpantry/pantryd/internal/vocab"
)

// ErrorCode identifies a typed pipeline failure.
type ErrorCode string

const (
	CodeFileTooLarge     ErrorCode = "FILE_TOO_LARGE"
	CodeInvalidImageType ErrorCode = "INVALID_IMAGE_TYPE"
	CodeInvalidDims      ErrorCode = "INVALID_DIMENSIONS"
	CodeMaliciousContent ErrorCode = "MALICIOUS_CONTENT"
	CodeCorruptImage     ErrorCode = "CORRUPT_IMAGE"
	CodeOCRTimeout       ErrorCode = "OCR_TIMEOUT"
	CodeOCRError         ErrorCode = "OCR_ERROR"
	CodeVocabUnavailable ErrorCode = "VOCABULARY_UNAVAILABLE"
	CodeInternal         ErrorCode = "INTERNAL"
)

// Error is a typed failure from one pipeline stage. Message is safe to
// surface to callers; Err keeps the underlying cause for logging.
type Error struct {
	Code    ErrorCode
	Stage   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s stage failed: %s: %s", e.Stage, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the ErrorCode from an error chain, defaulting to
// CodeInternal for untyped failures.
func CodeOf(err error) ErrorCode {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Code
	}
	return CodeInternal
}

// stageError wraps a component failure into a typed pipeline error,
// preserving component codes and hiding untyped internals behind a
// generic message.
func stageError(stage string, err error) *Error {
	var verr *imaging.ValidationError
	if errors.As(err, &verr) {
		return &Error{Code: ErrorCode(verr.Code), Stage: stage, Message: verr.Message, Err: err}
	}

	var oerr *ocr.Error
	if errors.As(err, &oerr) {
		return &Error{Code: ErrorCode(oerr.Code), Stage: stage, Message: oerr.Message, Err: err}
	}

	if errors.Is(err, vocab.ErrUnavailable) {
		return &Error{
			Code:    CodeVocabUnavailable,
			Stage:   stage,
			Message: "ingredient vocabulary is not loaded yet",
			Err:     err,
		}
	}

	return &Error{
		Code:    CodeInternal,
		Stage:   stage,
		Message: "internal processing error",
		Err:     err,
	}
}
