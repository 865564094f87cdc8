package pipeline

import (
	"github.com/openpantry/pantryd/internal/match"
	"github.com/openpantry/pantryd/internal/receipt"
)

// DetectedItem is one parsed receipt line together with its ranked
// ingredient suggestions.
type DetectedItem struct {
	RawText     string             `json:"raw_text" yaml:"raw_text"`
	Name        string             `json:"extracted_name" yaml:"extracted_name"`
	Confidence  float64            `json:"confidence" yaml:"confidence"`
	Quantity    *float64           `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Unit        *string            `json:"unit,omitempty" yaml:"unit,omitempty"`
	Price       *float64           `json:"price,omitempty" yaml:"price,omitempty"`
	Suggestions []match.Suggestion `json:"suggestions" yaml:"suggestions"`
}

// StageTimings records wall-clock milliseconds per pipeline stage.
type StageTimings struct {
	HardenMs int64 `json:"harden_ms" yaml:"harden_ms"`
	OCRMs    int64 `json:"ocr_ms" yaml:"ocr_ms"`
	ParseMs  int64 `json:"parse_ms" yaml:"parse_ms"`
	MatchMs  int64 `json:"match_ms" yaml:"match_ms"`
}

// Result is the final structured outcome for one receipt image. It is
// constructed once per request and not persisted by the pipeline.
type Result struct {
	DetectedItems      []DetectedItem      `json:"detected_items" yaml:"detected_items"`
	TotalItemsDetected int                 `json:"total_items_detected" yaml:"total_items_detected"`
	ProcessingTimeMs   int64               `json:"processing_time_ms" yaml:"processing_time_ms"`
	OCRConfidence      float64             `json:"ocr_confidence" yaml:"ocr_confidence"`
	TotalAmount        *float64            `json:"total_amount,omitempty" yaml:"total_amount,omitempty"`
	StoreInfo          *receipt.StoreInfo  `json:"store_info,omitempty" yaml:"store_info,omitempty"`
	Timings            StageTimings        `json:"timings" yaml:"timings"`
}
