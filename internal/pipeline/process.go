package pipeline

import (
	"context"

	"github.com/openpantry/pantryd/internal/common"
)

// Stage names used in typed errors and logs.
const (
	StageHarden = "harden"
	StageOCR    = "ocr"
	StageParse  = "parse"
	StageMatch  = "match"
)

// ProcessReceipt runs a receipt image through harden, OCR, parse, and
// match. declaredType is the client-declared MIME type and may be
// empty. langHint overrides the configured OCR languages when set.
// The first failing stage aborts the run; later stages never observe
// partial input.
func (p *Pipeline) ProcessReceipt(ctx context.Context, data []byte, declaredType, langHint string) (*Result, error) {
	total := common.NewNamedTimer("receipt")
	var timings StageTimings

	// The vocabulary gate runs first so a cold cache fails before any
	// expensive image work.
	snap, err := p.vocab.Snapshot()
	if err != nil {
		return nil, stageError(StageMatch, err)
	}

	harden := common.NewNamedTimer(StageHarden)
	hardened, err := p.hardener.Harden(data, declaredType)
	timings.HardenMs = harden.Stop().Milliseconds()
	if err != nil {
		p.logger.Warn("image rejected", "error", err)
		return nil, stageError(StageHarden, err)
	}

	ocrTimer := common.NewNamedTimer(StageOCR)
	recognized, err := p.adapter.Recognize(ctx, hardened, langHint)
	timings.OCRMs = ocrTimer.Stop().Milliseconds()
	if err != nil {
		p.logger.Warn("ocr failed", "error", err)
		return nil, stageError(StageOCR, err)
	}

	parse := common.NewNamedTimer(StageParse)
	candidates, summary := p.parser.Parse(recognized)
	timings.ParseMs = parse.Stop().Milliseconds()

	matchTimer := common.NewNamedTimer(StageMatch)
	items := make([]DetectedItem, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, DetectedItem{
			RawText:     c.RawText,
			Name:        c.Name,
			Confidence:  c.Confidence,
			Quantity:    c.Quantity,
			Unit:        c.Unit,
			Price:       c.Price,
			Suggestions: p.matcher.Match(c.Name, snap),
		})
	}
	timings.MatchMs = matchTimer.Stop().Milliseconds()

	res := &Result{
		DetectedItems:      items,
		TotalItemsDetected: len(items),
		ProcessingTimeMs:   total.Stop().Milliseconds(),
		OCRConfidence:      recognized.MeanConfidence(),
		TotalAmount:        summary.TotalAmount,
		StoreInfo:          summary.Store,
		Timings:            timings,
	}

	p.logger.Info("receipt processed",
		"items", res.TotalItemsDetected,
		"ocr_confidence", res.OCRConfidence,
		"duration_ms", res.ProcessingTimeMs)

	return res, nil
}
