// Package receipt segments raw OCR text into candidate line items.
// Parsing is heuristic by design: receipts vary across retailers, so a
// line that defies the patterns is dropped rather than failing the
// whole receipt.
package receipt

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/openpantry/pantryd/internal/ocr"
)

// Config holds parsing thresholds.
type Config struct {
	// MinLineRunes is the minimum line length; shorter lines are noise.
	MinLineRunes int
}

// DefaultConfig returns parser defaults.
func DefaultConfig() Config {
	return Config{MinLineRunes: 3}
}

// Candidate is one parsed, not-yet-matched receipt entry. Name is never
// empty: lines yielding no plausible name are dropped, not emitted.
type Candidate struct {
	RawText    string   `json:"raw_text"`
	Name       string   `json:"extracted_name"`
	Confidence float64  `json:"confidence"`
	Quantity   *float64 `json:"quantity,omitempty"`
	Unit       *string  `json:"unit,omitempty"`
	Price      *float64 `json:"price,omitempty"`
}

// StoreInfo is the best-effort detected store header.
type StoreInfo struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Summary carries receipt-level fields extracted from lines that are
// excluded from the item candidates. Extraction is best-effort; absent
// fields are not an error.
type Summary struct {
	Store       *StoreInfo `json:"store_info,omitempty"`
	TotalAmount *float64   `json:"total_amount,omitempty"`
}

// Parser turns OCR output into ordered line candidates.
type Parser struct {
	cfg   Config
	title cases.Caser
}

// NewParser creates a parser with the given config.
func NewParser(cfg Config) *Parser {
	if cfg.MinLineRunes <= 0 {
		cfg.MinLineRunes = DefaultConfig().MinLineRunes
	}
	return &Parser{cfg: cfg, title: cases.Title(language.English)}
}

// Parse segments the recognized text into candidates, preserving source
// line order, and collects receipt-level summary fields.
func (p *Parser) Parse(res *ocr.Result) ([]Candidate, Summary) {
	var (
		candidates []Candidate
		summary    Summary
		firstSeen  bool
	)
	mean := res.MeanConfidence()

	for _, line := range strings.Split(res.FullText, "\n") {
		trimmed := strings.TrimSpace(line)
		if utf8.RuneCountInString(trimmed) < p.cfg.MinLineRunes {
			continue
		}

		if isNonItemLine(trimmed) {
			if total := extractTotal(trimmed); total != nil {
				summary.TotalAmount = total
			}
			continue
		}

		price, rest := extractPrice(trimmed)

		// The first content line without a price is the store header on
		// a typical till printout.
		if !firstSeen {
			firstSeen = true
			if price == nil && containsLetter(trimmed) {
				summary.Store = &StoreInfo{
					Name:       p.cleanName(trimmed),
					Confidence: p.lineConfidence(trimmed, res, mean),
				}
				continue
			}
		}

		quantity, unit, rest := extractQuantity(rest)

		name := p.cleanName(rest)
		if name == "" || !containsLetter(name) {
			continue
		}

		candidates = append(candidates, Candidate{
			RawText:    trimmed,
			Name:       name,
			Confidence: p.lineConfidence(trimmed, res, mean),
			Quantity:   quantity,
			Unit:       unit,
			Price:      price,
		})
	}

	return candidates, summary
}

// cleanName normalizes leftover line text into an item name: NFC
// normalization, dropping tokens without letters (prices, multipliers,
// separators), whitespace collapse, and title casing.
func (p *Parser) cleanName(s string) string {
	s = norm.NFC.String(s)
	fields := strings.Fields(s)
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:()[]*#=+-")
		if f == "" || !containsLetter(f) {
			continue
		}
		kept = append(kept, f)
	}
	if len(kept) == 0 {
		return ""
	}
	return p.title.String(strings.Join(kept, " "))
}

// lineConfidence is the minimum confidence of the OCR regions whose
// text overlaps this line; a low-confidence fragment degrades the whole
// line's trust. Lines matching no region fall back to the receipt mean.
func (p *Parser) lineConfidence(line string, res *ocr.Result, fallback float64) float64 {
	lower := strings.ToLower(line)
	minConf := -1.0
	for _, reg := range res.Regions {
		regText := strings.ToLower(strings.TrimSpace(reg.Text))
		if regText == "" {
			continue
		}
		if strings.Contains(lower, regText) || strings.Contains(regText, lower) {
			if minConf < 0 || reg.Confidence < minConf {
				minConf = reg.Confidence
			}
		}
	}
	if minConf < 0 {
		return fallback
	}
	return minConf
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
