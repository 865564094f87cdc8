// Package match ranks ingredient vocabulary entries against extracted
// receipt item names. Matching is pure with respect to the vocabulary
// snapshot: identical inputs always produce identical, fully ordered
// results.
package match

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/openpantry/pantryd/internal/vocab"
)

// MatchType classifies how a suggestion was derived.
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchPartial MatchType = "partial"
	MatchFuzzy   MatchType = "fuzzy"
)

// Suggestion is one ranked vocabulary candidate for an item name.
type Suggestion struct {
	IngredientID string    `json:"ingredient_id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Confidence   float64   `json:"confidence_score"`
	MatchType    MatchType `json:"match_type"`
}

// Config holds matching thresholds.
type Config struct {
	// FuzzyFloor is the minimum similarity (0-100) for an edit-distance
	// match to be suggested at all.
	FuzzyFloor float64
	// MaxSuggestions truncates the ranked list.
	MaxSuggestions int
}

// DefaultConfig returns matcher defaults.
func DefaultConfig() Config {
	return Config{FuzzyFloor: 60, MaxSuggestions: 5}
}

// Matcher scores extracted names against vocabulary snapshots.
type Matcher struct {
	cfg Config
}

// NewMatcher creates a matcher with the given thresholds.
func NewMatcher(cfg Config) *Matcher {
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = DefaultConfig().MaxSuggestions
	}
	return &Matcher{cfg: cfg}
}

// Match returns ranked suggestions for name against the snapshot:
// confidence descending, ties broken by shorter canonical name then
// lexical order, truncated to MaxSuggestions.
func (m *Matcher) Match(name string, snap *vocab.Snapshot) []Suggestion {
	query := Normalize(name)
	if query == "" || snap == nil {
		return nil
	}

	var out []Suggestion
	for _, ing := range snap.Ingredients {
		candidate := Normalize(ing.Name)
		if candidate == "" {
			continue
		}
		confidence, matchType, ok := m.score(query, candidate)
		if !ok {
			continue
		}
		out = append(out, Suggestion{
			IngredientID: ing.ID,
			Name:         ing.Name,
			Category:     ing.Category,
			Confidence:   confidence,
			MatchType:    matchType,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		if len(out[i].Name) != len(out[j].Name) {
			return len(out[i].Name) < len(out[j].Name)
		}
		return out[i].Name < out[j].Name
	})

	if len(out) > m.cfg.MaxSuggestions {
		out = out[:m.cfg.MaxSuggestions]
	}
	return out
}

// score computes the similarity between two normalized names.
func (m *Matcher) score(query, candidate string) (float64, MatchType, bool) {
	if query == candidate {
		return 100, MatchExact, true
	}

	if strings.Contains(candidate, query) || strings.Contains(query, candidate) {
		shorter := len(query)
		longer := len(candidate)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		confidence := float64(shorter) / float64(longer) * 100
		// Containment of unequal strings never reaches a perfect score.
		if confidence >= 100 {
			confidence = 99
		}
		return confidence, MatchPartial, true
	}

	maxLen := len(query)
	if len(candidate) > maxLen {
		maxLen = len(candidate)
	}
	distance := levenshtein.ComputeDistance(query, candidate)
	similarity := (1 - float64(distance)/float64(maxLen)) * 100
	if similarity < m.cfg.FuzzyFloor {
		return 0, "", false
	}
	return similarity, MatchFuzzy, true
}

// Normalize lowercases, strips punctuation, collapses whitespace, and
// singularizes simple plurals by trailing-"s" removal per word.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	fields := strings.Fields(b.String())
	for i, f := range fields {
		fields[i] = singularize(f)
	}
	return strings.Join(fields, " ")
}

// singularize removes a trailing "s" from simple plurals. Short words
// and "-ss" endings (grass, swiss) are left alone.
func singularize(word string) string {
	if len(word) > 3 && strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") {
		return word[:len(word)-1]
	}
	return word
}
