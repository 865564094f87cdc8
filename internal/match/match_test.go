package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpantry/pantryd/internal/vocab"
)

func snapshotOf(ingredients ...vocab.Ingredient) *vocab.Snapshot {
	return &vocab.Snapshot{Ingredients: ingredients, LoadedAt: time.Now()}
}

func TestExactMatch(t *testing.T) {
	snap := snapshotOf(
		vocab.Ingredient{ID: "ing-1", Name: "Banana", Category: "fruit"},
		vocab.Ingredient{ID: "ing-2", Name: "Bread", Category: "bakery"},
	)
	m := NewMatcher(DefaultConfig())

	got := m.Match("Banana", snap)
	require.Len(t, got, 1)
	assert.Equal(t, "ing-1", got[0].IngredientID)
	assert.Equal(t, float64(100), got[0].Confidence)
	assert.Equal(t, MatchExact, got[0].MatchType)
}

func TestExactMatchAfterNormalization(t *testing.T) {
	snap := snapshotOf(vocab.Ingredient{ID: "ing-1", Name: "Banana", Category: "fruit"})
	m := NewMatcher(DefaultConfig())

	// Plural, casing, and punctuation differences still match exactly.
	for _, query := range []string{"Bananas", "banana", "BANANA!", "  bananas  "} {
		got := m.Match(query, snap)
		require.Len(t, got, 1, "query %q", query)
		assert.Equal(t, MatchExact, got[0].MatchType, "query %q", query)
		assert.Equal(t, float64(100), got[0].Confidence, "query %q", query)
	}
}

func TestPartialMatchesOrderedByConfidence(t *testing.T) {
	snap := snapshotOf(
		vocab.Ingredient{ID: "ing-1", Name: "Whole Milk", Category: "dairy"},
		vocab.Ingredient{ID: "ing-2", Name: "Low-fat Milk", Category: "dairy"},
	)
	m := NewMatcher(DefaultConfig())

	got := m.Match("Milk", snap)
	require.Len(t, got, 2)
	assert.Equal(t, "Whole Milk", got[0].Name)
	assert.Equal(t, MatchPartial, got[0].MatchType)
	assert.Equal(t, "Low-fat Milk", got[1].Name)
	assert.Equal(t, MatchPartial, got[1].MatchType)
	assert.Greater(t, got[0].Confidence, got[1].Confidence)
	assert.Less(t, got[0].Confidence, float64(100))
}

func TestFuzzyFloorBoundary(t *testing.T) {
	// "abcxy" vs "abcde": levenshtein distance 2 over length 5
	// gives exactly 60 similarity.
	snap := snapshotOf(vocab.Ingredient{ID: "ing-1", Name: "abcde", Category: "test"})

	atFloor := NewMatcher(Config{FuzzyFloor: 60, MaxSuggestions: 5})
	got := atFloor.Match("abcxy", snap)
	require.Len(t, got, 1)
	assert.Equal(t, MatchFuzzy, got[0].MatchType)
	assert.InDelta(t, 60, got[0].Confidence, 0.001)

	aboveFloor := NewMatcher(Config{FuzzyFloor: 61, MaxSuggestions: 5})
	assert.Empty(t, aboveFloor.Match("abcxy", snap))
}

func TestFuzzyMatchTolerableTypo(t *testing.T) {
	snap := snapshotOf(vocab.Ingredient{ID: "ing-1", Name: "Tomato", Category: "vegetable"})
	m := NewMatcher(DefaultConfig())

	got := m.Match("Tomaco", snap)
	require.Len(t, got, 1)
	assert.Equal(t, MatchFuzzy, got[0].MatchType)
	assert.GreaterOrEqual(t, got[0].Confidence, float64(60))
}

func TestNoMatchBelowFloor(t *testing.T) {
	snap := snapshotOf(vocab.Ingredient{ID: "ing-1", Name: "Zucchini", Category: "vegetable"})
	m := NewMatcher(DefaultConfig())
	assert.Empty(t, m.Match("Detergent", snap))
}

func TestSuggestionOrderingInvariant(t *testing.T) {
	snap := snapshotOf(
		vocab.Ingredient{ID: "ing-1", Name: "Milk Chocolate", Category: "sweets"},
		vocab.Ingredient{ID: "ing-2", Name: "Whole Milk", Category: "dairy"},
		vocab.Ingredient{ID: "ing-3", Name: "Milk", Category: "dairy"},
		vocab.Ingredient{ID: "ing-4", Name: "Buttermilk", Category: "dairy"},
	)
	m := NewMatcher(DefaultConfig())

	got := m.Match("Milk", snap)
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Confidence, got[i].Confidence)
	}
	assert.Equal(t, "Milk", got[0].Name)
	assert.Equal(t, MatchExact, got[0].MatchType)
}

func TestTieBreakShorterNameThenLexical(t *testing.T) {
	// Same normalized length means identical partial confidence; the
	// shorter canonical name wins, then lexical order.
	snap := snapshotOf(
		vocab.Ingredient{ID: "ing-1", Name: "Milk Foam", Category: "dairy"},
		vocab.Ingredient{ID: "ing-2", Name: "Milk Bath", Category: "dairy"},
	)
	m := NewMatcher(DefaultConfig())

	got := m.Match("Milk", snap)
	require.Len(t, got, 2)
	assert.Equal(t, got[0].Confidence, got[1].Confidence)
	assert.Equal(t, "Milk Bath", got[0].Name)
	assert.Equal(t, "Milk Foam", got[1].Name)
}

func TestTruncationToMaxSuggestions(t *testing.T) {
	var ingredients []vocab.Ingredient
	names := []string{"Milk", "Whole Milk", "Low-fat Milk", "Buttermilk", "Milk Powder", "Oat Milk", "Soy Milk"}
	for i, n := range names {
		ingredients = append(ingredients, vocab.Ingredient{ID: string(rune('a' + i)), Name: n, Category: "dairy"})
	}
	m := NewMatcher(Config{FuzzyFloor: 60, MaxSuggestions: 3})

	got := m.Match("Milk", snapshotOf(ingredients...))
	assert.Len(t, got, 3)
}

func TestDeterminism(t *testing.T) {
	snap := snapshotOf(
		vocab.Ingredient{ID: "ing-1", Name: "Whole Milk", Category: "dairy"},
		vocab.Ingredient{ID: "ing-2", Name: "Oat Milk", Category: "dairy"},
		vocab.Ingredient{ID: "ing-3", Name: "Milk", Category: "dairy"},
	)
	m := NewMatcher(DefaultConfig())

	first := m.Match("milks", snap)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, m.Match("milks", snap))
	}
}

func TestEmptyAndNilInputs(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	assert.Nil(t, m.Match("", snapshotOf(vocab.Ingredient{ID: "x", Name: "Milk"})))
	assert.Nil(t, m.Match("Milk", nil))
	assert.Nil(t, m.Match("...", snapshotOf(vocab.Ingredient{ID: "x", Name: "Milk"})))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Whole Milk", "whole milk"},
		{"Low-fat Milk", "lowfat milk"},
		{"Bananas", "banana"},
		{"Swiss Grass", "swiss grass"},
		{"  CRÈME   fraîche ", "crème fraîche"},
		{"Eggs (12)", "egg 12"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}
