// Package vocab owns the ingredient vocabulary: the reference set of
// known ingredient names the matcher ranks against. The live store is
// an external collaborator; this package loads snapshots from it,
// persists them locally, and serves them through an atomically swapped
// cache so readers always see a complete vocabulary.
package vocab

import (
	"errors"
	"time"
)

// ErrUnavailable is returned when no vocabulary snapshot has ever been
// loaded, e.g. during a startup race. It is transient; callers may retry.
var ErrUnavailable = errors.New("vocabulary snapshot not loaded")

// Ingredient is one entry of the reference vocabulary. Read-only from
// the matcher's perspective.
type Ingredient struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Snapshot is an immutable point-in-time copy of the vocabulary. The
// slice must not be mutated after construction.
type Snapshot struct {
	Ingredients []Ingredient `json:"ingredients"`
	LoadedAt    time.Time    `json:"loaded_at"`
}

// Len returns the number of vocabulary entries.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Ingredients)
}
