// Package store persists pantry items. The Postgres implementation is
// the production path; the memory implementation backs tests and local
// development without a database.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no item exists for the given ID.
var ErrNotFound = errors.New("pantry item not found")

// Item is one pantry entry.
type Item struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Category  string     `json:"category,omitempty"`
	Quantity  float64    `json:"quantity"`
	Unit      string     `json:"unit,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ItemInput carries the caller-settable fields for create and update.
type ItemInput struct {
	Name      string     `json:"name"`
	Category  string     `json:"category,omitempty"`
	Quantity  float64    `json:"quantity"`
	Unit      string     `json:"unit,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Validate checks the input for a create or update.
func (in *ItemInput) Validate() error {
	if in.Name == "" {
		return errors.New("item name is required")
	}
	if in.Quantity < 0 {
		return errors.New("item quantity cannot be negative")
	}
	return nil
}

// Store is the pantry persistence interface.
type Store interface {
	List(ctx context.Context) ([]Item, error)
	Get(ctx context.Context, id uuid.UUID) (*Item, error)
	Create(ctx context.Context, in ItemInput) (*Item, error)
	Update(ctx context.Context, id uuid.UUID, in ItemInput) (*Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
