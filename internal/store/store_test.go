package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	created, err := s.Create(ctx, ItemInput{Name: "Whole Milk", Category: "dairy", Quantity: 1, Unit: "l"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	expires := time.Now().UTC().Add(72 * time.Hour)
	updated, err := s.Update(ctx, created.ID, ItemInput{Name: "Whole Milk", Quantity: 2, Unit: "l", ExpiresAt: &expires})
	require.NoError(t, err)
	assert.Equal(t, 2.0, updated.Quantity)
	require.NotNil(t, updated.ExpiresAt)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	require.NoError(t, s.Delete(ctx, created.ID))
	_, err = s.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreListOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, name := range []string{"Oats", "Butter", "Flour"} {
		_, err := s.Create(ctx, ItemInput{Name: name, Quantity: 1})
		require.NoError(t, err)
	}

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Butter", items[0].Name)
	assert.Equal(t, "Flour", items[1].Name)
	assert.Equal(t, "Oats", items[2].Name)
}

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Update(ctx, uuid.New(), ItemInput{Name: "Ghost", Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, uuid.New()), ErrNotFound)
}

func TestItemInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      ItemInput
		wantErr bool
	}{
		{"valid", ItemInput{Name: "Rice", Quantity: 1}, false},
		{"zero quantity ok", ItemInput{Name: "Rice"}, false},
		{"missing name", ItemInput{Quantity: 1}, true},
		{"negative quantity", ItemInput{Name: "Rice", Quantity: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
