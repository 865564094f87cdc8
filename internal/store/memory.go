package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps pantry items in a map guarded by a mutex.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]Item
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[uuid.UUID]Item)}
}

// List returns all items ordered by name.
func (s *MemoryStore) List(ctx context.Context) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// Get returns one item by ID.
func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &it, nil
}

// Create inserts a new item.
func (s *MemoryStore) Create(ctx context.Context, in ItemInput) (*Item, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	it := Item{
		ID:        uuid.New(),
		Name:      in.Name,
		Category:  in.Category,
		Quantity:  in.Quantity,
		Unit:      in.Unit,
		ExpiresAt: in.ExpiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.items[it.ID] = it
	s.mu.Unlock()
	return &it, nil
}

// Update replaces the caller-settable fields of an existing item.
func (s *MemoryStore) Update(ctx context.Context, id uuid.UUID, in ItemInput) (*Item, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	it.Name = in.Name
	it.Category = in.Category
	it.Quantity = in.Quantity
	it.Unit = in.Unit
	it.ExpiresAt = in.ExpiresAt
	it.UpdatedAt = time.Now().UTC()
	s.items[id] = it
	return &it, nil
}

// Delete removes an item by ID.
func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}
