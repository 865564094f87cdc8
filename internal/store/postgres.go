package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists pantry items in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const itemColumns = `id, name, category, quantity, unit, expires_at, created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Name, &it.Category, &it.Quantity, &it.Unit,
		&it.ExpiresAt, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// List returns all pantry items ordered by name.
func (s *PostgresStore) List(ctx context.Context) ([]Item, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM pantry_items ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing pantry items: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pantry item: %w", err)
		}
		out = append(out, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading pantry items: %w", err)
	}
	return out, nil
}

// Get returns one item by ID.
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	it, err := scanItem(s.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM pantry_items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching pantry item: %w", err)
	}
	return it, nil
}

// Create inserts a new item and returns it with generated fields.
func (s *PostgresStore) Create(ctx context.Context, in ItemInput) (*Item, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	it, err := scanItem(s.pool.QueryRow(ctx,
		`INSERT INTO pantry_items (id, name, category, quantity, unit, expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 RETURNING `+itemColumns,
		uuid.New(), in.Name, in.Category, in.Quantity, in.Unit, in.ExpiresAt, now))
	if err != nil {
		return nil, fmt.Errorf("creating pantry item: %w", err)
	}
	return it, nil
}

// Update replaces the caller-settable fields of an existing item.
func (s *PostgresStore) Update(ctx context.Context, id uuid.UUID, in ItemInput) (*Item, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	it, err := scanItem(s.pool.QueryRow(ctx,
		`UPDATE pantry_items
		 SET name = $2, category = $3, quantity = $4, unit = $5, expires_at = $6, updated_at = $7
		 WHERE id = $1
		 RETURNING `+itemColumns,
		id, in.Name, in.Category, in.Quantity, in.Unit, in.ExpiresAt, time.Now().UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating pantry item: %w", err)
	}
	return it, nil
}

// Delete removes an item by ID.
func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM pantry_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting pantry item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
