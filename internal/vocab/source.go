package vocab

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Source fetches the full ingredient vocabulary from the external
// store. Implementations return a complete, consistent set per call.
type Source interface {
	FetchAll(ctx context.Context) ([]Ingredient, error)
}

// PostgresSource reads the vocabulary from the managed datastore.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a source backed by the given pool.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// FetchAll loads every ingredient, ordered by name for deterministic
// snapshots.
func (s *PostgresSource) FetchAll(ctx context.Context) ([]Ingredient, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, category FROM ingredients ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying ingredients: %w", err)
	}
	defer rows.Close()

	var out []Ingredient
	for rows.Next() {
		var ing Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Category); err != nil {
			return nil, fmt.Errorf("scanning ingredient row: %w", err)
		}
		out = append(out, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading ingredient rows: %w", err)
	}
	return out, nil
}

// StaticSource serves a fixed vocabulary, for tests and local development.
type StaticSource struct {
	Ingredients []Ingredient
	Err         error
}

// FetchAll returns the configured entries.
func (s *StaticSource) FetchAll(ctx context.Context) ([]Ingredient, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]Ingredient(nil), s.Ingredients...), nil
}
