package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindCanonical matches whole words only. Key and alias are both
// space-separated words, and padding each with a space keeps "ctg" from
// matching inside "ctgx".
func (s *Store) FindCanonical(ctx context.Context, key string) (string, error) {
	query := `
		SELECT canonical
		FROM stop_aliases
		WHERE POSITION(' ' || alias || ' ' IN ' ' || $1 || ' ') > 0
		ORDER BY LENGTH(alias) DESC, created_at DESC
		LIMIT 1
	`

	var canonical string

	err := s.db.QueryRowContext(ctx, query, key).Scan(&canonical)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding stop alias: %w", err)
	}

	return canonical, nil
}

func (s *Store) CreateAlias(ctx context.Context, key, canonical string) error {
	query := `
		INSERT INTO stop_aliases (alias, canonical, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (alias) DO UPDATE SET canonical = EXCLUDED.canonical, created_at = NOW()
	`

	_, err := s.db.ExecContext(ctx, query, key, canonical)
	if err != nil {
		return fmt.Errorf("creating stop alias: %w", err)
	}

	return nil
}
