// Package media stores uploaded files and records their metadata.
package media

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Media is one row of the medias table.
type Media struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Alt       string    `json:"alt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository handles medias table operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert records a stored file. Rows are never updated or deleted here.
func (r *Repository) Insert(ctx context.Context, key Key, alt string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO medias (key, alt) VALUES ($1, $2)`,
		key.String(), alt,
	)
	if err != nil {
		return fmt.Errorf("insert media: %w", err)
	}
	return nil
}

// List returns the most recent records first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Media, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, key, alt, created_at
		 FROM medias
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list medias: %w", err)
	}
	defer rows.Close()

	var out []Media
	for rows.Next() {
		var m Media
		if err := rows.Scan(&m.ID, &m.Key, &m.Alt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate medias: %w", err)
	}
	return out, nil
}
