package storage

import (
	"context"
	"fmt"

	"github.com/claude/wodcoach/internal/models"
)

// ListMovements returns the movement catalog ordered by ID.
func (db *DB) ListMovements(ctx context.Context) ([]models.Movement, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, canonical_name, aliases, category, is_weighted
		FROM movements
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying movements: %w", err)
	}
	defer rows.Close()

	var result []models.Movement
	for rows.Next() {
		var m models.Movement
		if err := rows.Scan(&m.ID, &m.CanonicalName, &m.Aliases, &m.Category, &m.IsWeighted); err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
