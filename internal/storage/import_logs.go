package storage

import (
	"context"
	"fmt"
	"time"
)

// ImportLog represents a single seed import's outcome.
type ImportLog struct {
	ID           int64     `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Source       string    `json:"source"`
	Status       string    `json:"status"`
	Movements    int       `json:"movements"`
	Benchmarks   int       `json:"benchmarks"`
	Tables       int       `json:"tables"`
	Athletes     int       `json:"athletes"`
	Results      int       `json:"results"`
	DurationMs   *int      `json:"duration_ms"`
	ErrorMessage *string   `json:"error_message"`
}

// InsertImportLog creates a new import log entry and returns its ID.
func (db *DB) InsertImportLog(ctx context.Context, log ImportLog) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO seed_imports (source, status, movements, benchmarks, tables, athletes, results, duration_ms, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		log.Source, log.Status, log.Movements, log.Benchmarks, log.Tables,
		log.Athletes, log.Results, log.DurationMs, log.ErrorMessage,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting import log: %w", err)
	}
	return id, nil
}

// UpdateImportLog updates an existing import log entry (typically from "running" to "success" or "error").
func (db *DB) UpdateImportLog(ctx context.Context, id int64, log ImportLog) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE seed_imports SET
		 status = $2, movements = $3, benchmarks = $4, tables = $5,
		 athletes = $6, results = $7, duration_ms = $8, error_message = $9
		 WHERE id = $1`,
		id, log.Status, log.Movements, log.Benchmarks, log.Tables,
		log.Athletes, log.Results, log.DurationMs, log.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("updating import log %d: %w", id, err)
	}
	return nil
}

// QueryImportLogs returns the most recent seed imports.
func (db *DB) QueryImportLogs(ctx context.Context, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, created_at, source, status, movements, benchmarks, tables,
		 athletes, results, duration_ms, error_message
		 FROM seed_imports
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	var result []ImportLog
	for rows.Next() {
		var l ImportLog
		if err := rows.Scan(&l.ID, &l.CreatedAt, &l.Source, &l.Status,
			&l.Movements, &l.Benchmarks, &l.Tables, &l.Athletes, &l.Results,
			&l.DurationMs, &l.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
