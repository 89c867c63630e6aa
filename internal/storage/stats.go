package storage

import (
	"context"
	"fmt"

	"github.com/claude/wodcoach/internal/models"
)

// GetDataStats returns aggregate statistics for all stored data.
func (db *DB) GetDataStats(ctx context.Context) (*models.DataStats, error) {
	stats := &models.DataStats{}

	err := db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM movements),
			(SELECT COUNT(*) FROM benchmarks),
			(SELECT COUNT(*) FROM percentile_tables),
			(SELECT COUNT(*) FROM athletes),
			(SELECT COUNT(*) FROM athlete_benchmarks)
	`).Scan(&stats.Movements, &stats.Benchmarks, &stats.PercentileTables, &stats.Athletes, &stats.Results)
	if err != nil {
		return nil, fmt.Errorf("counting rows: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT MIN(recorded_at), MAX(recorded_at) FROM athlete_benchmarks`,
	).Scan(&stats.EarliestResult, &stats.LatestResult)
	if err != nil {
		return nil, fmt.Errorf("querying date range: %w", err)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT benchmark_code, COUNT(*), COUNT(DISTINCT athlete_id)
		FROM athlete_benchmarks
		GROUP BY benchmark_code
		ORDER BY COUNT(*) DESC, benchmark_code
	`)
	if err != nil {
		return nil, fmt.Errorf("querying results by benchmark: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.BenchmarkCount
		if err := rows.Scan(&c.Code, &c.Count, &c.Athletes); err != nil {
			return nil, fmt.Errorf("scanning benchmark count: %w", err)
		}
		stats.ResultsByBenchmark = append(stats.ResultsByBenchmark, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
