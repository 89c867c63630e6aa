package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/wodcoach/internal/models"
	"github.com/claude/wodcoach/internal/percentile"
	"github.com/google/uuid"
)

// ListBenchmarks returns all benchmark definitions.
func (db *DB) ListBenchmarks(ctx context.Context) ([]models.Benchmark, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT code, name, category, metric_type, unit FROM benchmarks ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("querying benchmarks: %w", err)
	}
	defer rows.Close()

	var result []models.Benchmark
	for rows.Next() {
		var b models.Benchmark
		if err := rows.Scan(&b.Code, &b.Name, &b.Category, &b.MetricType, &b.Unit); err != nil {
			return nil, fmt.Errorf("scanning benchmark: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// ListAthleteBenchmarks returns every recorded result of an athlete, newest
// first.
func (db *DB) ListAthleteBenchmarks(ctx context.Context, athleteID uuid.UUID) ([]models.AthleteBenchmark, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT athlete_id, benchmark_code, value, recorded_at
		FROM athlete_benchmarks
		WHERE athlete_id = $1
		ORDER BY recorded_at DESC
	`, athleteID)
	if err != nil {
		return nil, fmt.Errorf("querying athlete benchmarks: %w", err)
	}
	defer rows.Close()

	var result []models.AthleteBenchmark
	for rows.Next() {
		var r models.AthleteBenchmark
		if err := rows.Scan(&r.AthleteID, &r.BenchmarkCode, &r.Value, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning athlete benchmark: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// RecordBenchmark stores a result. A zero RecordedAt means now. Unknown
// athletes or benchmark codes are reported as ErrNotFound.
func (db *DB) RecordBenchmark(ctx context.Context, r models.AthleteBenchmark) error {
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now().UTC()
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO athlete_benchmarks (athlete_id, benchmark_code, value, recorded_at)
		VALUES ($1, $2, $3, $4)
	`, r.AthleteID, r.BenchmarkCode, r.Value, r.RecordedAt)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("recording %s for %s: %w", r.BenchmarkCode, r.AthleteID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("recording %s for %s: %w", r.BenchmarkCode, r.AthleteID, err)
	}
	return nil
}

// ListBenchmarkLinks returns all benchmark to movement links.
func (db *DB) ListBenchmarkLinks(ctx context.Context) ([]models.BenchmarkLink, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT benchmark_code, movement_id, relevance FROM benchmark_links ORDER BY movement_id, benchmark_code`)
	if err != nil {
		return nil, fmt.Errorf("querying benchmark links: %w", err)
	}
	defer rows.Close()

	var result []models.BenchmarkLink
	for rows.Next() {
		var l models.BenchmarkLink
		if err := rows.Scan(&l.BenchmarkCode, &l.MovementID, &l.Relevance); err != nil {
			return nil, fmt.Errorf("scanning benchmark link: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

// ListPercentileTables returns every population table.
func (db *DB) ListPercentileTables(ctx context.Context) ([]percentile.Table, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT benchmark_code, gender, experience, p20, p40, p60, p80, p95
		FROM percentile_tables
		ORDER BY benchmark_code, gender, experience
	`)
	if err != nil {
		return nil, fmt.Errorf("querying percentile tables: %w", err)
	}
	defer rows.Close()

	var result []percentile.Table
	for rows.Next() {
		var (
			t                       percentile.Table
			p20, p40, p60, p80, p95 float64
		)
		if err := rows.Scan(&t.BenchmarkCode, &t.Gender, &t.Experience, &p20, &p40, &p60, &p80, &p95); err != nil {
			return nil, fmt.Errorf("scanning percentile table: %w", err)
		}
		t.Brackets = percentile.NewBrackets(p20, p40, p60, p80, p95)
		result = append(result, t)
	}
	return result, rows.Err()
}
