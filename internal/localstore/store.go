// Package localstore is a single-file SQLite implementation of the coach
// data source, for offline tools.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/wodcoach/internal/models"
	"github.com/claude/wodcoach/internal/percentile"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned for missing rows.
var ErrNotFound = models.ErrNotFound

const schema = `
CREATE TABLE IF NOT EXISTS movements (
	id             INTEGER PRIMARY KEY,
	canonical_name TEXT NOT NULL UNIQUE,
	aliases        TEXT NOT NULL DEFAULT '[]',
	category       TEXT NOT NULL,
	is_weighted    INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS benchmarks (
	code        TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	category    TEXT NOT NULL,
	metric_type TEXT NOT NULL,
	unit        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS benchmark_links (
	benchmark_code TEXT NOT NULL,
	movement_id    INTEGER NOT NULL,
	relevance      REAL NOT NULL,
	PRIMARY KEY (benchmark_code, movement_id)
);
CREATE TABLE IF NOT EXISTS percentile_tables (
	benchmark_code TEXT NOT NULL,
	gender         TEXT NOT NULL DEFAULT '',
	experience     TEXT NOT NULL DEFAULT '',
	p20 REAL NOT NULL, p40 REAL NOT NULL, p60 REAL NOT NULL, p80 REAL NOT NULL, p95 REAL NOT NULL,
	PRIMARY KEY (benchmark_code, gender, experience)
);
CREATE TABLE IF NOT EXISTS athletes (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	login         TEXT UNIQUE,
	gender        TEXT NOT NULL DEFAULT '',
	experience    TEXT NOT NULL DEFAULT '',
	bodyweight_kg REAL
);
CREATE TABLE IF NOT EXISTS athlete_benchmarks (
	athlete_id     TEXT NOT NULL,
	benchmark_code TEXT NOT NULL,
	value          REAL NOT NULL,
	recorded_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_athlete_benchmarks_athlete ON athlete_benchmarks (athlete_id);
`

// Store is a SQLite-backed data source.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path. ":memory:" opens a
// private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating store dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	// One connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ImportSeed writes a seed in one transaction, replacing rows with the same
// keys. Results are only added for athletes that had none.
func (s *Store) ImportSeed(ctx context.Context, seed *models.Seed) error {
	if err := seed.Validate(); err != nil {
		return fmt.Errorf("validating seed: %w", err)
	}
	tables, err := seed.PercentileTables()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback()

	for _, m := range seed.Movements {
		if err := upsertMovement(ctx, tx, m); err != nil {
			return err
		}
	}
	for _, b := range seed.Benchmarks {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO benchmarks (code, name, category, metric_type, unit) VALUES (?, ?, ?, ?, ?)`,
			b.Code, b.Name, string(b.Category), string(b.MetricType), b.Unit); err != nil {
			return fmt.Errorf("benchmark %s: %w", b.Code, err)
		}
	}
	for _, l := range seed.Links {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO benchmark_links (benchmark_code, movement_id, relevance) VALUES (?, ?, ?)`,
			l.BenchmarkCode, l.MovementID, l.Relevance); err != nil {
			return fmt.Errorf("link %s/%d: %w", l.BenchmarkCode, l.MovementID, err)
		}
	}
	for _, t := range tables {
		v := t.Brackets.Values()
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO percentile_tables (benchmark_code, gender, experience, p20, p40, p60, p80, p95)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.BenchmarkCode, t.Gender, t.Experience, v[0], v[1], v[2], v[3], v[4]); err != nil {
			return fmt.Errorf("percentile table %s: %w", t.BenchmarkCode, err)
		}
	}
	for _, sa := range seed.Athletes {
		a, err := sa.AthleteProfile()
		if err != nil {
			return err
		}
		var existing int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM athlete_benchmarks WHERE athlete_id = ?`, a.ID).Scan(&existing); err != nil {
			return fmt.Errorf("counting results for %s: %w", a.Name, err)
		}
		if err := upsertAthlete(ctx, tx, a); err != nil {
			return err
		}
		if existing > 0 {
			continue
		}
		for _, r := range sa.Results {
			if err := insertResult(ctx, tx, models.AthleteBenchmark{
				AthleteID: a.ID, BenchmarkCode: r.Benchmark, Value: r.Value, RecordedAt: r.RecordedAt,
			}); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertMovement(ctx context.Context, ex execer, m models.Movement) error {
	aliases := m.Aliases
	if aliases == nil {
		aliases = []string{}
	}
	raw, err := json.Marshal(aliases)
	if err != nil {
		return fmt.Errorf("encoding aliases of %q: %w", m.CanonicalName, err)
	}
	if _, err := ex.ExecContext(ctx,
		`INSERT OR REPLACE INTO movements (id, canonical_name, aliases, category, is_weighted) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.CanonicalName, string(raw), string(m.Category), m.IsWeighted); err != nil {
		return fmt.Errorf("movement %q: %w", m.CanonicalName, err)
	}
	return nil
}

func upsertAthlete(ctx context.Context, ex execer, a models.AthleteProfile) error {
	var login sql.NullString
	if a.Login != "" {
		login = sql.NullString{String: a.Login, Valid: true}
	}
	var bw sql.NullFloat64
	if a.BodyweightKg != nil {
		bw = sql.NullFloat64{Float64: *a.BodyweightKg, Valid: true}
	}
	if _, err := ex.ExecContext(ctx,
		`INSERT INTO athletes (id, name, login, gender, experience, bodyweight_kg) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, login = COALESCE(excluded.login, athletes.login),
			gender = excluded.gender, experience = excluded.experience, bodyweight_kg = excluded.bodyweight_kg`,
		a.ID.String(), a.Name, login, string(a.Gender), string(a.Experience), bw); err != nil {
		return fmt.Errorf("athlete %q: %w", a.Name, err)
	}
	return nil
}

func insertResult(ctx context.Context, ex execer, r models.AthleteBenchmark) error {
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now().UTC()
	}
	if _, err := ex.ExecContext(ctx,
		`INSERT INTO athlete_benchmarks (athlete_id, benchmark_code, value, recorded_at) VALUES (?, ?, ?, ?)`,
		r.AthleteID.String(), r.BenchmarkCode, r.Value, r.RecordedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("recording %s for %s: %w", r.BenchmarkCode, r.AthleteID, err)
	}
	return nil
}

// UpsertAthlete creates or updates an athlete profile.
func (s *Store) UpsertAthlete(ctx context.Context, a models.AthleteProfile) error {
	return upsertAthlete(ctx, s.db, a)
}

// RecordBenchmark stores a result. A zero RecordedAt means now. Unknown
// athletes or benchmark codes are reported as ErrNotFound.
func (s *Store) RecordBenchmark(ctx context.Context, r models.AthleteBenchmark) error {
	var athleteOK, benchmarkOK bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM athletes WHERE id = ?), EXISTS (SELECT 1 FROM benchmarks WHERE code = ?)`,
		r.AthleteID.String(), r.BenchmarkCode).Scan(&athleteOK, &benchmarkOK)
	if err != nil {
		return fmt.Errorf("checking references: %w", err)
	}
	if !athleteOK {
		return fmt.Errorf("athlete %s: %w", r.AthleteID, ErrNotFound)
	}
	if !benchmarkOK {
		return fmt.Errorf("benchmark %s: %w", r.BenchmarkCode, ErrNotFound)
	}
	return insertResult(ctx, s.db, r)
}

// GetDataStats returns aggregate statistics for all stored data.
func (s *Store) GetDataStats(ctx context.Context) (*models.DataStats, error) {
	stats := &models.DataStats{}

	var earliest, latest sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM movements),
			(SELECT COUNT(*) FROM benchmarks),
			(SELECT COUNT(*) FROM percentile_tables),
			(SELECT COUNT(*) FROM athletes),
			(SELECT COUNT(*) FROM athlete_benchmarks),
			(SELECT MIN(recorded_at) FROM athlete_benchmarks),
			(SELECT MAX(recorded_at) FROM athlete_benchmarks)
	`).Scan(&stats.Movements, &stats.Benchmarks, &stats.PercentileTables, &stats.Athletes, &stats.Results, &earliest, &latest)
	if err != nil {
		return nil, fmt.Errorf("counting rows: %w", err)
	}
	if stats.EarliestResult, err = parseNullTime(earliest); err != nil {
		return nil, err
	}
	if stats.LatestResult, err = parseNullTime(latest); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
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
	return stats, rows.Err()
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil, fmt.Errorf("parsing time %q: %w", v.String, err)
	}
	return &t, nil
}

// ListMovements returns the catalog ordered by ID.
func (s *Store) ListMovements(ctx context.Context) ([]models.Movement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, canonical_name, aliases, category, is_weighted FROM movements ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying movements: %w", err)
	}
	defer rows.Close()

	var result []models.Movement
	for rows.Next() {
		var (
			m        models.Movement
			aliases  string
			category string
		)
		if err := rows.Scan(&m.ID, &m.CanonicalName, &aliases, &category, &m.IsWeighted); err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}
		if err := json.Unmarshal([]byte(aliases), &m.Aliases); err != nil {
			return nil, fmt.Errorf("decoding aliases of %q: %w", m.CanonicalName, err)
		}
		m.Category = models.MovementCategory(category)
		result = append(result, m)
	}
	return result, rows.Err()
}

const athleteColumns = `id, name, COALESCE(login, ''), gender, experience, bodyweight_kg`

func scanAthlete(row *sql.Row) (*models.AthleteProfile, error) {
	var (
		a                  models.AthleteProfile
		id                 string
		gender, experience string
		bw                 sql.NullFloat64
	)
	if err := row.Scan(&id, &a.Name, &a.Login, &gender, &experience, &bw); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("athlete id %q: %w", id, err)
	}
	a.ID = parsed
	a.Gender = models.Gender(gender)
	a.Experience = models.ExperienceLevel(experience)
	if bw.Valid {
		a.BodyweightKg = &bw.Float64
	}
	return &a, nil
}

// GetAthlete returns an athlete by ID, or an error wrapping ErrNotFound.
func (s *Store) GetAthlete(ctx context.Context, id uuid.UUID) (*models.AthleteProfile, error) {
	a, err := scanAthlete(s.db.QueryRowContext(ctx,
		`SELECT `+athleteColumns+` FROM athletes WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("athlete %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying athlete: %w", err)
	}
	return a, nil
}

// GetAthleteByLogin returns the athlete linked to a login name.
func (s *Store) GetAthleteByLogin(ctx context.Context, login string) (*models.AthleteProfile, error) {
	a, err := scanAthlete(s.db.QueryRowContext(ctx,
		`SELECT `+athleteColumns+` FROM athletes WHERE login = ?`, login))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("athlete with login %s: %w", login, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying athlete by login: %w", err)
	}
	return a, nil
}

// ListAthletes returns all athletes ordered by name.
func (s *Store) ListAthletes(ctx context.Context) ([]models.AthleteProfile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM athletes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying athletes: %w", err)
	}
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning athlete id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]models.AthleteProfile, 0, len(ids))
	for _, id := range ids {
		a, err := s.GetAthlete(ctx, id)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, nil
}

// ListAthleteBenchmarks returns an athlete's results, newest first.
func (s *Store) ListAthleteBenchmarks(ctx context.Context, athleteID uuid.UUID) ([]models.AthleteBenchmark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT benchmark_code, value, recorded_at FROM athlete_benchmarks
		 WHERE athlete_id = ? ORDER BY recorded_at DESC`, athleteID.String())
	if err != nil {
		return nil, fmt.Errorf("querying athlete benchmarks: %w", err)
	}
	defer rows.Close()

	var result []models.AthleteBenchmark
	for rows.Next() {
		var (
			r  = models.AthleteBenchmark{AthleteID: athleteID}
			at string
		)
		if err := rows.Scan(&r.BenchmarkCode, &r.Value, &at); err != nil {
			return nil, fmt.Errorf("scanning athlete benchmark: %w", err)
		}
		if r.RecordedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("parsing recorded_at %q: %w", at, err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// ListBenchmarks returns all benchmark definitions.
func (s *Store) ListBenchmarks(ctx context.Context) ([]models.Benchmark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, name, category, metric_type, unit FROM benchmarks ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("querying benchmarks: %w", err)
	}
	defer rows.Close()

	var result []models.Benchmark
	for rows.Next() {
		var (
			b                models.Benchmark
			category, metric string
		)
		if err := rows.Scan(&b.Code, &b.Name, &category, &metric, &b.Unit); err != nil {
			return nil, fmt.Errorf("scanning benchmark: %w", err)
		}
		b.Category = models.BenchmarkCategory(category)
		b.MetricType = percentile.MetricType(metric)
		result = append(result, b)
	}
	return result, rows.Err()
}

// ListBenchmarkLinks returns all benchmark to movement links.
func (s *Store) ListBenchmarkLinks(ctx context.Context) ([]models.BenchmarkLink, error) {
	rows, err := s.db.QueryContext(ctx,
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
func (s *Store) ListPercentileTables(ctx context.Context) ([]percentile.Table, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT benchmark_code, gender, experience, p20, p40, p60, p80, p95
		 FROM percentile_tables ORDER BY benchmark_code, gender, experience`)
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
