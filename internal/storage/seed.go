package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/wodcoach/internal/models"
	"github.com/jackc/pgx/v5"
)

// ImportSeed loads reference data and sample athletes in one transaction.
// Existing rows with the same keys are replaced; athlete results are only
// added for athletes that had none. Each call is recorded in seed_imports
// under source.
func (db *DB) ImportSeed(ctx context.Context, seed *models.Seed, source string, log *slog.Logger) error {
	if err := seed.Validate(); err != nil {
		return fmt.Errorf("validating seed: %w", err)
	}
	tables, err := seed.PercentileTables()
	if err != nil {
		return err
	}

	entry := ImportLog{
		Source:     source,
		Status:     "running",
		Movements:  len(seed.Movements),
		Benchmarks: len(seed.Benchmarks),
		Tables:     len(tables),
		Athletes:   len(seed.Athletes),
	}
	start := time.Now()
	logID, logErr := db.InsertImportLog(ctx, entry)
	if logErr != nil {
		log.Warn("failed to create import log", "error", logErr)
	}

	err = pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		for _, m := range seed.Movements {
			aliases := m.Aliases
			if aliases == nil {
				aliases = []string{}
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO movements (id, canonical_name, aliases, category, is_weighted)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO UPDATE
					SET canonical_name = EXCLUDED.canonical_name, aliases = EXCLUDED.aliases,
						category = EXCLUDED.category, is_weighted = EXCLUDED.is_weighted
			`, m.ID, m.CanonicalName, aliases, string(m.Category), m.IsWeighted); err != nil {
				return fmt.Errorf("movement %q: %w", m.CanonicalName, err)
			}
		}
		for _, b := range seed.Benchmarks {
			if _, err := tx.Exec(ctx, `
				INSERT INTO benchmarks (code, name, category, metric_type, unit)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (code) DO UPDATE
					SET name = EXCLUDED.name, category = EXCLUDED.category,
						metric_type = EXCLUDED.metric_type, unit = EXCLUDED.unit
			`, b.Code, b.Name, string(b.Category), string(b.MetricType), b.Unit); err != nil {
				return fmt.Errorf("benchmark %s: %w", b.Code, err)
			}
		}
		for _, l := range seed.Links {
			if _, err := tx.Exec(ctx, `
				INSERT INTO benchmark_links (benchmark_code, movement_id, relevance)
				VALUES ($1, $2, $3)
				ON CONFLICT (benchmark_code, movement_id) DO UPDATE SET relevance = EXCLUDED.relevance
			`, l.BenchmarkCode, l.MovementID, l.Relevance); err != nil {
				return fmt.Errorf("link %s/%d: %w", l.BenchmarkCode, l.MovementID, err)
			}
		}
		for _, t := range tables {
			v := t.Brackets.Values()
			if _, err := tx.Exec(ctx, `
				INSERT INTO percentile_tables (benchmark_code, gender, experience, p20, p40, p60, p80, p95)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (benchmark_code, gender, experience) DO UPDATE
					SET p20 = EXCLUDED.p20, p40 = EXCLUDED.p40, p60 = EXCLUDED.p60,
						p80 = EXCLUDED.p80, p95 = EXCLUDED.p95
			`, t.BenchmarkCode, t.Gender, t.Experience, v[0], v[1], v[2], v[3], v[4]); err != nil {
				return fmt.Errorf("percentile table %s: %w", t.BenchmarkCode, err)
			}
		}
		for _, sa := range seed.Athletes {
			a, err := sa.AthleteProfile()
			if err != nil {
				return err
			}
			var existing int
			if err := tx.QueryRow(ctx,
				`SELECT COUNT(*) FROM athlete_benchmarks WHERE athlete_id = $1`, a.ID).Scan(&existing); err != nil {
				return fmt.Errorf("counting results for %s: %w", a.Name, err)
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO athletes (id, name, login, gender, experience)
				VALUES ($1, $2, NULLIF($3, ''), $4, $5)
				ON CONFLICT (id) DO UPDATE
					SET name = EXCLUDED.name, gender = EXCLUDED.gender, experience = EXCLUDED.experience
			`, a.ID, a.Name, a.Login, string(a.Gender), string(a.Experience)); err != nil {
				return fmt.Errorf("athlete %q: %w", a.Name, err)
			}
			if existing > 0 {
				continue
			}
			for _, r := range sa.Results {
				if _, err := tx.Exec(ctx, `
					INSERT INTO athlete_benchmarks (athlete_id, benchmark_code, value, recorded_at)
					VALUES ($1, $2, $3, $4)
				`, a.ID, r.Benchmark, r.Value, r.RecordedAt); err != nil {
					return fmt.Errorf("result %s for %q: %w", r.Benchmark, a.Name, err)
				}
				entry.Results++
			}
		}
		return nil
	})

	ms := int(time.Since(start).Milliseconds())
	entry.DurationMs = &ms
	entry.Status = "success"
	if err != nil {
		entry.Status = "error"
		entry.Results = 0
		msg := err.Error()
		entry.ErrorMessage = &msg
	}
	if logErr == nil {
		if uerr := db.UpdateImportLog(ctx, logID, entry); uerr != nil {
			log.Warn("failed to update import log", "id", logID, "error", uerr)
		}
	}

	if err != nil {
		return fmt.Errorf("importing seed: %w", err)
	}
	log.Info("seed imported",
		"source", source,
		"movements", entry.Movements,
		"benchmarks", entry.Benchmarks,
		"links", len(seed.Links),
		"tables", entry.Tables,
		"athletes", entry.Athletes,
		"results", entry.Results,
		"duration_ms", ms)
	return nil
}
