package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/claude/wodcoach/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// TestIsForeignKeyViolation verifies only wrapped foreign key errors map to
// missing references.
func TestIsForeignKeyViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"wrapped fk", fmt.Errorf("inserting: %w", &pgconn.PgError{Code: "23503"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		if got := isForeignKeyViolation(tt.err); got != tt.want {
			t.Errorf("%s: isForeignKeyViolation = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// testDB connects to the database named by WODCOACH_TEST_DSN and applies
// migrations. Tests are skipped when it is unset.
func testDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("WODCOACH_TEST_DSN")
	if dsn == "" {
		t.Skip("WODCOACH_TEST_DSN not set")
	}
	if err := RunMigrations(dsn, "../../migrations"); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	db, err := New(context.Background(), dsn, 4)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func testSeed(athleteID uuid.UUID) *models.Seed {
	return &models.Seed{
		Movements: []models.Movement{
			{ID: 9001, CanonicalName: "Test Thrusters", Aliases: []string{"Test Thruster"}, Category: models.CategoryWeightlifting, IsWeighted: true},
			{ID: 9002, CanonicalName: "Test Pull-ups", Category: models.CategoryGymnastics},
		},
		Benchmarks: []models.Benchmark{
			{Code: "test_squat_1rm", Name: "Test Squat", Category: models.BenchmarkStrength, MetricType: "weight", Unit: "kg"},
		},
		Links: []models.BenchmarkLink{
			{BenchmarkCode: "test_squat_1rm", MovementID: 9001, Relevance: 0.8},
		},
		Tables: []models.SeedTable{
			{Benchmark: "test_squat_1rm", Brackets: []float64{70, 90, 110, 135, 170}},
			{Benchmark: "test_squat_1rm", Gender: "female", Brackets: []float64{45, 60, 75, 90, 115}},
		},
		Athletes: []models.SeedAthlete{{
			ID: athleteID.String(), Name: "Test Athlete", Login: "test-" + athleteID.String() + "@example.com",
			Gender: "F", Experience: "rx",
			Results: []models.SeedResult{
				{Benchmark: "test_squat_1rm", Value: 80, RecordedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
			},
		}},
	}
}

// TestImportSeedRoundTrip verifies seeded rows come back through every
// DataSource method and re-importing does not duplicate results.
func TestImportSeedRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	id := uuid.New()
	seed := testSeed(id)

	for i := 0; i < 2; i++ {
		if err := db.ImportSeed(ctx, seed, "test", log); err != nil {
			t.Fatalf("ImportSeed #%d: %v", i+1, err)
		}
	}

	movements, err := db.ListMovements(ctx)
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	found := false
	for _, m := range movements {
		if m.ID == 9001 {
			found = true
			if len(m.Aliases) != 1 || !m.IsWeighted || m.Category != models.CategoryWeightlifting {
				t.Errorf("movement 9001 = %+v", m)
			}
		}
	}
	if !found {
		t.Error("movement 9001 not listed")
	}

	a, err := db.GetAthlete(ctx, id)
	if err != nil {
		t.Fatalf("GetAthlete: %v", err)
	}
	if a.Gender != models.GenderFemale || a.Experience != models.ExperienceIntermediate {
		t.Errorf("athlete = %+v, want female intermediate", a)
	}
	byLogin, err := db.GetAthleteByLogin(ctx, a.Login)
	if err != nil || byLogin.ID != id {
		t.Errorf("GetAthleteByLogin = %v, %v", byLogin, err)
	}

	results, err := db.ListAthleteBenchmarks(ctx, id)
	if err != nil {
		t.Fatalf("ListAthleteBenchmarks: %v", err)
	}
	if len(results) != 1 || results[0].Value != 80 {
		t.Errorf("results = %+v, want one result of 80", results)
	}

	tables, err := db.ListPercentileTables(ctx)
	if err != nil {
		t.Fatalf("ListPercentileTables: %v", err)
	}
	n := 0
	for _, tb := range tables {
		if tb.BenchmarkCode == "test_squat_1rm" {
			n++
		}
	}
	if n != 2 {
		t.Errorf("test_squat_1rm tables = %d, want 2", n)
	}
}

func TestGetAthleteNotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetAthlete(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestImportSeedLogged verifies each import leaves a seed_imports row and
// only the first import adds results.
func TestImportSeedLogged(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	source := "test-" + uuid.NewString()
	seed := testSeed(uuid.New())

	for i := 0; i < 2; i++ {
		if err := db.ImportSeed(ctx, seed, source, log); err != nil {
			t.Fatalf("ImportSeed #%d: %v", i+1, err)
		}
	}

	logs, err := db.QueryImportLogs(ctx, 10)
	if err != nil {
		t.Fatalf("QueryImportLogs: %v", err)
	}
	var mine []ImportLog
	for _, l := range logs {
		if l.Source == source {
			mine = append(mine, l)
		}
	}
	if len(mine) != 2 {
		t.Fatalf("import logs for %s = %d, want 2", source, len(mine))
	}
	// Newest first.
	if mine[0].Results != 0 || mine[1].Results != 1 {
		t.Errorf("results = %d, %d, want 0, 1", mine[0].Results, mine[1].Results)
	}
	for _, l := range mine {
		if l.Status != "success" || l.DurationMs == nil || l.Movements != 2 {
			t.Errorf("log = %+v", l)
		}
	}
}

func TestRecordBenchmarkUnknownAthlete(t *testing.T) {
	db := testDB(t)
	err := db.RecordBenchmark(context.Background(), models.AthleteBenchmark{
		AthleteID: uuid.New(), BenchmarkCode: "test_squat_1rm", Value: 100,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetDataStats(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := db.ImportSeed(ctx, testSeed(uuid.New()), "test", log); err != nil {
		t.Fatalf("ImportSeed: %v", err)
	}

	stats, err := db.GetDataStats(ctx)
	if err != nil {
		t.Fatalf("GetDataStats: %v", err)
	}
	if stats.Movements < 2 || stats.Athletes < 1 || stats.Results < 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.EarliestResult == nil || stats.LatestResult == nil {
		t.Error("result date range missing")
	}
	found := false
	for _, c := range stats.ResultsByBenchmark {
		if c.Code == "test_squat_1rm" && c.Count >= 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("test_squat_1rm missing from %+v", stats.ResultsByBenchmark)
	}
}

func TestUpsertAndListAthletes(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	id := uuid.New()
	bw := 70.0
	a := models.AthleteProfile{ID: id, Name: "Upsert " + id.String(), Gender: models.GenderMale, Experience: models.ExperienceBeginner, BodyweightKg: &bw}
	if err := db.UpsertAthlete(ctx, a); err != nil {
		t.Fatalf("UpsertAthlete: %v", err)
	}
	a.Experience = models.ExperienceAdvanced
	if err := db.UpsertAthlete(ctx, a); err != nil {
		t.Fatalf("UpsertAthlete update: %v", err)
	}

	all, err := db.ListAthletes(ctx)
	if err != nil {
		t.Fatalf("ListAthletes: %v", err)
	}
	found := false
	for _, got := range all {
		if got.ID == id {
			found = true
			if got.Experience != models.ExperienceAdvanced || got.BodyweightKg == nil || *got.BodyweightKg != 70 {
				t.Errorf("athlete = %+v", got)
			}
		}
	}
	if !found {
		t.Error("upserted athlete not listed")
	}
}
