package coach

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/claude/wodcoach/internal/issues"
	"github.com/claude/wodcoach/internal/localstore"
	"github.com/claude/wodcoach/internal/models"
	"github.com/claude/wodcoach/internal/percentile"
	"github.com/claude/wodcoach/internal/storage"
	"github.com/claude/wodcoach/internal/strategy"
	"github.com/google/uuid"
)

// Compile-time checks: both stores satisfy DataSource.
var (
	_ DataSource = (*storage.DB)(nil)
	_ DataSource = (*localstore.Store)(nil)
	_ DataSource = (*memSource)(nil)
)

var athleteID = uuid.MustParse("5f0c1a4e-3b7d-4c39-9d59-6a51c1f0b2aa")

// memSource is an in-memory DataSource.
type memSource struct {
	movements  []models.Movement
	athletes   map[uuid.UUID]models.AthleteProfile
	results    []models.AthleteBenchmark
	benchmarks []models.Benchmark
	links      []models.BenchmarkLink
	tables     []percentile.Table
	fail       error
	loads      atomic.Int32
}

func (m *memSource) ListMovements(ctx context.Context) ([]models.Movement, error) {
	m.loads.Add(1)
	return m.movements, m.fail
}

func (m *memSource) GetAthlete(ctx context.Context, id uuid.UUID) (*models.AthleteProfile, error) {
	a, ok := m.athletes[id]
	if !ok {
		return nil, fmt.Errorf("athlete %s: %w", id, models.ErrNotFound)
	}
	return &a, nil
}

func (m *memSource) ListAthleteBenchmarks(ctx context.Context, id uuid.UUID) ([]models.AthleteBenchmark, error) {
	var out []models.AthleteBenchmark
	for _, r := range m.results {
		if r.AthleteID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memSource) ListBenchmarks(ctx context.Context) ([]models.Benchmark, error) {
	return m.benchmarks, nil
}

func (m *memSource) ListBenchmarkLinks(ctx context.Context) ([]models.BenchmarkLink, error) {
	return m.links, nil
}

func (m *memSource) ListPercentileTables(ctx context.Context) ([]percentile.Table, error) {
	return m.tables, nil
}

func newSource() *memSource {
	return &memSource{
		movements: []models.Movement{
			{ID: 1, CanonicalName: "Thrusters", Category: models.CategoryWeightlifting, IsWeighted: true},
			{ID: 2, CanonicalName: "Pull-ups", Category: models.CategoryGymnastics},
			{ID: 3, CanonicalName: "Burpees", Category: models.CategoryBodyweight},
		},
		athletes: map[uuid.UUID]models.AthleteProfile{
			athleteID: {ID: athleteID, Name: "Sam", Gender: models.GenderMale, Experience: models.ExperienceIntermediate},
		},
		results: []models.AthleteBenchmark{
			{AthleteID: athleteID, BenchmarkCode: "back_squat_1rm", Value: 170, RecordedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
			{AthleteID: athleteID, BenchmarkCode: "max_pullups", Value: 5, RecordedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		benchmarks: []models.Benchmark{
			{Code: "back_squat_1rm", Category: models.BenchmarkStrength, MetricType: percentile.MetricWeight, Unit: "kg"},
			{Code: "max_pullups", Category: models.BenchmarkGymnastics, MetricType: percentile.MetricReps, Unit: "reps"},
			{Code: "fran", Category: models.BenchmarkMetcon, MetricType: percentile.MetricTime, Unit: "s"},
			{Code: "row_2k", Category: models.BenchmarkCardio, MetricType: percentile.MetricTime, Unit: "s"},
		},
		links: []models.BenchmarkLink{
			{BenchmarkCode: "back_squat_1rm", MovementID: 1, Relevance: 0.8},
			{BenchmarkCode: "max_pullups", MovementID: 2, Relevance: 1},
		},
		tables: []percentile.Table{
			{BenchmarkCode: "back_squat_1rm", Brackets: percentile.NewBrackets(70, 90, 110, 135, 170)},
			{BenchmarkCode: "back_squat_1rm", Gender: "female", Brackets: percentile.NewBrackets(45, 60, 75, 90, 115)},
			{BenchmarkCode: "max_pullups", Brackets: percentile.NewBrackets(5, 10, 15, 25, 40)},
			{BenchmarkCode: "fran", Brackets: percentile.NewBrackets(600, 420, 330, 260, 180)},
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestParseLoadsCatalogOnce verifies the catalog is loaded lazily and reused
// until Reload.
func TestParseLoadsCatalogOnce(t *testing.T) {
	ds := newSource()
	svc := New(ds, testLogger())
	for i := 0; i < 3; i++ {
		res, err := svc.Parse(context.Background(), "21-15-9\nThrusters 95/65 lb\nPull-ups")
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if !res.IsValid() {
			t.Fatalf("parse invalid: %v", res.Issues())
		}
	}
	if got := ds.loads.Load(); got != 1 {
		t.Errorf("catalog loaded %d times, want 1", got)
	}

	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := ds.loads.Load(); got != 2 {
		t.Errorf("catalog loaded %d times after reload, want 2", got)
	}
}

func TestParseDataSourceError(t *testing.T) {
	ds := newSource()
	ds.fail = errors.New("connection refused")
	svc := New(ds, testLogger())
	if _, err := svc.Parse(context.Background(), "AMRAP 10\n10 Burpees"); err == nil {
		t.Fatal("expected error from failing data source")
	}
	if _, err := svc.Movements(context.Background()); err == nil {
		t.Fatal("expected error from Movements")
	}
}

// TestParseTimeout verifies an expired deadline surfaces as an issue on the
// result rather than an error.
func TestParseTimeout(t *testing.T) {
	svc := New(newSource(), testLogger(), WithParseTimeout(time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.Parse(ctx, "AMRAP 10\n10 Burpees")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	found := false
	for _, is := range res.Errors {
		if is.Code == issues.CodeParseTimeout {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v, want PARSE_TIMEOUT", res.Errors)
	}
}

func TestMovements(t *testing.T) {
	svc := New(newSource(), testLogger())
	got, err := svc.Movements(context.Background())
	if err != nil {
		t.Fatalf("Movements: %v", err)
	}
	if len(got) != 3 || got[0].CanonicalName != "Thrusters" {
		t.Errorf("Movements = %+v", got)
	}
}

func TestStrategy(t *testing.T) {
	svc := New(newSource(), testLogger())
	rep, err := svc.Strategy(context.Background(), athleteID, "21-15-9\nThrusters 95/65 lb\nPull-ups")
	if err != nil {
		t.Fatalf("Strategy: %v", err)
	}
	if rep.Athlete.Name != "Sam" {
		t.Errorf("athlete = %q, want Sam", rep.Athlete.Name)
	}
	if rep.Strategy == nil || len(rep.Strategy.Pacing) != 2 {
		t.Fatalf("strategy = %+v", rep.Strategy)
	}
	if got := rep.Strategy.Pacing[0].Level; got != models.PacingHeavy {
		t.Errorf("thrusters level = %s, want heavy", got)
	}
	if got := rep.Strategy.Pacing[1].Level; got != models.PacingLight {
		t.Errorf("pull-ups level = %s, want light", got)
	}
}

func TestStrategyUnknownAthlete(t *testing.T) {
	svc := New(newSource(), testLogger())
	_, err := svc.Strategy(context.Background(), uuid.New(), "AMRAP 10\n10 Burpees")
	if !errors.Is(err, ErrAthleteNotFound) {
		t.Errorf("err = %v, want ErrAthleteNotFound", err)
	}
}

// TestStrategyInvalidWorkout verifies the parse is still reported when the
// workout cannot be analyzed.
func TestStrategyInvalidWorkout(t *testing.T) {
	svc := New(newSource(), testLogger())
	rep, err := svc.Strategy(context.Background(), athleteID, "For Time\n21-15-9")
	if !errors.Is(err, strategy.ErrInvalidWorkout) {
		t.Fatalf("err = %v, want ErrInvalidWorkout", err)
	}
	if rep == nil || len(rep.Parse.Errors) == 0 {
		t.Errorf("report = %+v, want parse errors", rep)
	}
	if rep != nil && rep.Strategy != nil {
		t.Error("strategy built for invalid workout")
	}
}

func TestPercentile(t *testing.T) {
	svc := New(newSource(), testLogger())
	tests := []struct {
		name       string
		code       string
		value      float64
		gender     string
		want       float64
		wantGender string
	}{
		{"squat unsegmented", "back_squat_1rm", 110, "", 60, ""},
		{"squat female", "Back_Squat_1RM", 75, "F", 60, "female"},
		{"fran faster is better", "fran", 260, "male", 80, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Percentile(context.Background(), tt.code, tt.value, tt.gender, "")
			if err != nil {
				t.Fatalf("Percentile: %v", err)
			}
			if got.Percentile != tt.want {
				t.Errorf("Percentile = %v, want %v", got.Percentile, tt.want)
			}
			if got.Gender != tt.wantGender {
				t.Errorf("table gender = %q, want %q", got.Gender, tt.wantGender)
			}
		})
	}

	got, _ := svc.Percentile(context.Background(), "back_squat_1rm", 110, "", "")
	if got.Display != "60th" || got.Direction != "higher_is_better" {
		t.Errorf("display %q direction %q", got.Display, got.Direction)
	}
}

func TestPercentileErrors(t *testing.T) {
	svc := New(newSource(), testLogger())
	if _, err := svc.Percentile(context.Background(), "murph", 2400, "", ""); !errors.Is(err, ErrUnknownBenchmark) {
		t.Errorf("unknown benchmark err = %v", err)
	}
	if _, err := svc.Percentile(context.Background(), "row_2k", 420, "", ""); !errors.Is(err, ErrNoPercentileTable) {
		t.Errorf("missing table err = %v", err)
	}
}
