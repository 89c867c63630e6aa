// Package coach wires a data source to the parser and the strategy
// analyzers.
package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/claude/wodcoach/internal/catalog"
	"github.com/claude/wodcoach/internal/format"
	"github.com/claude/wodcoach/internal/models"
	"github.com/claude/wodcoach/internal/parser"
	"github.com/claude/wodcoach/internal/percentile"
	"github.com/claude/wodcoach/internal/strategy"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrAthleteNotFound is returned when the athlete ID is unknown.
	ErrAthleteNotFound = errors.New("athlete not found")
	// ErrUnknownBenchmark is returned for benchmark codes without a definition.
	ErrUnknownBenchmark = errors.New("unknown benchmark")
	// ErrNoPercentileTable is returned when no table covers a benchmark.
	ErrNoPercentileTable = errors.New("no percentile table for benchmark")
)

// DefaultParseTimeout bounds a single parse.
const DefaultParseTimeout = 2 * time.Second

// DataSource supplies reference data and athlete records. *storage.DB and
// *localstore.Store both satisfy it. Missing records are reported with an
// error wrapping models.ErrNotFound.
type DataSource interface {
	ListMovements(ctx context.Context) ([]models.Movement, error)
	GetAthlete(ctx context.Context, id uuid.UUID) (*models.AthleteProfile, error)
	ListAthleteBenchmarks(ctx context.Context, athleteID uuid.UUID) ([]models.AthleteBenchmark, error)
	ListBenchmarks(ctx context.Context) ([]models.Benchmark, error)
	ListBenchmarkLinks(ctx context.Context) ([]models.BenchmarkLink, error)
	ListPercentileTables(ctx context.Context) ([]percentile.Table, error)
}

// Service answers parse, strategy and percentile requests.
type Service struct {
	ds           DataSource
	log          *slog.Logger
	parseTimeout time.Duration
	maxErrors    int

	mu     sync.Mutex
	cat    *catalog.Catalog
	parser *parser.Parser
}

// Option configures a Service.
type Option func(*Service)

// WithParseTimeout bounds each parse. Non-positive values disable the limit.
func WithParseTimeout(d time.Duration) Option {
	return func(s *Service) { s.parseTimeout = d }
}

// WithMaxErrors caps blocking issues per parse.
func WithMaxErrors(n int) Option {
	return func(s *Service) { s.maxErrors = n }
}

// New creates a Service over ds.
func New(ds DataSource, log *slog.Logger, opts ...Option) *Service {
	s := &Service{ds: ds, log: log, parseTimeout: DefaultParseTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the movement catalog, loading it on first use.
func (s *Service) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cat != nil {
		return s.cat, nil
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s.cat, nil
}

// Reload drops the cached catalog and loads it again.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// load must be called with s.mu held.
func (s *Service) load(ctx context.Context) error {
	movements, err := s.ds.ListMovements(ctx)
	if err != nil {
		s.log.Error("loading movement catalog", "error", err)
		return fmt.Errorf("loading movements: %w", err)
	}
	s.cat = catalog.New(movements)
	s.parser = parser.New(s.cat, parser.WithLogger(s.log), parser.WithMaxErrors(s.maxErrors))
	s.log.Debug("movement catalog loaded", "movements", s.cat.Len())
	return nil
}

func (s *Service) getParser(ctx context.Context) (*parser.Parser, error) {
	if _, err := s.Catalog(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parser, nil
}

// Movements lists the catalog in catalog order.
func (s *Service) Movements(ctx context.Context) ([]models.Movement, error) {
	cat, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return cat.Movements(), nil
}

// Parse parses workout text within the parse timeout. Only data source
// failures are returned as errors; parse problems are issues on the Result.
func (s *Service) Parse(ctx context.Context, text string) (parser.Result, error) {
	p, err := s.getParser(ctx)
	if err != nil {
		return parser.Result{}, err
	}
	if s.parseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.parseTimeout)
		defer cancel()
	}
	start := time.Now()
	res := p.ParseContext(ctx, text)
	s.log.Debug("workout parsed",
		"type", res.Workout.Type,
		"movements", len(res.Workout.Movements),
		"confidence", res.Confidence.Score,
		"errors", len(res.Errors),
		"warnings", len(res.Warnings),
		"duration", time.Since(start))
	return res, nil
}

// Report is a parse together with the strategy built from it. Strategy is
// nil when the parse is not valid.
type Report struct {
	Athlete  models.AthleteProfile `json:"athlete"`
	Parse    parser.Result         `json:"parse"`
	Strategy *strategy.Strategy    `json:"strategy,omitempty"`
}

// Strategy parses text and builds the athlete's strategy for it. When the
// parse has blocking issues the report is returned with
// strategy.ErrInvalidWorkout.
func (s *Service) Strategy(ctx context.Context, athleteID uuid.UUID, text string) (*Report, error) {
	in, err := s.inputs(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	res, err := s.Parse(ctx, text)
	if err != nil {
		return nil, err
	}

	rep := &Report{Athlete: in.Athlete, Parse: res}
	if !res.IsValid() {
		return rep, strategy.ErrInvalidWorkout
	}
	rep.Strategy, err = strategy.Build(res.Workout, in)
	if err != nil {
		return rep, err
	}
	return rep, nil
}

// inputs loads everything the strategy needs concurrently.
func (s *Service) inputs(ctx context.Context, athleteID uuid.UUID) (strategy.Inputs, error) {
	var (
		in      strategy.Inputs
		athlete *models.AthleteProfile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.ds.GetAthlete(gctx, athleteID)
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrAthleteNotFound, athleteID)
		}
		if err != nil {
			return fmt.Errorf("getting athlete: %w", err)
		}
		athlete = a
		return nil
	})
	g.Go(func() (err error) {
		in.Results, err = s.ds.ListAthleteBenchmarks(gctx, athleteID)
		return wrap("listing athlete benchmarks", err)
	})
	g.Go(func() (err error) {
		in.Benchmarks, err = s.ds.ListBenchmarks(gctx)
		return wrap("listing benchmarks", err)
	})
	g.Go(func() (err error) {
		in.Links, err = s.ds.ListBenchmarkLinks(gctx)
		return wrap("listing benchmark links", err)
	})
	g.Go(func() (err error) {
		in.Tables, err = s.ds.ListPercentileTables(gctx)
		return wrap("listing percentile tables", err)
	})
	if err := g.Wait(); err != nil {
		if !errors.Is(err, ErrAthleteNotFound) {
			s.log.Error("loading strategy inputs", "athlete_id", athleteID, "error", err)
		}
		return strategy.Inputs{}, err
	}
	in.Athlete = *athlete
	return in, nil
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", what, err)
}

// PercentileResult is a single value ranked against a population table.
type PercentileResult struct {
	BenchmarkCode string  `json:"benchmark_code"`
	Value         float64 `json:"value"`
	Percentile    float64 `json:"percentile"`
	Display       string  `json:"display"`
	Direction     string  `json:"direction"`
	Gender        string  `json:"table_gender,omitempty"`
	Experience    string  `json:"table_experience,omitempty"`
}

// Percentile ranks value on a benchmark using the most specific table for
// the given gender and experience, either of which may be empty.
func (s *Service) Percentile(ctx context.Context, code string, value float64, gender, experience string) (*PercentileResult, error) {
	code = strings.ToLower(strings.TrimSpace(code))

	var (
		defs   []models.Benchmark
		tables []percentile.Table
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defs, err = s.ds.ListBenchmarks(gctx)
		return wrap("listing benchmarks", err)
	})
	g.Go(func() (err error) {
		tables, err = s.ds.ListPercentileTables(gctx)
		return wrap("listing percentile tables", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var def *models.Benchmark
	for i := range defs {
		if defs[i].Code == code {
			def = &defs[i]
			break
		}
	}
	if def == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBenchmark, code)
	}
	if g, ok := models.NormalizeGender(gender); ok {
		gender = string(g)
	}
	if e, ok := models.NormalizeExperience(experience); ok {
		experience = string(e)
	}
	t, ok := percentile.SelectTable(tables, code, gender, experience)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPercentileTable, code)
	}

	dir := percentile.DirectionFor(def.MetricType)
	p := percentile.Calculate(value, t.Brackets, dir)
	return &PercentileResult{
		BenchmarkCode: code,
		Value:         value,
		Percentile:    p,
		Display:       format.Percentile(p),
		Direction:     dir.String(),
		Gender:        t.Gender,
		Experience:    t.Experience,
	}, nil
}
