// Package parser turns free-text workout descriptions into structured
// workouts.
//
// Parsing never fails: malformed input is reported through issues on the
// Result rather than through errors or panics. The pipeline runs in fixed
// stages (input checks, structure detection, rep scheme, movement
// extraction, confidence scoring); a fault inside a stage is recovered and
// recorded as an INTERNAL_ERROR issue, and later stages still run.
package parser

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/wodcoach/internal/catalog"
	"github.com/claude/wodcoach/internal/issues"
	"github.com/claude/wodcoach/internal/models"
)

// Parser resolves workout text against a movement catalog. A Parser holds
// no per-parse state and is safe for concurrent use.
type Parser struct {
	catalog   *catalog.Catalog
	names     []string
	log       *slog.Logger
	maxErrors int
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for recovered stage faults.
func WithLogger(log *slog.Logger) Option {
	return func(p *Parser) { p.log = log }
}

// WithMaxErrors caps blocking issues per parse. Non-positive values select
// issues.DefaultMaxErrors.
func WithMaxErrors(n int) Option {
	return func(p *Parser) { p.maxErrors = n }
}

// New creates a Parser over cat.
func New(cat *catalog.Catalog, opts ...Option) *Parser {
	p := &Parser{catalog: cat, log: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if cat != nil {
		p.names = cat.Names()
	}
	return p
}

// Parse parses text without a deadline.
func (p *Parser) Parse(text string) Result {
	return p.ParseContext(context.Background(), text)
}

// ParseContext parses text, checking ctx between stages and between lines.
// When ctx ends the partial result is returned with a PARSE_TIMEOUT issue.
func (p *Parser) ParseContext(ctx context.Context, text string) Result {
	st := &state{
		ctx:  ctx,
		raw:  text,
		agg:  issues.NewAggregator(p.maxErrors),
		typ:  typeDetection{},
		conf: Confidence{Level: ConfidenceLow},
	}

	stages := []struct {
		name string
		run  func(*state)
	}{
		{"checking input", p.sanitize},
		{"detecting structure", p.detectStructure},
		{"reading rep scheme", p.applyRepScheme},
		{"extracting movements", p.extractMovements},
		{"scoring confidence", p.scoreConfidence},
	}
	for _, s := range stages {
		if st.halted {
			break
		}
		if err := ctx.Err(); err != nil {
			st.timeout(err)
			break
		}
		p.runStage(st, s.name, s.run)
	}
	return st.result()
}

func (p *Parser) runStage(st *state, name string, run func(*state)) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("parser stage failed", "stage", name, "panic", fmt.Sprint(r))
			st.agg.Report(issues.CodeInternalError, issues.WithParam("stage", name), issues.WithContext(name))
		}
	}()
	run(st)
}

// line is one input line with its 1-based position.
type line struct {
	number int
	text   string
	header bool // consumed by structure detection
}

// state is the working set of a single parse.
type state struct {
	ctx    context.Context
	raw    string
	lines  []line
	agg    *issues.Aggregator
	w      models.ParsedWorkout
	sig    *signals
	typ    typeDetection
	conf   Confidence
	halted bool
}

func (st *state) halt() { st.halted = true }

func (st *state) timeout(err error) {
	st.agg.Report(issues.CodeParseTimeout, issues.WithParam("limit", "the allowed time"), issues.WithContext(err.Error()))
	st.halt()
}

func (st *state) result() Result {
	st.w.Issues = st.agg.Errors()
	if st.w.Type == "" {
		st.w.Type = models.WorkoutForTime
	}
	return Result{
		Workout:           st.w,
		Confidence:        st.conf,
		Errors:            st.agg.Errors(),
		Warnings:          st.agg.Warnings(),
		Infos:             st.agg.Infos(),
		ErrorLimitReached: st.agg.LimitReached(),
	}
}
