// Package pace derives cardio pace targets from running and rowing
// benchmarks.
package pace

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/claude/wodcoach/internal/catalog"
	"github.com/claude/wodcoach/internal/format"
	"github.com/claude/wodcoach/internal/models"
)

// ErrUnknownBenchmark is returned for benchmarks without a pace conversion.
var ErrUnknownBenchmark = errors.New("benchmark has no pace conversion")

// KmPerMile converts per-km paces to per-mile paces.
const KmPerMile = 1.60934

// conversion turns a benchmark result into a base pace. For running the
// divisor is the race distance in km; for rowing it is the number of 500m
// splits in the piece.
type conversion struct {
	kind    catalog.CardioKind
	divisor float64
}

var conversions = map[string]conversion{
	"run_400m":  {catalog.CardioRunning, 0.4},
	"run_1mile": {catalog.CardioRunning, KmPerMile},
	"run_5k":    {catalog.CardioRunning, 5},
	"run_10k":   {catalog.CardioRunning, 10},
	"row_500m":  {catalog.CardioRowing, 1},
	"row_1k":    {catalog.CardioRowing, 2},
	"row_2k":    {catalog.CardioRowing, 4},
	"row_5k":    {catalog.CardioRowing, 10},
}

// Benchmarks lists benchmark codes with a pace conversion for kind.
func Benchmarks(kind catalog.CardioKind) []string {
	var out []string
	for code, c := range conversions {
		if c.kind == kind {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}

// Raw is an all-out pace derived from a benchmark.
type Raw struct {
	Kind catalog.CardioKind `json:"kind"`
	// SecondsPerUnit is seconds per km for running, per 500m for rowing.
	SecondsPerUnit float64 `json:"seconds_per_unit"`
	Benchmark      string  `json:"benchmark"`
}

// Unit names the distance SecondsPerUnit refers to.
func (r Raw) Unit() string {
	if r.Kind == catalog.CardioRowing {
		return "500m"
	}
	return "km"
}

// FromBenchmark converts a time benchmark result in seconds to a raw pace.
func FromBenchmark(code string, seconds float64) (Raw, error) {
	c, ok := conversions[strings.ToLower(code)]
	if !ok {
		return Raw{}, fmt.Errorf("%w: %s", ErrUnknownBenchmark, code)
	}
	if seconds <= 0 {
		return Raw{}, fmt.Errorf("benchmark %s: non-positive time %v", code, seconds)
	}
	return Raw{Kind: c.kind, SecondsPerUnit: seconds / c.divisor, Benchmark: code}, nil
}

// Context describes the workout a cardio piece appears in. A nil *Context
// means no workout context is known.
type Context struct {
	Type            models.WorkoutType
	DurationSeconds int     // 0 when the workout has no time domain
	DistanceMeters  float64 // distance of this cardio piece, 0 when not distance-based
}

const (
	sprintMaxMeters  = 400
	sprintMaxSeconds = 10 * 60
	longSeconds      = 20 * 60
	mediumSeconds    = 10 * 60
)

// ContextFactor slows the raw pace for the workout's duration: 1.00 for a
// short piece in a short workout, 1.20 for AMRAPs of 20 minutes or more,
// 1.15 for other workouts of 20 minutes or more, 1.07 from 10 minutes, else
// 1.05.
func ContextFactor(ctx *Context) float64 {
	if ctx == nil {
		return 1.05
	}
	d := ctx.DurationSeconds
	switch {
	case ctx.DistanceMeters > 0 && ctx.DistanceMeters <= sprintMaxMeters && d > 0 && d <= sprintMaxSeconds:
		return 1.00
	case d >= longSeconds && ctx.Type == models.WorkoutAmrap:
		return 1.20
	case d >= longSeconds:
		return 1.15
	case d >= mediumSeconds:
		return 1.07
	default:
		return 1.05
	}
}

// PacingFactor adjusts pace for the athlete's pacing level on the workout.
func PacingFactor(level models.PacingLevel) float64 {
	switch level {
	case models.PacingHeavy:
		return 0.97
	case models.PacingLight:
		return 1.05
	default:
		return 1.00
	}
}

// Target is a displayable pace for a cardio movement.
type Target struct {
	Kind           catalog.CardioKind `json:"kind"`
	Primary        string             `json:"primary"`
	Secondary      string             `json:"secondary"`
	SecondsPerUnit float64            `json:"seconds_per_unit"`
	Unit           string             `json:"unit"`
	ContextFactor  float64            `json:"context_factor"`
	PacingFactor   float64            `json:"pacing_factor"`
}

// TargetFor applies both factors to a raw pace. Running targets show per km
// and per mile; rowing targets show per 500m and per 1000m.
func TargetFor(raw Raw, ctx *Context, level models.PacingLevel) Target {
	cf, pf := ContextFactor(ctx), PacingFactor(level)
	sec := raw.SecondsPerUnit * cf * pf

	t := Target{
		Kind:           raw.Kind,
		SecondsPerUnit: sec,
		Unit:           raw.Unit(),
		ContextFactor:  cf,
		PacingFactor:   pf,
	}
	switch raw.Kind {
	case catalog.CardioRowing:
		t.Primary = format.Pace(sec, "500m")
		t.Secondary = format.Pace(sec*2, "1000m")
	default:
		t.Primary = format.Pace(sec, "km")
		t.Secondary = format.Pace(sec*KmPerMile, "mi")
	}
	return t
}
