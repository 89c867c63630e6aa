// Package percentile converts raw benchmark values into population
// percentiles by piecewise-linear interpolation over five reference brackets.
package percentile

import (
	"fmt"
	"math"
	"strings"
)

// MetricType describes what a benchmark value measures.
type MetricType string

const (
	MetricTime   MetricType = "time"
	MetricPace   MetricType = "pace"
	MetricReps   MetricType = "reps"
	MetricWeight MetricType = "weight"
)

// Direction tells whether larger values are better.
type Direction int

const (
	HigherIsBetter Direction = iota
	LowerIsBetter
)

func (d Direction) String() string {
	if d == LowerIsBetter {
		return "lower_is_better"
	}
	return "higher_is_better"
}

var directions = map[MetricType]Direction{
	MetricTime:   LowerIsBetter,
	MetricPace:   LowerIsBetter,
	MetricReps:   HigherIsBetter,
	MetricWeight: HigherIsBetter,
}

// DirectionFor returns the scoring direction for a metric type. Unknown
// types score higher-is-better.
func DirectionFor(m MetricType) Direction {
	if d, ok := directions[MetricType(strings.ToLower(string(m)))]; ok {
		return d
	}
	return HigherIsBetter
}

// ParseMetricType validates a metric type name.
func ParseMetricType(s string) (MetricType, error) {
	m := MetricType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := directions[m]; !ok {
		return "", fmt.Errorf("unknown metric type %q", s)
	}
	return m, nil
}

// Bracket is one reference point of a population distribution.
type Bracket struct {
	Percentile float64 `json:"percentile" yaml:"percentile"`
	Value      float64 `json:"value" yaml:"value"`
}

// Brackets holds the 20th, 40th, 60th, 80th and 95th percentile values in
// percentile order.
type Brackets [5]Bracket

// ReferencePercentiles are the fixed bracket positions.
var ReferencePercentiles = [5]float64{20, 40, 60, 80, 95}

// NewBrackets builds Brackets from the five reference values.
func NewBrackets(p20, p40, p60, p80, p95 float64) Brackets {
	vals := [5]float64{p20, p40, p60, p80, p95}
	var b Brackets
	for i, v := range vals {
		b[i] = Bracket{Percentile: ReferencePercentiles[i], Value: v}
	}
	return b
}

// Values returns the bracket values in percentile order.
func (b Brackets) Values() [5]float64 {
	var out [5]float64
	for i, br := range b {
		out[i] = br.Value
	}
	return out
}

// Calculate maps value to a percentile in [0, 100].
//
// Values past the best bracket extrapolate along the slope of the last two
// brackets and cap at 100. Values past the worst bracket extrapolate linearly
// towards 0, and return 0 when the worst bracket is not positive. Equal
// adjacent brackets resolve to the nearer bracket's percentile.
func Calculate(value float64, b Brackets, dir Direction) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return clamp(calculate(value, b, dir))
}

func calculate(value float64, b Brackets, dir Direction) float64 {
	// score orients values so that larger is always better.
	score := func(v float64) float64 {
		if dir == LowerIsBetter {
			return -v
		}
		return v
	}

	n := len(b)
	first, last := b[0], b[n-1]
	s := score(value)

	switch {
	case s >= score(last.Value):
		prev := b[n-2]
		run := score(last.Value) - score(prev.Value)
		if run <= 0 {
			return last.Percentile
		}
		slope := (last.Percentile - prev.Percentile) / run
		return math.Min(100, last.Percentile+(s-score(last.Value))*slope)

	case s <= score(first.Value):
		if first.Value <= 0 {
			return 0
		}
		ratio := value / first.Value
		if dir == LowerIsBetter {
			// Mirror of the line through zero: slower than the 20th bracket
			// loses percentile at the same rate, reaching 0 at twice its value.
			ratio = 2 - ratio
		}
		return math.Max(0, first.Percentile*ratio)
	}

	for i := 0; i < n-1; i++ {
		lo, hi := b[i], b[i+1]
		if s > score(hi.Value) {
			continue
		}
		run := score(hi.Value) - score(lo.Value)
		if run <= 0 {
			return nearer(value, lo, hi)
		}
		frac := (s - score(lo.Value)) / run
		return lo.Percentile + frac*(hi.Percentile-lo.Percentile)
	}
	return last.Percentile
}

func nearer(value float64, lo, hi Bracket) float64 {
	if math.Abs(value-hi.Value) < math.Abs(value-lo.Value) {
		return hi.Percentile
	}
	return lo.Percentile
}

func clamp(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(0, math.Min(100, p))
}
