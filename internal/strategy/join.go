package strategy

import (
	"sort"

	"github.com/claude/wodcoach/internal/models"
	"github.com/claude/wodcoach/internal/percentile"
)

// Inputs is everything the strategy needs besides the workout itself.
type Inputs struct {
	Athlete    models.AthleteProfile
	Benchmarks []models.Benchmark
	Results    []models.AthleteBenchmark
	Links      []models.BenchmarkLink
	Tables     []percentile.Table
}

// Scored is one athlete benchmark result ranked against its population
// table.
type Scored struct {
	Code       string                   `json:"benchmark_code"`
	Category   models.BenchmarkCategory `json:"category"`
	Value      float64                  `json:"value"`
	Percentile float64                  `json:"percentile"`
	Relevance  float64                  `json:"relevance"`
}

// MovementPercentile is the relevance-weighted percentile of an athlete on a
// catalog movement.
type MovementPercentile struct {
	MovementID int64    `json:"movement_id"`
	Percentile float64  `json:"percentile"`
	Strength   *float64 `json:"strength_percentile,omitempty"`
	Sources    []Scored `json:"sources"`
}

// Join ranks the athlete's latest result on every benchmark and folds the
// rankings onto movements through the benchmark links. Movements without a
// linked, ranked benchmark are absent from the result.
func Join(in Inputs) map[int64]MovementPercentile {
	defs := make(map[string]models.Benchmark, len(in.Benchmarks))
	for _, b := range in.Benchmarks {
		defs[b.Code] = b
	}

	scored := make(map[string]Scored)
	for code, r := range latest(in.Results) {
		def, ok := defs[code]
		if !ok {
			continue
		}
		t, ok := percentile.SelectTable(in.Tables, code, string(in.Athlete.Gender), string(in.Athlete.Experience))
		if !ok {
			continue
		}
		scored[code] = Scored{
			Code:       code,
			Category:   def.Category,
			Value:      r.Value,
			Percentile: percentile.Calculate(r.Value, t.Brackets, percentile.DirectionFor(def.MetricType)),
		}
	}

	out := make(map[int64]MovementPercentile)
	for _, l := range in.Links {
		s, ok := scored[l.BenchmarkCode]
		if !ok || l.Relevance <= 0 {
			continue
		}
		s.Relevance = min(l.Relevance, 1)
		mp := out[l.MovementID]
		mp.MovementID = l.MovementID
		mp.Sources = append(mp.Sources, s)
		out[l.MovementID] = mp
	}

	for id, mp := range out {
		sort.SliceStable(mp.Sources, func(i, j int) bool {
			return mp.Sources[i].Relevance > mp.Sources[j].Relevance
		})
		mp.Percentile, _ = weighted(mp.Sources, nil)
		if p, ok := weighted(mp.Sources, func(s Scored) bool { return s.Category == models.BenchmarkStrength }); ok {
			mp.Strength = &p
		}
		out[id] = mp
	}
	return out
}

// weighted averages source percentiles by relevance over the sources keep
// accepts (all when keep is nil).
func weighted(sources []Scored, keep func(Scored) bool) (float64, bool) {
	var sum, weight float64
	for _, s := range sources {
		if keep != nil && !keep(s) {
			continue
		}
		sum += s.Percentile * s.Relevance
		weight += s.Relevance
	}
	if weight == 0 {
		return 0, false
	}
	return sum / weight, true
}

// latest keeps the most recent result per benchmark code.
func latest(results []models.AthleteBenchmark) map[string]models.AthleteBenchmark {
	out := make(map[string]models.AthleteBenchmark, len(results))
	for _, r := range results {
		if prev, ok := out[r.BenchmarkCode]; ok && !r.RecordedAt.After(prev.RecordedAt) {
			continue
		}
		out[r.BenchmarkCode] = r
	}
	return out
}
