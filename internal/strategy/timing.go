package strategy

import (
	"fmt"
	"math"

	"github.com/claude/wodcoach/internal/catalog"
	"github.com/claude/wodcoach/internal/format"
	"github.com/claude/wodcoach/internal/models"
	"github.com/claude/wodcoach/internal/pace"
)

// EstimateKind says how a workout result is expressed.
type EstimateKind string

const (
	EstimateKindTime       EstimateKind = "time"
	EstimateKindRoundsReps EstimateKind = "rounds_reps"
)

// ConfidenceLevel rates how well benchmarks cover a workout.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// CoverageConfidence maps the share of movements backed by a benchmark to a
// confidence level: High from 0.8, Medium from 0.5.
func CoverageConfidence(coverage float64) ConfidenceLevel {
	switch {
	case coverage >= 0.8:
		return ConfidenceHigh
	case coverage >= 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Work model constants.
const (
	defaultSecondsPerRep = 2.5
	secondsPerCalorie    = 4.0
	runSecondsPerKm      = 300.0
	rowSecondsPer500m    = 120.0
	transitionSeconds    = 5.0

	lowSpread  = 0.9
	highSpread = 1.15
)

var secondsPerRep = map[models.MovementCategory]float64{
	models.CategoryWeightlifting: 3.0,
	models.CategoryGymnastics:    2.5,
	models.CategoryBodyweight:    2.0,
	models.CategoryCardio:        2.0,
}

// TimeRange is an estimated finishing time in seconds.
type TimeRange struct {
	LowSeconds  float64 `json:"low_seconds"`
	HighSeconds float64 `json:"high_seconds"`
	Display     string  `json:"display"`
}

// RoundsRange is an estimated AMRAP score.
type RoundsRange struct {
	LowRounds    int    `json:"low_rounds"`
	LowReps      int    `json:"low_reps"`
	HighRounds   int    `json:"high_rounds"`
	HighReps     int    `json:"high_reps"`
	RepsPerRound int    `json:"reps_per_round"`
	Display      string `json:"display"`
}

// Rest is the rest recommendation for one movement.
type Rest struct {
	SequenceOrder      int                `json:"sequence_order"`
	Movement           string             `json:"movement"`
	Level              models.PacingLevel `json:"level"`
	SecondsBetweenSets int                `json:"seconds_between_sets"`
	Guidance           string             `json:"guidance"`
}

// TimeEstimate is the expected outcome of a workout for the athlete.
type TimeEstimate struct {
	Kind       EstimateKind    `json:"kind"`
	Time       *TimeRange      `json:"time,omitempty"`
	RoundsReps *RoundsRange    `json:"rounds_reps,omitempty"`
	Coverage   float64         `json:"coverage"`
	Confidence ConfidenceLevel `json:"confidence"`
	Rests      []Rest          `json:"rests"`
	EMOM       *EMOMAssessment `json:"emom,omitempty"`
}

// EstimateTime predicts the workout outcome from the pacing plan. pacing
// holds one result per workout movement, in order. coverage is the share of
// movements backed by a benchmark.
func EstimateTime(w models.ParsedWorkout, pacing []PacingResult, coverage float64) TimeEstimate {
	est := TimeEstimate{
		Kind:       EstimateKindTime,
		Coverage:   coverage,
		Confidence: CoverageConfidence(coverage),
		Rests:      rests(w, pacing),
	}
	m := model{w: w, pacing: pacing}

	switch w.Type {
	case models.WorkoutAmrap:
		if dur, ok := w.DurationSeconds(); ok && dur > 0 {
			est.Kind = EstimateKindRoundsReps
			est.RoundsReps = m.amrapScore(float64(dur))
			return est
		}
		est.Time = m.forTime(w.Rounds())

	case models.WorkoutEmom:
		interval := intervalOf(w)
		total := float64(w.Rounds() * interval)
		est.Time = newTimeRange(total, total)
		est.EMOM = AssessEMOM(m.emomMinutes(interval))

	case models.WorkoutIntervals:
		est.Time = m.intervals()

	case models.WorkoutTabata:
		dur, _ := w.DurationSeconds()
		est.Time = newTimeRange(float64(dur), float64(dur))

	default:
		est.Time = m.forTime(w.Rounds())
	}
	return est
}

func intervalOf(w models.ParsedWorkout) int {
	if w.IntervalSeconds != nil && *w.IntervalSeconds > 0 {
		return *w.IntervalSeconds
	}
	return 60
}

func newTimeRange(low, high float64) *TimeRange {
	r := &TimeRange{LowSeconds: low, HighSeconds: high}
	if math.Round(low) == math.Round(high) {
		r.Display = format.Duration(low)
	} else {
		r.Display = format.Duration(low) + " - " + format.Duration(high)
	}
	return r
}

// model estimates work durations from the pacing plan.
type model struct {
	w      models.ParsedWorkout
	pacing []PacingResult
}

func (m model) level(i int) (models.PacingLevel, *pace.Target) {
	if i < len(m.pacing) {
		return m.pacing[i].Level, m.pacing[i].PaceTarget
	}
	return models.PacingModerate, nil
}

// round returns the estimated seconds for one 0-based round including
// transitions between movements.
func (m model) round(r int) float64 {
	var sec float64
	for i, pm := range m.w.Movements {
		level, target := m.level(i)
		sec += workSeconds(pm, r, level, target)
	}
	if n := len(m.w.Movements); n > 1 {
		sec += float64(n-1) * transitionSeconds
	}
	return sec
}

func (m model) forTime(rounds int) *TimeRange {
	var total float64
	for r := range max(rounds, 1) {
		total += m.round(r)
	}
	return newTimeRange(total*lowSpread, total*highSpread)
}

func (m model) intervals() *TimeRange {
	rounds := m.w.Rounds()
	interval := 0.0
	if m.w.IntervalSeconds != nil {
		interval = float64(*m.w.IntervalSeconds)
	}
	var low, high float64
	for r := range max(rounds, 1) {
		work := m.round(r)
		low += math.Max(interval, work*lowSpread)
		high += math.Max(interval, work*highSpread)
	}
	return newTimeRange(low, high)
}

func (m model) amrapScore(dur float64) *RoundsRange {
	per := m.round(0)
	reps := 0
	for _, pm := range m.w.Movements {
		reps += pm.RepsInRound(0)
	}
	out := &RoundsRange{RepsPerRound: reps}
	if per <= 0 {
		out.Display = "-"
		return out
	}
	out.LowRounds, out.LowReps = splitRounds(dur/(per*highSpread), reps)
	out.HighRounds, out.HighReps = splitRounds(dur/(per*lowSpread), reps)
	out.Display = roundsDisplay(out.LowRounds, out.LowReps) + " to " + roundsDisplay(out.HighRounds, out.HighReps)
	return out
}

// splitRounds turns fractional rounds into whole rounds plus reps into the
// next round.
func splitRounds(rounds float64, repsPerRound int) (int, int) {
	whole := math.Floor(rounds)
	return int(whole), int(math.Floor((rounds - whole) * float64(repsPerRound)))
}

func roundsDisplay(rounds, reps int) string {
	if reps == 0 {
		return fmt.Sprintf("%d rounds", rounds)
	}
	return fmt.Sprintf("%d rounds + %d reps", rounds, reps)
}

// workSeconds estimates one movement's work in a 0-based round.
func workSeconds(pm models.ParsedMovement, round int, level models.PacingLevel, target *pace.Target) float64 {
	pr := profileFor(level)
	switch {
	case pm.DurationSeconds != nil:
		return float64(*pm.DurationSeconds)
	case pm.Distance != nil:
		return distanceSeconds(pm, target, pr.repFactor)
	case pm.Calories != nil:
		return float64(*pm.Calories) * secondsPerCalorie * pr.repFactor
	}
	reps := pm.RepsInRound(round)
	if reps <= 0 {
		return 0
	}
	spr, ok := secondsPerRep[pm.Category()]
	if !ok {
		spr = defaultSecondsPerRep
	}
	breaks := len(SplitReps(reps, level)) - 1
	return float64(reps)*spr*pr.repFactor + float64(breaks*pr.restSeconds)
}

// distanceSeconds uses the pace target when there is one, else a generic
// pace for the movement's kind slowed by the level's factor.
func distanceSeconds(pm models.ParsedMovement, target *pace.Target, factor float64) float64 {
	meters := pm.Distance.Meters()
	rowing := pm.Movement != nil && catalog.KindOf(*pm.Movement) == catalog.CardioRowing
	if target != nil {
		if target.Kind == catalog.CardioRowing {
			return meters / 500 * target.SecondsPerUnit
		}
		return meters / 1000 * target.SecondsPerUnit
	}
	if rowing {
		return meters / 500 * rowSecondsPer500m * factor
	}
	return meters / 1000 * runSecondsPerKm * factor
}

var restGuidance = map[models.PacingLevel]string{
	models.PacingHeavy:    "Keep rests short, about %ds between sets.",
	models.PacingModerate: "Rest about %ds between sets.",
	models.PacingLight:    "Take about %ds between sets and breathe before the next one.",
}

func rests(w models.ParsedWorkout, pacing []PacingResult) []Rest {
	out := make([]Rest, 0, len(w.Movements))
	for i, pm := range w.Movements {
		level := models.PacingModerate
		if i < len(pacing) {
			level = pacing[i].Level
		}
		r := Rest{
			SequenceOrder: pm.SequenceOrder,
			Movement:      pm.DisplayName(),
			Level:         level,
		}
		if pm.Category() == models.CategoryCardio {
			r.Guidance = "Recover on the move, no planned rest."
		} else {
			r.SecondsBetweenSets = profileFor(level).restSeconds
			r.Guidance = fmt.Sprintf(restGuidance[level], r.SecondsBetweenSets)
		}
		out = append(out, r)
	}
	return out
}
