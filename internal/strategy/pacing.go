package strategy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/claude/wodcoach/internal/catalog"
	"github.com/claude/wodcoach/internal/models"
	"github.com/claude/wodcoach/internal/pace"
)

// Pacing level bounds on the percentile scale. 40 and 60 are Moderate.
const (
	lightBelow = 40.0
	heavyAbove = 60.0
)

// LevelFor maps a percentile to a pacing level: below 40 is Light, above 60
// is Heavy, anything else Moderate.
func LevelFor(p float64) models.PacingLevel {
	switch {
	case p < lightBelow:
		return models.PacingLight
	case p > heavyAbove:
		return models.PacingHeavy
	default:
		return models.PacingModerate
	}
}

// levelProfile is how a pacing level shapes sets and rests.
type levelProfile struct {
	unbroken    int     // largest rep count done as one set
	chunk       int     // target set size once a movement is broken up
	restSeconds int     // rest between sets
	repFactor   float64 // multiplier on the base seconds per rep
}

var profiles = map[models.PacingLevel]levelProfile{
	models.PacingHeavy:    {unbroken: 15, chunk: 12, restSeconds: 5, repFactor: 0.85},
	models.PacingModerate: {unbroken: 10, chunk: 8, restSeconds: 10, repFactor: 1.0},
	models.PacingLight:    {unbroken: 5, chunk: 5, restSeconds: 20, repFactor: 1.2},
}

func profileFor(level models.PacingLevel) levelProfile {
	if p, ok := profiles[level]; ok {
		return p
	}
	return profiles[models.PacingModerate]
}

// baselines stand in for a percentile when no benchmark covers a movement.
var baselines = map[models.ExperienceLevel]float64{
	models.ExperienceBeginner:     30,
	models.ExperienceIntermediate: 50,
	models.ExperienceAdvanced:     65,
	models.ExperienceElite:        80,
}

// BaselinePercentile is the assumed percentile for an athlete of the given
// experience on a movement without benchmark data.
func BaselinePercentile(exp models.ExperienceLevel) float64 {
	if p, ok := baselines[exp]; ok {
		return p
	}
	return 50
}

// SplitReps breaks reps into sets for a pacing level, larger sets first.
func SplitReps(reps int, level models.PacingLevel) []int {
	if reps <= 0 {
		return nil
	}
	pr := profileFor(level)
	if reps <= pr.unbroken {
		return []int{reps}
	}
	n := (reps + pr.chunk - 1) / pr.chunk
	sets := make([]int, n)
	base, extra := reps/n, reps%n
	for i := range sets {
		sets[i] = base
		if i < extra {
			sets[i]++
		}
	}
	return sets
}

// RoundPlan is the set breakdown for one prescribed rep count.
type RoundPlan struct {
	Reps int   `json:"reps"`
	Sets []int `json:"sets"`
}

// PacingResult is the pacing guidance for one movement.
type PacingResult struct {
	SequenceOrder int                `json:"sequence_order"`
	Movement      string             `json:"movement"`
	MovementID    int64              `json:"movement_id,omitempty"`
	Percentile    float64            `json:"percentile"`
	HasBenchmark  bool               `json:"has_benchmark"`
	Level         models.PacingLevel `json:"level"`
	Plans         []RoundPlan        `json:"plans,omitempty"`
	RestSeconds   int                `json:"rest_between_sets_seconds"`
	PaceTarget    *pace.Target       `json:"pace_target,omitempty"`
	Guidance      string             `json:"guidance"`
}

var levelLead = map[models.PacingLevel]string{
	models.PacingHeavy:    "A strength for you, push the pace.",
	models.PacingModerate: "Hold a steady, repeatable effort.",
	models.PacingLight:    "A limiter for you, break early and stay consistent.",
}

// AnalyzePacing sets the pacing level of a movement from its percentile and
// plans its sets. Cardio movements get a pace target instead of sets. mp is
// nil when no benchmark covers the movement; the experience baseline is
// used then.
func AnalyzePacing(pm models.ParsedMovement, mp *MovementPercentile, w models.ParsedWorkout, exp models.ExperienceLevel) PacingResult {
	p := BaselinePercentile(exp)
	if mp != nil {
		p = mp.Percentile
	}
	level := LevelFor(p)
	pr := profileFor(level)

	res := PacingResult{
		SequenceOrder: pm.SequenceOrder,
		Movement:      pm.DisplayName(),
		Percentile:    p,
		HasBenchmark:  mp != nil,
		Level:         level,
		RestSeconds:   pr.restSeconds,
	}
	if pm.Movement != nil {
		res.MovementID = pm.Movement.ID
	}

	if pm.Category() == models.CategoryCardio {
		res.RestSeconds = 0
		res.PaceTarget = paceTarget(pm, mp, w, level)
		res.Guidance = cardioGuidance(level, res.PaceTarget)
		return res
	}

	for _, reps := range prescribedReps(pm) {
		res.Plans = append(res.Plans, RoundPlan{Reps: reps, Sets: SplitReps(reps, level)})
	}
	res.Guidance = repGuidance(level, res.Plans, pr.restSeconds)
	return res
}

// prescribedReps lists the distinct rep counts a movement is done for, in
// round order.
func prescribedReps(pm models.ParsedMovement) []int {
	switch {
	case pm.Reps != nil:
		return []int{*pm.Reps}
	case pm.RepScheme != nil:
		var out []int
		seen := make(map[int]bool)
		for _, r := range pm.RepScheme.Reps {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
		return out
	}
	return nil
}

func repGuidance(level models.PacingLevel, plans []RoundPlan, rest int) string {
	lead := levelLead[level]
	if len(plans) == 0 {
		return lead + " Keep moving at a pace you could hold for the whole piece."
	}
	var parts []string
	broken := false
	for _, p := range plans {
		if len(p.Sets) > 1 {
			broken = true
		}
		parts = append(parts, fmt.Sprintf("%d as %s", p.Reps, joinInts(p.Sets, "-")))
	}
	if !broken {
		return lead + " Go unbroken."
	}
	return fmt.Sprintf("%s Break %s, resting about %ds between sets.", lead, strings.Join(parts, ", "), rest)
}

func cardioGuidance(level models.PacingLevel, t *pace.Target) string {
	if t == nil {
		return levelLead[level] + " No pace benchmark on file, settle into a pace you can hold and finish strong."
	}
	return fmt.Sprintf("%s Hold %s (%s).", levelLead[level], t.Primary, t.Secondary)
}

// paceTarget derives a target from the most relevant pace benchmark of the
// movement's cardio kind.
func paceTarget(pm models.ParsedMovement, mp *MovementPercentile, w models.ParsedWorkout, level models.PacingLevel) *pace.Target {
	if mp == nil || pm.Movement == nil {
		return nil
	}
	kind := catalog.KindOf(*pm.Movement)
	if kind == catalog.CardioOther {
		return nil
	}
	for _, s := range mp.Sources {
		raw, err := pace.FromBenchmark(s.Code, s.Value)
		if err != nil || raw.Kind != kind {
			continue
		}
		t := pace.TargetFor(raw, paceContext(pm, w), level)
		return &t
	}
	return nil
}

// paceContext is nil when neither the workout duration nor the piece
// distance is known.
func paceContext(pm models.ParsedMovement, w models.ParsedWorkout) *pace.Context {
	dur, _ := w.DurationSeconds()
	var meters float64
	if pm.Distance != nil {
		meters = pm.Distance.Meters()
	}
	if dur <= 0 && meters <= 0 {
		return nil
	}
	return &pace.Context{Type: w.Type, DurationSeconds: dur, DistanceMeters: meters}
}

func joinInts(v []int, sep string) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, sep)
}
