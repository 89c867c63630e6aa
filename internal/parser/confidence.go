package parser

import (
	"math"

	"github.com/claude/wodcoach/internal/models"
)

// ConfidenceLevel is the qualitative band of a confidence score.
type ConfidenceLevel string

const (
	ConfidencePerfect ConfidenceLevel = "perfect"
	ConfidenceHigh    ConfidenceLevel = "high"
	ConfidenceMedium  ConfidenceLevel = "medium"
	ConfidenceLow     ConfidenceLevel = "low"
)

// Score thresholds for the confidence levels.
const (
	HighThreshold   = 80
	MediumThreshold = 60
)

// Factor weights. They sum to 1.
const (
	weightType           = 0.25
	weightTimeDomain     = 0.15
	weightIdentification = 0.45
	weightCompleteness   = 0.15
)

// Confidence summarizes how much of the workout was recovered.
type Confidence struct {
	Score     int             `json:"score"`
	Level     ConfidenceLevel `json:"level"`
	Breakdown Breakdown       `json:"breakdown"`
}

// Breakdown holds the per-factor sub-scores, each in [0, 1].
type Breakdown struct {
	TypeDetection  float64 `json:"type_detection"`
	TimeDomain     float64 `json:"time_domain"`
	Identification float64 `json:"identification"`
	Completeness   float64 `json:"completeness"`
}

// Score combines the factors into a 0-100 score.
func (b Breakdown) Score() int {
	s := 100 * (weightType*b.TypeDetection +
		weightTimeDomain*b.TimeDomain +
		weightIdentification*b.Identification +
		weightCompleteness*b.Completeness)
	if math.IsNaN(s) {
		return 0
	}
	return int(math.Max(0, math.Min(100, math.Round(s))))
}

// ConfidenceLevelFor maps a score to its level.
func ConfidenceLevelFor(score int) ConfidenceLevel {
	switch {
	case score >= 100:
		return ConfidencePerfect
	case score >= HighThreshold:
		return ConfidenceHigh
	case score >= MediumThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func (p *Parser) scoreConfidence(st *state) {
	b := Breakdown{
		TypeDetection:  st.typ.confidence,
		TimeDomain:     timeDomainScore(st.w),
		Identification: identificationRate(st.w.Movements),
		Completeness:   completeness(st.w.Movements),
	}
	score := b.Score()
	st.conf = Confidence{Score: score, Level: ConfidenceLevelFor(score), Breakdown: b}
}

// timeDomainScore rates how fully the workout's time domain is known.
func timeDomainScore(w models.ParsedWorkout) float64 {
	switch w.Type {
	case models.WorkoutAmrap, models.WorkoutEmom:
		if w.TimeCapSeconds != nil {
			return 1
		}
		return 0
	case models.WorkoutIntervals:
		switch {
		case w.RoundCount == nil:
			return 0
		case w.IntervalSeconds == nil:
			return 0.7
		default:
			return 1
		}
	case models.WorkoutTabata:
		return 1
	default:
		if w.TimeCapSeconds != nil {
			return 1
		}
		return 0.8
	}
}

// identificationRate is resolved / total movements. Unresolved movements
// stay in the denominator.
func identificationRate(ms []models.ParsedMovement) float64 {
	if len(ms) == 0 {
		return 0
	}
	resolved := 0
	for _, m := range ms {
		if m.Resolved() {
			resolved++
		}
	}
	return float64(resolved) / float64(len(ms))
}

// completeness averages per-movement data completeness: 1 with a quantity
// and, for weighted movements, a load; 0.75 with a quantity only; else 0.
func completeness(ms []models.ParsedMovement) float64 {
	if len(ms) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range ms {
		switch {
		case !m.HasQuantity():
		case m.Movement != nil && m.Movement.IsWeighted && m.Load == nil:
			sum += 0.75
		default:
			sum++
		}
	}
	return sum / float64(len(ms))
}
