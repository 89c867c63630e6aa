package strategy

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/claude/wodcoach/internal/format"
	"github.com/claude/wodcoach/internal/models"
)

// Difficulty factor weights.
const (
	weightPacing = 0.4
	weightVolume = 0.3
	weightTime   = 0.3

	// longWorkoutSeconds is the duration at which the time factor saturates.
	longWorkoutSeconds = 30 * 60

	maxFocusMovements = 3
)

var experienceModifier = map[models.ExperienceLevel]float64{
	models.ExperienceBeginner:     1.2,
	models.ExperienceIntermediate: 1.0,
	models.ExperienceAdvanced:     0.9,
	models.ExperienceElite:        0.8,
}

var volumeWeight = map[VolumeLevel]float64{
	VolumeHigh:       1.0,
	VolumeModerate:   0.6,
	VolumeLow:        0.3,
	VolumeBodyweight: 0.4,
}

var focusBonus = map[VolumeLevel]float64{
	VolumeHigh:     30,
	VolumeModerate: 15,
}

// AlertKind identifies a workout risk.
type AlertKind string

const (
	AlertMixedProfile   AlertKind = "mixed_profile"
	AlertHighVolume     AlertKind = "high_volume"
	AlertEMOMInfeasible AlertKind = "emom_infeasible"
	AlertLowCoverage    AlertKind = "low_benchmark_coverage"
	AlertTimeCapRisk    AlertKind = "time_cap_risk"
)

// Alert is a risk worth telling the athlete about before they start.
type Alert struct {
	Kind      AlertKind `json:"kind"`
	Message   string    `json:"message"`
	Movements []string  `json:"movements,omitempty"`
}

// FocusMovement is a movement likely to limit the athlete's result.
type FocusMovement struct {
	SequenceOrder int                `json:"sequence_order"`
	Movement      string             `json:"movement"`
	Level         models.PacingLevel `json:"level"`
	Volume        VolumeLevel        `json:"volume"`
	Score         float64            `json:"score"`
	Reason        string             `json:"reason"`
}

// Factors are the difficulty inputs, each in [0, 1].
type Factors struct {
	Pacing float64 `json:"pacing"`
	Volume float64 `json:"volume"`
	Time   float64 `json:"time"`
}

// Insights aggregates the analyzers into workout-level guidance.
type Insights struct {
	Difficulty      float64         `json:"difficulty"`
	DifficultyLabel string          `json:"difficulty_label"`
	Factors         Factors         `json:"factors"`
	Confidence      int             `json:"confidence"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level"`
	KeyFocus        []FocusMovement `json:"key_focus"`
	Alerts          []Alert         `json:"alerts"`
}

// Synthesize combines pacing, volume and time results. pacing and volume
// hold one entry per workout movement, in order.
func Synthesize(w models.ParsedWorkout, pacing []PacingResult, volume []VolumeResult, est TimeEstimate, exp models.ExperienceLevel) Insights {
	f := Factors{
		Pacing: pacingFactor(pacing),
		Volume: volumeFactorOf(volume),
		Time:   timeFactor(w, est),
	}
	mod, ok := experienceModifier[exp]
	if !ok {
		mod = 1
	}
	d := (weightPacing*f.Pacing + weightVolume*f.Volume + weightTime*f.Time) * 10 * mod
	d = math.Round(math.Max(1, math.Min(10, d))*10) / 10

	return Insights{
		Difficulty:      d,
		DifficultyLabel: difficultyLabel(d),
		Factors:         f,
		Confidence:      int(math.Round(math.Max(0, math.Min(1, est.Coverage)) * 100)),
		ConfidenceLevel: est.Confidence,
		KeyFocus:        keyFocus(pacing, volume),
		Alerts:          alerts(w, pacing, volume, est),
	}
}

// pacingFactor is the mean distance below the 100th percentile.
func pacingFactor(pacing []PacingResult) float64 {
	if len(pacing) == 0 {
		return 0
	}
	var sum float64
	for _, p := range pacing {
		sum += (100 - math.Max(0, math.Min(100, p.Percentile))) / 100
	}
	return sum / float64(len(pacing))
}

func volumeFactorOf(volume []VolumeResult) float64 {
	if len(volume) == 0 {
		return 0
	}
	var sum float64
	for _, v := range volume {
		sum += volumeWeight[v.Level]
	}
	return sum / float64(len(volume))
}

// timeFactor grows with expected duration and saturates at 30 minutes.
func timeFactor(w models.ParsedWorkout, est TimeEstimate) float64 {
	var sec float64
	switch {
	case est.Time != nil:
		sec = (est.Time.LowSeconds + est.Time.HighSeconds) / 2
	default:
		d, _ := w.DurationSeconds()
		sec = float64(d)
	}
	return math.Max(0, math.Min(1, sec/longWorkoutSeconds))
}

func difficultyLabel(d float64) string {
	switch {
	case d <= 3:
		return "easy"
	case d <= 6:
		return "moderate"
	case d <= 8:
		return "hard"
	default:
		return "very hard"
	}
}

// keyFocus ranks movements by weakness plus load: lower percentile and
// higher volume rank first.
func keyFocus(pacing []PacingResult, volume []VolumeResult) []FocusMovement {
	out := make([]FocusMovement, 0, len(pacing))
	for i, p := range pacing {
		fm := FocusMovement{
			SequenceOrder: p.SequenceOrder,
			Movement:      p.Movement,
			Level:         p.Level,
			Score:         100 - p.Percentile,
		}
		if i < len(volume) {
			fm.Volume = volume[i].Level
			fm.Score += focusBonus[fm.Volume]
		}
		fm.Reason = focusReason(p, fm.Volume)
		out = append(out, fm)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > maxFocusMovements {
		out = out[:maxFocusMovements]
	}
	return out
}

func focusReason(p PacingResult, v VolumeLevel) string {
	var parts []string
	switch {
	case !p.HasBenchmark:
		parts = append(parts, "no benchmark on file")
	case p.Level == models.PacingLight:
		parts = append(parts, format.Percentile(p.Percentile)+" percentile, a limiter")
	default:
		parts = append(parts, format.Percentile(p.Percentile)+" percentile")
	}
	if v == VolumeHigh {
		parts = append(parts, "high volume")
	}
	return strings.Join(parts, ", ")
}

func alerts(w models.ParsedWorkout, pacing []PacingResult, volume []VolumeResult, est TimeEstimate) []Alert {
	out := []Alert{}

	var weak, strong []string
	for _, p := range pacing {
		if !p.HasBenchmark {
			continue
		}
		switch p.Level {
		case models.PacingLight:
			weak = append(weak, p.Movement)
		case models.PacingHeavy:
			strong = append(strong, p.Movement)
		}
	}
	if len(weak) > 0 && len(strong) > 0 {
		out = append(out, Alert{
			Kind:      AlertMixedProfile,
			Message:   fmt.Sprintf("Mixed strengths and weaknesses: bank time on %s and pace %s.", strings.Join(strong, ", "), strings.Join(weak, ", ")),
			Movements: append(append([]string{}, weak...), strong...),
		})
	}

	var heavy []string
	for _, v := range volume {
		if v.Level == VolumeHigh {
			heavy = append(heavy, v.Movement)
		}
	}
	if len(heavy) > 0 {
		out = append(out, Alert{
			Kind:      AlertHighVolume,
			Message:   "High load volume on " + strings.Join(heavy, ", ") + ". Consider the scaled load.",
			Movements: heavy,
		})
	}

	if est.EMOM != nil && est.EMOM.InfeasibleMinutes > 0 {
		out = append(out, Alert{
			Kind:    AlertEMOMInfeasible,
			Message: est.EMOM.Summary,
		})
	}

	if est.Coverage < 0.5 {
		out = append(out, Alert{
			Kind:    AlertLowCoverage,
			Message: fmt.Sprintf("Only %.0f%% of movements are backed by your benchmarks, guidance leans on defaults.", est.Coverage*100),
		})
	}

	if w.TimeCapSeconds != nil && est.Time != nil && est.Kind == EstimateKindTime &&
		(w.Type == models.WorkoutForTime || w.Type == models.WorkoutRounds) &&
		est.Time.HighSeconds > float64(*w.TimeCapSeconds) {
		out = append(out, Alert{
			Kind:    AlertTimeCapRisk,
			Message: fmt.Sprintf("Expected finish %s may exceed the %s cap.", est.Time.Display, format.Duration(float64(*w.TimeCapSeconds))),
		})
	}
	return out
}
