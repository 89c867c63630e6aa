package strategy

import (
	"fmt"
	"math"
	"strings"

	"github.com/claude/wodcoach/internal/format"
	"github.com/claude/wodcoach/internal/models"
)

// VolumeLevel classifies the total load moved on one movement.
type VolumeLevel string

const (
	VolumeHigh       VolumeLevel = "high"
	VolumeModerate   VolumeLevel = "moderate"
	VolumeLow        VolumeLevel = "low"
	VolumeBodyweight VolumeLevel = "bodyweight"
)

// Volume thresholds in kg for a 50th percentile athlete.
const (
	highVolumeKg     = 4000.0
	moderateVolumeKg = 2000.0

	// scaledTarget is the share of the high threshold a scaled load aims for.
	scaledTarget = 0.9
	// minScaledShare is the lightest scaled load as a share of the prescribed one.
	minScaledShare = 0.5
)

// Plate increments used when rounding a scaled load.
var plateIncrement = map[models.WeightUnit]float64{
	models.UnitKg: 2.5,
	models.UnitLb: 5,
}

// ScaledLoad is a recommended lighter load.
type ScaledLoad struct {
	Value   float64           `json:"value"`
	Unit    models.WeightUnit `json:"unit"`
	Display string            `json:"display"`
}

// VolumeResult is the volume classification of one movement.
type VolumeResult struct {
	SequenceOrder int         `json:"sequence_order"`
	Movement      string      `json:"movement"`
	Percentile    float64     `json:"percentile"`
	HasBenchmark  bool        `json:"has_benchmark"`
	LoadKg        float64     `json:"load_kg"`
	TotalReps     int         `json:"total_reps"`
	VolumeKg      float64     `json:"volume_kg"`
	Level         VolumeLevel `json:"level"`
	Scaled        *ScaledLoad `json:"scaled_load,omitempty"`
	Guidance      string      `json:"guidance"`
}

// volumeFactor scales the thresholds with strength: 0.5 at the 0th
// percentile, 1.5 at the 100th.
func volumeFactor(p float64) float64 {
	return 0.5 + math.Max(0, math.Min(100, p))/100
}

// AnalyzeVolume classifies weight × reps × rounds against the athlete's
// strength percentile and recommends a scaled load when volume is High.
func AnalyzeVolume(pm models.ParsedMovement, mp *MovementPercentile, rounds int, athlete models.AthleteProfile) VolumeResult {
	p, has := BaselinePercentile(athlete.Experience), false
	if mp != nil && mp.Strength != nil {
		p, has = *mp.Strength, true
	}
	res := VolumeResult{
		SequenceOrder: pm.SequenceOrder,
		Movement:      pm.DisplayName(),
		Percentile:    p,
		HasBenchmark:  has,
		TotalReps:     totalReps(pm, rounds),
	}

	work := workDone(pm, res.TotalReps, rounds)
	if pm.Load == nil {
		res.Level = VolumeBodyweight
		res.Guidance = "No external load."
		if work != "" {
			res.Guidance = "No external load, " + work + "."
		}
		return res
	}

	res.LoadKg = pm.Load.KgFor(athlete.Gender)
	if res.TotalReps == 0 {
		res.Level = VolumeLow
		res.Guidance = "Loaded at " + format.Weight(pm.Load.For(athlete.Gender), string(pm.Load.Unit)) + "."
		if work != "" {
			res.Guidance = strings.TrimSuffix(res.Guidance, ".") + ", " + work + "."
		}
		return res
	}
	res.VolumeKg = res.LoadKg * float64(res.TotalReps)
	f := volumeFactor(p)
	total := format.Weight(res.VolumeKg, "kg")
	switch {
	case res.VolumeKg >= highVolumeKg*f:
		res.Level = VolumeHigh
		res.Scaled = scaleLoad(pm.Load.For(athlete.Gender), pm.Load.Unit, highVolumeKg*f*scaledTarget/res.VolumeKg)
		res.Guidance = fmt.Sprintf("High volume, %s moved in total. Consider %s to keep the sets moving.", total, res.Scaled.Display)
	case res.VolumeKg >= moderateVolumeKg*f:
		res.Level = VolumeModerate
		res.Guidance = fmt.Sprintf("Moderate volume, %s moved in total. Keep the prescribed load.", total)
	default:
		res.Level = VolumeLow
		res.Guidance = fmt.Sprintf("Low volume, %s moved in total. Move the bar quickly.", total)
	}
	return res
}

// totalReps sums prescribed reps over rounds.
func totalReps(pm models.ParsedMovement, rounds int) int {
	n := 0
	for r := range max(rounds, 1) {
		n += pm.RepsInRound(r)
	}
	return n
}

// workDone describes the prescribed work over all rounds, or "" when the
// movement has no quantity.
func workDone(pm models.ParsedMovement, reps, rounds int) string {
	rounds = max(rounds, 1)
	switch {
	case reps > 0:
		return fmt.Sprintf("%d reps in total", reps)
	case pm.Distance != nil:
		return format.Distance(pm.Distance.Value*float64(rounds), string(pm.Distance.Unit)) + " in total"
	case pm.Calories != nil:
		return fmt.Sprintf("%d cal in total", *pm.Calories*rounds)
	case pm.DurationSeconds != nil:
		return format.Duration(float64(*pm.DurationSeconds*rounds)) + " of work in total"
	}
	return ""
}

// scaleLoad multiplies load by ratio and rounds down to a plate increment.
// The result never drops below half the prescribed load, rounded up to an
// increment, nor below one increment.
func scaleLoad(load float64, unit models.WeightUnit, ratio float64) *ScaledLoad {
	inc := plateIncrement[unit]
	if inc == 0 {
		inc = 1
	}
	v := math.Floor(load*ratio/inc) * inc
	floor := math.Max(inc, math.Ceil(load*minScaledShare/inc)*inc)
	if v < floor {
		v = floor
	}
	return &ScaledLoad{Value: v, Unit: unit, Display: format.Weight(v, string(unit))}
}
