// Package strategy turns a parsed workout and an athlete's benchmark results
// into pacing, volume and timing guidance.
//
// Everything here is a pure function of its inputs. Build refuses workouts
// with blocking parse issues.
package strategy

import (
	"errors"
	"math"

	"github.com/claude/wodcoach/internal/models"
)

// ErrInvalidWorkout is returned by Build for workouts that are not valid.
var ErrInvalidWorkout = errors.New("workout has blocking issues")

// Strategy is the complete guidance for one athlete on one workout.
type Strategy struct {
	WorkoutType models.WorkoutType `json:"workout_type"`
	Pacing      []PacingResult     `json:"pacing"`
	Volume      []VolumeResult     `json:"volume"`
	Time        TimeEstimate       `json:"time_estimate"`
	Insights    Insights           `json:"insights"`
}

// Build runs every analyzer over w for the athlete in in.
func Build(w models.ParsedWorkout, in Inputs) (*Strategy, error) {
	if !w.IsValid() {
		return nil, ErrInvalidWorkout
	}
	joined := Join(in)
	exp := in.Athlete.Experience

	pacing := make([]PacingResult, len(w.Movements))
	covered := 0
	for i, pm := range w.Movements {
		mp := lookup(joined, pm)
		if mp != nil {
			covered++
		}
		pacing[i] = AnalyzePacing(pm, mp, w, exp)
	}
	coverage := float64(covered) / float64(len(w.Movements))

	est := EstimateTime(w, pacing, coverage)

	volume := make([]VolumeResult, len(w.Movements))
	for i, pm := range w.Movements {
		volume[i] = AnalyzeVolume(pm, lookup(joined, pm), roundsFor(pm, w, est), in.Athlete)
	}

	return &Strategy{
		WorkoutType: w.Type,
		Pacing:      pacing,
		Volume:      volume,
		Time:        est,
		Insights:    Synthesize(w, pacing, volume, est, exp),
	}, nil
}

func lookup(joined map[int64]MovementPercentile, pm models.ParsedMovement) *MovementPercentile {
	if pm.Movement == nil {
		return nil
	}
	mp, ok := joined[pm.Movement.ID]
	if !ok {
		return nil
	}
	return &mp
}

// roundsFor is how many times a movement is performed: the estimated score
// for AMRAPs, the minutes of its slot for EMOMs, else the workout rounds.
func roundsFor(pm models.ParsedMovement, w models.ParsedWorkout, est TimeEstimate) int {
	switch {
	case est.RoundsReps != nil:
		mid := float64(est.RoundsReps.LowRounds+est.RoundsReps.HighRounds) / 2
		return max(1, int(math.Ceil(mid)))
	case w.Type == models.WorkoutEmom && w.EMOMSlots > 1 && pm.EMOMSlot > 0:
		n := w.Rounds() / w.EMOMSlots
		if pm.EMOMSlot <= w.Rounds()%w.EMOMSlots {
			n++
		}
		return max(1, n)
	default:
		return w.Rounds()
	}
}
