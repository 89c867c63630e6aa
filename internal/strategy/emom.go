package strategy

import "fmt"

// Assessment is the overall verdict on an EMOM.
type Assessment string

const (
	AssessComfortable Assessment = "comfortable"
	AssessAdequate    Assessment = "adequate"
	AssessTight       Assessment = "tight"
	AssessChallenging Assessment = "some minutes may be challenging"
)

// Average buffer thresholds in seconds.
const (
	comfortableBuffer = 15.0
	adequateBuffer    = 10.0
)

// maxEMOMMinutes bounds the per-minute table.
const maxEMOMMinutes = 240

// MinuteResult is the feasibility of one EMOM minute.
type MinuteResult struct {
	Minute int `json:"minute"`
	// MovementIDs is always empty: minutes are attributed by movement name
	// only until parsed slots carry catalog identity.
	MovementIDs      []int64  `json:"movement_ids"`
	Movements        []string `json:"movements"`
	EstimatedSeconds float64  `json:"estimated_seconds"`
	BufferSeconds    float64  `json:"buffer_seconds"`
	Feasible         bool     `json:"feasible"`
}

// EvaluateMinute compares estimated work against the interval. The buffer is
// the time left to rest; a minute is feasible when it is not negative.
func EvaluateMinute(minute int, estimated float64, interval int) MinuteResult {
	buffer := float64(interval) - estimated
	return MinuteResult{
		Minute:           minute,
		MovementIDs:      []int64{},
		EstimatedSeconds: estimated,
		BufferSeconds:    buffer,
		Feasible:         buffer >= 0,
	}
}

// EMOMAssessment summarizes a per-minute table.
type EMOMAssessment struct {
	Minutes           []MinuteResult `json:"minutes"`
	AverageBuffer     float64        `json:"average_buffer_seconds"`
	InfeasibleMinutes int            `json:"infeasible_minutes"`
	Assessment        Assessment     `json:"assessment"`
	Summary           string         `json:"summary"`
}

// AssessEMOM rates a minute table: any infeasible minute makes it
// challenging; otherwise the average buffer decides comfortable (15s and
// up), adequate (10s and up) or tight.
func AssessEMOM(minutes []MinuteResult) *EMOMAssessment {
	a := &EMOMAssessment{Minutes: minutes}
	var sum float64
	for _, m := range minutes {
		sum += m.BufferSeconds
		if !m.Feasible {
			a.InfeasibleMinutes++
		}
	}
	if len(minutes) > 0 {
		a.AverageBuffer = sum / float64(len(minutes))
	}

	switch {
	case a.InfeasibleMinutes > 0:
		a.Assessment = AssessChallenging
		a.Summary = fmt.Sprintf("%d of %d minutes leave no rest. Scale reps or load there.", a.InfeasibleMinutes, len(minutes))
	case a.AverageBuffer >= comfortableBuffer:
		a.Assessment = AssessComfortable
		a.Summary = fmt.Sprintf("About %.0fs of rest each minute.", a.AverageBuffer)
	case a.AverageBuffer >= adequateBuffer:
		a.Assessment = AssessAdequate
		a.Summary = fmt.Sprintf("About %.0fs of rest each minute, start each minute promptly.", a.AverageBuffer)
	default:
		a.Assessment = AssessTight
		a.Summary = fmt.Sprintf("Only about %.0fs of rest each minute, stay efficient.", a.AverageBuffer)
	}
	return a
}

// emomMinutes estimates every minute of the EMOM. Minutes rotate over the
// parsed slots; movements without a slot are done every minute.
func (m model) emomMinutes(interval int) []MinuteResult {
	w := m.w
	n := min(w.Rounds(), maxEMOMMinutes)
	out := make([]MinuteResult, 0, n)
	for minute := 1; minute <= n; minute++ {
		slot := 0
		if w.EMOMSlots > 0 {
			slot = (minute-1)%w.EMOMSlots + 1
		}
		var est float64
		var names []string
		for i, pm := range w.Movements {
			if slot > 0 && pm.EMOMSlot > 0 && pm.EMOMSlot != slot {
				continue
			}
			level, target := m.level(i)
			est += workSeconds(pm, minute-1, level, target)
			names = append(names, pm.DisplayName())
		}
		if len(names) > 1 {
			est += float64(len(names)-1) * transitionSeconds
		}
		res := EvaluateMinute(minute, est, interval)
		res.Movements = names
		out = append(out, res)
	}
	return out
}
