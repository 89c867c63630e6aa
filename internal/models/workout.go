package models

import "github.com/claude/wodcoach/internal/issues"

// WorkoutType is the structural format of a workout.
type WorkoutType string

const (
	WorkoutAmrap     WorkoutType = "amrap"
	WorkoutForTime   WorkoutType = "for_time"
	WorkoutEmom      WorkoutType = "emom"
	WorkoutIntervals WorkoutType = "intervals"
	WorkoutRounds    WorkoutType = "rounds"
	WorkoutTabata    WorkoutType = "tabata"
)

var workoutTypeNames = map[WorkoutType]string{
	WorkoutAmrap:     "AMRAP",
	WorkoutForTime:   "For Time",
	WorkoutEmom:      "EMOM",
	WorkoutIntervals: "Intervals",
	WorkoutRounds:    "Rounds",
	WorkoutTabata:    "Tabata",
}

// DisplayName returns the conventional written form, e.g. "AMRAP".
func (t WorkoutType) DisplayName() string {
	if n, ok := workoutTypeNames[t]; ok {
		return n
	}
	return string(t)
}

// RepSchemeKind classifies a rep scheme by the direction of its values.
type RepSchemeKind string

const (
	RepSchemeFixed      RepSchemeKind = "fixed"
	RepSchemeDescending RepSchemeKind = "descending"
	RepSchemeAscending  RepSchemeKind = "ascending"
	RepSchemeCustom     RepSchemeKind = "custom"
)

// RepScheme is a per-round rep prescription such as 21-15-9.
type RepScheme struct {
	Kind RepSchemeKind `json:"kind"`
	Reps []int         `json:"reps"`
}

// Total is the sum of all rounds.
func (r RepScheme) Total() int {
	n := 0
	for _, v := range r.Reps {
		n += v
	}
	return n
}

// ParsedMovement is one movement line recovered from workout text.
// Movement is nil when the name did not resolve against the catalog.
type ParsedMovement struct {
	SequenceOrder   int        `json:"sequence_order"`
	LineNumber      int        `json:"line_number"`
	OriginalText    string     `json:"original_text"`
	Name            string     `json:"name"`
	Movement        *Movement  `json:"movement,omitempty"`
	Reps            *int       `json:"reps,omitempty"`
	Load            *Load      `json:"load,omitempty"`
	Distance        *Distance  `json:"distance,omitempty"`
	Calories        *int       `json:"calories,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	RepScheme       *RepScheme `json:"rep_scheme,omitempty"`
	EMOMSlot        int        `json:"emom_slot,omitempty"` // 1-based; 0 when unassigned
}

// Resolved reports whether the movement matched a catalog entry.
func (m ParsedMovement) Resolved() bool {
	return m.Movement != nil
}

// DisplayName is the canonical name when resolved, else the written name.
func (m ParsedMovement) DisplayName() string {
	if m.Movement != nil {
		return m.Movement.CanonicalName
	}
	return m.Name
}

// Category returns the catalog category, or "" when unresolved.
func (m ParsedMovement) Category() MovementCategory {
	if m.Movement == nil {
		return ""
	}
	return m.Movement.Category
}

// HasQuantity reports whether any amount of work was prescribed.
func (m ParsedMovement) HasQuantity() bool {
	return m.Reps != nil || m.Distance != nil || m.Calories != nil ||
		m.DurationSeconds != nil || m.RepScheme != nil
}

// RepsInRound returns the reps prescribed for a 0-based round. Rep schemes
// give one value per round; explicit reps apply to every round.
func (m ParsedMovement) RepsInRound(round int) int {
	if m.Reps != nil {
		return *m.Reps
	}
	if m.RepScheme != nil && len(m.RepScheme.Reps) > 0 {
		if round < len(m.RepScheme.Reps) {
			return m.RepScheme.Reps[round]
		}
		return m.RepScheme.Reps[len(m.RepScheme.Reps)-1]
	}
	return 0
}

// ParsedWorkout is the structured form of a workout description.
type ParsedWorkout struct {
	Type            WorkoutType      `json:"workout_type"`
	Movements       []ParsedMovement `json:"movements"`
	TimeCapSeconds  *int             `json:"time_cap_seconds,omitempty"`
	RoundCount      *int             `json:"round_count,omitempty"`
	IntervalSeconds *int             `json:"interval_duration_seconds,omitempty"`
	RepScheme       *RepScheme       `json:"rep_scheme,omitempty"`
	EMOMSlots       int              `json:"emom_slots,omitempty"`
	Issues          []issues.Issue   `json:"issues,omitempty"` // blocking only
}

// IsValid requires no blocking issues and at least one movement.
func (w ParsedWorkout) IsValid() bool {
	return len(w.Issues) == 0 && len(w.Movements) > 0
}

// Rounds is the number of prescribed rounds; 1 when unspecified.
func (w ParsedWorkout) Rounds() int {
	if w.RoundCount != nil && *w.RoundCount > 0 {
		return *w.RoundCount
	}
	if w.RepScheme != nil && len(w.RepScheme.Reps) > 0 {
		return len(w.RepScheme.Reps)
	}
	return 1
}

// DurationSeconds returns the workout's fixed time domain when it has one:
// the time cap when set, else rounds × interval.
func (w ParsedWorkout) DurationSeconds() (int, bool) {
	if w.TimeCapSeconds != nil {
		return *w.TimeCapSeconds, true
	}
	if w.RoundCount != nil && w.IntervalSeconds != nil {
		return *w.RoundCount * *w.IntervalSeconds, true
	}
	return 0, false
}
