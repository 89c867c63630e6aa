package models

import (
	"math"
	"testing"

	"github.com/claude/wodcoach/internal/issues"
)

func intPtr(v int) *int { return &v }

func TestRepsInRound(t *testing.T) {
	scheme := &RepScheme{Kind: RepSchemeDescending, Reps: []int{21, 15, 9}}
	m := ParsedMovement{RepScheme: scheme}
	for round, want := range []int{21, 15, 9, 9} {
		if got := m.RepsInRound(round); got != want {
			t.Errorf("RepsInRound(%d) = %d, want %d", round, got, want)
		}
	}

	m.Reps = intPtr(10)
	if got := m.RepsInRound(1); got != 10 {
		t.Errorf("explicit reps RepsInRound = %d, want 10", got)
	}
	if got := (ParsedMovement{}).RepsInRound(0); got != 0 {
		t.Errorf("empty RepsInRound = %d, want 0", got)
	}
}

// TestParsedWorkoutIsValid verifies validity needs both movements and the
// absence of blocking issues.
func TestParsedWorkoutIsValid(t *testing.T) {
	w := ParsedWorkout{Type: WorkoutForTime}
	if w.IsValid() {
		t.Error("workout without movements reported valid")
	}
	w.Movements = []ParsedMovement{{SequenceOrder: 1, Name: "Burpees"}}
	if !w.IsValid() {
		t.Error("workout with a movement and no issues reported invalid")
	}
	w.Issues = []issues.Issue{issues.New(issues.CodeMissingDuration)}
	if w.IsValid() {
		t.Error("workout with a blocking issue reported valid")
	}
}

func TestParsedWorkoutRoundsAndDuration(t *testing.T) {
	w := ParsedWorkout{RepScheme: &RepScheme{Reps: []int{21, 15, 9}}}
	if got := w.Rounds(); got != 3 {
		t.Errorf("Rounds = %d, want 3", got)
	}
	if _, ok := w.DurationSeconds(); ok {
		t.Error("DurationSeconds without cap or interval reported ok")
	}

	emom := ParsedWorkout{Type: WorkoutEmom, RoundCount: intPtr(12), IntervalSeconds: intPtr(60)}
	if got, ok := emom.DurationSeconds(); !ok || got != 720 {
		t.Errorf("EMOM DurationSeconds = %d, %v; want 720, true", got, ok)
	}
}

// TestLoadForGender verifies split loads pick the female value only when
// one was written.
func TestLoadForGender(t *testing.T) {
	female := 65.0
	l := Load{Value: 95, FemaleValue: &female, Unit: UnitLb}
	if got := l.For(GenderMale); got != 95 {
		t.Errorf("For(male) = %v, want 95", got)
	}
	if got := l.For(GenderFemale); got != 65 {
		t.Errorf("For(female) = %v, want 65", got)
	}
	if got := l.KgFor(GenderMale); math.Abs(got-43.0913) > 1e-3 {
		t.Errorf("KgFor(male) = %v, want ~43.09", got)
	}
	single := Load{Value: 60, Unit: UnitKg}
	if got := single.For(GenderFemale); got != 60 {
		t.Errorf("single load For(female) = %v, want 60", got)
	}
}

func TestDistanceMeters(t *testing.T) {
	tests := []struct {
		d    Distance
		want float64
	}{
		{Distance{400, UnitMeters}, 400},
		{Distance{5, UnitKilometers}, 5000},
		{Distance{1, UnitMiles}, 1609.344},
		{Distance{100, UnitFeet}, 30.48},
	}
	for _, tt := range tests {
		if got := tt.d.Meters(); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%v.Meters() = %v, want %v", tt.d, got, tt.want)
		}
	}
}
