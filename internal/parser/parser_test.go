package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/claude/wodcoach/internal/catalog"
	"github.com/claude/wodcoach/internal/issues"
	"github.com/claude/wodcoach/internal/models"
)

func testParser() *Parser {
	cat := catalog.New([]models.Movement{
		{ID: 1, CanonicalName: "Thrusters", Aliases: []string{"Thruster"}, Category: models.CategoryWeightlifting, IsWeighted: true},
		{ID: 2, CanonicalName: "Pull-ups", Aliases: []string{"Pullups", "Pull up"}, Category: models.CategoryGymnastics},
		{ID: 3, CanonicalName: "Push-ups", Category: models.CategoryBodyweight},
		{ID: 4, CanonicalName: "Air Squats", Category: models.CategoryBodyweight},
		{ID: 5, CanonicalName: "Burpees", Category: models.CategoryBodyweight},
		{ID: 6, CanonicalName: "Wall Balls", Aliases: []string{"Wall Ball Shots"}, Category: models.CategoryWeightlifting, IsWeighted: true},
		{ID: 7, CanonicalName: "Deadlifts", Aliases: []string{"Deadlift"}, Category: models.CategoryWeightlifting, IsWeighted: true},
		{ID: 8, CanonicalName: "Run", Category: models.CategoryCardio},
		{ID: 9, CanonicalName: "Row", Category: models.CategoryCardio},
		{ID: 10, CanonicalName: "Double-unders", Aliases: []string{"DU"}, Category: models.CategoryGymnastics},
	})
	return New(cat)
}

func hasCode(list []issues.Issue, code issues.Code) bool {
	for _, is := range list {
		if is.Code == code {
			return true
		}
	}
	return false
}

// TestParseDescendingScheme verifies a bare rep ladder infers For Time,
// classifies the scheme and hands it to both movements.
func TestParseDescendingScheme(t *testing.T) {
	r := testParser().Parse("21-15-9\nThrusters\nPull-ups")

	w := r.Workout
	if w.Type != models.WorkoutForTime {
		t.Errorf("Type = %s, want for_time", w.Type)
	}
	if w.RepScheme == nil || w.RepScheme.Kind != models.RepSchemeDescending {
		t.Fatalf("RepScheme = %+v, want descending", w.RepScheme)
	}
	if got := w.RepScheme.Reps; len(got) != 3 || got[0] != 21 || got[1] != 15 || got[2] != 9 {
		t.Errorf("Reps = %v, want [21 15 9]", got)
	}
	if len(w.Movements) != 2 {
		t.Fatalf("movements = %d, want 2", len(w.Movements))
	}
	for i, m := range w.Movements {
		if !m.Resolved() {
			t.Errorf("movement %d (%q) unresolved", i, m.Name)
		}
		if m.SequenceOrder != i+1 {
			t.Errorf("movement %d SequenceOrder = %d", i, m.SequenceOrder)
		}
		if m.RepScheme == nil || m.RepsInRound(0) != 21 {
			t.Errorf("movement %d did not inherit the scheme", i)
		}
	}
	if w.RoundCount == nil || *w.RoundCount != 3 {
		t.Errorf("RoundCount = %v, want 3", w.RoundCount)
	}
	if r.Confidence.Score < HighThreshold {
		t.Errorf("confidence = %d, want >= %d", r.Confidence.Score, HighThreshold)
	}
	if r.Confidence.Level != ConfidenceHigh {
		t.Errorf("level = %s, want high", r.Confidence.Level)
	}
	if !r.Success() || !r.IsUsable() {
		t.Errorf("Success=%v IsUsable=%v, want both true; issues %v", r.Success(), r.IsUsable(), r.Issues())
	}
}

// TestParseAmrapPerfect verifies a fully specified AMRAP scores 100.
func TestParseAmrapPerfect(t *testing.T) {
	r := testParser().Parse("AMRAP 20 min\n5 Pull-ups\n10 Push-ups\n15 Air Squats")
	w := r.Workout
	if w.Type != models.WorkoutAmrap {
		t.Fatalf("Type = %s, want amrap", w.Type)
	}
	if w.TimeCapSeconds == nil || *w.TimeCapSeconds != 1200 {
		t.Errorf("TimeCapSeconds = %v, want 1200", w.TimeCapSeconds)
	}
	if len(w.Movements) != 3 {
		t.Fatalf("movements = %d, want 3", len(w.Movements))
	}
	if got := *w.Movements[2].Reps; got != 15 {
		t.Errorf("air squat reps = %d, want 15", got)
	}
	if r.Confidence.Score != 100 || r.Confidence.Level != ConfidencePerfect {
		t.Errorf("confidence = %d %s, want 100 perfect", r.Confidence.Score, r.Confidence.Level)
	}
}

func TestParseStructureVariants(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		typ      models.WorkoutType
		rounds   int // 0 means unset
		interval int
		capSecs  int
	}{
		{"amrap minutes before", "20 min AMRAP\n10 Burpees", models.WorkoutAmrap, 0, 0, 1200},
		{"amrap clock", "12:00 AMRAP\n10 Burpees", models.WorkoutAmrap, 0, 0, 720},
		{"emom", "EMOM 10\n10 Burpees", models.WorkoutEmom, 10, 60, 600},
		{"e2mom", "E2MOM 10 min\n10 Burpees", models.WorkoutEmom, 5, 120, 600},
		{"every n minutes", "Every 3 minutes for 15 minutes\n10 Burpees", models.WorkoutEmom, 5, 180, 900},
		{"every minute", "Every minute on the minute for 8 minutes\n5 Pull-ups", models.WorkoutEmom, 8, 60, 480},
		{"intervals", "5 x 3:00\n250m Row\n10 Burpees", models.WorkoutIntervals, 5, 180, 0},
		{"rounds for time", "3 Rounds For Time\n10 Burpees", models.WorkoutForTime, 3, 0, 0},
		{"rft", "5 RFT\n10 Burpees", models.WorkoutForTime, 5, 0, 0},
		{"rounds", "4 rounds\n10 Burpees", models.WorkoutRounds, 4, 0, 0},
		{"cap in parens", "For Time (12 min cap)\n50 Burpees", models.WorkoutForTime, 0, 0, 720},
		{"cap line", "For Time\nTime cap: 15 min\n50 Burpees", models.WorkoutForTime, 0, 0, 900},
		{"inline header", "AMRAP 15: 10 Burpees\n5 Pull-ups", models.WorkoutAmrap, 0, 0, 900},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testParser().Parse(tt.input)
			w := r.Workout
			if w.Type != tt.typ {
				t.Fatalf("Type = %s, want %s (issues %v)", w.Type, tt.typ, r.Issues())
			}
			if got := deref(w.RoundCount); got != tt.rounds {
				t.Errorf("RoundCount = %d, want %d", got, tt.rounds)
			}
			if got := deref(w.IntervalSeconds); got != tt.interval {
				t.Errorf("IntervalSeconds = %d, want %d", got, tt.interval)
			}
			if got := deref(w.TimeCapSeconds); got != tt.capSecs {
				t.Errorf("TimeCapSeconds = %d, want %d", got, tt.capSecs)
			}
			if !r.IsValid() {
				t.Errorf("IsValid = false, errors %v", r.Errors)
			}
			if len(w.Movements) == 0 {
				t.Error("no movements parsed")
			}
		})
	}
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// TestParseMissingRequiredFields verifies formats that need a duration or a
// round count block the parse without one.
func TestParseMissingRequiredFields(t *testing.T) {
	tests := []struct {
		input string
		code  issues.Code
	}{
		{"AMRAP\n10 Burpees", issues.CodeMissingDuration},
		{"EMOM\n10 Burpees", issues.CodeMissingDuration},
		{"Intervals\n250m Row", issues.CodeMissingRoundCount},
	}
	for _, tt := range tests {
		r := testParser().Parse(tt.input)
		if !hasCode(r.Errors, tt.code) {
			t.Errorf("Parse(%q) errors = %v, want %s", tt.input, r.Errors, tt.code)
		}
		if r.IsValid() || r.IsUsable() {
			t.Errorf("Parse(%q) valid despite blocking issue", tt.input)
		}
	}
}

// TestParseUnknownMovement verifies misspelled movements are kept unresolved
// with a suggestion and lower the identification rate.
func TestParseUnknownMovement(t *testing.T) {
	r := testParser().Parse("For Time\n21 Thrustres\n15 Pull-ups")
	if len(r.Workout.Movements) != 2 {
		t.Fatalf("movements = %d, want 2", len(r.Workout.Movements))
	}
	m := r.Workout.Movements[0]
	if m.Resolved() {
		t.Errorf("Thrustres resolved to %v", m.Movement)
	}
	if m.Reps == nil || *m.Reps != 21 {
		t.Errorf("Reps = %v, want 21", m.Reps)
	}
	if len(r.Warnings) != 1 || r.Warnings[0].Code != issues.CodeUnknownMovement {
		t.Fatalf("warnings = %v, want one UNKNOWN_MOVEMENT", r.Warnings)
	}
	w := r.Warnings[0]
	if w.Line != 2 {
		t.Errorf("warning line = %d, want 2", w.Line)
	}
	if len(w.SimilarNames) != 1 || w.SimilarNames[0] != "Thrusters" {
		t.Errorf("SimilarNames = %v, want [Thrusters]", w.SimilarNames)
	}
	if r.Confidence.Breakdown.Identification != 0.5 {
		t.Errorf("identification = %v, want 0.5", r.Confidence.Breakdown.Identification)
	}
	if !r.IsValid() || r.Success() {
		t.Errorf("IsValid=%v Success=%v, want true/false", r.IsValid(), r.Success())
	}
}

// TestParseNoStructure verifies text without a format header falls back to
// For Time with a warning and stays usable.
func TestParseNoStructure(t *testing.T) {
	r := testParser().Parse("10 Burpees\n20 Air Squats")
	if r.Workout.Type != models.WorkoutForTime {
		t.Errorf("Type = %s, want for_time", r.Workout.Type)
	}
	if !hasCode(r.Warnings, issues.CodeNoStructure) {
		t.Errorf("warnings = %v, want NO_STRUCTURE", r.Warnings)
	}
	if r.Success() {
		t.Error("Success = true with a warning")
	}
	if !r.IsUsable() {
		t.Errorf("IsUsable = false at confidence %d", r.Confidence.Score)
	}
}

func TestParseAmbiguousType(t *testing.T) {
	r := testParser().Parse("AMRAP 12 min\nFor Time\n10 Burpees")
	if r.Workout.Type != models.WorkoutAmrap {
		t.Errorf("Type = %s, want amrap", r.Workout.Type)
	}
	if !hasCode(r.Warnings, issues.CodeAmbiguousType) {
		t.Errorf("warnings = %v, want AMBIGUOUS_TYPE", r.Warnings)
	}
	if r.Confidence.Breakdown.TypeDetection >= 1 {
		t.Errorf("type confidence = %v, want < 1", r.Confidence.Breakdown.TypeDetection)
	}
}

func TestParseInputValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  issues.Code
	}{
		{"empty", "", issues.CodeEmptyInput},
		{"blank", "  \n\t ", issues.CodeEmptyInput},
		{"too short", "run", issues.CodeInputTooShort},
		{"too long", strings.Repeat("10 Burpees\n", 1000), issues.CodeInputTooLong},
		{"nul byte", "For Time\x00\n10 Burpees", issues.CodeBinaryContent},
		{"invalid utf8", "For Time\n\xff\xfe10 Burpees", issues.CodeBinaryContent},
		{"bell", "For Time\n10 Burpees\a", issues.CodeInvalidCharacters},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testParser().Parse(tt.input)
			if len(r.Errors) != 1 || r.Errors[0].Code != tt.code {
				t.Fatalf("errors = %v, want only %s", r.Errors, tt.code)
			}
			if r.IsValid() {
				t.Error("IsValid = true")
			}
			if len(r.Workout.Movements) != 0 {
				t.Error("movements parsed after failed input check")
			}
		})
	}
}

// TestParseLengthCountsRawInput verifies the length bound applies to the
// text as submitted, before compatibility characters expand.
func TestParseLengthCountsRawInput(t *testing.T) {
	in := "AMRAP 10\n10 Burpees\n" + strings.Repeat("\ufdfa", 600)
	r := testParser().Parse(in)
	if hasCode(r.Errors, issues.CodeInputTooLong) {
		t.Fatalf("errors = %v, want no INPUT_TOO_LONG for %d raw characters", r.Errors, len([]rune(in)))
	}
	if len(r.Workout.Movements) == 0 || r.Workout.Movements[0].DisplayName() != "Burpees" {
		t.Errorf("movements = %+v", r.Workout.Movements)
	}
}

// TestParseLoadsAndUnits verifies split loads, kilogram loads and the mixed
// unit note.
func TestParseLoadsAndUnits(t *testing.T) {
	r := testParser().Parse("For Time\n21 Thrusters 95/65 lb\n15 Deadlifts @ 100 kg\n30 Wall Balls (20/14)")
	ms := r.Workout.Movements
	if len(ms) != 3 {
		t.Fatalf("movements = %d, want 3; issues %v", len(ms), r.Issues())
	}

	th := ms[0]
	if th.Load == nil || th.Load.Value != 95 || th.Load.FemaleValue == nil || *th.Load.FemaleValue != 65 || th.Load.Unit != models.UnitLb {
		t.Errorf("thruster load = %+v", th.Load)
	}
	if th.Reps == nil || *th.Reps != 21 {
		t.Errorf("thruster reps = %v", th.Reps)
	}
	dl := ms[1]
	if dl.Load == nil || dl.Load.Value != 100 || dl.Load.Unit != models.UnitKg {
		t.Errorf("deadlift load = %+v", dl.Load)
	}
	wb := ms[2]
	if wb.Load == nil || wb.Load.Value != 20 || wb.Load.Unit != models.UnitLb || !wb.Resolved() {
		t.Errorf("wall ball = %+v load %+v", wb.Name, wb.Load)
	}
	if !hasCode(r.Infos, issues.CodeMixedUnits) {
		t.Errorf("infos = %v, want MIXED_UNITS", r.Infos)
	}
}

func TestParseCardioQuantities(t *testing.T) {
	r := testParser().Parse("3 Rounds\n400m Run\n15/12 cal Row\nRest 2:00\n50 Double-unders")
	ms := r.Workout.Movements
	if len(ms) != 3 {
		t.Fatalf("movements = %d, want 3; issues %v", len(ms), r.Issues())
	}
	if ms[0].Distance == nil || ms[0].Distance.Meters() != 400 || ms[0].DisplayName() != "Run" {
		t.Errorf("run = %+v", ms[0])
	}
	if ms[1].Calories == nil || *ms[1].Calories != 15 || ms[1].DisplayName() != "Row" {
		t.Errorf("row = %+v", ms[1])
	}
	if !hasCode(r.Infos, issues.CodeRestLine) {
		t.Errorf("infos = %v, want REST_LINE", r.Infos)
	}
	if ms[2].SequenceOrder != 3 || ms[2].LineNumber != 5 {
		t.Errorf("double-unders order=%d line=%d", ms[2].SequenceOrder, ms[2].LineNumber)
	}
}

// TestParseKeepsUnresolvedLines verifies a long unmatched line stays in the
// workout as an unknown movement and lowers confidence, while a line marked
// as a note is skipped.
func TestParseKeepsUnresolvedLines(t *testing.T) {
	p := testParser()
	base := p.Parse("For Time\n21 Thrusters")
	r := p.Parse("For Time\n21 Thrusters\nSprint around the block really fast\nNote: scale as needed")

	ms := r.Workout.Movements
	if len(ms) != 2 {
		t.Fatalf("movements = %d, want 2; issues %v", len(ms), r.Issues())
	}
	if ms[1].Resolved() || ms[1].LineNumber != 3 || ms[1].SequenceOrder != 2 {
		t.Errorf("unresolved line = %+v", ms[1])
	}
	if !hasCode(r.Warnings, issues.CodeUnknownMovement) {
		t.Errorf("warnings = %v, want UNKNOWN_MOVEMENT", r.Warnings)
	}
	if hasCode(r.Warnings, issues.CodeUnparseableLine) {
		t.Errorf("warnings = %v, want no UNPARSEABLE_LINE", r.Warnings)
	}
	if r.Confidence.Score >= base.Confidence.Score {
		t.Errorf("confidence = %d, want below %d", r.Confidence.Score, base.Confidence.Score)
	}
}

func TestParseRepSchemeOverrideAndInvalid(t *testing.T) {
	r := testParser().Parse("21-15-9\n10 Thrusters\nPull-ups")
	if !hasCode(r.Infos, issues.CodeRepSchemeOverride) {
		t.Errorf("infos = %v, want REP_SCHEME_OVERRIDE", r.Infos)
	}
	if r.Workout.Movements[0].RepScheme != nil {
		t.Error("explicit reps replaced by scheme")
	}

	r = testParser().Parse("21-0-9\nThrusters")
	if !hasCode(r.Warnings, issues.CodeInvalidRepScheme) {
		t.Errorf("warnings = %v, want INVALID_REP_SCHEME", r.Warnings)
	}
	if r.Workout.RepScheme != nil {
		t.Errorf("invalid scheme kept: %+v", r.Workout.RepScheme)
	}
	if !hasCode(r.Warnings, issues.CodeMissingQuantity) {
		t.Errorf("warnings = %v, want MISSING_QUANTITY", r.Warnings)
	}
}

func TestParseEMOMSlots(t *testing.T) {
	r := testParser().Parse("EMOM 12\nMin 1: 15 Wall Balls\nMin 2: 10 Burpees\nMin 3:\n8 Pull-ups")
	w := r.Workout
	if w.EMOMSlots != 3 {
		t.Errorf("EMOMSlots = %d, want 3", w.EMOMSlots)
	}
	want := []int{1, 2, 3}
	if len(w.Movements) != len(want) {
		t.Fatalf("movements = %d, want %d; issues %v", len(w.Movements), len(want), r.Issues())
	}
	for i, m := range w.Movements {
		if m.EMOMSlot != want[i] {
			t.Errorf("%s slot = %d, want %d", m.DisplayName(), m.EMOMSlot, want[i])
		}
	}
}

func TestParseTabataDefaults(t *testing.T) {
	r := testParser().Parse("Tabata\nAir Squats\nPush-ups")
	w := r.Workout
	if w.Type != models.WorkoutTabata {
		t.Fatalf("Type = %s, want tabata", w.Type)
	}
	if deref(w.RoundCount) != 8 || deref(w.IntervalSeconds) != 30 {
		t.Errorf("rounds=%d interval=%d, want 8/30", deref(w.RoundCount), deref(w.IntervalSeconds))
	}
	if deref(w.TimeCapSeconds) != 480 {
		t.Errorf("TimeCapSeconds = %d, want 480", deref(w.TimeCapSeconds))
	}
	if hasCode(r.Warnings, issues.CodeMissingQuantity) {
		t.Error("tabata movements flagged for missing quantity")
	}
}

func TestParseInvalidValues(t *testing.T) {
	r := testParser().Parse("For Time\n0 Burpees\n10 Deadlifts @ 5000 kg\nTime cap: 0")
	for _, code := range []issues.Code{issues.CodeInvalidRepCount, issues.CodeInvalidLoad, issues.CodeInvalidTimeCap} {
		if !hasCode(r.Warnings, code) {
			t.Errorf("warnings = %v, want %s", r.Warnings, code)
		}
	}
	if r.Workout.Movements[1].Load != nil {
		t.Error("out of range load kept")
	}
}

func TestParseNoMovements(t *testing.T) {
	r := testParser().Parse("For Time\n21-15-9")
	if !hasCode(r.Errors, issues.CodeNoMovements) {
		t.Errorf("errors = %v, want NO_MOVEMENTS", r.Errors)
	}
	if r.IsValid() {
		t.Error("IsValid = true without movements")
	}
}

// TestParseRecoversStageFault verifies a fault inside a stage becomes an
// INTERNAL_ERROR issue instead of a panic.
func TestParseRecoversStageFault(t *testing.T) {
	r := New(nil).Parse("For Time\n21 Thrusters")
	if !hasCode(r.Errors, issues.CodeInternalError) {
		t.Fatalf("errors = %v, want INTERNAL_ERROR", r.Errors)
	}
	if r.IsValid() {
		t.Error("IsValid = true after internal error")
	}
}

func TestParseContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := testParser().ParseContext(ctx, "For Time\n21 Thrusters")
	if !hasCode(r.Errors, issues.CodeParseTimeout) {
		t.Errorf("errors = %v, want PARSE_TIMEOUT", r.Errors)
	}
}

// TestParseTotal feeds hostile and degenerate inputs and checks parsing
// always returns a bounded confidence.
func TestParseTotal(t *testing.T) {
	inputs := []string{
		"", " ", "\n\n\n", "AMRAP", "21-15-9", "::::::", "@@@@@@", "(((((",
		"1-2-3-4-5-6-7-8-9-10", "EMOM 999999999999999999999999",
		"Every 0 minutes for 0 minutes\n0 Burpees", "x x x x x x", "0 rounds\n0",
		"Time cap: 99999:59\n1 Run", "🏋️ 21 thrusters 🏋️", "Min 1:\nMin 2:\nOdd:",
		"E0MOM 0\n5 burpees", "5 x 0:00\n0m Row", "@ 95/\n(95/)\n95/65 kg kg",
		strings.Repeat("21 Thrusters @ 95 lb\n", 400),
		strings.Repeat("Thrustres ", 900),
		strings.Repeat("9", 9000),
	}
	p := testParser()
	for _, in := range inputs {
		r := p.Parse(in)
		if r.Confidence.Score < 0 || r.Confidence.Score > 100 {
			t.Errorf("Parse(%.20q) confidence = %d", in, r.Confidence.Score)
		}
		if hasCode(r.Errors, issues.CodeInternalError) {
			t.Errorf("Parse(%.20q) hit an internal error: %v", in, r.Errors)
		}
	}
}

func TestClassifyRepScheme(t *testing.T) {
	tests := []struct {
		reps []int
		want models.RepSchemeKind
	}{
		{[]int{21, 15, 9}, models.RepSchemeDescending},
		{[]int{1, 2, 3, 4}, models.RepSchemeAscending},
		{[]int{5, 5, 5}, models.RepSchemeFixed},
		{[]int{21, 21, 15}, models.RepSchemeCustom},
		{[]int{10, 20, 10}, models.RepSchemeCustom},
		{[]int{7}, models.RepSchemeFixed},
	}
	for _, tt := range tests {
		if got := ClassifyRepScheme(tt.reps); got != tt.want {
			t.Errorf("ClassifyRepScheme(%v) = %s, want %s", tt.reps, got, tt.want)
		}
	}
}

func TestDetectRepScheme(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"21-15-9", []int{21, 15, 9}},
		{"21 - 15 - 9 reps", []int{21, 15, 9}},
		{"50-40-30-20-10", []int{50, 40, 30, 20, 10}},
		{"10–20–30", []int{10, 20, 30}},
		{"21", nil},
		{"Thrusters 21-15-9", nil},
	}
	for _, tt := range tests {
		got, ok := DetectRepScheme(tt.in)
		if ok != (tt.want != nil) {
			t.Errorf("DetectRepScheme(%q) ok = %v", tt.in, ok)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("DetectRepScheme(%q) = %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}
}

func TestConfidenceLevelFor(t *testing.T) {
	tests := []struct {
		score int
		want  ConfidenceLevel
	}{
		{100, ConfidencePerfect},
		{99, ConfidenceHigh},
		{80, ConfidenceHigh},
		{79, ConfidenceMedium},
		{60, ConfidenceMedium},
		{59, ConfidenceLow},
		{0, ConfidenceLow},
	}
	for _, tt := range tests {
		if got := ConfidenceLevelFor(tt.score); got != tt.want {
			t.Errorf("ConfidenceLevelFor(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
