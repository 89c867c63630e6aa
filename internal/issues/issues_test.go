package issues

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

// TestEveryCodeHasDefinition verifies the table covers every declared code
// with a name and a message, so no issue can render an empty string.
func TestEveryCodeHasDefinition(t *testing.T) {
	codes := []Code{
		CodeEmptyInput, CodeInputTooShort, CodeInputTooLong, CodeInvalidCharacters, CodeBinaryContent,
		CodeNoStructure, CodeAmbiguousType, CodeMissingDuration, CodeMissingRoundCount, CodeInvalidRepScheme, CodeInvalidTimeCap,
		CodeUnknownMovement, CodeMissingQuantity, CodeInvalidRepCount, CodeInvalidLoad, CodeInvalidDistance,
		CodeNoMovements, CodeUnparseableLine, CodeRestLine,
		CodeRepSchemeOverride, CodeUnusualDuration, CodeMixedUnits,
		CodeInternalError, CodeParseTimeout,
	}
	for _, c := range codes {
		if !c.Known() {
			t.Errorf("code %d has no definition", int(c))
			continue
		}
		is := New(c)
		if is.Message == "" {
			t.Errorf("%s: empty message", c)
		}
		if strings.HasPrefix(c.String(), "CODE_") {
			t.Errorf("%d: missing name", int(c))
		}
	}
	if got := Codes(); len(got) != len(codes) || got[0] != CodeEmptyInput || got[len(got)-1] != CodeParseTimeout {
		t.Errorf("Codes() = %v, want %d codes in numeric order", got, len(codes))
	}
}

// TestCodeRange verifies codes are grouped by their hundreds digit.
func TestCodeRange(t *testing.T) {
	tests := []struct {
		code Code
		want Range
	}{
		{CodeEmptyInput, RangeInput},
		{CodeAmbiguousType, RangeStructure},
		{CodeUnknownMovement, RangeMovement},
		{CodeMixedUnits, RangeConsistency},
		{CodeParseTimeout, RangeSystem},
	}
	for _, tt := range tests {
		if got := tt.code.Range(); got != tt.want {
			t.Errorf("%s.Range() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

// TestNewRendersTemplates verifies placeholders are interpolated from params.
func TestNewRendersTemplates(t *testing.T) {
	is := New(CodeInputTooShort, WithParam("length", 3), WithParam("min", 5))
	if is.Message != "Workout text is too short (3 characters, minimum 5)" {
		t.Errorf("message = %q", is.Message)
	}
	if is.Severity != SeverityError {
		t.Errorf("severity = %v, want error", is.Severity)
	}
}

// TestNewWithSimilarNames verifies suggestions are rewritten to name the
// closest catalog entries.
func TestNewWithSimilarNames(t *testing.T) {
	is := New(CodeUnknownMovement, WithParam("name", "Thrustres"), WithSimilar([]string{"Thrusters"}), AtLine(2))
	if is.Suggestion != `Did you mean "Thrusters"?` {
		t.Errorf("suggestion = %q", is.Suggestion)
	}
	if is.Line != 2 {
		t.Errorf("line = %d, want 2", is.Line)
	}
	if is.Blocking() {
		t.Error("unknown movement should not block")
	}
}

// TestIssueJSON verifies codes and severities serialize by name.
func TestIssueJSON(t *testing.T) {
	data, err := json.Marshal(New(CodeNoMovements))
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.Contains(s, `"code":"NO_MOVEMENTS"`) {
		t.Errorf("json = %s, want code name", s)
	}
	if !strings.Contains(s, `"severity":"error"`) {
		t.Errorf("json = %s, want severity name", s)
	}

	var back Issue
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Code != CodeNoMovements || back.Severity != SeverityError {
		t.Errorf("decoded = %+v", back)
	}
}

// TestAggregatorDedupSameLine verifies that two issues with the same code on
// the same line collapse into one stored entry.
func TestAggregatorDedupSameLine(t *testing.T) {
	a := NewAggregator(0)
	if !a.Add(New(CodeUnknownMovement, AtLine(3), WithContext("foo"))) {
		t.Fatal("first add rejected")
	}
	if a.Add(New(CodeUnknownMovement, AtLine(3), WithContext("bar"))) {
		t.Error("duplicate on same line accepted")
	}
	if !a.Add(New(CodeUnknownMovement, AtLine(4), WithContext("foo"))) {
		t.Error("same code on a different line rejected")
	}
	if got := len(a.Warnings()); got != 2 {
		t.Errorf("warnings = %d, want 2", got)
	}
}

// TestAggregatorDedupContext verifies unscoped issues dedup on the first 50
// characters of their context.
func TestAggregatorDedupContext(t *testing.T) {
	a := NewAggregator(0)
	prefix := strings.Repeat("x", 50)
	a.Add(New(CodeAmbiguousType, WithContext(prefix+"AAA")))
	if a.Add(New(CodeAmbiguousType, WithContext(prefix+"BBB"))) {
		t.Error("context differing after 50 chars should dedup")
	}
	if !a.Add(New(CodeAmbiguousType, WithContext("other"))) {
		t.Error("different context rejected")
	}
}

// TestAggregatorErrorCap verifies 25 distinct errors into a cap of 20 keeps
// exactly 20, flags the limit, and still accepts warnings afterwards.
func TestAggregatorErrorCap(t *testing.T) {
	a := NewAggregator(20)
	for i := 1; i <= 25; i++ {
		a.Add(New(CodeInternalError, AtLine(i), WithParam("stage", fmt.Sprintf("stage %d", i))))
	}
	if got := len(a.Errors()); got != 20 {
		t.Errorf("errors = %d, want 20", got)
	}
	if !a.LimitReached() {
		t.Error("LimitReached = false, want true")
	}
	for i := 1; i <= 21; i++ {
		if !a.Add(New(CodeUnparseableLine, AtLine(i))) {
			t.Fatalf("warning %d rejected after error cap", i)
		}
	}
	if got := len(a.Warnings()); got != 21 {
		t.Errorf("warnings = %d, want 21", got)
	}
}

// TestAggregatorAllOrder verifies All ranks errors before warnings before infos.
func TestAggregatorAllOrder(t *testing.T) {
	a := NewAggregator(0)
	a.Add(New(CodeRestLine, AtLine(1)))
	a.Add(New(CodeUnknownMovement, AtLine(2)))
	a.Add(New(CodeNoMovements))

	all := a.All()
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	want := []Severity{SeverityError, SeverityWarning, SeverityInfo}
	for i, is := range all {
		if is.Severity != want[i] {
			t.Errorf("all[%d].Severity = %v, want %v", i, is.Severity, want[i])
		}
	}
	if !a.Has(CodeRestLine) || a.Has(CodeMixedUnits) {
		t.Error("Has reports wrong membership")
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"thrustres", "thrusters", 2},
		{"thruster", "thrusters", 1},
		{"row", "row", 0},
	}
	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

// TestSimilarNamesSingleMatch verifies a misspelling close to one catalog
// entry yields exactly that entry.
func TestSimilarNamesSingleMatch(t *testing.T) {
	got := SimilarNames("Thrustres", []string{"Thrusters", "Pull-ups", "Deadlift", "Wall Balls"})
	if len(got) != 1 || got[0] != "Thrusters" {
		t.Errorf("SimilarNames = %v, want [Thrusters]", got)
	}
}

// TestSimilarNamesOrdering verifies results are capped at three, sorted by
// distance and stable on ties.
func TestSimilarNamesOrdering(t *testing.T) {
	candidates := []string{"Rox", "Row", "Run", "Rows", "Ro"}
	got := SimilarNames("row", candidates)
	want := []string{"Row", "Rox", "Rows"}
	if len(got) != len(want) {
		t.Fatalf("SimilarNames = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SimilarNames[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSimilarNamesEmptyToken(t *testing.T) {
	if got := SimilarNames("  ", []string{"Row"}); got != nil {
		t.Errorf("SimilarNames(blank) = %v, want nil", got)
	}
}
