// Package issues defines the parser diagnostic taxonomy.
//
// Every diagnostic the parser can raise has a stable numeric Code. Codes are
// grouped by hundreds: 1xx input validation, 2xx structure, 3xx movements,
// 4xx consistency, 5xx system. Each code owns exactly one default severity,
// one message template and one suggestion template in the definitions table.
package issues

import (
	"fmt"
	"slices"
	"strings"
)

// Code is a stable diagnostic identifier.
type Code int

const (
	// Input validation
	CodeEmptyInput        Code = 100
	CodeInputTooShort     Code = 101
	CodeInputTooLong      Code = 102
	CodeInvalidCharacters Code = 103
	CodeBinaryContent     Code = 104

	// Structure
	CodeNoStructure       Code = 200
	CodeAmbiguousType     Code = 201
	CodeMissingDuration   Code = 202
	CodeMissingRoundCount Code = 203
	CodeInvalidRepScheme  Code = 204
	CodeInvalidTimeCap    Code = 205

	// Movements
	CodeUnknownMovement Code = 300
	CodeMissingQuantity Code = 301
	CodeInvalidRepCount Code = 302
	CodeInvalidLoad     Code = 303
	CodeInvalidDistance Code = 304
	CodeNoMovements     Code = 305
	CodeUnparseableLine Code = 306
	CodeRestLine        Code = 307

	// Consistency
	CodeRepSchemeOverride Code = 400
	CodeUnusualDuration   Code = 401
	CodeMixedUnits        Code = 402

	// System
	CodeInternalError Code = 500
	CodeParseTimeout  Code = 501
)

// Range groups codes by their hundreds digit.
type Range string

const (
	RangeInput       Range = "input"
	RangeStructure   Range = "structure"
	RangeMovement    Range = "movement"
	RangeConsistency Range = "consistency"
	RangeSystem      Range = "system"
)

type definition struct {
	name       string
	severity   Severity
	message    string
	suggestion string
}

// definitions is the single source of truth for code metadata.
// Templates use {placeholder} names filled from Issue params.
var definitions = map[Code]definition{
	CodeEmptyInput: {
		name:       "EMPTY_INPUT",
		severity:   SeverityError,
		message:    "Workout text is empty",
		suggestion: "Paste or type the workout description, one movement per line",
	},
	CodeInputTooShort: {
		name:       "INPUT_TOO_SHORT",
		severity:   SeverityError,
		message:    "Workout text is too short ({length} characters, minimum {min})",
		suggestion: "Include the workout format and at least one movement",
	},
	CodeInputTooLong: {
		name:       "INPUT_TOO_LONG",
		severity:   SeverityError,
		message:    "Workout text is too long ({length} characters, maximum {max})",
		suggestion: "Split the session into separate workouts",
	},
	CodeInvalidCharacters: {
		name:       "INVALID_CHARACTERS",
		severity:   SeverityError,
		message:    "Workout text contains unsupported control characters",
		suggestion: "Remove formatting characters copied from other applications",
	},
	CodeBinaryContent: {
		name:       "BINARY_CONTENT",
		severity:   SeverityError,
		message:    "Workout text looks like binary data",
		suggestion: "Paste plain text instead of a file",
	},
	CodeNoStructure: {
		name:       "NO_STRUCTURE",
		severity:   SeverityWarning,
		message:    "Could not determine the workout format, assuming {assumed}",
		suggestion: "Add a header such as \"For Time\", \"AMRAP 20\" or \"EMOM 12\"",
	},
	CodeAmbiguousType: {
		name:       "AMBIGUOUS_TYPE",
		severity:   SeverityWarning,
		message:    "Workout mentions several formats ({types}), using {chosen}",
		suggestion: "Keep a single format header per workout",
	},
	CodeMissingDuration: {
		name:       "MISSING_DURATION",
		severity:   SeverityError,
		message:    "{type} workout has no duration",
		suggestion: "Add the number of minutes, e.g. \"{example}\"",
	},
	CodeMissingRoundCount: {
		name:       "MISSING_ROUND_COUNT",
		severity:   SeverityError,
		message:    "{type} workout has no round count",
		suggestion: "Add the number of rounds, e.g. \"{example}\"",
	},
	CodeInvalidRepScheme: {
		name:       "INVALID_REP_SCHEME",
		severity:   SeverityWarning,
		message:    "Rep scheme \"{scheme}\" contains invalid values",
		suggestion: "Use positive rep counts separated by dashes, e.g. 21-15-9",
	},
	CodeInvalidTimeCap: {
		name:       "INVALID_TIME_CAP",
		severity:   SeverityWarning,
		message:    "Time cap \"{value}\" is not a valid duration",
		suggestion: "Write the cap in minutes, e.g. \"Time cap: 12 min\"",
	},
	CodeUnknownMovement: {
		name:       "UNKNOWN_MOVEMENT",
		severity:   SeverityWarning,
		message:    "Unrecognized movement \"{name}\"",
		suggestion: "Check the spelling or use a standard movement name",
	},
	CodeMissingQuantity: {
		name:       "MISSING_QUANTITY",
		severity:   SeverityWarning,
		message:    "No reps, distance, calories or duration found for \"{name}\"",
		suggestion: "Prefix the movement with a rep count, e.g. \"15 {name}\"",
	},
	CodeInvalidRepCount: {
		name:       "INVALID_REP_COUNT",
		severity:   SeverityWarning,
		message:    "Rep count {value} is out of range",
		suggestion: "Use a rep count between 1 and {max}",
	},
	CodeInvalidLoad: {
		name:       "INVALID_LOAD",
		severity:   SeverityWarning,
		message:    "Load {value} is out of range",
		suggestion: "Write loads like \"95 lb\" or \"43 kg\"",
	},
	CodeInvalidDistance: {
		name:       "INVALID_DISTANCE",
		severity:   SeverityWarning,
		message:    "Distance {value} is out of range",
		suggestion: "Write distances like \"400m\" or \"1 mile\"",
	},
	CodeNoMovements: {
		name:       "NO_MOVEMENTS",
		severity:   SeverityError,
		message:    "No movements found in the workout",
		suggestion: "List each movement on its own line, e.g. \"21 Thrusters\"",
	},
	CodeUnparseableLine: {
		name:       "UNPARSEABLE_LINE",
		severity:   SeverityWarning,
		message:    "Could not read line \"{text}\"",
		suggestion: "Put one movement per line with its reps, load or distance",
	},
	CodeRestLine: {
		name:       "REST_LINE",
		severity:   SeverityInfo,
		message:    "Rest period noted ({text})",
		suggestion: "",
	},
	CodeRepSchemeOverride: {
		name:       "REP_SCHEME_OVERRIDE",
		severity:   SeverityInfo,
		message:    "\"{name}\" uses its own reps instead of the workout rep scheme",
		suggestion: "",
	},
	CodeUnusualDuration: {
		name:       "UNUSUAL_DURATION",
		severity:   SeverityWarning,
		message:    "Duration of {minutes} minutes is unusually long",
		suggestion: "Check that the time is written in minutes, not seconds",
	},
	CodeMixedUnits: {
		name:       "MIXED_UNITS",
		severity:   SeverityInfo,
		message:    "Loads use both kilograms and pounds",
		suggestion: "Use one weight unit throughout the workout",
	},
	CodeInternalError: {
		name:       "INTERNAL_ERROR",
		severity:   SeverityError,
		message:    "Internal error while {stage}",
		suggestion: "Try rephrasing the workout; report the problem if it persists",
	},
	CodeParseTimeout: {
		name:       "PARSE_TIMEOUT",
		severity:   SeverityError,
		message:    "Parsing took longer than {limit}",
		suggestion: "Shorten the workout text and try again",
	},
}

var codesByName = func() map[string]Code {
	m := make(map[string]Code, len(definitions))
	for c, d := range definitions {
		m[d.name] = c
	}
	return m
}()

// String returns the stable name of the code, e.g. "UNKNOWN_MOVEMENT".
func (c Code) String() string {
	if d, ok := definitions[c]; ok {
		return d.name
	}
	return fmt.Sprintf("CODE_%d", int(c))
}

// Severity returns the default severity for the code.
func (c Code) Severity() Severity {
	if d, ok := definitions[c]; ok {
		return d.severity
	}
	return SeverityError
}

// Range returns the group the code belongs to.
func (c Code) Range() Range {
	switch int(c) / 100 {
	case 1:
		return RangeInput
	case 2:
		return RangeStructure
	case 3:
		return RangeMovement
	case 4:
		return RangeConsistency
	default:
		return RangeSystem
	}
}

// Codes lists every code of the taxonomy in numeric order.
func Codes() []Code {
	out := make([]Code, 0, len(definitions))
	for c := range definitions {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Known reports whether the code is part of the taxonomy.
func (c Code) Known() bool {
	_, ok := definitions[c]
	return ok
}

// MarshalText encodes the code by name.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a code name.
func (c *Code) UnmarshalText(b []byte) error {
	code, ok := codesByName[string(b)]
	if !ok {
		return fmt.Errorf("unknown issue code %q", string(b))
	}
	*c = code
	return nil
}

// render fills {key} placeholders. Unknown placeholders are left as-is.
func render(template string, params map[string]string) string {
	if len(params) == 0 || !strings.Contains(template, "{") {
		return template
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
