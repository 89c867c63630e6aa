package issues

import (
	"strconv"
)

// DefaultMaxErrors bounds the number of stored Error-severity issues.
const DefaultMaxErrors = 20

// contextKeyLen is how much of the context participates in dedup keys.
const contextKeyLen = 50

// Aggregator collects issues for a single parse. It is not safe for
// concurrent use; each parse owns its own Aggregator.
type Aggregator struct {
	maxErrors    int
	errors       []Issue
	warnings     []Issue
	infos        []Issue
	seen         map[string]struct{}
	limitReached bool
}

// NewAggregator returns an Aggregator that keeps at most maxErrors errors.
// A non-positive maxErrors selects DefaultMaxErrors.
func NewAggregator(maxErrors int) *Aggregator {
	if maxErrors <= 0 {
		maxErrors = DefaultMaxErrors
	}
	return &Aggregator{
		maxErrors: maxErrors,
		seen:      make(map[string]struct{}),
	}
}

// Add records an issue. It returns false when the issue was dropped, either
// as a duplicate or because the error cap has been reached.
func (a *Aggregator) Add(is Issue) bool {
	key := dedupKey(is)
	if _, dup := a.seen[key]; dup {
		return false
	}

	switch is.Severity {
	case SeverityError:
		if len(a.errors) >= a.maxErrors {
			a.limitReached = true
			return false
		}
		a.errors = append(a.errors, is)
	case SeverityWarning:
		a.warnings = append(a.warnings, is)
	default:
		a.infos = append(a.infos, is)
	}
	a.seen[key] = struct{}{}
	return true
}

// Report is a convenience wrapper around Add(New(code, opts...)).
func (a *Aggregator) Report(code Code, opts ...Option) bool {
	return a.Add(New(code, opts...))
}

// Errors returns the stored Error-severity issues in insertion order.
func (a *Aggregator) Errors() []Issue { return clone(a.errors) }

// Warnings returns the stored Warning-severity issues in insertion order.
func (a *Aggregator) Warnings() []Issue { return clone(a.warnings) }

// Infos returns the stored Info-severity issues in insertion order.
func (a *Aggregator) Infos() []Issue { return clone(a.infos) }

// All returns every stored issue ranked by severity: errors, then
// warnings, then infos.
func (a *Aggregator) All() []Issue {
	out := make([]Issue, 0, a.Len())
	out = append(out, a.errors...)
	out = append(out, a.warnings...)
	out = append(out, a.infos...)
	return out
}

// Len is the total number of stored issues.
func (a *Aggregator) Len() int {
	return len(a.errors) + len(a.warnings) + len(a.infos)
}

// HasErrors reports whether any blocking issue was stored.
func (a *Aggregator) HasErrors() bool { return len(a.errors) > 0 }

// HasWarnings reports whether any warning was stored.
func (a *Aggregator) HasWarnings() bool { return len(a.warnings) > 0 }

// LimitReached reports whether at least one error was dropped by the cap.
func (a *Aggregator) LimitReached() bool { return a.limitReached }

// Has reports whether an issue with the given code was stored.
func (a *Aggregator) Has(code Code) bool {
	for _, list := range [][]Issue{a.errors, a.warnings, a.infos} {
		for _, is := range list {
			if is.Code == code {
				return true
			}
		}
	}
	return false
}

func dedupKey(is Issue) string {
	code := strconv.Itoa(int(is.Code))
	if is.Line > 0 {
		return code + "|L" + strconv.Itoa(is.Line)
	}
	ctx := []rune(is.Context)
	if len(ctx) > contextKeyLen {
		ctx = ctx[:contextKeyLen]
	}
	return code + "|C" + string(ctx)
}

func clone(in []Issue) []Issue {
	if len(in) == 0 {
		return nil
	}
	return append([]Issue(nil), in...)
}
