package parser

import (
	"github.com/claude/wodcoach/internal/issues"
	"github.com/claude/wodcoach/internal/models"
)

// Result is the outcome of a parse: the best-effort workout plus every
// diagnostic raised while producing it.
type Result struct {
	Workout           models.ParsedWorkout `json:"workout"`
	Confidence        Confidence           `json:"confidence"`
	Errors            []issues.Issue       `json:"errors"`
	Warnings          []issues.Issue       `json:"warnings"`
	Infos             []issues.Issue       `json:"infos"`
	ErrorLimitReached bool                 `json:"error_limit_reached"`
}

// IsValid reports whether the workout has movements and no blocking issues.
func (r Result) IsValid() bool {
	return r.Workout.IsValid()
}

// Success reports a valid parse without warnings.
func (r Result) Success() bool {
	return r.IsValid() && len(r.Warnings) == 0
}

// IsUsable accepts successful parses and valid parses with at least Medium
// confidence.
func (r Result) IsUsable() bool {
	return r.Success() || (r.IsValid() && r.Confidence.Score >= MediumThreshold)
}

// Issues returns all diagnostics ranked errors, warnings, then infos.
func (r Result) Issues() []issues.Issue {
	out := make([]issues.Issue, 0, len(r.Errors)+len(r.Warnings)+len(r.Infos))
	out = append(out, r.Errors...)
	out = append(out, r.Warnings...)
	return append(out, r.Infos...)
}
