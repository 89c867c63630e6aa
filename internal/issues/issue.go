package issues

import (
	"fmt"
	"strings"
)

// Severity ranks how an issue affects the parse.
type Severity int

const (
	// SeverityError blocks the workout from being used.
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText encodes the severity as lowercase text.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes "error", "warning" or "info".
func (s *Severity) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity %q", string(b))
	}
	return nil
}

// Issue is a single parser diagnostic.
type Issue struct {
	Code         Code     `json:"code"`
	Severity     Severity `json:"severity"`
	Message      string   `json:"message"`
	Suggestion   string   `json:"suggestion,omitempty"`
	Line         int      `json:"line,omitempty"` // 1-based; 0 when not line-scoped
	Context      string   `json:"context,omitempty"`
	SimilarNames []string `json:"similar_names,omitempty"`
}

// Blocking reports whether the issue prevents the workout from being used.
func (i Issue) Blocking() bool {
	return i.Severity == SeverityError
}

func (i Issue) Error() string {
	if i.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", i.Code, i.Line, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Code, i.Message)
}

// Option customises an Issue built by New.
type Option func(*builder)

type builder struct {
	issue  Issue
	params map[string]string
}

// AtLine scopes the issue to a 1-based input line.
func AtLine(n int) Option {
	return func(b *builder) { b.issue.Line = n }
}

// WithContext attaches the offending input fragment.
func WithContext(s string) Option {
	return func(b *builder) { b.issue.Context = s }
}

// WithParam sets a template placeholder value.
func WithParam(key string, value any) Option {
	return func(b *builder) { b.params[key] = fmt.Sprint(value) }
}

// WithSimilar attaches movement name suggestions.
func WithSimilar(names []string) Option {
	return func(b *builder) {
		if len(names) > 0 {
			b.issue.SimilarNames = append([]string(nil), names...)
		}
	}
}

// WithSeverity overrides the code's default severity.
func WithSeverity(s Severity) Option {
	return func(b *builder) { b.issue.Severity = s }
}

// New builds an Issue for code, rendering its message and suggestion
// templates from the definitions table.
func New(code Code, opts ...Option) Issue {
	b := &builder{
		issue:  Issue{Code: code, Severity: code.Severity()},
		params: map[string]string{},
	}
	for _, opt := range opts {
		opt(b)
	}
	d, ok := definitions[code]
	if !ok {
		d = definitions[CodeInternalError]
		b.params["stage"] = fmt.Sprintf("reporting unknown code %d", int(code))
	}
	b.issue.Message = render(d.message, b.params)
	b.issue.Suggestion = render(d.suggestion, b.params)
	if len(b.issue.SimilarNames) > 0 {
		b.issue.Suggestion = "Did you mean " + quoteList(b.issue.SimilarNames) + "?"
	}
	return b.issue
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	switch len(quoted) {
	case 1:
		return quoted[0]
	case 2:
		return quoted[0] + " or " + quoted[1]
	default:
		return strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
	}
}
