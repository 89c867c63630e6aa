package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/claude/wodcoach/internal/issues"
	"golang.org/x/text/unicode/norm"
)

// Input length bounds, in characters.
const (
	MinInputLength = 5
	MaxInputLength = 10000
)

// invisible are format characters silently dropped from input.
var invisible = strings.NewReplacer(
	"\u200b", "", // zero width space
	"\u200c", "",
	"\u200d", "",
	"\u2060", "",
	"\ufeff", "", // byte order mark
	"\u00ad", "", // soft hyphen
)

// sanitize validates raw input and splits it into lines. Any failure here is
// blocking and stops the pipeline.
func (p *Parser) sanitize(st *state) {
	raw := st.raw
	if strings.TrimSpace(raw) == "" {
		st.agg.Report(issues.CodeEmptyInput)
		st.halt()
		return
	}
	if !utf8.ValidString(raw) || strings.ContainsRune(raw, 0) {
		st.agg.Report(issues.CodeBinaryContent)
		st.halt()
		return
	}

	n := utf8.RuneCountInString(strings.TrimSpace(raw))
	switch {
	case n < MinInputLength:
		st.agg.Report(issues.CodeInputTooShort, issues.WithParam("length", n), issues.WithParam("min", MinInputLength))
		st.halt()
		return
	case n > MaxInputLength:
		st.agg.Report(issues.CodeInputTooLong, issues.WithParam("length", n), issues.WithParam("max", MaxInputLength))
		st.halt()
		return
	}

	text := norm.NFKC.String(raw)
	text = invisible.Replace(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\t", " ")

	for i, r := range text {
		if r != '\n' && unicode.IsControl(r) {
			st.agg.Report(issues.CodeInvalidCharacters, issues.WithContext(snippet(text, i)))
			st.halt()
			return
		}
	}

	for i, l := range strings.Split(text, "\n") {
		l = strings.Join(strings.Fields(l), " ")
		if l == "" {
			continue
		}
		st.lines = append(st.lines, line{number: i + 1, text: l})
	}
}

// snippet returns up to 20 characters of s around byte offset i.
func snippet(s string, i int) string {
	start := max(0, i-10)
	for start > 0 && !utf8.RuneStart(s[start]) {
		start--
	}
	end := min(len(s), i+10)
	for end < len(s) && !utf8.RuneStart(s[end]) {
		end++
	}
	return strings.ToValidUTF8(s[start:end], "")
}
