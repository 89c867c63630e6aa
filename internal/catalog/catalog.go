// Package catalog indexes the movement catalog for name resolution.
package catalog

import (
	"strings"
	"unicode"

	"github.com/claude/wodcoach/internal/models"
)

// abbreviations expands shorthand commonly written on whiteboards.
var abbreviations = map[string]string{
	"db":  "dumbbell",
	"dbs": "dumbbell",
	"kb":  "kettlebell",
	"kbs": "kettlebell",
	"bb":  "barbell",
	"oh":  "overhead",
	"ohs": "overhead squat",
	"sq":  "squat",
	"cal": "calorie",
}

// Catalog is a read-only index over catalog movements. It is safe for
// concurrent use once built.
type Catalog struct {
	movements []models.Movement
	canonical map[string]int // normalized canonical name -> index
	aliases   map[string]int // normalized alias -> index
	compact   map[string]int // canonical or alias without spaces, also singular -> index
	byID      map[int64]int
}

// New builds a Catalog. Earlier movements win when two entries normalize to
// the same name.
func New(movements []models.Movement) *Catalog {
	c := &Catalog{
		movements: append([]models.Movement(nil), movements...),
		canonical: make(map[string]int, len(movements)),
		aliases:   make(map[string]int),
		compact:   make(map[string]int),
		byID:      make(map[int64]int, len(movements)),
	}
	for i, m := range c.movements {
		addOnce(c.canonical, normalize(m.CanonicalName), i)
		for _, name := range append([]string{m.CanonicalName}, m.Aliases...) {
			k := compact(name)
			addOnce(c.compact, k, i)
			addOnce(c.compact, singular(k), i)
		}
		for _, a := range m.Aliases {
			addOnce(c.aliases, normalize(a), i)
		}
		c.byID[m.ID] = i
	}
	return c
}

func addOnce(m map[string]int, key string, i int) {
	if key == "" {
		return
	}
	if _, ok := m[key]; !ok {
		m[key] = i
	}
}

// Find resolves a written movement name by canonical name, then alias, then
// the same lookups after abbreviation expansion and plural trimming.
func (c *Catalog) Find(name string) (models.Movement, bool) {
	n := normalize(name)
	if n == "" {
		return models.Movement{}, false
	}
	for _, key := range candidates(n) {
		if i, ok := c.canonical[key]; ok {
			return c.movements[i], true
		}
		if i, ok := c.aliases[key]; ok {
			return c.movements[i], true
		}
		if i, ok := c.compact[strings.ReplaceAll(key, " ", "")]; ok {
			return c.movements[i], true
		}
	}
	return models.Movement{}, false
}

// ByID returns the movement with the given catalog ID.
func (c *Catalog) ByID(id int64) (models.Movement, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Movement{}, false
	}
	return c.movements[i], true
}

// Names returns canonical names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.movements))
	for i, m := range c.movements {
		out[i] = m.CanonicalName
	}
	return out
}

// Movements returns a copy of the catalog entries in catalog order.
func (c *Catalog) Movements() []models.Movement {
	return append([]models.Movement(nil), c.movements...)
}

// Len is the number of catalog entries.
func (c *Catalog) Len() int { return len(c.movements) }

// candidates lists lookup keys for a normalized name, most literal first.
func candidates(n string) []string {
	keys := []string{n}
	if e := expand(n); e != n {
		keys = append(keys, e)
	}
	for _, k := range keys {
		if s := singular(k); s != k {
			keys = append(keys, s)
		}
	}
	return keys
}

func expand(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if e, ok := abbreviations[w]; ok {
			words[i] = e
		}
	}
	return strings.Join(words, " ")
}

// singular trims a plural suffix from the last word.
func singular(s string) string {
	switch {
	case strings.HasSuffix(s, "ies") && len(s) > 4:
		return s[:len(s)-3] + "y"
	case strings.HasSuffix(s, "sses"), strings.HasSuffix(s, "ches"),
		strings.HasSuffix(s, "shes"), strings.HasSuffix(s, "xes"):
		return s[:len(s)-2]
	case strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss") && len(s) > 3:
		return s[:len(s)-1]
	}
	return s
}

// normalize lowercases and keeps letters, digits and single spaces. Hyphens
// and slashes become spaces so "Pull-ups" and "pull ups" agree.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '/' || r == '_' || r == '\t':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func compact(s string) string {
	return strings.ReplaceAll(normalize(s), " ", "")
}
