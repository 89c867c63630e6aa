package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/claude/wodcoach/internal/issues"
	"github.com/claude/wodcoach/internal/models"
)

// Per-line value bounds. Values outside them are reported and dropped.
const (
	maxReps      = 1000
	maxCalories  = 1000
	maxLoadKg    = 500
	maxDistanceM = 100_000
)

var (
	reBullet    = regexp.MustCompile(`^(?:[-*•·>]+|\d{1,2}[.)]|[a-zA-Z][.)])\s+`)
	reSlot      = regexp.MustCompile(`(?i)^(?:min(?:ute)?\s*(\d+)|(odd|even)(?:\s+min(?:ute)?s?)?)\s*[:.)-]\s*`)
	reRest      = regexp.MustCompile(`(?i)^(?:rest|recover(?:y)?|break)\b`)
	reNote      = regexp.MustCompile(`(?i)^notes?\s*[:\-]`)
	reCalories  = regexp.MustCompile(`(?i)\b(\d+)(?:\s*/\s*\d+)?\s*cal(?:orie)?s?\b`)
	reDistance  = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(km|kilomet(?:er|re)s?|mi|miles?|m|met(?:er|re)s?|ft|feet)\b`)
	reLoadUnit  = regexp.MustCompile(`(?i)(?:@\s*)?\(?\s*(\d+(?:\.\d+)?)(?:\s*/\s*(\d+(?:\.\d+)?))?\s*(?:(kgs?|kilos?|lbs?|pounds?)\b|(#))\s*\)?`)
	reLoadAt    = regexp.MustCompile(`@\s*(\d+(?:\.\d+)?)(?:\s*/\s*(\d+(?:\.\d+)?))?`)
	reLoadPair  = regexp.MustCompile(`\(\s*(\d+(?:\.\d+)?)\s*/\s*(\d+(?:\.\d+)?)\s*\)`)
	reHeight    = regexp.MustCompile(`(?i)\b\d+(?:\s*/\s*\d+)?\s*(?:inch(?:es)?|in\b|")`)
	reDurClock  = regexp.MustCompile(`\b(\d{1,2}):([0-5]\d)\b`)
	reDurSec    = regexp.MustCompile(`(?i)\b(\d+)\s*(?:sec(?:ond)?s?|s)\b`)
	reDurMin    = regexp.MustCompile(`(?i)\b(\d+)\s*min(?:ute)?s?\b`)
	reSetsReps  = regexp.MustCompile(`(?i)^(\d+)\s*x\s*(\d+)\b`)
	reRepsLead  = regexp.MustCompile(`(?i)^(\d+)\b\s*(?:x\b|reps?\b)?\s*(?:of\b)?`)
	reRepsTrail = regexp.MustCompile(`(?i)(?:\bx\s*(\d+)|\b(\d+)\s*reps?)\s*$`)
	reThousands = regexp.MustCompile(`(\d),(\d{3})\b`)
	reNameJunk  = regexp.MustCompile(`[^\p{L}\p{N}\s&'-]+`)
	reLeadWords = regexp.MustCompile(`(?i)^(?:(?:x|of|reps?|and|then)\s+)+`)
)

// extractMovements reads every non-header line as a candidate movement.
func (p *Parser) extractMovements(st *state) {
	var (
		seq   int
		slot  int
		units = map[models.WeightUnit]bool{}
	)
	emom := st.w.Type == models.WorkoutEmom

	for _, l := range st.lines {
		if err := st.ctx.Err(); err != nil {
			st.timeout(err)
			return
		}
		if l.header {
			continue
		}

		text := reBullet.ReplaceAllString(l.text, "")
		if m := reSlot.FindStringSubmatch(text); m != nil {
			slot = slotNumber(m)
			text = strings.TrimSpace(text[len(m[0]):])
			if text == "" {
				continue
			}
		}
		if reNote.MatchString(text) {
			continue
		}
		if reRest.MatchString(text) {
			st.agg.Report(issues.CodeRestLine, issues.AtLine(l.number), issues.WithParam("text", text), issues.WithContext(text))
			continue
		}

		pm, ok := p.readLine(st, l.number, text)
		if !ok {
			continue
		}
		seq++
		pm.SequenceOrder = seq
		if emom {
			pm.EMOMSlot = slot
			st.w.EMOMSlots = max(st.w.EMOMSlots, slot)
		}
		if pm.Load != nil {
			units[pm.Load.Unit] = true
		}
		p.completeQuantity(st, &pm)
		st.w.Movements = append(st.w.Movements, pm)
	}

	if len(st.w.Movements) == 0 {
		st.agg.Report(issues.CodeNoMovements)
	}
	if len(units) > 1 {
		st.agg.Report(issues.CodeMixedUnits)
	}
	if st.w.Type == models.WorkoutTabata && len(st.w.Movements) > 0 {
		total := len(st.w.Movements) * tabataRounds * tabataIntervalSeconds
		st.w.TimeCapSeconds = &total
	}
}

func slotNumber(m []string) int {
	switch strings.ToLower(m[2]) {
	case "odd":
		return 1
	case "even":
		return 2
	}
	if m[1] == "" {
		return 0
	}
	return atoi(m[1])
}

// readLine splits one line into quantities and a name, and resolves the
// name. It returns false when the line is not a movement.
func (p *Parser) readLine(st *state, lineNo int, text string) (models.ParsedMovement, bool) {
	pm := models.ParsedMovement{LineNumber: lineNo, OriginalText: text}
	at := issues.AtLine(lineNo)
	ctx := issues.WithContext(text)
	rest := reThousands.ReplaceAllString(text, "$1$2")

	if m := reCalories.FindStringSubmatch(rest); m != nil {
		if n := atoi(m[1]); n > 0 && n <= maxCalories {
			pm.Calories = &n
		} else {
			st.agg.Report(issues.CodeInvalidRepCount, at, ctx, issues.WithParam("value", m[1]), issues.WithParam("max", maxCalories))
		}
		rest = cut(rest, m[0])
	}

	if m := reDistance.FindStringSubmatch(rest); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		d := models.Distance{Value: v, Unit: distanceUnit(m[2])}
		if v > 0 && d.Meters() <= maxDistanceM {
			pm.Distance = &d
		} else {
			st.agg.Report(issues.CodeInvalidDistance, at, ctx, issues.WithParam("value", m[0]))
		}
		rest = cut(rest, m[0])
	}

	if load, raw, ok := readLoad(rest); raw != "" {
		if ok {
			pm.Load = &load
		} else {
			st.agg.Report(issues.CodeInvalidLoad, at, ctx, issues.WithParam("value", strings.TrimSpace(raw)))
		}
		rest = cut(rest, raw)
	}

	rest = reHeight.ReplaceAllString(rest, " ")

	if m := reDurClock.FindStringSubmatch(rest); m != nil {
		secs := atoi(m[1])*60 + atoi(m[2])
		if secs > 0 {
			pm.DurationSeconds = &secs
		}
		rest = cut(rest, m[0])
	} else if m := reDurSec.FindStringSubmatch(rest); m != nil {
		secs := atoi(m[1])
		if secs > 0 {
			pm.DurationSeconds = &secs
		}
		rest = cut(rest, m[0])
	} else if m := reDurMin.FindStringSubmatch(rest); m != nil {
		secs := atoi(m[1]) * 60
		if secs > 0 {
			pm.DurationSeconds = &secs
		}
		rest = cut(rest, m[0])
	}

	rest = strings.TrimSpace(rest)
	if raw := reRepScheme.FindString(rest); raw != "" {
		if reps, ok := DetectRepScheme(raw); ok && validScheme(reps) {
			pm.RepScheme = &models.RepScheme{Kind: ClassifyRepScheme(reps), Reps: reps}
		} else {
			st.agg.Report(issues.CodeInvalidRepScheme, at, ctx, issues.WithParam("scheme", strings.TrimSpace(raw)))
		}
		rest = cut(rest, raw)
	} else if reps, raw, found := readReps(rest); found {
		if reps > 0 && reps <= maxReps {
			pm.Reps = &reps
		} else {
			st.agg.Report(issues.CodeInvalidRepCount, at, ctx, issues.WithParam("value", reps), issues.WithParam("max", maxReps))
		}
		rest = cut(rest, raw)
	}

	name := cleanName(rest)
	pm.Name = name
	if !hasLetter(name) {
		st.agg.Report(issues.CodeUnparseableLine, at, ctx, issues.WithParam("text", text))
		return pm, false
	}

	if mv, ok := p.catalog.Find(name); ok {
		pm.Movement = &mv
		return pm, true
	}

	similar := issues.SimilarNames(name, p.names)
	st.agg.Report(issues.CodeUnknownMovement, at, ctx, issues.WithParam("name", name), issues.WithSimilar(similar))
	return pm, true
}

// completeQuantity applies the workout rep scheme and reports movements that
// still lack any quantity.
func (p *Parser) completeQuantity(st *state, pm *models.ParsedMovement) {
	scheme := st.w.RepScheme
	switch {
	case scheme != nil && (pm.Reps != nil || pm.RepScheme != nil):
		st.agg.Report(issues.CodeRepSchemeOverride, issues.AtLine(pm.LineNumber), issues.WithParam("name", pm.DisplayName()))
	case scheme != nil && !quantified(*pm):
		cp := models.RepScheme{Kind: scheme.Kind, Reps: append([]int(nil), scheme.Reps...)}
		pm.RepScheme = &cp
	}

	if pm.HasQuantity() {
		return
	}
	if st.w.Type == models.WorkoutTabata {
		work := tabataWorkSeconds
		pm.DurationSeconds = &work
		return
	}
	st.agg.Report(issues.CodeMissingQuantity, issues.AtLine(pm.LineNumber), issues.WithParam("name", pm.DisplayName()))
}

// quantified reports whether the line itself prescribed an amount.
func quantified(pm models.ParsedMovement) bool {
	return pm.Reps != nil || pm.Distance != nil || pm.Calories != nil ||
		pm.DurationSeconds != nil || pm.RepScheme != nil
}

// readLoad finds a load written with a unit, after "@", or as a bare
// "(95/65)" pair. Unitless loads are pounds. raw is the matched text; ok is
// false when a load was written but is out of range.
func readLoad(s string) (load models.Load, raw string, ok bool) {
	var male, female, unit string
	switch m := reLoadUnit.FindStringSubmatch(s); {
	case m != nil:
		raw, male, female, unit = m[0], m[1], m[2], m[3]
		if m[4] != "" {
			unit = "lb"
		}
	default:
		if m := reLoadAt.FindStringSubmatch(s); m != nil {
			raw, male, female, unit = m[0], m[1], m[2], "lb"
		} else if m := reLoadPair.FindStringSubmatch(s); m != nil {
			raw, male, female, unit = m[0], m[1], m[2], "lb"
		} else {
			return models.Load{}, "", false
		}
	}

	load.Unit = models.UnitLb
	if strings.HasPrefix(strings.ToLower(unit), "k") {
		load.Unit = models.UnitKg
	}
	v, err := strconv.ParseFloat(male, 64)
	if err != nil || v <= 0 || models.ToKg(v, load.Unit) > maxLoadKg {
		return models.Load{}, raw, false
	}
	load.Value = v
	if female != "" {
		f, err := strconv.ParseFloat(female, 64)
		if err != nil || f <= 0 || models.ToKg(f, load.Unit) > maxLoadKg {
			return models.Load{}, raw, false
		}
		load.FemaleValue = &f
	}
	return load, raw, true
}

// readReps finds a rep count at the start ("21 Thrusters", "3x10") or the
// end ("Thrusters x 21", "Thrusters 21 reps") of s.
func readReps(s string) (reps int, raw string, found bool) {
	if m := reSetsReps.FindStringSubmatch(s); m != nil {
		return atoi(m[2]), m[0], true
	}
	if m := reRepsLead.FindStringSubmatch(s); m != nil {
		return atoi(m[1]), m[0], true
	}
	if m := reRepsTrail.FindStringSubmatch(s); m != nil {
		n := m[1]
		if n == "" {
			n = m[2]
		}
		return atoi(n), m[0], true
	}
	return 0, "", false
}

func distanceUnit(s string) models.DistanceUnit {
	s = strings.ToLower(s)
	switch {
	case s == "km" || strings.HasPrefix(s, "kilo"):
		return models.UnitKilometers
	case s == "mi" || strings.HasPrefix(s, "mile"):
		return models.UnitMiles
	case s == "ft" || s == "feet":
		return models.UnitFeet
	default:
		return models.UnitMeters
	}
}

// cut removes the first occurrence of part from s.
func cut(s, part string) string {
	return strings.Replace(s, part, " ", 1)
}

// cleanName strips punctuation, bare numbers and connector words left over
// after quantities were removed.
func cleanName(s string) string {
	s = reNameJunk.ReplaceAllString(s, " ")
	var words []string
	for _, w := range strings.Fields(s) {
		w = strings.Trim(w, "-'&")
		if w == "" || isNumber(w) {
			continue
		}
		words = append(words, w)
	}
	name := reLeadWords.ReplaceAllString(strings.Join(words, " "), "")
	return strings.TrimSpace(name)
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return false
		}
	}
	return true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
