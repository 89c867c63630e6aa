package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/claude/wodcoach/internal/format"
	"github.com/claude/wodcoach/internal/issues"
	"github.com/claude/wodcoach/internal/models"
)

const (
	// Tabata defaults: 8 rounds of 20s work and 10s rest per movement.
	tabataRounds          = 8
	tabataIntervalSeconds = 30
	tabataWorkSeconds     = 20

	// Durations above this are flagged as unusual.
	unusualDurationSeconds = 120 * 60

	maxSchemeReps = 1000
)

var (
	reAmrap        = regexp.MustCompile(`(?i)\b(?:amrap|as many (?:rounds|reps)(?: and reps)? as possible)\b`)
	reAmrapAfter   = regexp.MustCompile(`(?i)\bamrap\s*(?:in\s+|of\s+|x\s*)?(\d+)\b`)
	reAmrapBefore  = regexp.MustCompile(`(?i)\b(\d+)\s*(?:-?\s*(?:min(?:ute)?s?|'))?\s*amrap\b`)
	reEmom         = regexp.MustCompile(`(?i)\be(\d*)mom\b`)
	reEmomAfter    = regexp.MustCompile(`(?i)\be\d*mom\s*(?:x\s*|for\s+)?(\d+)\b`)
	reEmomBefore   = regexp.MustCompile(`(?i)\b(\d+)\s*(?:-?\s*(?:min(?:ute)?s?|'))?\s*e\d*mom\b`)
	reEvery        = regexp.MustCompile(`(?i)\bevery\s+(?:(\d+)\s*(min(?:ute)?s?|sec(?:ond)?s?)|(\d+):([0-5]\d)|min(?:ute)?)\b(?:\s+on\s+the\s+min(?:ute)?\b)?`)
	reForMinutes   = regexp.MustCompile(`(?i)\bfor\s+(\d+)\s*(?:min(?:ute)?s?|')`)
	reTimesN       = regexp.MustCompile(`(?i)\bx\s*(\d+)\b`)
	reTabata       = regexp.MustCompile(`(?i)\btabata\b`)
	reIntervals    = regexp.MustCompile(`(?i)\bintervals?\b`)
	reIntervalSpec = regexp.MustCompile(`(?i)\b(\d+)\s*x\s*(?:(\d+):([0-5]\d)|(\d+)\s*(min(?:ute)?s?|sec(?:ond)?s?))\b`)
	reForTime      = regexp.MustCompile(`(?i)\bfor\s+time\b|\brft\b|^\s*ft\b`)
	reRounds       = regexp.MustCompile(`(?i)\b(\d+)\s*(?:rounds?|rds?|rft)\b`)
	reTimeCap      = regexp.MustCompile(`(?i)\b(?:time\s*cap|cap|tc)\b\s*(?:of\s+|is\s+)?[:=-]?\s*(\d+(?::[0-5]\d)?)?\s*(?:min(?:ute)?s?\b|')?`)
	reCapBefore    = regexp.MustCompile(`(?i)\b(\d+(?::[0-5]\d)?)\s*(?:min(?:ute)?s?|')?\s*(?:time\s*)?cap\b`)
	reRepScheme    = regexp.MustCompile(`^\s*(\d+(?:\s*[-–—,]\s*\d+)+)\b`)
	reMinutes      = regexp.MustCompile(`(?i)\b(\d+)\s*-?\s*(?:min(?:ute)?s?\b|')`)
	reClock        = regexp.MustCompile(`\b(\d{1,3}):([0-5]\d)\b`)
	reWord         = regexp.MustCompile(`\p{L}+`)
)

// headerPatterns identify a workout format; auxPatterns only remove
// numbers and units that may accompany one.
var (
	headerPatterns = []*regexp.Regexp{
		reIntervalSpec, reAmrapAfter, reAmrapBefore, reAmrap,
		reEmomAfter, reEmomBefore, reEmom, reEvery,
		reTabata, reIntervals, reForTime, reRounds,
		reCapBefore, reTimeCap, reRepScheme,
	}
	auxPatterns = []*regexp.Regexp{reForMinutes, reTimesN, reMinutes, reClock}
)

var fillerWords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true, "between": true,
	"complete": true, "each": true, "every": true, "for": true, "in": true,
	"interval": true, "intervals": true, "is": true, "min": true, "mins": true,
	"minute": true, "minutes": true, "of": true, "on": true, "possible": true,
	"rd": true, "rds": true, "rest": true, "reps": true, "round": true,
	"rounds": true, "sec": true, "secs": true, "seconds": true, "set": true,
	"sets": true, "the": true, "then": true, "time": true, "cap": true,
	"to": true, "with": true, "workout": true, "wod": true, "x": true,
	"score": true, "total": true, "s": true, "partner": true, "team": true,
}

// typePriority resolves several explicit formats to one.
var typePriority = []models.WorkoutType{
	models.WorkoutTabata,
	models.WorkoutEmom,
	models.WorkoutAmrap,
	models.WorkoutIntervals,
	models.WorkoutForTime,
	models.WorkoutRounds,
}

// typeDetection records how the workout type was decided.
type typeDetection struct {
	confidence float64
	explicit   []models.WorkoutType
	inferred   bool
}

// signals collects structure facts from all header lines. First value wins.
type signals struct {
	types []models.WorkoutType

	amrapSeconds    *int
	emomInterval    *int
	emomSeconds     *int
	emomRounds      *int
	rounds          *int
	intervalRounds  *int
	intervalSeconds *int
	capSeconds      *int
	capInvalid      string
	capFound        bool

	schemeText string
	schemeLine int
}

func (s *signals) addType(t models.WorkoutType) {
	for _, have := range s.types {
		if have == t {
			return
		}
	}
	s.types = append(s.types, t)
}

func (s *signals) has(t models.WorkoutType) bool {
	for _, have := range s.types {
		if have == t {
			return true
		}
	}
	return false
}

func setOnce(dst **int, v int) {
	if *dst == nil {
		*dst = &v
	}
}

// detectStructure marks header lines and decides the workout type and its
// time domain.
func (p *Parser) detectStructure(st *state) {
	sig := &signals{}
	for i := range st.lines {
		l := &st.lines[i]
		if isHeader(l.text) {
			l.header = true
			readSignals(sig, l.text, l.number)
			continue
		}
		// "AMRAP 20 min: 5 pull-ups" carries a header before the colon.
		if idx := strings.IndexByte(l.text, ':'); idx > 0 {
			head, rest := l.text[:idx], strings.TrimSpace(l.text[idx+1:])
			if rest != "" && isHeader(head) {
				readSignals(sig, head, l.number)
				l.text = rest
			}
		}
	}
	st.sig = sig
	p.decideType(st)
	p.fillTimeDomain(st)
}

// isHeader reports whether text matches a structure pattern and contains
// nothing else but filler words and numbers.
func isHeader(text string) bool {
	matched := false
	residue := text
	for _, re := range headerPatterns {
		if re.MatchString(residue) {
			matched = true
			residue = re.ReplaceAllString(residue, " ")
		}
	}
	if !matched {
		return false
	}
	for _, re := range auxPatterns {
		residue = re.ReplaceAllString(residue, " ")
	}
	for _, w := range reWord.FindAllString(strings.ToLower(residue), -1) {
		if !fillerWords[w] {
			return false
		}
	}
	return true
}

func readSignals(sig *signals, text string, lineNo int) {
	if reTabata.MatchString(text) {
		sig.addType(models.WorkoutTabata)
	}

	if m := reEmom.FindStringSubmatch(text); m != nil {
		sig.addType(models.WorkoutEmom)
		step := 1
		if m[1] != "" {
			step = atoi(m[1])
		}
		setOnce(&sig.emomInterval, step*60)
		if n, ok := firstNumber(text, reEmomAfter, reEmomBefore, reForMinutes, reMinutes); ok {
			setOnce(&sig.emomSeconds, n*60)
		} else if n, ok := firstNumber(text, reTimesN, reRounds); ok {
			setOnce(&sig.emomRounds, n)
		}
	} else if m := reEvery.FindStringSubmatch(text); m != nil {
		sig.addType(models.WorkoutEmom)
		setOnce(&sig.emomInterval, everyInterval(m))
		if n, ok := firstNumber(text, reForMinutes); ok {
			setOnce(&sig.emomSeconds, n*60)
		} else if n, ok := firstNumber(text, reTimesN, reRounds); ok {
			setOnce(&sig.emomRounds, n)
		}
	}

	if reAmrap.MatchString(text) {
		sig.addType(models.WorkoutAmrap)
		if n, ok := firstNumber(text, reAmrapAfter, reAmrapBefore, reMinutes); ok {
			setOnce(&sig.amrapSeconds, n*60)
		} else if c := reClock.FindStringSubmatch(text); c != nil {
			setOnce(&sig.amrapSeconds, atoi(c[1])*60+atoi(c[2]))
		}
	}

	if m := reIntervalSpec.FindStringSubmatch(text); m != nil {
		sig.addType(models.WorkoutIntervals)
		setOnce(&sig.intervalRounds, atoi(m[1]))
		setOnce(&sig.intervalSeconds, specSeconds(m))
	} else if reIntervals.MatchString(text) {
		sig.addType(models.WorkoutIntervals)
		if n, ok := firstNumber(text, reRounds, reTimesN); ok {
			setOnce(&sig.intervalRounds, n)
		}
		if c := reClock.FindStringSubmatch(text); c != nil {
			setOnce(&sig.intervalSeconds, atoi(c[1])*60+atoi(c[2]))
		} else if n, ok := firstNumber(text, reMinutes); ok {
			setOnce(&sig.intervalSeconds, n*60)
		}
	}

	if reForTime.MatchString(text) {
		sig.addType(models.WorkoutForTime)
	}
	if m := reRounds.FindStringSubmatch(text); m != nil {
		sig.addType(models.WorkoutRounds)
		setOnce(&sig.rounds, atoi(m[1]))
	}

	if m := capMatch(text); m != nil {
		sig.capFound = true
		if secs, ok := capSeconds(m[1]); ok {
			setOnce(&sig.capSeconds, secs)
		} else if sig.capInvalid == "" {
			sig.capInvalid = strings.TrimSpace(m[0])
		}
	}

	if sig.schemeText == "" {
		if m := reRepScheme.FindStringSubmatch(text); m != nil {
			sig.schemeText = m[1]
			sig.schemeLine = lineNo
		}
	}
}

func capMatch(text string) []string {
	if m := reCapBefore.FindStringSubmatch(text); m != nil {
		return m
	}
	return reTimeCap.FindStringSubmatch(text)
}

// capSeconds reads a cap written as minutes ("12") or a clock ("12:30").
func capSeconds(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	var secs int
	if strings.Contains(s, ":") {
		d, err := format.ParseDuration(s)
		if err != nil {
			return 0, false
		}
		secs = d
	} else {
		secs = atoi(s) * 60
	}
	return secs, secs > 0
}

func everyInterval(m []string) int {
	switch {
	case m[1] != "":
		n := atoi(m[1])
		if strings.HasPrefix(strings.ToLower(m[2]), "sec") {
			return n
		}
		return n * 60
	case m[3] != "":
		return atoi(m[3])*60 + atoi(m[4])
	default:
		return 60
	}
}

func specSeconds(m []string) int {
	if m[2] != "" {
		return atoi(m[2])*60 + atoi(m[3])
	}
	n := atoi(m[4])
	if strings.HasPrefix(strings.ToLower(m[5]), "sec") {
		return n
	}
	return n * 60
}

// firstNumber returns the first positive capture of the first matching
// pattern.
func firstNumber(text string, res ...*regexp.Regexp) (int, bool) {
	for _, re := range res {
		m := re.FindStringSubmatch(text)
		if m == nil || len(m) < 2 || m[1] == "" {
			continue
		}
		if n := atoi(m[1]); n > 0 {
			return n, true
		}
	}
	return 0, false
}

// maxNumber bounds numbers read from text so arithmetic on them cannot
// overflow.
const maxNumber = 1_000_000

// atoi parses digits matched by a pattern, saturating at maxNumber.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n > maxNumber {
		return maxNumber
	}
	return n
}

func (p *Parser) decideType(st *state) {
	sig := st.sig
	var explicit []models.WorkoutType
	for _, t := range typePriority {
		if t != models.WorkoutRounds && sig.has(t) {
			explicit = append(explicit, t)
		}
	}

	switch {
	case len(explicit) > 1:
		st.w.Type = explicit[0]
		st.typ = typeDetection{confidence: 0.6, explicit: explicit}
		names := make([]string, len(explicit))
		for i, t := range explicit {
			names[i] = t.DisplayName()
		}
		st.agg.Report(issues.CodeAmbiguousType,
			issues.WithParam("types", strings.Join(names, ", ")),
			issues.WithParam("chosen", explicit[0].DisplayName()),
			issues.WithContext(strings.Join(names, ",")))
	case len(explicit) == 1:
		st.w.Type = explicit[0]
		st.typ = typeDetection{confidence: 1, explicit: explicit}
	case sig.has(models.WorkoutRounds):
		st.w.Type = models.WorkoutRounds
		st.typ = typeDetection{confidence: 1, explicit: []models.WorkoutType{models.WorkoutRounds}}
	case sig.schemeText != "":
		st.w.Type = models.WorkoutForTime
		st.typ = typeDetection{confidence: 0.85, inferred: true}
	case sig.capFound:
		st.w.Type = models.WorkoutForTime
		st.typ = typeDetection{confidence: 0.8, inferred: true}
	default:
		st.w.Type = models.WorkoutForTime
		st.typ = typeDetection{confidence: 0.3, inferred: true}
		st.agg.Report(issues.CodeNoStructure, issues.WithParam("assumed", models.WorkoutForTime.DisplayName()))
	}
}

func (p *Parser) fillTimeDomain(st *state) {
	sig, w := st.sig, &st.w

	switch w.Type {
	case models.WorkoutAmrap:
		dur := sig.amrapSeconds
		if dur == nil || *dur <= 0 {
			dur = sig.capSeconds
		}
		if dur == nil || *dur <= 0 {
			st.agg.Report(issues.CodeMissingDuration,
				issues.WithParam("type", w.Type.DisplayName()),
				issues.WithParam("example", "AMRAP 20 min"))
			break
		}
		w.TimeCapSeconds = dur

	case models.WorkoutEmom:
		interval := 60
		if sig.emomInterval != nil && *sig.emomInterval > 0 {
			interval = *sig.emomInterval
		}
		var rounds int
		switch {
		case sig.emomRounds != nil && *sig.emomRounds > 0:
			rounds = *sig.emomRounds
		case sig.emomSeconds != nil && *sig.emomSeconds > 0:
			rounds = max(1, *sig.emomSeconds/interval)
		default:
			st.agg.Report(issues.CodeMissingDuration,
				issues.WithParam("type", w.Type.DisplayName()),
				issues.WithParam("example", "EMOM 12"))
		}
		w.IntervalSeconds = &interval
		if rounds > 0 {
			total := rounds * interval
			w.RoundCount = &rounds
			w.TimeCapSeconds = &total
		}

	case models.WorkoutIntervals:
		rounds := sig.intervalRounds
		if rounds == nil || *rounds <= 0 {
			rounds = sig.rounds
		}
		if rounds == nil || *rounds <= 0 {
			st.agg.Report(issues.CodeMissingRoundCount,
				issues.WithParam("type", w.Type.DisplayName()),
				issues.WithParam("example", "5 x 3:00"))
		} else {
			w.RoundCount = rounds
		}
		if sig.intervalSeconds != nil && *sig.intervalSeconds > 0 {
			w.IntervalSeconds = sig.intervalSeconds
		}
		w.TimeCapSeconds = sig.capSeconds

	case models.WorkoutTabata:
		rounds, interval := tabataRounds, tabataIntervalSeconds
		w.RoundCount = &rounds
		w.IntervalSeconds = &interval

	default:
		if sig.rounds != nil && *sig.rounds > 0 {
			w.RoundCount = sig.rounds
		}
		w.TimeCapSeconds = sig.capSeconds
	}

	if sig.capInvalid != "" {
		st.agg.Report(issues.CodeInvalidTimeCap, issues.WithParam("value", sig.capInvalid), issues.WithContext(sig.capInvalid))
	}
	if w.TimeCapSeconds != nil && *w.TimeCapSeconds > unusualDurationSeconds {
		st.agg.Report(issues.CodeUnusualDuration, issues.WithParam("minutes", *w.TimeCapSeconds/60))
	}
}

// applyRepScheme validates the workout-level rep scheme found among the
// header lines and records it on the workout.
func (p *Parser) applyRepScheme(st *state) {
	sig := st.sig
	if sig == nil || sig.schemeText == "" {
		return
	}
	reps, ok := DetectRepScheme(sig.schemeText)
	if !ok {
		return
	}
	if !validScheme(reps) {
		st.agg.Report(issues.CodeInvalidRepScheme,
			issues.WithParam("scheme", sig.schemeText),
			issues.AtLine(sig.schemeLine),
			issues.WithContext(sig.schemeText))
		return
	}
	st.w.RepScheme = &models.RepScheme{Kind: ClassifyRepScheme(reps), Reps: reps}
	switch st.w.Type {
	case models.WorkoutForTime, models.WorkoutRounds:
		if st.w.RoundCount == nil {
			n := len(reps)
			st.w.RoundCount = &n
		}
	}
}

func validScheme(reps []int) bool {
	for _, r := range reps {
		if r <= 0 || r > maxSchemeReps {
			return false
		}
	}
	return true
}

// DetectRepScheme reads a dash- or comma-separated rep ladder such as
// "21-15-9" at the start of s. At least two values are required.
func DetectRepScheme(s string) ([]int, bool) {
	m := reRepScheme.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	fields := strings.FieldsFunc(m[1], func(r rune) bool {
		return r == '-' || r == '–' || r == '—' || r == ',' || r == ' '
	})
	reps := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, false
		}
		reps = append(reps, n)
	}
	return reps, len(reps) >= 2
}

// ClassifyRepScheme compares consecutive values: all equal is Fixed, strictly
// falling is Descending, strictly rising is Ascending, anything else Custom.
func ClassifyRepScheme(reps []int) models.RepSchemeKind {
	if len(reps) < 2 {
		return models.RepSchemeFixed
	}
	fixed, desc, asc := true, true, true
	for i := 1; i < len(reps); i++ {
		prev, cur := reps[i-1], reps[i]
		fixed = fixed && cur == prev
		desc = desc && cur < prev
		asc = asc && cur > prev
	}
	switch {
	case fixed:
		return models.RepSchemeFixed
	case desc:
		return models.RepSchemeDescending
	case asc:
		return models.RepSchemeAscending
	default:
		return models.RepSchemeCustom
	}
}
