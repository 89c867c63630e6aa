// Package format renders analysis values for display. Values are rounded
// here and nowhere else.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Duration formats seconds as H:MM:SS from one hour up, else M:SS. Negative
// durations are prefixed with "-".
func Duration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "0:00"
	}
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	total := int(math.Round(seconds))
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%s%d:%02d", sign, m, s)
}

// ParseDuration reads "M:SS", "H:MM:SS" or a bare number of seconds.
func ParseDuration(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	total := 0
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("invalid duration %q: field %q out of range", s, p)
		}
		total = total*60 + n
	}
	return total, nil
}

// Weight formats a load, dropping the decimal point for whole numbers:
// "95 lb", "42.5 kg".
func Weight(value float64, unit string) string {
	v := strconv.FormatFloat(math.Round(value*10)/10, 'f', -1, 64)
	if unit == "" {
		return v
	}
	return v + " " + unit
}

// Distance formats a distance the same way: "1200 m", "1.5 mi".
func Distance(value float64, unit string) string {
	return Weight(value, unit)
}

// Pace formats seconds per unit as "M:SS/unit", or bare "M:SS" without a unit.
func Pace(secondsPerUnit float64, unit string) string {
	d := Duration(secondsPerUnit)
	if unit == "" {
		return d
	}
	return d + "/" + unit
}

// Percentile formats a percentile as a rounded ordinal: "73rd".
func Percentile(p float64) string {
	n := int(math.Round(math.Max(0, math.Min(100, p))))
	return strconv.Itoa(n) + ordinalSuffix(n)
}

func ordinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}
