package percentile

import "strings"

// Table is a population distribution for one benchmark, optionally segmented
// by gender and experience level. Empty segment fields mean "all".
type Table struct {
	BenchmarkCode string   `json:"benchmark_code" yaml:"benchmark"`
	Gender        string   `json:"gender,omitempty" yaml:"gender"`
	Experience    string   `json:"experience,omitempty" yaml:"experience"`
	Brackets      Brackets `json:"brackets" yaml:"-"`
}

// SelectTable picks the most specific table for a benchmark. Preference order
// is gender and experience, gender only, experience only, then unsegmented.
// Tables segmented on a value that does not match the athlete are never used.
func SelectTable(tables []Table, benchmarkCode, gender, experience string) (Table, bool) {
	gender = strings.ToLower(gender)
	experience = strings.ToLower(experience)

	best, bestRank := Table{}, -1
	for _, t := range tables {
		if t.BenchmarkCode != benchmarkCode {
			continue
		}
		tg, te := strings.ToLower(t.Gender), strings.ToLower(t.Experience)
		if tg != "" && tg != gender {
			continue
		}
		if te != "" && te != experience {
			continue
		}
		rank := 0
		if tg != "" {
			rank += 2
		}
		if te != "" {
			rank++
		}
		if rank > bestRank {
			best, bestRank = t, rank
		}
	}
	return best, bestRank >= 0
}
