package models

import (
	"fmt"
	"os"
	"time"

	"github.com/claude/wodcoach/internal/percentile"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Seed is the reference data and sample athletes loaded into a store.
type Seed struct {
	Movements  []Movement      `yaml:"movements"`
	Benchmarks []Benchmark     `yaml:"benchmarks"`
	Links      []BenchmarkLink `yaml:"links"`
	Tables     []SeedTable     `yaml:"percentile_tables"`
	Athletes   []SeedAthlete   `yaml:"athletes"`
}

// SeedTable is a percentile table written as five bracket values.
type SeedTable struct {
	Benchmark  string    `yaml:"benchmark"`
	Gender     string    `yaml:"gender"`
	Experience string    `yaml:"experience"`
	Brackets   []float64 `yaml:"brackets"`
}

// SeedAthlete is a sample athlete with recorded results.
type SeedAthlete struct {
	ID         string       `yaml:"id"`
	Name       string       `yaml:"name"`
	Login      string       `yaml:"login"`
	Gender     string       `yaml:"gender"`
	Experience string       `yaml:"experience"`
	Results    []SeedResult `yaml:"results"`
}

// SeedResult is one benchmark result of a sample athlete.
type SeedResult struct {
	Benchmark  string    `yaml:"benchmark"`
	Value      float64   `yaml:"value"`
	RecordedAt time.Time `yaml:"recorded_at"`
}

// PercentileTables converts the seed tables. Every table must carry exactly
// five brackets.
func (s *Seed) PercentileTables() ([]percentile.Table, error) {
	out := make([]percentile.Table, 0, len(s.Tables))
	for i, t := range s.Tables {
		if len(t.Brackets) != 5 {
			return nil, fmt.Errorf("percentile table %d (%s): want 5 brackets, got %d", i, t.Benchmark, len(t.Brackets))
		}
		b := t.Brackets
		out = append(out, percentile.Table{
			BenchmarkCode: t.Benchmark,
			Gender:        t.Gender,
			Experience:    t.Experience,
			Brackets:      percentile.NewBrackets(b[0], b[1], b[2], b[3], b[4]),
		})
	}
	return out, nil
}

// AthleteProfile converts a seed athlete, normalizing gender and experience.
func (a SeedAthlete) AthleteProfile() (AthleteProfile, error) {
	id, err := uuid.Parse(a.ID)
	if err != nil {
		return AthleteProfile{}, fmt.Errorf("athlete %q: %w", a.Name, err)
	}
	p := AthleteProfile{ID: id, Name: a.Name, Login: a.Login}
	if a.Gender != "" {
		g, ok := NormalizeGender(a.Gender)
		if !ok {
			return AthleteProfile{}, fmt.Errorf("athlete %q: unknown gender %q", a.Name, a.Gender)
		}
		p.Gender = g
	}
	if a.Experience != "" {
		e, ok := NormalizeExperience(a.Experience)
		if !ok {
			return AthleteProfile{}, fmt.Errorf("athlete %q: unknown experience %q", a.Name, a.Experience)
		}
		p.Experience = e
	}
	return p, nil
}

// Validate checks references between seed sections.
func (s *Seed) Validate() error {
	ids := make(map[int64]bool, len(s.Movements))
	for _, m := range s.Movements {
		if m.ID <= 0 || m.CanonicalName == "" {
			return fmt.Errorf("movement %d %q: id and name are required", m.ID, m.CanonicalName)
		}
		if ids[m.ID] {
			return fmt.Errorf("movement %d: duplicate id", m.ID)
		}
		if !m.Category.Valid() {
			return fmt.Errorf("movement %q: unknown category %q", m.CanonicalName, m.Category)
		}
		ids[m.ID] = true
	}
	codes := make(map[string]bool, len(s.Benchmarks))
	for _, b := range s.Benchmarks {
		if b.Code == "" {
			return fmt.Errorf("benchmark %q: code is required", b.Name)
		}
		if _, err := percentile.ParseMetricType(string(b.MetricType)); err != nil {
			return fmt.Errorf("benchmark %s: %w", b.Code, err)
		}
		codes[b.Code] = true
	}
	for _, l := range s.Links {
		if !codes[l.BenchmarkCode] {
			return fmt.Errorf("link: unknown benchmark %q", l.BenchmarkCode)
		}
		if !ids[l.MovementID] {
			return fmt.Errorf("link %s: unknown movement %d", l.BenchmarkCode, l.MovementID)
		}
		if l.Relevance <= 0 || l.Relevance > 1 {
			return fmt.Errorf("link %s/%d: relevance %v not in (0, 1]", l.BenchmarkCode, l.MovementID, l.Relevance)
		}
	}
	for _, t := range s.Tables {
		if !codes[t.Benchmark] {
			return fmt.Errorf("percentile table: unknown benchmark %q", t.Benchmark)
		}
	}
	if _, err := s.PercentileTables(); err != nil {
		return err
	}
	for _, a := range s.Athletes {
		if _, err := a.AthleteProfile(); err != nil {
			return err
		}
		for _, r := range a.Results {
			if !codes[r.Benchmark] {
				return fmt.Errorf("athlete %q: unknown benchmark %q", a.Name, r.Benchmark)
			}
		}
	}
	return nil
}

// ParseSeed decodes and validates a YAML seed document.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, fmt.Errorf("validating seed: %w", err)
	}
	return &seed, nil
}

// LoadSeed reads a YAML seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return ParseSeed(data)
}
