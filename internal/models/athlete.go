package models

import (
	"errors"
	"time"

	"github.com/claude/wodcoach/internal/percentile"
	"github.com/google/uuid"
)

// AthleteProfile is an athlete as stored by the data source.
type AthleteProfile struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Login        string          `json:"login,omitempty"` // tailnet login name, if linked
	Gender       Gender          `json:"gender,omitempty"`
	Experience   ExperienceLevel `json:"experience,omitempty"`
	BodyweightKg *float64        `json:"bodyweight_kg,omitempty"`
}

// BenchmarkCategory groups benchmarks by the quality they measure.
type BenchmarkCategory string

const (
	BenchmarkStrength   BenchmarkCategory = "strength"
	BenchmarkCardio     BenchmarkCategory = "cardio"
	BenchmarkGymnastics BenchmarkCategory = "gymnastics"
	BenchmarkMetcon     BenchmarkCategory = "metcon"
)

// Benchmark defines a measurable test such as a 1RM or a 2k row.
// Values of a benchmark are stored in Unit: seconds for time, kg for weight.
type Benchmark struct {
	Code       string                `json:"code" yaml:"code"`
	Name       string                `json:"name" yaml:"name"`
	Category   BenchmarkCategory     `json:"category" yaml:"category"`
	MetricType percentile.MetricType `json:"metric_type" yaml:"metric"`
	Unit       string                `json:"unit" yaml:"unit"`
}

// AthleteBenchmark is one recorded result of an athlete.
type AthleteBenchmark struct {
	AthleteID     uuid.UUID `json:"athlete_id"`
	BenchmarkCode string    `json:"benchmark_code"`
	Value         float64   `json:"value"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// BenchmarkLink states how strongly a benchmark predicts performance on a
// catalog movement. Relevance is in (0, 1].
type BenchmarkLink struct {
	BenchmarkCode string  `json:"benchmark_code" yaml:"benchmark"`
	MovementID    int64   `json:"movement_id" yaml:"movement_id"`
	Relevance     float64 `json:"relevance" yaml:"relevance"`
}

// ErrNotFound is returned by data sources for missing records.
var ErrNotFound = errors.New("not found")
