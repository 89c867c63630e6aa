package models

import "time"

// DataStats holds aggregate counts over a store's reference data and
// recorded results.
type DataStats struct {
	Movements          int64            `json:"movements"`
	Benchmarks         int64            `json:"benchmarks"`
	PercentileTables   int64            `json:"percentile_tables"`
	Athletes           int64            `json:"athletes"`
	Results            int64            `json:"results"`
	EarliestResult     *time.Time       `json:"earliest_result"`
	LatestResult       *time.Time       `json:"latest_result"`
	ResultsByBenchmark []BenchmarkCount `json:"results_by_benchmark"`
}

// BenchmarkCount is the number of recorded results for one benchmark.
type BenchmarkCount struct {
	Code     string `json:"code"`
	Count    int64  `json:"count"`
	Athletes int64  `json:"athletes"`
}
