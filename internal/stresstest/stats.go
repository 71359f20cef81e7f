package stresstest

import (
	"errors"
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
)

// ErrNoSamples is returned when no attempt succeeded, so latency
// statistics are undefined
var ErrNoSamples = errors.New("no successful samples")

// Summary is a read-only snapshot of a run's statistics. Latency fields
// are in milliseconds and stay zero when there are no samples.
type Summary struct {
	Total     int       `json:"total" yaml:"total"`
	Successes int       `json:"successes" yaml:"successes"`
	Errors    int       `json:"errors" yaml:"errors"`
	ErrorRate float64   `json:"errorRatePct" yaml:"errorRatePct"`
	Mean      float64   `json:"meanMs" yaml:"meanMs"`
	Min       float64   `json:"minMs" yaml:"minMs"`
	Max       float64   `json:"maxMs" yaml:"maxMs"`
	P50       float64   `json:"p50Ms" yaml:"p50Ms"`
	P95       float64   `json:"p95Ms" yaml:"p95Ms"`
	P99       float64   `json:"p99Ms" yaml:"p99Ms"`
	Sorted    []float64 `json:"-" yaml:"-"` // Ascending latencies
}

// HasData reports whether latency statistics are defined
func (s Summary) HasData() bool {
	return len(s.Sorted) > 0
}

// Summarize sorts a copy of samples and computes the statistics.
// total is the number of dispatched attempts used for the error rate.
// With no samples it returns ErrNoSamples alongside a Summary that still
// carries the counts and error rate.
func Summarize(samples []float64, errorCount, total int) (Summary, error) {
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	s := Summary{
		Total:     total,
		Successes: len(sorted),
		Errors:    errorCount,
		ErrorRate: ErrorRate(errorCount, total),
		Sorted:    sorted,
	}
	if len(sorted) == 0 {
		return s, ErrNoSamples
	}

	var err error
	if s.Mean, err = stats.Mean(sorted); err != nil {
		return s, fmt.Errorf("failed to compute mean: %w", err)
	}
	if s.Min, err = stats.Min(sorted); err != nil {
		return s, fmt.Errorf("failed to compute min: %w", err)
	}
	if s.Max, err = stats.Max(sorted); err != nil {
		return s, fmt.Errorf("failed to compute max: %w", err)
	}
	s.P50 = Percentile(sorted, 50)
	s.P95 = Percentile(sorted, 95)
	s.P99 = Percentile(sorted, 99)

	return s, nil
}

// Percentile calculates the percentile value of an ascending slice
// (p between 0 and 100) by linear interpolation between closest ranks
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}

	// Calculate index
	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// ErrorRate returns errors as a percentage of total
func ErrorRate(errorCount, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(errorCount) / float64(total) * 100
}
