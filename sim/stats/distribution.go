package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Distribution captures a statistical summary of one per-task metric.
type Distribution struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// NewDistribution summarizes values. Quantiles are empirical: the smallest
// value whose cumulative share reaches p.
// Returns the zero Distribution for empty input.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	d := Distribution{
		Mean:  stat.Mean(sorted, nil),
		P50:   stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:   stat.Quantile(0.90, stat.Empirical, sorted, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, sorted, nil),
		P99:   stat.Quantile(0.99, stat.Empirical, sorted, nil),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
	// sample std dev is undefined for a single value
	if len(sorted) > 1 {
		d.StdDev = stat.StdDev(sorted, nil)
	}
	return d
}
