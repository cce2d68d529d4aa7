package metrics

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the spread of a set of pixel values.
type Summary struct {
	Min    float64
	Median float64
	Mean   float64
	Max    float64
}

// Summarize computes min, median, mean and max of values. An even count takes
// the mean of the two middle values as the median.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, fmt.Errorf("summarize: no values")
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}
	return Summary{
		Min:    floats.Min(sorted),
		Median: median,
		Mean:   stat.Mean(values, nil),
		Max:    floats.Max(sorted),
	}, nil
}

func (s Summary) String() string {
	return fmt.Sprintf("min=%.4f median=%.4f mean=%.4f max=%.4f", s.Min, s.Median, s.Mean, s.Max)
}
