// sim/metrics_utils.go
package sim

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

type IntOrFloat64 interface {
	int | int64 | float64
}

// CalculatePercentile is a util function that calculates the p-th percentile
// (p in [0, 100]) of a data list, interpolating linearly between ranks.
// The input is not modified. Returns 0 for an empty list.
func CalculatePercentile[T IntOrFloat64](data []T, p float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := toSortedFloat64s(data)
	n := len(sorted)

	rank := p / 100.0 * float64(n-1)
	lowerIdx := int(rank)
	if lowerIdx >= n-1 {
		return sorted[n-1]
	}
	frac := rank - float64(lowerIdx)
	return sorted[lowerIdx] + (sorted[lowerIdx+1]-sorted[lowerIdx])*frac
}

// CalculateMean is a util function that calculates the mean of a data list.
// Returns 0 for an empty list.
func CalculateMean[T IntOrFloat64](numbers []T) float64 {
	if len(numbers) == 0 {
		return 0.0
	}
	return stat.Mean(toFloat64s(numbers), nil)
}

func toFloat64s[T IntOrFloat64](data []T) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}

func toSortedFloat64s[T IntOrFloat64](data []T) []float64 {
	out := toFloat64s(data)
	sort.Float64s(out)
	return out
}
