// Package stats provides the numeric primitives used by the profiler
// and the query layer: descriptive statistics, correlation with
// significance, hypothesis tests, confidence intervals, and power
// analysis. All functions are total: degenerate inputs short-circuit to
// defined neutral results instead of producing NaN.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean, 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the middle value (average of the two middles for even
// counts), 0 for empty input.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := sortedCopy(values)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Variance returns the population variance (divide by n), 0 for fewer
// than two values.
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := Mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// sampleVariance divides by n-1; used by the t-test's pooled variance.
func sampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := Mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values)-1)
}

// Min returns the smallest value, 0 for empty input.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest value, 0 for empty input.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Quartiles returns Q1 and Q3 using simple index-based selection
// (value at floor(n*0.25) and floor(n*0.75) of the sorted slice, not
// interpolated). Zero values for empty input.
func Quartiles(values []float64) (q1, q3 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}
	sorted := sortedCopy(values)
	q1 = sorted[indexAt(n, 0.25)]
	q3 = sorted[indexAt(n, 0.75)]
	return q1, q3
}

// IQR returns the interquartile range Q3-Q1.
func IQR(values []float64) float64 {
	q1, q3 := Quartiles(values)
	return q3 - q1
}

func indexAt(n int, frac float64) int {
	i := int(math.Floor(float64(n) * frac))
	if i >= n {
		i = n - 1
	}
	return i
}

func sortedCopy(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted
}

// ZScores returns the z-score of every value against the slice's own
// mean and population standard deviation. A zero spread yields all
// zeros.
func ZScores(values []float64) []float64 {
	out := make([]float64, len(values))
	sd := StdDev(values)
	if sd == 0 {
		return out
	}
	m := Mean(values)
	for i, v := range values {
		out[i] = (v - m) / sd
	}
	return out
}
