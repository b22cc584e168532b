// Package drill compares two row segments selected by column value.
// Comparisons are pure functions recomputed on every call; nothing is
// cached because the underlying rows may change between calls.
package drill

import (
	"github.com/Sumee7/project1autoinsight/internal/model"
	"github.com/Sumee7/project1autoinsight/pkg/schema"
	"github.com/Sumee7/project1autoinsight/pkg/stats"
)

// Selector picks the rows whose column equals the given value,
// compared case-insensitively.
type Selector struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// Metric summarizes one numeric column within a segment.
type Metric struct {
	N      int                      `json:"n"`
	Mean   float64                  `json:"mean"`
	Median float64                  `json:"median"`
	StdDev float64                  `json:"std_dev"`
	Min    float64                  `json:"min"`
	Max    float64                  `json:"max"`
	CI95   stats.ConfidenceInterval `json:"ci95"`
}

// Delta is the change from segment A to segment B.
type Delta struct {
	Absolute float64 `json:"absolute"`
	Percent  float64 `json:"percent"`
}

// Comparison is the result of comparing two segments. Significant is
// set when the row counts differ by more than ten percent.
type Comparison struct {
	A            Selector          `json:"a"`
	B            Selector          `json:"b"`
	RowsA        int               `json:"rows_a"`
	RowsB        int               `json:"rows_b"`
	StatsA       map[string]Metric `json:"stats_a"`
	StatsB       map[string]Metric `json:"stats_b"`
	RowCountDiff Delta             `json:"row_count_diff"`
	MeanDiffs    map[string]Delta  `json:"mean_diffs"`

	// Tests holds a two-sample t-test per column present in both
	// segments, so a mean difference can be read next to its p-value.
	Tests map[string]stats.TTestResult `json:"tests"`

	Significant bool `json:"significant"`
}

const significanceThreshold = 10.0

// Compare selects both segments and computes per-column numeric stats
// plus absolute and percent deltas between them.
func Compare(ds *model.Dataset, cols []schema.Column, a, b Selector) Comparison {
	idxA := segment(ds, a)
	idxB := segment(ds, b)
	valuesA := segmentValues(ds, cols, idxA)
	valuesB := segmentValues(ds, cols, idxB)

	c := Comparison{
		A:      a,
		B:      b,
		RowsA:  len(idxA),
		RowsB:  len(idxB),
		StatsA: segmentStats(valuesA),
		StatsB: segmentStats(valuesB),
	}

	c.RowCountDiff = delta(float64(c.RowsA), float64(c.RowsB))
	c.Significant = c.RowCountDiff.Percent > significanceThreshold ||
		c.RowCountDiff.Percent < -significanceThreshold

	c.MeanDiffs = make(map[string]Delta)
	c.Tests = make(map[string]stats.TTestResult)
	for name, ma := range c.StatsA {
		if mb, ok := c.StatsB[name]; ok {
			c.MeanDiffs[name] = delta(ma.Mean, mb.Mean)
			c.Tests[name] = stats.TTest(valuesA[name], valuesB[name])
		}
	}
	return c
}

func segment(ds *model.Dataset, s Selector) []int {
	return model.ApplyFilters(ds, []model.Filter{{
		Column: s.Column,
		Op:     model.OpEquals,
		Value:  s.Value,
	}})
}

// segmentValues collects the coercible values of every numeric column
// over the segment. Columns with no coercible values are omitted
// rather than reported as zeros.
func segmentValues(ds *model.Dataset, cols []schema.Column, idx []int) map[string][]float64 {
	out := make(map[string][]float64)
	for _, col := range cols {
		if col.Type != schema.TypeNumber {
			continue
		}
		var values []float64
		for _, i := range idx {
			if v, ok := ds.Value(i, col.Name).Coerce(); ok {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			out[col.Name] = values
		}
	}
	return out
}

func segmentStats(values map[string][]float64) map[string]Metric {
	out := make(map[string]Metric, len(values))
	for name, v := range values {
		out[name] = Metric{
			N:      len(v),
			Mean:   stats.Mean(v),
			Median: stats.Median(v),
			StdDev: stats.StdDev(v),
			Min:    stats.Min(v),
			Max:    stats.Max(v),
			CI95:   stats.MeanConfidenceInterval(v, 0.95),
		}
	}
	return out
}

// delta computes b relative to a. A zero baseline yields a zero
// percent change when b is also zero, otherwise one hundred.
func delta(a, b float64) Delta {
	d := Delta{Absolute: b - a}
	switch {
	case a != 0:
		d.Percent = (b - a) / a * 100
	case b != 0:
		d.Percent = 100
	}
	return d
}
