package profile

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/Sumee7/project1autoinsight/internal/model"
	"github.com/Sumee7/project1autoinsight/pkg/schema"
	"github.com/Sumee7/project1autoinsight/pkg/stats"
)

// Anomaly flags a value whose z-score exceeds the threshold.
type Anomaly struct {
	Value    float64 `json:"value"`
	ZScore   float64 `json:"z_score"`
	Severity string  `json:"severity"` // low | medium | high
}

// IQROutliers returns the values falling outside the Tukey fences
// Q1 - k*IQR and Q3 + k*IQR. Values exactly on a fence are not
// outliers; the inequality is strict.
func (p *Profiler) IQROutliers(values []float64) []float64 {
	if len(values) < 4 {
		return nil
	}
	k := p.Outliers.IQRMultiplier
	if k <= 0 {
		k = 1.5
	}

	q1, q3 := stats.Quartiles(values)
	iqr := q3 - q1
	lower := q1 - k*iqr
	upper := q3 + k*iqr

	var out []float64
	for _, v := range values {
		if v < lower || v > upper {
			out = append(out, v)
		}
	}
	return out
}

// ZAnomalies flags values with |z| above the configured threshold,
// with severity tiers at |z| > 3.5 (high) and |z| > 3 (medium).
func (p *Profiler) ZAnomalies(values []float64) []Anomaly {
	threshold := p.Outliers.ZThreshold
	if threshold <= 0 {
		threshold = 2.5
	}

	var out []Anomaly
	for i, z := range stats.ZScores(values) {
		abs := math.Abs(z)
		if abs <= threshold {
			continue
		}
		severity := "low"
		switch {
		case abs > 3.5:
			severity = "high"
		case abs > 3:
			severity = "medium"
		}
		out = append(out, Anomaly{Value: values[i], ZScore: z, Severity: severity})
	}
	return out
}

// ColumnPair names a correlated pair of numeric columns.
type ColumnPair struct {
	ColumnA string                  `json:"column_a"`
	ColumnB string                  `json:"column_b"`
	Result  stats.CorrelationResult `json:"result"`
}

// Correlations computes pairwise Pearson correlations across all
// numeric columns. Pairs are independent, so the computation fans out
// across an errgroup and merges in deterministic pair order.
func (p *Profiler) Correlations(ctx context.Context, ds *model.Dataset, cols []schema.Column) ([]ColumnPair, error) {
	var numeric []string
	for _, c := range cols {
		if c.Type == schema.TypeNumber {
			numeric = append(numeric, c.Name)
		}
	}
	if len(numeric) < 2 {
		return nil, nil
	}

	var pairs []ColumnPair
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			pairs = append(pairs, ColumnPair{ColumnA: numeric[i], ColumnB: numeric[j]})
		}
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range pairs {
		i := i
		g.Go(func() error {
			a, b := alignedPair(ds, pairs[i].ColumnA, pairs[i].ColumnB)
			pairs[i].Result = stats.Correlate(a, b)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// alignedPair extracts rows where both columns hold numbers, keeping
// positional pairing intact.
func alignedPair(ds *model.Dataset, colA, colB string) (a, b []float64) {
	for i := 0; i < ds.NumRows(); i++ {
		va, okA := ds.Value(i, colA).Float()
		vb, okB := ds.Value(i, colB).Float()
		if okA && okB {
			a = append(a, va)
			b = append(b, vb)
		}
	}
	return a, b
}
