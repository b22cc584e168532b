package stats

import "math"

// CorrelationResult holds a Pearson correlation with its significance
// test.
type CorrelationResult struct {
	R           float64 `json:"r"`
	N           int     `json:"n"`
	Strength    string  `json:"strength"`
	TStatistic  float64 `json:"t_statistic"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
}

// Correlate computes the Pearson correlation of two equal-length
// series, paired with a two-sided significance test via the t
// statistic r*sqrt(n-2)/sqrt(1-r^2). Fewer than three pairs or a zero
// variance yields the neutral result (r=0, p=1).
func Correlate(x, y []float64) CorrelationResult {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	neutral := CorrelationResult{N: n, Strength: "none", PValue: 1}
	if n < 3 {
		return neutral
	}

	mx := Mean(x[:n])
	my := Mean(y[:n])

	var cov, vx, vy float64
	for i := 0; i < n; i++ {
		dx := x[i] - mx
		dy := y[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return neutral
	}

	r := cov / math.Sqrt(vx*vy)
	if r > 1 {
		r = 1
	}
	if r < -1 {
		r = -1
	}

	result := CorrelationResult{
		R:        r,
		N:        n,
		Strength: strengthLabel(r),
	}

	if math.Abs(r) >= 1 {
		result.PValue = 0
		result.Significant = true
		result.TStatistic = math.Inf(1)
		if r < 0 {
			result.TStatistic = math.Inf(-1)
		}
		return result
	}

	df := float64(n - 2)
	t := r * math.Sqrt(df) / math.Sqrt(1-r*r)
	result.TStatistic = t
	result.PValue = tTwoSidedP(t, df)
	result.Significant = result.PValue < 0.05
	return result
}

// strengthLabel buckets |r| into the standard descriptive labels.
func strengthLabel(r float64) string {
	abs := math.Abs(r)
	switch {
	case abs < 0.3:
		return "weak"
	case abs < 0.5:
		return "moderate"
	case abs < 0.7:
		return "strong"
	default:
		return "very strong"
	}
}
