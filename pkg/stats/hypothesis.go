package stats

import "math"

// TTestResult holds an independent two-sample t-test.
type TTestResult struct {
	TStatistic   float64 `json:"t_statistic"`
	DF           float64 `json:"df"`
	PValue       float64 `json:"p_value"`
	Significant  bool    `json:"significant"`
	CohensD      float64 `json:"cohens_d"`
	EffectSize   string  `json:"effect_size"`
	MeanA        float64 `json:"mean_a"`
	MeanB        float64 `json:"mean_b"`
	Insufficient bool    `json:"insufficient_data"`
}

// TTest runs an independent two-sample t-test with pooled variance and
// a Cohen's d effect size. Either side having fewer than two values
// short-circuits to the insufficient-data sentinel (t=0, p=1) rather
// than NaN.
func TTest(a, b []float64) TTestResult {
	if len(a) < 2 || len(b) < 2 {
		return TTestResult{PValue: 1, EffectSize: "insufficient data", Insufficient: true,
			MeanA: Mean(a), MeanB: Mean(b)}
	}

	na := float64(len(a))
	nb := float64(len(b))
	ma := Mean(a)
	mb := Mean(b)
	va := sampleVariance(a)
	vb := sampleVariance(b)

	df := na + nb - 2
	pooled := ((na-1)*va + (nb-1)*vb) / df
	if pooled == 0 {
		// Identical constant samples: no detectable difference.
		return TTestResult{DF: df, PValue: 1, EffectSize: "negligible", MeanA: ma, MeanB: mb}
	}

	se := math.Sqrt(pooled * (1/na + 1/nb))
	t := (ma - mb) / se
	p := tTwoSidedP(t, df)

	d := (ma - mb) / math.Sqrt(pooled)

	return TTestResult{
		TStatistic:  t,
		DF:          df,
		PValue:      p,
		Significant: p < 0.05,
		CohensD:     d,
		EffectSize:  effectSizeLabel(d),
		MeanA:       ma,
		MeanB:       mb,
	}
}

// effectSizeLabel interprets Cohen's d at the conventional thresholds.
func effectSizeLabel(d float64) string {
	abs := math.Abs(d)
	switch {
	case abs < 0.2:
		return "negligible"
	case abs < 0.5:
		return "small"
	case abs < 0.8:
		return "medium"
	default:
		return "large"
	}
}

// ChiSquareResult holds a goodness-of-fit test.
type ChiSquareResult struct {
	Statistic   float64 `json:"statistic"`
	DF          int     `json:"df"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
	Insufficient bool   `json:"insufficient_data"`
}

// ChiSquare runs a goodness-of-fit test: sum((observed-expected)^2 /
// expected), df = k-1. Mismatched lengths, fewer than two categories,
// or a non-positive expected count yield the insufficient-data
// sentinel.
func ChiSquare(observed, expected []float64) ChiSquareResult {
	k := len(observed)
	if k < 2 || len(expected) != k {
		return ChiSquareResult{PValue: 1, Insufficient: true}
	}

	var stat float64
	for i := 0; i < k; i++ {
		if expected[i] <= 0 {
			return ChiSquareResult{PValue: 1, Insufficient: true}
		}
		d := observed[i] - expected[i]
		stat += d * d / expected[i]
	}

	df := k - 1
	p := chiSquareSurvival(stat, float64(df))

	return ChiSquareResult{
		Statistic:   stat,
		DF:          df,
		PValue:      p,
		Significant: p < 0.05,
	}
}
