package stats

import "math"

// ConfidenceInterval holds an interval estimate for a mean.
type ConfidenceInterval struct {
	Mean       float64 `json:"mean"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Margin     float64 `json:"margin"`
	Confidence float64 `json:"confidence"`
	Critical   float64 `json:"critical"` // z or t value used
}

// MeanConfidenceInterval estimates an interval for the mean at the
// given confidence level (e.g. 0.95). Samples above 30 use the normal
// approximation; smaller samples use the Student-t critical value for
// their exact degrees of freedom. Fewer than two values returns a
// degenerate interval at the mean.
func MeanConfidenceInterval(values []float64, confidence float64) ConfidenceInterval {
	n := len(values)
	m := Mean(values)
	if n < 2 {
		return ConfidenceInterval{Mean: m, Lower: m, Upper: m, Confidence: confidence}
	}
	if confidence <= 0 || confidence >= 1 {
		confidence = 0.95
	}

	se := math.Sqrt(sampleVariance(values) / float64(n))

	var critical float64
	if n > 30 {
		critical = normalQuantile(1 - (1-confidence)/2)
	} else {
		critical = tQuantile(confidence, float64(n-1))
	}

	margin := critical * se
	return ConfidenceInterval{
		Mean:       m,
		Lower:      m - margin,
		Upper:      m + margin,
		Margin:     margin,
		Confidence: confidence,
		Critical:   critical,
	}
}

// SampleSizeTwoProportions returns the per-group sample size needed to
// detect the difference between two proportions at the given
// significance level and power, using the standard normal-approximation
// formula. Equal proportions (no detectable effect) return 0.
func SampleSizeTwoProportions(p1, p2, alpha, power float64) int {
	if p1 == p2 {
		return 0
	}
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.05
	}
	if power <= 0 || power >= 1 {
		power = 0.8
	}

	zAlpha := normalQuantile(1 - alpha/2)
	zBeta := normalQuantile(power)

	diff := p1 - p2
	variance := p1*(1-p1) + p2*(1-p2)

	n := (zAlpha + zBeta) * (zAlpha + zBeta) * variance / (diff * diff)
	return int(math.Ceil(n))
}
