package indicator

import "math"

// EMA computes a fixed-window exponentially weighted average of the last
// period prices. The weight vector is exp(linspace(-1, 0, period)),
// L1-normalized, so the newest sample carries the heaviest weight (e^0).
// This is a single weighted dot product, not a running/recursive EMA.
//
// ok is false when fewer than period samples are available.
func EMA(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}

	weights := emaWeights(period)
	window := prices[len(prices)-period:]

	var ema float64
	for i, p := range window {
		ema += p * weights[i]
	}
	return ema, true
}

// emaWeights returns the normalized exponential weight vector for period.
func emaWeights(period int) []float64 {
	weights := make([]float64, period)
	var sum float64
	for i := range weights {
		x := -1.0
		if period > 1 {
			// linspace(-1, 0, period)
			x = -1.0 + float64(i)/float64(period-1)
		}
		weights[i] = math.Exp(x)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}
