package indicator

// RSI computes the Relative Strength Index over the supplied price window.
//
// This is the simplified non-Wilder variant the bot has always used: deltas
// across the whole window, gain and loss sums each divided by the period,
// no smoothing. Kept bit-for-bit compatible with the historical behavior
// rather than the textbook smoothed formula.
//
// ok is false when fewer than period samples are available.
func RSI(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}

	var gains, losses float64
	for i := 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	gains /= float64(period)
	losses /= float64(period)

	// All-gain window: RSI pegs at 100 (also avoids dividing by zero).
	if losses == 0 {
		return 100, true
	}
	rs := gains / losses
	return 100 - 100/(1+rs), true
}
