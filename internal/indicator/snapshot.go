// Package indicator provides the momentum calculations the signal pipeline
// runs on each poll. All functions are pure: they take a price window and
// return values, keeping no state between calls.
package indicator

// Snapshot is a transient view of the indicators for one instrument,
// computed fresh on every poll and never cached.
type Snapshot struct {
	RSI   float64
	EMA   float64
	Price float64 // latest sample in the window
	Ready bool    // false until the window holds at least period samples
}

// Compute derives a Snapshot from a price window. Ready is false when the
// window is shorter than period; callers must treat that as "no data yet",
// not an error.
func Compute(prices []float64, period int) Snapshot {
	rsi, okRSI := RSI(prices, period)
	ema, okEMA := EMA(prices, period)
	if !okRSI || !okEMA {
		return Snapshot{}
	}
	return Snapshot{
		RSI:   rsi,
		EMA:   ema,
		Price: prices[len(prices)-1],
		Ready: true,
	}
}
