// Package signal classifies indicator snapshots into discrete trading
// signals and the subscriber-facing text that goes with them.
package signal

import (
	"fmt"

	"forex-botv1/internal/indicator"
)

// Signal is the discrete market-state classification for one instrument.
type Signal string

const (
	Buy       Signal = "BUY"
	Sell      Signal = "SELL"
	LowerRisk Signal = "LOWER_RISK"
	None      Signal = "NONE" // insufficient data, no recommendation yet
)

// Result carries a classification plus the alert text and the visual tag
// ("buy" or "sell") selecting the image asset. Visual is empty for None.
type Result struct {
	Signal      Signal
	Description string
	Visual      string
	Price       float64
}

// Ready reports whether the result carries an actual classification.
func (r Result) Ready() bool {
	return r.Signal != None && r.Signal != ""
}

// Classify maps an indicator snapshot to a Result. Pure and stateless:
// identical inputs always yield identical output.
func Classify(pair string, snap indicator.Snapshot) Result {
	if !snap.Ready {
		return Result{Signal: None}
	}

	switch {
	case snap.RSI < 30 && snap.Price > snap.EMA:
		return Result{
			Signal:      Buy,
			Description: fmt.Sprintf("💹 Strong Buy for %s\nRSI=%.2f, EMA=%.5f", pair, snap.RSI, snap.EMA),
			Visual:      "buy",
			Price:       snap.Price,
		}
	case snap.RSI > 70 && snap.Price < snap.EMA:
		return Result{
			Signal:      Sell,
			Description: fmt.Sprintf("📉 Strong Sell for %s\nRSI=%.2f, EMA=%.5f", pair, snap.RSI, snap.EMA),
			Visual:      "sell",
			Price:       snap.Price,
		}
	default:
		// Risk-lean heuristic only: the visual hints at the side RSI leans
		// toward, it is not a trade direction.
		visual := "sell"
		if snap.RSI < 50 {
			visual = "buy"
		}
		return Result{
			Signal:      LowerRisk,
			Description: fmt.Sprintf("⚪ Lower-Risk Trade for %s\nRSI=%.2f, EMA=%.5f", pair, snap.RSI, snap.EMA),
			Visual:      visual,
			Price:       snap.Price,
		}
	}
}
