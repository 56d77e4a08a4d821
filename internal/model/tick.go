package model

import "time"

// Tick represents a single market data tick from the Deriv WebSocket feed.
type Tick struct {
	Symbol string    `json:"symbol"`  // provider stream symbol, e.g. "frxEURUSD"
	Quote  float64   `json:"quote"`   // latest quoted price
	TickTS time.Time `json:"tick_ts"` // UTC timestamp
}
