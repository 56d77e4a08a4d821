package model

import "strings"

// Instrument represents a supported forex pair on the Deriv feed.
type Instrument struct {
	Symbol string `json:"symbol"` // provider stream identifier, e.g. "frxEURUSD"
}

// Display returns the human-readable pair name, e.g. "EURUSD".
func (i Instrument) Display() string {
	return strings.TrimPrefix(i.Symbol, "frx")
}
