package model

// Signal is the classification of an IndicatorRow. It is derived, stateless,
// and recomputed from the row each time rather than persisted on its own.
type Signal string

const (
	SignalStrongBuy  Signal = "Buy+"
	SignalBuy        Signal = "Buy"
	SignalStrongSell Signal = "Sell+"
	SignalSell       Signal = "Sell"
	SignalNone       Signal = "None"
)

// Actionable reports whether the signal calls for attention at all.
func (s Signal) Actionable() bool { return s != SignalNone && s != "" }

// Bullish reports whether the signal is on the buy side.
func (s Signal) Bullish() bool { return s == SignalBuy || s == SignalStrongBuy }

// Bearish reports whether the signal is on the sell side.
func (s Signal) Bearish() bool { return s == SignalSell || s == SignalStrongSell }

// SignalRecord pairs a row with its derived signal and the user's free-text
// note, the shape handed to the persistence and display collaborators.
type SignalRecord struct {
	Row    IndicatorRow `json:"row"`
	Signal Signal       `json:"signal"`
	Note   string       `json:"note,omitempty"`
}
