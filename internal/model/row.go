package model

import (
	"fmt"
	"time"
)

// IndicatorRow is one fully-computed observation for a symbol at a timestamp
// on a given timeframe. Symbol and Timeframe identify the row and are never
// mutated after creation; the numeric fields come straight from the indicator
// pipeline.
type IndicatorRow struct {
	Symbol    string    `json:"symbol"`
	Timeframe Timeframe `json:"timeframe"`
	Timestamp time.Time `json:"timestamp"`
	Close     float64   `json:"close"`

	StochK  float64 `json:"stoch_k"`
	StochD  float64 `json:"stoch_d"`
	CCI     float64 `json:"cci"`
	PlusDI  float64 `json:"plus_di"`
	MinusDI float64 `json:"minus_di"`
	ADX     float64 `json:"adx"`
	SlopeK  float64 `json:"slope_k"`
	SlopeD  float64 `json:"slope_d"`
}

// ADXDisplay renders ADX to one decimal with a sign prefix indicating which
// directional component dominates: "+" when +DI >= -DI, "-" otherwise.
func (r IndicatorRow) ADXDisplay() string {
	sign := "+"
	if r.MinusDI > r.PlusDI {
		sign = "-"
	}
	return fmt.Sprintf("%s%.1f", sign, r.ADX)
}
