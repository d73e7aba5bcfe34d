package model

import (
	"fmt"
	"time"
)

// Timeframe identifies the bar interval a series was built from.
type Timeframe string

const (
	TimeframeMonthly Timeframe = "monthly"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeDaily   Timeframe = "daily"
	Timeframe4h      Timeframe = "4h"
)

// Timeframes lists all supported timeframes, coarsest first.
var Timeframes = []Timeframe{TimeframeMonthly, TimeframeWeekly, TimeframeDaily, Timeframe4h}

// ParseTimeframe converts a string into a Timeframe.
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case TimeframeMonthly, TimeframeWeekly, TimeframeDaily, Timeframe4h:
		return Timeframe(s), nil
	}
	return "", fmt.Errorf("unknown timeframe %q", s)
}

// Candle represents a single OHLCV bar.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// CandleSeries holds raw bars for one symbol on one timeframe.
type CandleSeries struct {
	Symbol    string
	Timeframe Timeframe
	Bars      []Candle
	FetchedAt time.Time
}
