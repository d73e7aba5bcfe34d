package collector

import (
	"fmt"

	"SignalDesk/internal/model"
)

// Fetcher retrieves candle history for a symbol at a given timeframe.
type Fetcher interface {
	FetchBars(symbol string, tf model.Timeframe) ([]model.Candle, error)
	Name() string
}

// fetchSpec maps a timeframe to the upstream interval, the history range to
// request, and how many upstream bars fold into one output bar.
type fetchSpec struct {
	interval  string
	rng       string
	aggregate int
}

var fetchSpecs = map[model.Timeframe]fetchSpec{
	model.TimeframeMonthly: {interval: "1mo", rng: "max", aggregate: 1},
	model.TimeframeWeekly:  {interval: "1wk", rng: "5y", aggregate: 1},
	model.TimeframeDaily:   {interval: "1d", rng: "1y", aggregate: 1},
	// Upstream APIs stop at hourly; 4h bars are folded locally.
	model.Timeframe4h: {interval: "1h", rng: "3mo", aggregate: 4},
}

func specFor(tf model.Timeframe) (fetchSpec, error) {
	spec, ok := fetchSpecs[tf]
	if !ok {
		return fetchSpec{}, fmt.Errorf("no fetch spec for timeframe %q", tf)
	}
	return spec, nil
}

// aggregateBars folds consecutive groups of n bars into one, taking the first
// open, max high, min low, last close and summed volume. A trailing partial
// group becomes the final, still-forming bar.
func aggregateBars(bars []model.Candle, n int) []model.Candle {
	if n <= 1 || len(bars) == 0 {
		return bars
	}
	out := make([]model.Candle, 0, (len(bars)+n-1)/n)
	for start := 0; start < len(bars); start += n {
		end := start + n
		if end > len(bars) {
			end = len(bars)
		}
		agg := bars[start]
		for _, b := range bars[start+1 : end] {
			if b.High > agg.High {
				agg.High = b.High
			}
			if b.Low < agg.Low {
				agg.Low = b.Low
			}
			agg.Close = b.Close
			agg.Volume += b.Volume
		}
		out = append(out, agg)
	}
	return out
}

// MockFetcher returns canned bars for development and testing.
type MockFetcher struct {
	Bars map[model.Timeframe]map[string][]model.Candle
	Err  error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(symbol string, tf model.Timeframe) ([]model.Candle, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	bySymbol, ok := m.Bars[tf]
	if !ok {
		return nil, fmt.Errorf("mock: no data for timeframe %s", tf)
	}
	bars, ok := bySymbol[symbol]
	if !ok {
		return nil, fmt.Errorf("mock: no data for %s %s", symbol, tf)
	}
	return bars, nil
}
