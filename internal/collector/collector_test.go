package collector

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"SignalDesk/internal/model"
)

var testParams = IndicatorParams{
	StochWindow:  10,
	StochKSmooth: 5,
	StochDSmooth: 3,
	CCIPeriod:    5,
	DMIPeriod:    5,
	SlopePeriod:  3,
}

func syntheticBars(count int) []model.Candle {
	bars := make([]model.Candle, count)
	for i := range bars {
		// Gentle uptrend with a wobble so no window is perfectly flat.
		base := 100 + float64(i) + 2*math.Sin(float64(i)/3)
		bars[i] = model.Candle{
			Time: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open: base, High: base + 2, Low: base - 2, Close: base + 1, Volume: 5000,
		}
	}
	return bars
}

func newTestCollector(bars map[string][]model.Candle) *Collector {
	fetcher := &MockFetcher{
		Bars: map[model.Timeframe]map[string][]model.Candle{
			model.TimeframeDaily: bars,
		},
	}
	return NewCollector(fetcher, testParams, zerolog.Nop())
}

func TestCollectRow(t *testing.T) {
	c := newTestCollector(map[string][]model.Candle{"BTC-USD": syntheticBars(80)})

	row, err := c.CollectRow("BTC-USD", model.TimeframeDaily)
	if err != nil {
		t.Fatalf("CollectRow: %v", err)
	}
	if row.Symbol != "BTC-USD" || row.Timeframe != model.TimeframeDaily {
		t.Errorf("row identity = %s/%s", row.Symbol, row.Timeframe)
	}
	for name, v := range map[string]float64{
		"stoch_k": row.StochK, "stoch_d": row.StochD, "cci": row.CCI,
		"plus_di": row.PlusDI, "minus_di": row.MinusDI, "adx": row.ADX,
		"slope_k": row.SlopeK, "slope_d": row.SlopeD, "close": row.Close,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("field %s is not numeric: %v", name, v)
		}
	}
	if row.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestCollectRow_InsufficientData(t *testing.T) {
	c := newTestCollector(map[string][]model.Candle{"BTC-USD": syntheticBars(8)})
	if _, err := c.CollectRow("BTC-USD", model.TimeframeDaily); err == nil {
		t.Error("expected error for insufficient history")
	}
}

func TestCollectBatch_SkipsFailures(t *testing.T) {
	c := newTestCollector(map[string][]model.Candle{
		"ETH-USD": syntheticBars(80),
		"BTC-USD": syntheticBars(80),
		"BAD-USD": syntheticBars(5),
	})

	rows, failed := c.CollectBatch(context.Background(),
		[]string{"ETH-USD", "MISSING", "BTC-USD", "BAD-USD"}, model.TimeframeDaily)
	if failed != 2 {
		t.Errorf("failed = %d, want 2", failed)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Symbol != "BTC-USD" || rows[1].Symbol != "ETH-USD" {
		t.Errorf("rows not sorted by symbol: %s, %s", rows[0].Symbol, rows[1].Symbol)
	}
}

func TestAggregateBars(t *testing.T) {
	bars := []model.Candle{
		{Open: 1, High: 3, Low: 1, Close: 2, Volume: 10},
		{Open: 2, High: 5, Low: 0.5, Close: 4, Volume: 20},
		{Open: 4, High: 4.5, Low: 3, Close: 3.5, Volume: 5},
		{Open: 3.5, High: 6, Low: 3, Close: 5, Volume: 15},
		{Open: 5, High: 5.5, Low: 4, Close: 4.5, Volume: 8},
	}
	out := aggregateBars(bars, 4)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	first := out[0]
	if first.Open != 1 || first.High != 6 || first.Low != 0.5 || first.Close != 5 || first.Volume != 50 {
		t.Errorf("aggregated bar = %+v", first)
	}
	if out[1].Open != 5 || out[1].Close != 4.5 {
		t.Errorf("trailing partial bar = %+v", out[1])
	}
}
