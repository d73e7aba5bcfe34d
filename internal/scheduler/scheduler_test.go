package scheduler

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"SignalDesk/internal/classifier"
	"SignalDesk/internal/collector"
	"SignalDesk/internal/model"
	"SignalDesk/internal/recorder"
	"SignalDesk/internal/workbook"
)

func trendBars(n int) []model.Candle {
	bars := make([]model.Candle, n)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		price := 100 + float64(i) + 3*math.Sin(float64(i)/2)
		bars[i] = model.Candle{
			Time:   base.AddDate(0, 0, i),
			Open:   price - 0.5,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 1000,
		}
	}
	return bars
}

func testScheduler(t *testing.T) *Scheduler {
	t.Helper()

	fetcher := &collector.MockFetcher{
		Bars: map[model.Timeframe]map[string][]model.Candle{
			model.TimeframeDaily: {
				"BTC-USD": trendBars(60),
				"ETH-USD": trendBars(60),
			},
		},
	}
	params := collector.IndicatorParams{
		StochWindow:  10,
		StochKSmooth: 5,
		StochDSmooth: 3,
		CCIPeriod:    5,
		DMIPeriod:    5,
		SlopePeriod:  3,
	}
	col := collector.NewCollector(fetcher, params, zerolog.Nop())

	cls, err := classifier.New(0.1)
	if err != nil {
		t.Fatalf("classifier: %v", err)
	}

	wb := workbook.Open(filepath.Join(t.TempDir(), "synthesis.xlsx"), "symbols")

	return New(context.Background(), col, cls, wb, recorder.NewNoopRecorder(), nil,
		nil, []string{"BTC-USD", "ETH-USD"}, zerolog.Nop())
}

func TestRefreshPopulatesLatest(t *testing.T) {
	s := testScheduler(t)

	if err := s.Refresh(model.TimeframeDaily); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	records := s.Latest(model.TimeframeDaily)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Row.Symbol != "BTC-USD" || records[1].Row.Symbol != "ETH-USD" {
		t.Errorf("records not sorted by symbol: %s, %s",
			records[0].Row.Symbol, records[1].Row.Symbol)
	}
	for _, rec := range records {
		if rec.Signal == "" {
			t.Errorf("%s: empty signal", rec.Row.Symbol)
		}
	}
}

func TestLatestReturnsCopy(t *testing.T) {
	s := testScheduler(t)
	if err := s.Refresh(model.TimeframeDaily); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	first := s.Latest(model.TimeframeDaily)
	first[0].Note = "mutated"
	second := s.Latest(model.TimeframeDaily)
	if second[0].Note == "mutated" {
		t.Error("Latest should return a copy, not the shared slice")
	}
}

func TestLatestUnknownTimeframe(t *testing.T) {
	s := testScheduler(t)
	if records := s.Latest(model.TimeframeWeekly); len(records) != 0 {
		t.Errorf("expected no records before any refresh, got %d", len(records))
	}
}

func TestHandleCommand(t *testing.T) {
	s := testScheduler(t)
	if err := s.Refresh(model.TimeframeDaily); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	reply := s.HandleCommand("/signals daily")
	if !strings.Contains(reply, "BTC-USD") {
		t.Errorf("expected signal list to mention BTC-USD, got:\n%s", reply)
	}

	if reply := s.HandleCommand("/signals hourly"); !strings.Contains(reply, "unknown timeframe") {
		t.Errorf("expected unknown timeframe reply, got %q", reply)
	}

	if reply := s.HandleCommand("/help"); !strings.Contains(reply, "/signals") {
		t.Errorf("expected help text, got %q", reply)
	}
}
