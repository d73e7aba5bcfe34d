package notifier

import (
	"strings"
	"testing"
	"time"

	"SignalDesk/internal/model"
)

func sampleRecord(symbol string, signal model.Signal) model.SignalRecord {
	return model.SignalRecord{
		Row: model.IndicatorRow{
			Symbol:    symbol,
			Timeframe: model.TimeframeDaily,
			Timestamp: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
			Close:     50000.12,
			StochK:    30.5, StochD: 20.4, CCI: -120.3,
			PlusDI: 25, MinusDI: 20, ADX: 25.66,
			SlopeK: 0.8, SlopeD: 0.7,
		},
		Signal: signal,
	}
}

func TestFormatRefreshReport(t *testing.T) {
	records := []model.SignalRecord{
		sampleRecord("BTC-USD", model.SignalStrongBuy),
		sampleRecord("ETH-USD", model.SignalNone),
	}

	msg := FormatRefreshReport(model.TimeframeDaily, records)
	if !strings.Contains(msg, "BTC-USD") {
		t.Error("report should mention the actionable symbol")
	}
	if strings.Contains(msg, "ETH-USD") {
		t.Error("report should omit non-actionable rows")
	}
	if !strings.Contains(msg, "Buy+") {
		t.Error("report should carry the signal label")
	}
	if !strings.Contains(msg, "ADX=+25.7") {
		t.Errorf("report should show signed ADX, got:\n%s", msg)
	}
}

func TestFormatRefreshReport_NothingActionable(t *testing.T) {
	records := []model.SignalRecord{sampleRecord("ETH-USD", model.SignalNone)}
	if msg := FormatRefreshReport(model.TimeframeDaily, records); msg != "" {
		t.Errorf("expected empty report, got %q", msg)
	}
}

func TestFormatSignalList(t *testing.T) {
	rec := sampleRecord("BTC-USD", model.SignalBuy)
	rec.Note = "keep an eye on volume"

	msg := FormatSignalList(model.TimeframeWeekly, []model.SignalRecord{rec})
	if !strings.Contains(msg, "BTC-USD") || !strings.Contains(msg, "keep an eye on volume") {
		t.Errorf("list should include symbol and note, got:\n%s", msg)
	}

	empty := FormatSignalList(model.TimeframeWeekly, nil)
	if !strings.Contains(empty, "no data yet") {
		t.Errorf("empty list message unexpected: %q", empty)
	}
}
