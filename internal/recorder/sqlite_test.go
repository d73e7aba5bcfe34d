package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"SignalDesk/internal/model"
)

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	r, err := NewSQLiteRecorder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	defer r.Close()

	records := []model.SignalRecord{
		{
			Row: model.IndicatorRow{
				Symbol: "BTC-USD", Timeframe: model.TimeframeDaily,
				Timestamp: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
				Close:     50000, StochK: 30, StochD: 20, CCI: -120,
				PlusDI: 25, MinusDI: 20, ADX: 25, SlopeK: 0.8, SlopeD: 0.7,
			},
			Signal: model.SignalStrongBuy,
		},
		{
			Row: model.IndicatorRow{
				Symbol: "ETH-USD", Timeframe: model.TimeframeDaily,
				Timestamp: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
				Close:     3000, StochK: 50, StochD: 50, CCI: 0,
				PlusDI: 20, MinusDI: 20, ADX: 10, SlopeK: 0, SlopeD: 0,
			},
			Signal: model.SignalNone,
		},
	}
	if err := r.RecordBatch(records); err != nil {
		t.Fatalf("RecordBatch: %v", err)
	}

	if err := r.RecordRun(&RefreshRun{
		Timeframe:      model.TimeframeDaily,
		SymbolsScanned: 2,
		Actionable:     1,
		Duration:       1200 * time.Millisecond,
	}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM signal_history").Scan(&count); err != nil {
		t.Fatalf("count history: %v", err)
	}
	if count != 2 {
		t.Errorf("signal_history rows = %d, want 2", count)
	}

	var signal string
	if err := r.db.QueryRow(
		"SELECT signal FROM signal_history WHERE symbol = ?", "BTC-USD").Scan(&signal); err != nil {
		t.Fatalf("query signal: %v", err)
	}
	if signal != "Buy+" {
		t.Errorf("stored signal = %q, want Buy+", signal)
	}

	var runs int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM refresh_runs").Scan(&runs); err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if runs != 1 {
		t.Errorf("refresh_runs rows = %d, want 1", runs)
	}
}

func TestSQLiteRecorder_EmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	r, err := NewSQLiteRecorder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	defer r.Close()

	if err := r.RecordBatch(nil); err != nil {
		t.Errorf("empty batch should be a no-op, got %v", err)
	}
}
