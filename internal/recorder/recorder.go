package recorder

import (
	"time"

	"SignalDesk/internal/model"
)

// RefreshRun summarizes one refresh pass over a timeframe.
type RefreshRun struct {
	Timeframe      model.Timeframe
	SymbolsScanned int
	Failed         int
	Actionable     int
	Duration       time.Duration
	Err            string
}

// Recorder persists classified rows and refresh runs for later analysis.
type Recorder interface {
	RecordBatch(records []model.SignalRecord) error
	RecordRun(run *RefreshRun) error
	Close() error
}
