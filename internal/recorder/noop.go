package recorder

import "SignalDesk/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordBatch(_ []model.SignalRecord) error { return nil }
func (n *NoopRecorder) RecordRun(_ *RefreshRun) error            { return nil }
func (n *NoopRecorder) Close() error                             { return nil }
