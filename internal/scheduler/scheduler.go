package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"SignalDesk/internal/classifier"
	"SignalDesk/internal/collector"
	"SignalDesk/internal/metrics"
	"SignalDesk/internal/model"
	"SignalDesk/internal/notifier"
	"SignalDesk/internal/recorder"
	"SignalDesk/internal/workbook"
)

// Scheduler runs the refresh pipeline on per-timeframe cron schedules and
// holds the latest classified batch for the query surface.
type Scheduler struct {
	cron       *cron.Cron
	collector  *collector.Collector
	classifier *classifier.Classifier
	workbook   *workbook.Workbook
	recorder   recorder.Recorder
	notifier   *notifier.TelegramNotifier
	metrics    *metrics.Recorder
	symbols    []string
	log        zerolog.Logger
	ctx        context.Context

	mu     sync.RWMutex
	latest map[model.Timeframe][]model.SignalRecord
}

// New creates a Scheduler. symbols may be empty, in which case the universe
// is read from the workbook's symbols sheet on each refresh.
func New(ctx context.Context, col *collector.Collector, cls *classifier.Classifier,
	wb *workbook.Workbook, rec recorder.Recorder, tn *notifier.TelegramNotifier,
	m *metrics.Recorder, symbols []string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		collector:  col,
		classifier: cls,
		workbook:   wb,
		recorder:   rec,
		notifier:   tn,
		metrics:    m,
		symbols:    symbols,
		log:        log,
		ctx:        ctx,
		latest:     make(map[model.Timeframe][]model.SignalRecord),
	}
}

// RegisterAll registers one refresh job per timeframe. An empty cron
// expression disables that timeframe's schedule.
func (s *Scheduler) RegisterAll(schedules map[model.Timeframe]string) error {
	for _, tf := range model.Timeframes {
		expr := schedules[tf]
		if expr == "" {
			continue
		}
		tf := tf
		if _, err := s.cron.AddFunc(expr, func() {
			if err := s.Refresh(tf); err != nil {
				s.log.Error().Err(err).Str("timeframe", string(tf)).Msg("scheduled refresh failed")
			}
		}); err != nil {
			return fmt.Errorf("register %s refresh: %w", tf, err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

// Refresh runs one full pass for a timeframe: collect, classify, persist,
// notify. Safe to call concurrently with scheduled runs.
func (s *Scheduler) Refresh(tf model.Timeframe) error {
	start := time.Now()
	s.log.Info().Str("timeframe", string(tf)).Msg("refresh started")

	symbols := s.symbols
	if len(symbols) == 0 {
		var err error
		symbols, err = s.workbook.Symbols()
		if err != nil {
			s.recordRun(tf, 0, 0, 0, start, err)
			return fmt.Errorf("load symbol universe: %w", err)
		}
	}
	if len(symbols) == 0 {
		s.log.Warn().Str("timeframe", string(tf)).Msg("no symbols configured, nothing to do")
		s.recordRun(tf, 0, 0, 0, start, nil)
		return nil
	}

	rows, failed := s.collector.CollectBatch(s.ctx, symbols, tf)
	if failed > 0 && s.metrics != nil {
		for i := 0; i < failed; i++ {
			s.metrics.FetchError(string(tf))
		}
	}

	records, err := s.classifier.ClassifyBatch(rows)
	if err != nil {
		s.recordRun(tf, len(symbols), failed, 0, start, err)
		return fmt.Errorf("classify %s: %w", tf, err)
	}

	if s.metrics != nil {
		for _, rec := range records {
			s.metrics.RowClassified(string(tf), string(rec.Signal))
		}
	}

	if err := s.recorder.RecordBatch(records); err != nil {
		s.log.Error().Err(err).Msg("record signal history")
	}

	actionable := make([]model.SignalRecord, 0, len(records))
	for _, rec := range records {
		if rec.Signal.Actionable() {
			actionable = append(actionable, rec)
		}
	}

	// The workbook only carries actionable rows, like the synthesis sheet
	// this replaces. Notes recovered from the sheet flow back into the
	// in-memory snapshot.
	if len(actionable) > 0 {
		merged, err := s.workbook.UpsertSignals(tf, actionable)
		if err != nil {
			s.log.Error().Err(err).Str("timeframe", string(tf)).Msg("workbook upsert failed")
		} else {
			notes := make(map[string]string, len(merged))
			for _, rec := range merged {
				if rec.Note != "" {
					notes[rec.Row.Symbol+"|"+string(rec.Signal)] = rec.Note
				}
			}
			for i := range records {
				if n, ok := notes[records[i].Row.Symbol+"|"+string(records[i].Signal)]; ok {
					records[i].Note = n
				}
			}
		}
	}

	s.mu.Lock()
	s.latest[tf] = records
	s.mu.Unlock()

	if s.notifier != nil && s.notifier.Enabled() {
		if msg := notifier.FormatRefreshReport(tf, records); msg != "" {
			if err := s.notifier.SendWithRetry(s.ctx, msg, 3); err != nil {
				s.log.Error().Err(err).Msg("send refresh report")
			}
		}
	}

	if s.metrics != nil {
		s.metrics.RefreshObserved(string(tf), time.Since(start).Seconds())
	}
	s.recordRun(tf, len(symbols), failed, len(actionable), start, nil)

	s.log.Info().Str("timeframe", string(tf)).
		Int("symbols", len(symbols)).Int("failed", failed).
		Int("actionable", len(actionable)).
		Dur("took", time.Since(start)).Msg("refresh finished")
	return nil
}

func (s *Scheduler) recordRun(tf model.Timeframe, scanned, failed, actionable int, start time.Time, runErr error) {
	run := &recorder.RefreshRun{
		Timeframe:      tf,
		SymbolsScanned: scanned,
		Failed:         failed,
		Actionable:     actionable,
		Duration:       time.Since(start),
	}
	if runErr != nil {
		run.Err = runErr.Error()
	}
	if err := s.recorder.RecordRun(run); err != nil {
		s.log.Error().Err(err).Msg("record refresh run")
	}
}

// Latest returns a copy of the most recent classified batch for a timeframe.
func (s *Scheduler) Latest(tf model.Timeframe) []model.SignalRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.latest[tf]
	out := make([]model.SignalRecord, len(records))
	copy(out, records)
	return out
}

// HandleCommand processes a Telegram command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}

	switch fields[0] {
	case "/signals":
		tf := model.TimeframeDaily
		if len(fields) > 1 {
			parsed, err := model.ParseTimeframe(fields[1])
			if err != nil {
				return fmt.Sprintf("unknown timeframe %q", fields[1])
			}
			tf = parsed
		}
		return notifier.FormatSignalList(tf, s.Latest(tf))
	case "/refresh":
		tf := model.TimeframeDaily
		if len(fields) > 1 {
			parsed, err := model.ParseTimeframe(fields[1])
			if err != nil {
				return fmt.Sprintf("unknown timeframe %q", fields[1])
			}
			tf = parsed
		}
		go func() {
			if err := s.Refresh(tf); err != nil {
				s.log.Error().Err(err).Msg("manual refresh failed")
			}
		}()
		return fmt.Sprintf("refresh of %s started", tf)
	default:
		return helpText
	}
}

const helpText = "commands:\n• /signals [monthly|weekly|daily|4h]\n• /refresh [monthly|weekly|daily|4h]"
