package collector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"SignalDesk/internal/calculator"
	"SignalDesk/internal/model"
)

// IndicatorParams holds the lookback periods for the indicator pipeline.
type IndicatorParams struct {
	StochWindow  int
	StochKSmooth int
	StochDSmooth int
	CCIPeriod    int
	DMIPeriod    int
	SlopePeriod  int
}

// maxWorkers bounds concurrent symbol scans within a batch.
const maxWorkers = 4

// Collector fetches candles and computes one fully-populated indicator row
// per (symbol, timeframe).
type Collector struct {
	fetcher Fetcher
	params  IndicatorParams
	log     zerolog.Logger
}

// NewCollector creates a Collector.
func NewCollector(fetcher Fetcher, params IndicatorParams, log zerolog.Logger) *Collector {
	return &Collector{fetcher: fetcher, params: params, log: log}
}

// CollectRow fetches history for one symbol and computes its latest indicator
// row on the given timeframe. All eight numeric fields are populated before
// the row is returned; rows that never fully form are an error.
func (c *Collector) CollectRow(symbol string, tf model.Timeframe) (*model.IndicatorRow, error) {
	bars, err := c.fetcher.FetchBars(symbol, tf)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", symbol, tf, err)
	}

	k, d, err := calculator.Stochastic(bars, c.params.StochWindow, c.params.StochKSmooth, c.params.StochDSmooth)
	if err != nil {
		return nil, fmt.Errorf("stochastic %s %s: %w", symbol, tf, err)
	}
	cci, err := calculator.CCI(bars, c.params.CCIPeriod)
	if err != nil {
		return nil, fmt.Errorf("cci %s %s: %w", symbol, tf, err)
	}
	plusDI, minusDI, adx, err := calculator.DMI(bars, c.params.DMIPeriod)
	if err != nil {
		return nil, fmt.Errorf("dmi %s %s: %w", symbol, tf, err)
	}

	// Walk back to the newest bar where every series has a value.
	last := -1
	for i := len(bars) - 1; i >= 0; i-- {
		if !math.IsNaN(k[i]) && !math.IsNaN(d[i]) && !math.IsNaN(cci[i]) &&
			!math.IsNaN(plusDI[i]) && !math.IsNaN(minusDI[i]) && !math.IsNaN(adx[i]) {
			last = i
			break
		}
	}
	if last < 0 {
		return nil, fmt.Errorf("%s %s: no fully-formed indicator row", symbol, tf)
	}

	slopeK, err := calculator.Slope(k[:last+1], c.params.SlopePeriod)
	if err != nil {
		return nil, fmt.Errorf("slope K %s %s: %w", symbol, tf, err)
	}
	slopeD, err := calculator.Slope(d[:last+1], c.params.SlopePeriod)
	if err != nil {
		return nil, fmt.Errorf("slope D %s %s: %w", symbol, tf, err)
	}

	return &model.IndicatorRow{
		Symbol:    symbol,
		Timeframe: tf,
		Timestamp: bars[last].Time,
		Close:     bars[last].Close,
		StochK:    k[last],
		StochD:    d[last],
		CCI:       cci[last],
		PlusDI:    plusDI[last],
		MinusDI:   minusDI[last],
		ADX:       adx[last],
		SlopeK:    slopeK,
		SlopeD:    slopeD,
	}, nil
}

// CollectBatch computes indicator rows for all symbols on one timeframe.
// Symbols are independent, so scans run concurrently with a bounded worker
// count. Symbols that fail to fetch or never form a complete row are skipped
// with a warning; the error count is returned alongside the rows.
func (c *Collector) CollectBatch(ctx context.Context, symbols []string, tf model.Timeframe) ([]model.IndicatorRow, int) {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		rows   = make([]model.IndicatorRow, 0, len(symbols))
		failed int
	)
	sem := make(chan struct{}, maxWorkers)

	for _, symbol := range symbols {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(symbol string) {
			defer wg.Done()
			defer func() { <-sem }()

			row, err := c.CollectRow(symbol, tf)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				c.log.Warn().Err(err).Str("symbol", symbol).Str("timeframe", string(tf)).
					Msg("skipping symbol")
				return
			}
			rows = append(rows, *row)
		}(symbol)
	}
	wg.Wait()

	// Batch order carries no meaning, but deterministic output simplifies
	// downstream diffing and tests.
	sort.Slice(rows, func(i, j int) bool { return rows[i].Symbol < rows[j].Symbol })
	return rows, failed
}
