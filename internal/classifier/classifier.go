package classifier

import (
	"errors"
	"fmt"
	"math"

	"SignalDesk/internal/model"
)

var (
	// ErrInvalidThreshold is returned when the slope significance threshold
	// is negative or not a number. Surfaced at configuration time, not per-row.
	ErrInvalidThreshold = errors.New("invalid slope threshold")

	// ErrIncompleteRow is returned when a required numeric field of a row is
	// missing or non-numeric. No signal is assigned for such rows.
	ErrIncompleteRow = errors.New("incomplete indicator row")
)

// Classifier maps indicator rows to signals. It is a pure function over the
// row fields plus the configured slope significance threshold: no hidden
// state, safe for concurrent use over independent rows.
type Classifier struct {
	slopeThreshold float64
}

// New creates a Classifier with the given slope significance threshold.
func New(slopeThreshold float64) (*Classifier, error) {
	if math.IsNaN(slopeThreshold) || slopeThreshold < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, slopeThreshold)
	}
	return &Classifier{slopeThreshold: slopeThreshold}, nil
}

// Threshold returns the configured slope significance threshold.
func (c *Classifier) Threshold() float64 { return c.slopeThreshold }

// Classify maps one row to exactly one signal.
//
// Rules, first match wins, all comparisons strict unless noted:
//
//	Buy+   K > D, CCI < -100, +DI >= -DI, ADX > 20, |slopeK| and |slopeD| > threshold
//	Buy    K > D, CCI < -100
//	Sell+  K < D, CCI > 100, -DI > +DI, ADX > 20, |slopeK| and |slopeD| > threshold
//	Sell   K < D, CCI > 100
//	None   otherwise
//
// K == D is neither bullish nor bearish, and ties at CCI == ±100 or
// ADX == 20 do not qualify.
func (c *Classifier) Classify(row model.IndicatorRow) (model.Signal, error) {
	if err := checkComplete(row); err != nil {
		return "", err
	}

	slopesSignificant := math.Abs(row.SlopeK) > c.slopeThreshold &&
		math.Abs(row.SlopeD) > c.slopeThreshold

	switch {
	case row.StochK > row.StochD && row.CCI < -100:
		if row.PlusDI >= row.MinusDI && row.ADX > 20 && slopesSignificant {
			return model.SignalStrongBuy, nil
		}
		return model.SignalBuy, nil
	case row.StochK < row.StochD && row.CCI > 100:
		if row.MinusDI > row.PlusDI && row.ADX > 20 && slopesSignificant {
			return model.SignalStrongSell, nil
		}
		return model.SignalSell, nil
	}
	return model.SignalNone, nil
}

// ClassifyBatch classifies a set of rows. Rows are independent, so ordering
// between them carries no meaning; the output preserves input order for
// convenience. An empty input yields an empty output. The first incomplete
// row aborts the batch.
func (c *Classifier) ClassifyBatch(rows []model.IndicatorRow) ([]model.SignalRecord, error) {
	records := make([]model.SignalRecord, 0, len(rows))
	for _, row := range rows {
		sig, err := c.Classify(row)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", row.Symbol, row.Timeframe, err)
		}
		records = append(records, model.SignalRecord{Row: row, Signal: sig})
	}
	return records, nil
}

func checkComplete(row model.IndicatorRow) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"stoch_k", row.StochK},
		{"stoch_d", row.StochD},
		{"cci", row.CCI},
		{"plus_di", row.PlusDI},
		{"minus_di", row.MinusDI},
		{"adx", row.ADX},
		{"slope_k", row.SlopeK},
		{"slope_d", row.SlopeD},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: field %s is not numeric", ErrIncompleteRow, f.name)
		}
	}
	return nil
}
