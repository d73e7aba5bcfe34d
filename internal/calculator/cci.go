package calculator

import (
	"errors"
	"math"

	"SignalDesk/internal/model"
)

// cciConstant is Lambert's scaling constant for the Commodity Channel Index.
const cciConstant = 0.015

// CCI computes the Commodity Channel Index over the given period:
// (typical price - SMA(typical price)) / (0.015 * mean deviation).
// Warmup positions are NaN.
func CCI(bars []model.Candle, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(bars) < period {
		return nil, errors.New("not enough bars for CCI calculation")
	}

	tp := make([]float64, len(bars))
	for i, b := range bars {
		tp[i] = (b.High + b.Low + b.Close) / 3
	}

	out := make([]float64, len(bars))
	for i := range out {
		out[i] = math.NaN()
	}
	for i := period - 1; i < len(tp); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += tp[j]
		}
		mean := sum / float64(period)

		dev := 0.0
		for j := i - period + 1; j <= i; j++ {
			dev += math.Abs(tp[j] - mean)
		}
		dev /= float64(period)
		if dev == 0 {
			continue // flat window, leave NaN
		}
		out[i] = (tp[i] - mean) / (cciConstant * dev)
	}
	return out, nil
}
