package calculator

import (
	"errors"
	"math"

	"SignalDesk/internal/model"
)

// Stochastic computes the slow stochastic oscillator. Raw %K compares the
// close to its rolling high/low range over window bars, then %K is SMA-smoothed
// over kSmooth bars and %D is the SMA of %K over dSmooth bars. Warmup
// positions are NaN.
func Stochastic(bars []model.Candle, window, kSmooth, dSmooth int) (k, d []float64, err error) {
	if window <= 0 || kSmooth <= 0 || dSmooth <= 0 {
		return nil, nil, errors.New("stochastic periods must be positive")
	}
	if len(bars) < window {
		return nil, nil, errors.New("not enough bars for stochastic calculation")
	}

	closes := extractCloses(bars)
	highs := extractHighs(bars)
	lows := extractLows(bars)

	rawK := make([]float64, len(bars))
	for i := range rawK {
		rawK[i] = math.NaN()
	}
	for i := window - 1; i < len(bars); i++ {
		hi := math.Inf(-1)
		lo := math.Inf(1)
		for j := i - window + 1; j <= i; j++ {
			if highs[j] > hi {
				hi = highs[j]
			}
			if lows[j] < lo {
				lo = lows[j]
			}
		}
		if hi == lo {
			continue // flat range, leave NaN
		}
		rawK[i] = 100 * (closes[i] - lo) / (hi - lo)
	}

	k, err = RollingSMA(rawK, kSmooth)
	if err != nil {
		return nil, nil, err
	}
	d, err = RollingSMA(k, dSmooth)
	if err != nil {
		return nil, nil, err
	}
	return k, d, nil
}
