package calculator

import (
	"errors"
	"math"

	"SignalDesk/internal/model"
)

// DMI computes the Directional Movement Index: +DI, -DI and ADX, all with
// Wilder smoothing over the given period. Requires at least 2*period bars
// before ADX produces its first value; warmup positions are NaN.
func DMI(bars []model.Candle, period int) (plusDI, minusDI, adx []float64, err error) {
	if period <= 0 {
		return nil, nil, nil, errors.New("period must be positive")
	}
	if len(bars) < 2*period {
		return nil, nil, nil, errors.New("not enough bars for DMI calculation")
	}

	n := len(bars)
	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)

	for i := 1; i < n; i++ {
		high, low := bars[i].High, bars[i].Low
		prevHigh, prevLow, prevClose := bars[i-1].High, bars[i-1].Low, bars[i-1].Close

		tr[i] = math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))

		upMove := high - prevHigh
		downMove := prevLow - low
		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
	}

	plusDI = nanSlice(n)
	minusDI = nanSlice(n)
	adx = nanSlice(n)
	dx := nanSlice(n)

	// Seed the Wilder sums over the first period of movement values.
	var trSum, plusSum, minusSum float64
	for i := 1; i <= period; i++ {
		trSum += tr[i]
		plusSum += plusDM[i]
		minusSum += minusDM[i]
	}

	p := float64(period)
	for i := period; i < n; i++ {
		if i > period {
			trSum = trSum - trSum/p + tr[i]
			plusSum = plusSum - plusSum/p + plusDM[i]
			minusSum = minusSum - minusSum/p + minusDM[i]
		}
		if trSum == 0 {
			continue
		}
		plusDI[i] = 100 * plusSum / trSum
		minusDI[i] = 100 * minusSum / trSum

		diSum := plusDI[i] + minusDI[i]
		if diSum > 0 {
			dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / diSum
		}
	}

	// ADX: first value is the average DX over the seed period, then Wilder.
	var dxSum float64
	count := 0
	for i := period; i < n && count < period; i++ {
		if math.IsNaN(dx[i]) {
			continue
		}
		dxSum += dx[i]
		count++
		if count == period {
			adx[i] = dxSum / p
			for j := i + 1; j < n; j++ {
				if math.IsNaN(dx[j]) {
					adx[j] = adx[j-1]
					continue
				}
				adx[j] = (adx[j-1]*(p-1) + dx[j]) / p
			}
			break
		}
	}

	return plusDI, minusDI, adx, nil
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
