package calculator

import (
	"errors"
	"math"
)

// Slope fits a least-squares line through the last period non-NaN values of
// the series and returns its slope, the per-bar rate of change used as the
// significance filter for %K and %D.
func Slope(values []float64, period int) (float64, error) {
	if period <= 1 {
		return 0, errors.New("slope period must be greater than 1")
	}

	tail := make([]float64, 0, period)
	for i := len(values) - 1; i >= 0 && len(tail) < period; i-- {
		if math.IsNaN(values[i]) {
			continue
		}
		tail = append(tail, values[i])
	}
	if len(tail) < period {
		return 0, errors.New("not enough data for slope calculation")
	}

	// tail was collected newest-first; reverse into x order.
	for i, j := 0, len(tail)-1; i < j; i, j = i+1, j-1 {
		tail[i], tail[j] = tail[j], tail[i]
	}

	n := float64(len(tail))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range tail {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, errors.New("degenerate slope window")
	}
	return (n*sumXY - sumX*sumY) / denom, nil
}
