package pricing

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/nexthour/core/model"
)

// SelectWindow returns the contiguous run of hourCount points with the lowest
// total price. Among runs with equal totals the earliest wins.
func SelectWindow(series model.Series, hourCount int) (model.Window, error) {
	if hourCount < 1 {
		return model.Window{}, fmt.Errorf("%w: window length must be at least one hour, got %d", ErrInsufficientData, hourCount)
	}
	if len(series) < hourCount {
		return model.Window{}, fmt.Errorf("%w: need %d hourly prices, have %d", ErrInsufficientData, hourCount, len(series))
	}
	prices := series.Prices()
	best := 0
	bestSum := floats.Sum(prices[:hourCount])
	for start := 1; start+hourCount <= len(prices); start++ {
		// summed per run, no running total
		sum := floats.Sum(prices[start : start+hourCount])
		if sum < bestSum {
			best, bestSum = start, sum
		}
	}
	return model.Window{Start: best, End: best + hourCount - 1}, nil
}
