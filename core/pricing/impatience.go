package pricing

import (
	"fmt"
	"time"

	"github.com/kilianp07/nexthour/core/model"
)

// EstimateImpatience returns the cost of running the task from now on.
// Points that ended at or before now are skipped. The first remaining point is
// the hour in progress and only its remaining minutes are charged; later points
// are charged per consumed minute until totalMinutes is used up.
func EstimateImpatience(series model.Series, totalMinutes int, now time.Time) (float64, error) {
	if totalMinutes <= 0 {
		return 0, nil
	}
	for len(series) > 0 && !series[0].ValidTo.After(now) {
		series = series[1:]
	}
	if len(series) == 0 {
		return 0, fmt.Errorf("%w: no prices available from now", ErrInsufficientData)
	}
	remaining := totalMinutes
	used := min(60-now.Minute(), remaining)
	cost := series[0].Price * float64(used) / 60
	remaining -= used
	for _, p := range series[1:] {
		if remaining <= 0 {
			break
		}
		used = min(60, remaining)
		cost += p.Price * float64(used) / 60
		remaining -= used
	}
	if remaining > 0 {
		return 0, fmt.Errorf("%w: prices run out %d minutes before the task would end", ErrInsufficientData, remaining)
	}
	return cost, nil
}

// SuboptimalMultiplier compares the per-minute cost of starting now with the
// per-minute cost of the optimal window (whose price is per hour). It returns
// 0 when the optimal price is not positive and the ratio is undefined.
func SuboptimalMultiplier(impatientCost float64, totalMinutes int, optimalPrice float64) float64 {
	if totalMinutes <= 0 || optimalPrice <= 0 {
		return 0
	}
	return (impatientCost / float64(totalMinutes)) / (optimalPrice / 60)
}
