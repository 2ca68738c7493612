package pricing

import (
	"time"

	"github.com/kilianp07/nexthour/core/model"
)

var h0 = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func hourly(start time.Time, prices ...float64) model.Series {
	s := make(model.Series, len(prices))
	for i, p := range prices {
		s[i] = model.NewHourlyPoint(start.Add(time.Duration(i)*time.Hour), p)
	}
	return s
}

func sample() model.Series { return hourly(h0, 0.5, 0.3, 0.7, 0.4) }
