package pricing

import (
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/nexthour/core/model"
)

// Blend places a task of duration d on the cheapest part of series.
//
// Whole-hour durations use the cheapest run of d.Hours points and report the
// mean price. Durations with extra minutes use the cheapest run of d.Hours+1
// points and treat one boundary hour as partial: the last one when the first
// price is lower or equal to the last, the first one otherwise. The reported
// price is the time-weighted average over the covered period.
func Blend(series model.Series, d model.TaskDuration) (model.OptimalWindow, error) {
	if d.Minutes == 0 {
		w, err := SelectWindow(series, d.Hours)
		if err != nil {
			return model.OptimalWindow{}, err
		}
		run := series[w.Start : w.End+1]
		return model.OptimalWindow{
			From:  run[0].ValidFrom,
			To:    run[len(run)-1].ValidTo,
			Price: floats.Sum(run.Prices()) / float64(len(run)),
		}, nil
	}

	w, err := SelectWindow(series, d.Hours+1)
	if err != nil {
		return model.OptimalWindow{}, err
	}
	run := series[w.Start : w.End+1]
	first, last := run[0], run[len(run)-1]
	extra := time.Duration(d.Minutes) * time.Minute
	fraction := float64(d.Minutes) / 60

	var (
		full     model.Series
		partial  model.PricePoint
		from, to time.Time
	)
	if first.Price <= last.Price {
		full, partial = run[:len(run)-1], last
		from, to = first.ValidFrom, last.ValidFrom.Add(extra)
	} else {
		full, partial = run[1:], first
		from, to = first.ValidTo.Add(-extra), last.ValidTo
	}
	price := (floats.Sum(full.Prices()) + partial.Price*fraction) / (float64(d.Hours) + fraction)
	return model.OptimalWindow{From: from, To: to, Price: price}, nil
}
