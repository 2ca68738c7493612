package model

import (
	"fmt"
	"time"
)

// PricePoint is the price of one hour of electricity for a partition.
type PricePoint struct {
	ValidFrom time.Time `json:"validFrom"`
	ValidTo   time.Time `json:"validTo"`
	Price     float64   `json:"price"`
}

// NewHourlyPoint builds a point covering exactly one hour from start.
func NewHourlyPoint(start time.Time, price float64) PricePoint {
	return PricePoint{ValidFrom: start, ValidTo: start.Add(time.Hour), Price: price}
}

// String returns a human-readable representation of the point.
func (p PricePoint) String() string {
	return fmt.Sprintf("%s -> %s: %g", p.ValidFrom.Format(time.RFC3339), p.ValidTo.Format(time.RFC3339), p.Price)
}

// Series is an ordered sequence of price points, ascending by ValidFrom.
type Series []PricePoint

// Prices returns the raw price values of the series.
func (s Series) Prices() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Price
	}
	return out
}

// NotElapsed returns the points whose hour has not fully passed at now.
// A point currently in progress is kept.
func (s Series) NotElapsed(now time.Time) Series {
	out := make(Series, 0, len(s))
	for _, p := range s {
		if !p.ValidTo.Before(now) {
			out = append(out, p)
		}
	}
	return out
}

// Window identifies an inclusive run of points inside a Series.
type Window struct {
	Start int
	End   int
}

// Len returns the number of points covered by the window.
func (w Window) Len() int { return w.End - w.Start + 1 }

// OptimalWindow is the cheapest period found for a requested duration.
type OptimalWindow struct {
	From  time.Time `json:"fromTs"`
	To    time.Time `json:"toTs"`
	Price float64   `json:"price"`
	// SuboptimalPriceMultiplier expresses how many times more expensive
	// starting immediately is compared to waiting for the window.
	SuboptimalPriceMultiplier float64 `json:"suboptimalPriceMultiplier"`
}

// Duration returns the length of the window.
func (o OptimalWindow) Duration() time.Duration { return o.To.Sub(o.From) }
