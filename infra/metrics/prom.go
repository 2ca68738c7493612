package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/nexthour/core/metrics"
)

// PromSink records price service activity in Prometheus metrics.
type PromSink struct {
	fetches      *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	lookups      *prometheus.CounterVec
	windows      *prometheus.CounterVec
	windowPrice  *prometheus.GaugeVec
	multiplier   prometheus.Histogram
}

// NewPromSink registers the metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered under the same name are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	var err error
	s := &PromSink{}
	if s.fetches, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nexthour_price_fetches_total",
		Help: "Upstream price fetches by outcome",
	}, []string{"partition", "result"})); err != nil {
		return nil, err
	}
	if s.fetchLatency, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nexthour_price_fetch_duration_seconds",
		Help:    "Latency of upstream price fetches",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if s.lookups, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nexthour_cache_lookups_total",
		Help: "Day slot lookups in the price cache",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if s.windows, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nexthour_window_requests_total",
		Help: "Answered optimal window requests",
	}, []string{"partition"})); err != nil {
		return nil, err
	}
	if s.windowPrice, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "nexthour_window_price",
		Help: "Average price of the latest optimal window",
	}, []string{"partition"})); err != nil {
		return nil, err
	}
	if s.multiplier, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "nexthour_suboptimal_price_multiplier",
		Help:    "Cost of starting immediately relative to the optimal window",
		Buckets: []float64{0.5, 1, 1.25, 1.5, 2, 3, 5, 10},
	})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordWindow counts the request and tracks the window price.
func (s *PromSink) RecordWindow(res coremetrics.WindowResult) error {
	s.windows.WithLabelValues(res.Partition).Inc()
	s.windowPrice.WithLabelValues(res.Partition).Set(res.Price)
	s.multiplier.Observe(res.Multiplier)
	return nil
}

// RecordFetch counts upstream fetches as ok, empty or error.
func (s *PromSink) RecordFetch(ev coremetrics.FetchEvent) error {
	result := "ok"
	switch {
	case ev.Error != "":
		result = "error"
	case ev.Points == 0:
		result = "empty"
	}
	s.fetches.WithLabelValues(ev.Partition, result).Inc()
	s.fetchLatency.WithLabelValues(result).Observe(ev.Latency.Seconds())
	return nil
}

// RecordCacheLookup counts hits and misses.
func (s *PromSink) RecordCacheLookup(ev coremetrics.CacheLookupEvent) error {
	result := "miss"
	if ev.Hit {
		result = "hit"
	}
	s.lookups.WithLabelValues(result).Inc()
	return nil
}
