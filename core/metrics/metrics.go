package metrics

import (
	"time"

	"github.com/kilianp07/nexthour/core/model"
)

// WindowResult is an answered optimal window request.
type WindowResult struct {
	Partition  string
	Duration   time.Duration
	From       time.Time
	To         time.Time
	Price      float64
	Multiplier float64
	Time       time.Time
}

// MetricsSink records answered window requests.
type MetricsSink interface {
	RecordWindow(res WindowResult) error
}

// FetchEvent describes one call to the upstream price source.
type FetchEvent struct {
	FetchID   string
	Partition string
	Date      time.Time
	Points    int
	Stored    bool
	Error     string
	Latency   time.Duration
	Time      time.Time
}

// FetchRecorder records upstream fetches.
type FetchRecorder interface {
	RecordFetch(ev FetchEvent) error
}

// CacheLookupEvent reports whether a day slot was already cached.
type CacheLookupEvent struct {
	Partition string
	Date      time.Time
	Hit       bool
}

// CacheRecorder records cache lookups.
type CacheRecorder interface {
	RecordCacheLookup(ev CacheLookupEvent) error
}

// PriceCurveEvent carries a day curve returned by the price source.
type PriceCurveEvent struct {
	FetchID   string
	Partition string
	Date      time.Time
	Series    model.Series
}

// PriceCurveRecorder records the individual prices of a fetched curve.
type PriceCurveRecorder interface {
	RecordPriceCurve(ev PriceCurveEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordWindow(WindowResult) error { return nil }

func (NopSink) RecordFetch(FetchEvent) error             { return nil }
func (NopSink) RecordCacheLookup(CacheLookupEvent) error { return nil }
func (NopSink) RecordPriceCurve(PriceCurveEvent) error   { return nil }
