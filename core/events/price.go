package events

import (
	"time"

	"github.com/kilianp07/nexthour/core/model"
)

// CurveFetchedEvent is published when the price source returned a day curve.
type CurveFetchedEvent struct {
	FetchID   string
	Partition string
	Date      time.Time
	Series    model.Series
	Stored    bool
	Latency   time.Duration
	Time      time.Time
}

// FetchFailedEvent is published when the price source could not deliver a
// day curve. The slot is treated as empty.
type FetchFailedEvent struct {
	FetchID   string
	Partition string
	Date      time.Time
	Err       error
	Latency   time.Duration
	Time      time.Time
}

// CacheLookupEvent reports whether a (partition, date) slot was served from
// the cache.
type CacheLookupEvent struct {
	Partition string
	Date      time.Time
	Hit       bool
}

// WindowEvent is published for every answered optimal window request.
type WindowEvent struct {
	Partition string
	Duration  model.TaskDuration
	Window    model.OptimalWindow
	Time      time.Time
}
