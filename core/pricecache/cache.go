// Package pricecache memoizes day price curves per partition and builds the
// "now until end of tomorrow" series used by the window search.
package pricecache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/nexthour/core/events"
	"github.com/kilianp07/nexthour/core/logger"
	"github.com/kilianp07/nexthour/core/model"
	"github.com/kilianp07/nexthour/internal/eventbus"
	"github.com/kilianp07/nexthour/pkg/clock"
)

// ErrSourceUnavailable is returned by sources when the upstream could not
// deliver data for a date.
var ErrSourceUnavailable = errors.New("price source unavailable")

// Source fetches the hourly prices of one calendar day for a partition.
type Source interface {
	Fetch(ctx context.Context, date time.Time, partition string) (model.Series, error)
}

// StorePolicy decides whether a fetched curve is kept.
type StorePolicy int

const (
	// StoreAlways keeps the result even when empty.
	StoreAlways StorePolicy = iota
	// StoreNonEmpty keeps only non-empty results; an empty slot is fetched
	// again on the next access.
	StoreNonEmpty
)

type key struct {
	partition string
	date      string
}

// Cache holds day curves for the lifetime of the process.
type Cache struct {
	source Source
	clock  clock.Clock
	loc    *time.Location
	log    logger.Logger
	bus    eventbus.EventBus

	mu      sync.RWMutex
	entries map[key]model.Series
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the clock used to determine today and tomorrow.
func WithClock(c clock.Clock) Option { return func(pc *Cache) { pc.clock = c } }

// WithLocation sets the time zone defining calendar days.
func WithLocation(loc *time.Location) Option { return func(pc *Cache) { pc.loc = loc } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(pc *Cache) { pc.log = l } }

// WithEventBus publishes fetch and lookup events on bus.
func WithEventBus(bus eventbus.EventBus) Option { return func(pc *Cache) { pc.bus = bus } }

// New creates a Cache backed by source.
func New(source Source, opts ...Option) *Cache {
	c := &Cache{
		source:  source,
		clock:   clock.New(),
		loc:     time.UTC,
		log:     logger.Nop{},
		entries: make(map[key]model.Series),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Future returns today's and tomorrow's prices for partition, without the
// hours that have already fully elapsed.
func (c *Cache) Future(ctx context.Context, partition string) (model.Series, error) {
	now := c.clock.Now()
	today := startOfDay(now, c.loc)
	tomorrow := today.AddDate(0, 0, 1)

	todays, err := c.GetOrFetch(ctx, partition, today, StoreAlways)
	if err != nil {
		return nil, err
	}
	tomorrows, err := c.GetOrFetch(ctx, partition, tomorrow, StoreNonEmpty)
	if err != nil {
		return nil, err
	}
	all := make(model.Series, 0, len(todays)+len(tomorrows))
	all = append(all, todays...)
	all = append(all, tomorrows...)
	return all.NotElapsed(now), nil
}

// GetOrFetch returns the cached curve for (partition, date), fetching it on a
// miss. Source failures yield an empty curve; only a cancelled ctx is
// returned as an error, and nothing is stored in that case.
func (c *Cache) GetOrFetch(ctx context.Context, partition string, date time.Time, policy StorePolicy) (model.Series, error) {
	k := key{partition: partition, date: date.Format(time.DateOnly)}
	c.mu.RLock()
	series, ok := c.entries[k]
	c.mu.RUnlock()
	c.publish(events.CacheLookupEvent{Partition: partition, Date: date, Hit: ok})
	if ok {
		return series, nil
	}

	// fetched outside the lock: concurrent misses for one key may both fetch
	fetchID := uuid.NewString()
	start := c.clock.Now()
	series, err := c.source.Fetch(ctx, date, partition)
	latency := c.clock.Now().Sub(start)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		c.log.Warnf("fetch %s prices for %s failed (fetch_id=%s): %v", k.date, partition, fetchID, err)
		c.publish(events.FetchFailedEvent{
			FetchID: fetchID, Partition: partition, Date: date,
			Err: err, Latency: latency, Time: c.clock.Now(),
		})
		series = nil
	}

	store := policy == StoreAlways || len(series) > 0
	if store {
		c.mu.Lock()
		c.entries[k] = series
		c.mu.Unlock()
	}
	if err == nil {
		c.log.Debugf("fetched %d prices for %s on %s (stored=%t)", len(series), partition, k.date, store)
		c.publish(events.CurveFetchedEvent{
			FetchID: fetchID, Partition: partition, Date: date, Series: series,
			Stored: store, Latency: latency, Time: c.clock.Now(),
		})
	}
	return series, nil
}

// Len returns the number of cached slots.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Cached reports whether a slot exists for (partition, date).
func (c *Cache) Cached(partition string, date time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key{partition: partition, date: date.Format(time.DateOnly)}]
	return ok
}

// Today returns midnight of the current day in the cache's location.
func (c *Cache) Today() time.Time { return startOfDay(c.clock.Now(), c.loc) }

func (c *Cache) publish(ev eventbus.Event) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
