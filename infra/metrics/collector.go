package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/nexthour/core/events"
	coremetrics "github.com/kilianp07/nexthour/core/metrics"
	coremon "github.com/kilianp07/nexthour/core/monitoring"
	"github.com/kilianp07/nexthour/infra/logger"
	"github.com/kilianp07/nexthour/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards price events
// to the sink. Failed fetches are also reported to the monitor. It stops
// when the context is canceled or the bus is closed.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	log := logger.New("metrics_collector")
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := dispatch(sink, ev); err != nil {
					log.Warnf("record %T: %v", ev, err)
				}
			}
		}
	}()
}

func dispatch(sink coremetrics.MetricsSink, ev eventbus.Event) error {
	switch e := ev.(type) {
	case events.CurveFetchedEvent:
		if r, ok := sink.(coremetrics.FetchRecorder); ok {
			if err := r.RecordFetch(coremetrics.FetchEvent{
				FetchID:   e.FetchID,
				Partition: e.Partition,
				Date:      e.Date,
				Points:    len(e.Series),
				Stored:    e.Stored,
				Latency:   e.Latency,
				Time:      e.Time,
			}); err != nil {
				return err
			}
		}
		if r, ok := sink.(coremetrics.PriceCurveRecorder); ok && len(e.Series) > 0 {
			return r.RecordPriceCurve(coremetrics.PriceCurveEvent{
				FetchID:   e.FetchID,
				Partition: e.Partition,
				Date:      e.Date,
				Series:    e.Series,
			})
		}
	case events.FetchFailedEvent:
		coremon.CaptureException(e.Err, map[string]string{
			"module":    "pricecache",
			"partition": e.Partition,
			"date":      e.Date.Format(time.DateOnly),
		})
		if r, ok := sink.(coremetrics.FetchRecorder); ok {
			msg := "unknown error"
			if e.Err != nil {
				msg = e.Err.Error()
			}
			return r.RecordFetch(coremetrics.FetchEvent{
				FetchID:   e.FetchID,
				Partition: e.Partition,
				Date:      e.Date,
				Error:     msg,
				Latency:   e.Latency,
				Time:      e.Time,
			})
		}
	case events.CacheLookupEvent:
		if r, ok := sink.(coremetrics.CacheRecorder); ok {
			return r.RecordCacheLookup(coremetrics.CacheLookupEvent{Partition: e.Partition, Date: e.Date, Hit: e.Hit})
		}
	case events.WindowEvent:
		return sink.RecordWindow(coremetrics.WindowResult{
			Partition:  e.Partition,
			Duration:   e.Duration.Duration(),
			From:       e.Window.From,
			To:         e.Window.To,
			Price:      e.Window.Price,
			Multiplier: e.Window.SuboptimalPriceMultiplier,
			Time:       e.Time,
		})
	}
	return nil
}
