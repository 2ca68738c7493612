package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/nexthour/core/metrics"
	"github.com/kilianp07/nexthour/infra/logger"
)

// InfluxSink writes price curves, fetches and optimal windows to an InfluxDB
// instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordWindow writes an optimal_window point.
func (s *InfluxSink) RecordWindow(res coremetrics.WindowResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("optimal_window").
		AddTag("partition", res.Partition).
		AddField("duration_min", int64(res.Duration/time.Minute)).
		AddField("price", round3(res.Price)).
		AddField("multiplier", round3(res.Multiplier)).
		AddField("from", res.From.Unix()).
		AddField("to", res.To.Unix()).
		SetTime(res.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFetch writes a price_fetch point.
func (s *InfluxSink) RecordFetch(ev coremetrics.FetchEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("price_fetch").
		AddTag("partition", ev.Partition).
		AddTag("fetch_id", ev.FetchID).
		AddTag("date", ev.Date.Format(time.DateOnly)).
		AddField("points", ev.Points).
		AddField("stored", ev.Stored).
		AddField("latency_ms", round3(ev.Latency.Seconds()*1000))
	if ev.Error != "" {
		p = p.AddField("error", ev.Error)
	}
	p = p.SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPriceCurve writes one price_point per hour of the curve.
func (s *InfluxSink) RecordPriceCurve(ev coremetrics.PriceCurveEvent) error {
	if len(ev.Series) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := make([]*write.Point, 0, len(ev.Series))
	for _, pp := range ev.Series {
		points = append(points, write.NewPointWithMeasurement("price_point").
			AddTag("partition", ev.Partition).
			AddField("price", pp.Price).
			AddField("duration_min", int64(pp.ValidTo.Sub(pp.ValidFrom)/time.Minute)).
			SetTime(pp.ValidFrom))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// Close releases the client resources.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
