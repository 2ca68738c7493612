package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/nexthour/core/metrics"
)

func TestPromSink_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, s.RecordFetch(coremetrics.FetchEvent{Partition: "579", Points: 24, Latency: 20 * time.Millisecond}))
	require.NoError(t, s.RecordFetch(coremetrics.FetchEvent{Partition: "579", Points: 0}))
	require.NoError(t, s.RecordFetch(coremetrics.FetchEvent{Partition: "579", Error: "boom"}))
	require.NoError(t, s.RecordCacheLookup(coremetrics.CacheLookupEvent{Hit: true}))
	require.NoError(t, s.RecordCacheLookup(coremetrics.CacheLookupEvent{Hit: false}))
	require.NoError(t, s.RecordCacheLookup(coremetrics.CacheLookupEvent{Hit: true}))
	require.NoError(t, s.RecordWindow(coremetrics.WindowResult{Partition: "579", Price: 0.35, Multiplier: 1.5}))

	assert.Equal(t, 1.0, testutil.ToFloat64(s.fetches.WithLabelValues("579", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.fetches.WithLabelValues("579", "empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.fetches.WithLabelValues("579", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.lookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.lookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.windows.WithLabelValues("579")))
	assert.Equal(t, 0.35, testutil.ToFloat64(s.windowPrice.WithLabelValues("579")))
	assert.Equal(t, 1, testutil.CollectAndCount(s.multiplier))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	b, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, a.RecordWindow(coremetrics.WindowResult{Partition: "x"}))
	require.NoError(t, b.RecordWindow(coremetrics.WindowResult{Partition: "x"}))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.windows.WithLabelValues("x")))
}
