package metrics_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/nexthour/core/factory"
	metrics "github.com/kilianp07/nexthour/core/metrics"
	_ "github.com/kilianp07/nexthour/infra/metrics"
)

func TestNewMetricsSink_Builtins(t *testing.T) {
	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)

	s, err = metrics.NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)
}

func TestNewMetricsSink_Multi(t *testing.T) {
	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}})
	require.NoError(t, err)
	m, ok := s.(*metrics.MultiSink)
	require.True(t, ok, "got %T", s)
	assert.Len(t, m.Sinks, 2)
}

func TestNewMetricsSink_UnknownType(t *testing.T) {
	_, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "graphite"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, factory.ErrUnknownType))
	assert.Contains(t, err.Error(), "metrics.sinks[1] (graphite)")
	assert.Contains(t, err.Error(), "influx")
}
