// Package factory holds the generic registry behind the pluggable metrics
// sinks. A sink entry in the configuration names a type and carries raw
// settings; the registered factory decodes them and builds the sink.
//
//	sinks := factory.NewRegistry[metrics.MetricsSink]()
//	_ = sinks.Register("influx", func(conf map[string]any) (metrics.MetricsSink, error) {
//		var c struct {
//			URL    string `json:"url"`
//			Bucket string `json:"bucket"`
//		}
//		if err := factory.Decode(conf, &c); err != nil {
//			return nil, err
//		}
//		return newInfluxSink(c.URL, c.Bucket), nil
//	})
//	sink, err := sinks.Create(factory.ModuleConfig{
//		Type: "influx",
//		Conf: map[string]any{"url": "http://influx:8086", "bucket": "prices"},
//	})
package factory
