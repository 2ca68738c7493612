package metrics

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordWindow forwards the result to all sinks, returning the first error encountered.
func (m *MultiSink) RecordWindow(res WindowResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordWindow(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordFetch forwards fetch events when supported by the sink.
func (m *MultiSink) RecordFetch(ev FetchEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(FetchRecorder); ok {
			if err := rec.RecordFetch(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordCacheLookup forwards cache lookups when supported by the sink.
func (m *MultiSink) RecordCacheLookup(ev CacheLookupEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(CacheRecorder); ok {
			if err := rec.RecordCacheLookup(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPriceCurve forwards fetched curves when supported by the sink.
func (m *MultiSink) RecordPriceCurve(ev PriceCurveEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(PriceCurveRecorder); ok {
			if err := rec.RecordPriceCurve(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close releases the sinks that hold resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
