// Package metrics defines the observability sinks of the price service.
// Sinks record price curve fetches, cache lookups and answered optimal
// window requests. Implementations live in infra/metrics and register
// themselves by type name; NewMetricsSink returns a MultiSink when several
// sinks are configured.
package metrics
