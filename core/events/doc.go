// Package events defines the price related events emitted on the event bus.
//
// Available event types:
//   - CurveFetchedEvent: a day curve was returned by the price source
//   - FetchFailedEvent: the price source failed for a day
//   - CacheLookupEvent: a cache slot was looked up
//   - WindowEvent: an optimal window request was answered
package events
