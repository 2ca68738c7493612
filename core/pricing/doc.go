// Package pricing finds the cheapest period to run a task of a given length
// over an hourly price series. It selects the cheapest contiguous run of whole
// hours, blends in a partial hour for fractional durations, honours an
// optional latest start time and estimates the cost of starting immediately.
package pricing
