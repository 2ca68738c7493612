package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrMalformedDuration is returned when a requested duration cannot be parsed.
var ErrMalformedDuration = errors.New("malformed duration")

var durationPattern = regexp.MustCompile(`^\s*(\d+)h(\d+)m\s*$`)

// TaskDuration is the length of the task to schedule, split in whole hours
// and extra minutes.
type TaskDuration struct {
	Hours   int
	Minutes int
}

// ParseTaskDuration parses strings like "2h35m" or "0h30m". Minutes must be in
// [0,59] and the total must be positive.
func ParseTaskDuration(raw string) (TaskDuration, error) {
	m := durationPattern.FindStringSubmatch(raw)
	if m == nil {
		return TaskDuration{}, fmt.Errorf("%w: %q, expected format like 2h35m", ErrMalformedDuration, raw)
	}
	hours, err := strconv.Atoi(m[1])
	if err != nil {
		return TaskDuration{}, fmt.Errorf("%w: hours: %v", ErrMalformedDuration, err)
	}
	minutes, err := strconv.Atoi(m[2])
	if err != nil {
		return TaskDuration{}, fmt.Errorf("%w: minutes: %v", ErrMalformedDuration, err)
	}
	d := TaskDuration{Hours: hours, Minutes: minutes}
	if err := d.Validate(); err != nil {
		return TaskDuration{}, err
	}
	return d, nil
}

// Validate checks the duration ranges.
func (d TaskDuration) Validate() error {
	if d.Hours < 0 {
		return fmt.Errorf("%w: hours must not be negative", ErrMalformedDuration)
	}
	if d.Minutes < 0 || d.Minutes > 59 {
		return fmt.Errorf("%w: minutes must be between 0 and 59", ErrMalformedDuration)
	}
	if d.Hours == 0 && d.Minutes == 0 {
		return fmt.Errorf("%w: duration must be positive", ErrMalformedDuration)
	}
	return nil
}

// TotalMinutes returns the full length in minutes.
func (d TaskDuration) TotalMinutes() int { return d.Hours*60 + d.Minutes }

// RequiredPoints returns how many hourly points must be available to place
// the task: one extra hour is needed for the fractional part.
func (d TaskDuration) RequiredPoints() int {
	if d.Minutes > 0 {
		return d.Hours + 1
	}
	return d.Hours
}

// Duration converts to a time.Duration.
func (d TaskDuration) Duration() time.Duration {
	return time.Duration(d.TotalMinutes()) * time.Minute
}

// String formats the duration the way it is parsed.
func (d TaskDuration) String() string { return fmt.Sprintf("%dh%dm", d.Hours, d.Minutes) }
