package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/nexthour/core/model"
)

var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// ParseDeadline parses an ISO-8601 latest start time. Timestamps without a
// zone are read as UTC. The result must not be earlier than now.
func ParseDeadline(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	t, ok := parseISO(raw)
	if !ok && strings.Contains(raw, " ") {
		// an unescaped "+" in a query string arrives as a space
		t, ok = parseISO(strings.Replace(raw, " ", "+", 1))
	}
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDeadline, raw)
	}
	if t.Before(now) {
		return time.Time{}, fmt.Errorf("%w: %s is before %s", ErrDeadlineInPast, t.Format(time.RFC3339), now.Format(time.RFC3339))
	}
	return t, nil
}

func parseISO(raw string) (time.Time, bool) {
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ApplyDeadline drops the points starting after maxStart. It fails when fewer
// than required points remain.
func ApplyDeadline(series model.Series, maxStart time.Time, required int) (model.Series, error) {
	out := make(model.Series, 0, len(series))
	for _, p := range series {
		if !p.ValidFrom.After(maxStart) {
			out = append(out, p)
		}
	}
	if len(out) < required {
		return nil, fmt.Errorf("%w: Not enough available prices before max_start_time (need %d, have %d)", ErrInsufficientData, required, len(out))
	}
	return out, nil
}

// CheckDeadline verifies that the window starts no later than maxStart.
func CheckDeadline(w model.OptimalWindow, maxStart time.Time) error {
	if w.From.After(maxStart) {
		return fmt.Errorf("%w: window starts %s, max_start_time is %s", ErrDeadlineViolated, w.From.Format(time.RFC3339), maxStart.Format(time.RFC3339))
	}
	return nil
}
