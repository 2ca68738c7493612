// Package querylog keeps a history of answered optimal window requests.
// Records are appended by the HTTP layer and can be queried back by
// partition and time range.
package querylog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kilianp07/nexthour/config"
)

// Record captures one optimal window request and its answer.
type Record struct {
	ID         string     `json:"id"`
	Timestamp  time.Time  `json:"timestamp"`
	Partition  string     `json:"partition"`
	Duration   string     `json:"duration"`
	MaxStart   *time.Time `json:"maxStart,omitempty"`
	From       time.Time  `json:"fromTs"`
	To         time.Time  `json:"toTs"`
	Price      float64    `json:"price"`
	Multiplier float64    `json:"suboptimalPriceMultiplier"`
	Status     int        `json:"status"`
	Error      string     `json:"error,omitempty"`
}

// Query defines filters for retrieving records. Zero values disable a
// filter. Limit keeps only the most recent records.
type Query struct {
	Start     time.Time
	End       time.Time
	Partition string
	Limit     int
}

func (q Query) match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	return q.Partition == "" || r.Partition == q.Partition
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards everything.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return []Record{}, nil }
func (NopStore) Close() error                                   { return nil }

// Open creates the store selected by cfg.Backend.
func Open(cfg config.QueryLogConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case "none":
		return NopStore{}, nil
	case "jsonl":
		s, err = NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		s, err = NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown query log backend %s", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// sortAndLimit orders records by time and keeps the last q.Limit ones.
func sortAndLimit(res []Record, limit int) []Record {
	sort.SliceStable(res, func(i, j int) bool { return res[i].Timestamp.Before(res[j].Timestamp) })
	if limit > 0 && len(res) > limit {
		res = res[len(res)-limit:]
	}
	return res
}
