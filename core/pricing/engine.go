package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/nexthour/core/logger"
	"github.com/kilianp07/nexthour/core/model"
	"github.com/kilianp07/nexthour/pkg/clock"
)

// FutureSource provides the not-yet-elapsed prices of a partition.
type FutureSource interface {
	Future(ctx context.Context, partition string) (model.Series, error)
}

// Request describes a task to place.
type Request struct {
	Partition string
	Duration  model.TaskDuration
	// MaxStart is the latest allowed start time; zero means unconstrained.
	MaxStart time.Time
}

// Engine answers optimal window requests.
type Engine struct {
	source FutureSource
	clock  clock.Clock
	log    logger.Logger
}

// NewEngine creates an Engine reading prices from source.
func NewEngine(source FutureSource, clk clock.Clock, log logger.Logger) *Engine {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Engine{source: source, clock: clk, log: log}
}

// Now returns the engine's current time.
func (e *Engine) Now() time.Time { return e.clock.Now() }

// ParseDeadline parses a max_start_time relative to the engine clock.
func (e *Engine) ParseDeadline(raw string) (time.Time, error) {
	return ParseDeadline(raw, e.clock.Now())
}

// NextOptimalWindow finds the cheapest period for req and compares it with
// starting right away.
func (e *Engine) NextOptimalWindow(ctx context.Context, req Request) (model.OptimalWindow, error) {
	if req.Partition == "" {
		return model.OptimalWindow{}, ErrMissingPartitionKey
	}
	if err := req.Duration.Validate(); err != nil {
		return model.OptimalWindow{}, err
	}
	series, err := e.source.Future(ctx, req.Partition)
	if err != nil {
		return model.OptimalWindow{}, fmt.Errorf("load prices: %w", err)
	}
	now := e.clock.Now()

	candidates := series
	if !req.MaxStart.IsZero() {
		candidates, err = ApplyDeadline(series, req.MaxStart, req.Duration.RequiredPoints())
		if err != nil {
			return model.OptimalWindow{}, err
		}
	}
	win, err := Blend(candidates, req.Duration)
	if err != nil {
		return model.OptimalWindow{}, err
	}
	if !req.MaxStart.IsZero() {
		if err := CheckDeadline(win, req.MaxStart); err != nil {
			return model.OptimalWindow{}, err
		}
	}

	total := req.Duration.TotalMinutes()
	impatient, err := EstimateImpatience(series, total, now)
	if err != nil {
		return model.OptimalWindow{}, err
	}
	win.SuboptimalPriceMultiplier = SuboptimalMultiplier(impatient, total, win.Price)
	e.log.Debugw("optimal window", map[string]any{
		"partition":      req.Partition,
		"duration":       req.Duration.String(),
		"from":           win.From,
		"to":             win.To,
		"price":          win.Price,
		"impatient_cost": impatient,
	})
	return win, nil
}
