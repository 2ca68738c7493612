// Package warmup prefetches price curves on a cron schedule so requests
// after the day-ahead publication are answered from the cache.
package warmup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kilianp07/nexthour/core/logger"
	"github.com/kilianp07/nexthour/core/model"
	"github.com/kilianp07/nexthour/core/monitoring"
)

// Prefetcher loads the upcoming prices of a partition. The price cache
// implements it.
type Prefetcher interface {
	Future(ctx context.Context, partition string) (model.Series, error)
}

// Config defines what is prefetched and when.
type Config struct {
	// Schedules are cron expressions with a leading seconds field.
	Schedules  []string
	Partitions []string
	// Location is the time zone the schedules are read in.
	Location *time.Location
	// Timeout bounds one prefetch run.
	Timeout time.Duration
}

// Warmer runs prefetches on a cron scheduler.
type Warmer struct {
	cron       *cron.Cron
	src        Prefetcher
	partitions []string
	timeout    time.Duration
	log        logger.Logger

	mu   sync.Mutex
	ctx  context.Context
	runs int
}

// New registers one prefetch job per schedule.
func New(src Prefetcher, cfg Config, log logger.Logger) (*Warmer, error) {
	if log == nil {
		log = logger.Nop{}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	w := &Warmer{
		src:        src,
		partitions: append([]string(nil), cfg.Partitions...),
		timeout:    cfg.Timeout,
		log:        log,
		ctx:        context.Background(),
	}
	w.cron = cron.New(
		cron.WithSeconds(),
		cron.WithLocation(cfg.Location),
		cron.WithChain(recoverJob(log), cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	for _, expr := range cfg.Schedules {
		if _, err := w.cron.AddFunc(expr, w.run); err != nil {
			return nil, fmt.Errorf("register warmup schedule %q: %w", expr, err)
		}
	}
	return w, nil
}

// Start starts the scheduler. Jobs stop issuing fetches once ctx is done.
func (w *Warmer) Start(ctx context.Context) {
	w.mu.Lock()
	w.ctx = ctx
	w.mu.Unlock()
	w.cron.Start()
	w.log.Infof("warmup scheduler started for %d partitions", len(w.partitions))
}

// Stop stops the scheduler and waits for a running job.
func (w *Warmer) Stop() {
	<-w.cron.Stop().Done()
	w.log.Infof("warmup scheduler stopped")
}

// Next returns the next scheduled run, zero when nothing is scheduled.
func (w *Warmer) Next() time.Time {
	var next time.Time
	for _, e := range w.cron.Entries() {
		if !e.Next.IsZero() && (next.IsZero() || e.Next.Before(next)) {
			next = e.Next
		}
	}
	return next
}

// RunNow prefetches every partition and returns how many succeeded.
func (w *Warmer) RunNow(ctx context.Context) int {
	ok := 0
	for _, p := range w.partitions {
		if ctx.Err() != nil {
			break
		}
		series, err := w.src.Future(ctx, p)
		if err != nil {
			w.log.Warnf("warmup %s: %v", p, err)
			monitoring.CaptureException(err, map[string]string{"module": "warmup", "partition": p})
			continue
		}
		w.log.Debugf("warmup %s: %d upcoming prices", p, len(series))
		ok++
	}
	w.mu.Lock()
	w.runs++
	w.mu.Unlock()
	return ok
}

// Runs returns how many prefetch rounds have completed.
func (w *Warmer) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

func (w *Warmer) run() {
	w.mu.Lock()
	parent := w.ctx
	w.mu.Unlock()
	ctx, cancel := context.WithTimeout(parent, w.timeout)
	defer cancel()
	w.RunNow(ctx)
}

// recoverJob reports panics of scheduled jobs instead of crashing the process.
func recoverJob(log logger.Logger) cron.JobWrapper {
	return func(j cron.Job) cron.Job {
		return cron.FuncJob(func() {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("warmup job panic: %v", r)
					monitoring.CapturePanic(r, map[string]string{"module": "warmup"})
				}
			}()
			j.Run()
		})
	}
}
