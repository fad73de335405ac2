// Package schedule runs a function at a fixed interval.
package schedule

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

// A Scheduler invokes a function once immediately, and then at every multiple
// of its interval after that. Invocations never overlap. Boundaries that pass
// while the function is still running are skipped rather than queued.
type Scheduler struct {
	clock    clockwork.Clock
	interval time.Duration
}

// MinInterval is the shortest interval a Scheduler fires at.
const MinInterval = time.Second

// New returns a Scheduler that fires every `interval` according to `clock`.
// Intervals shorter than MinInterval are raised to it.
func New(clock clockwork.Clock, interval time.Duration) *Scheduler {
	if interval < MinInterval {
		log.WithFields(log.Fields{
			"interval": interval,
			"minimum":  MinInterval,
		}).Warn("Interval is too short. Using the minimum instead.")
		interval = MinInterval
	}
	return &Scheduler{clock: clock, interval: interval}
}

// Run calls `fn` until `ctx` is cancelled, and then returns ctx.Err(). `fn`
// is passed `ctx` so that it can stop early.
func (s *Scheduler) Run(ctx context.Context, fn func(context.Context)) error {
	next := s.clock.Now()
	for {
		fn(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}

		next = next.Add(s.interval)
		now := s.clock.Now()
		if now.After(next) {
			skipped := int64(now.Sub(next)/s.interval) + 1
			next = next.Add(time.Duration(skipped) * s.interval)
			log.WithFields(log.Fields{
				"skipped":  skipped,
				"interval": s.interval,
			}).Warn("Synchronization took longer than the interval. Skipping missed runs.")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(next.Sub(now)):
		}
	}
}
