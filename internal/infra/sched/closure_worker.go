package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// JobCloser closes open jobs whose application window has ended.
type JobCloser interface {
	CloseExpired(ctx context.Context, now time.Time) (int, error)
}

// JobClosureWorker periodically closes expired jobs. Closing goes through the
// observed store, so each closure also triggers the ranking pass.
type JobClosureWorker struct {
	interval time.Duration
	jobs     JobCloser
	log      *zerolog.Logger
	now      func() time.Time
}

func NewJobClosureWorker(interval time.Duration, jobs JobCloser, logger *zerolog.Logger) *JobClosureWorker {
	compLog := logger.With().Str("component", "JobClosureWorker").Logger()
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &JobClosureWorker{
		interval: interval,
		jobs:     jobs,
		log:      &compLog,
		now:      time.Now,
	}
}

func (w *JobClosureWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting job closure worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping job closure worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *JobClosureWorker) sweep(ctx context.Context) int {
	n, err := w.jobs.CloseExpired(ctx, w.now())
	if err != nil {
		w.log.Error().Err(err).Int("closed", n).Msg("job closure sweep failed")
	}
	if n > 0 {
		w.log.Info().Int("count", n).Msg("expired jobs closed")
	}
	return n
}
