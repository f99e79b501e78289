package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// StatsWorker runs report once on startup and then on every tick.
type StatsWorker struct {
	interval time.Duration
	report   func()
	log      *zerolog.Logger
}

func NewStatsWorker(interval time.Duration, report func(), logger *zerolog.Logger) *StatsWorker {
	compLog := logger.With().Str("component", "StatsWorker").Logger()
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &StatsWorker{interval: interval, report: report, log: &compLog}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	w.log.Debug().Msg("Starting stats worker")
	w.report()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.report()
		}
	}
}
