package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	WarmJobName        = "stats-cache-warmer"
	defaultWarmTimeout = 2 * time.Minute
)

// RachaLister yields every racha id.
type RachaLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

// ReportWarmer precomputes the cached reports of one racha.
type ReportWarmer interface {
	Warm(ctx context.Context, rachaID string) error
}

// StatsWarmer refreshes cached reports for every racha.
type StatsWarmer struct {
	rachas  RachaLister
	reports ReportWarmer
	timeout time.Duration
	log     zerolog.Logger
}

func NewStatsWarmer(rachas RachaLister, reports ReportWarmer, timeout time.Duration, logger zerolog.Logger) *StatsWarmer {
	if timeout <= 0 {
		timeout = defaultWarmTimeout
	}
	l := logger.With().Str("module", "scheduler").Str("component", "warmer").Logger()
	return &StatsWarmer{rachas: rachas, reports: reports, timeout: timeout, log: l}
}

// Run warms every racha and returns how many succeeded. One failing racha does not stop the rest.
func (w *StatsWarmer) Run(ctx context.Context) (int, error) {
	ids, err := w.rachas.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	warmed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return warmed, err
		}
		if err := w.reports.Warm(ctx, id); err != nil {
			w.log.Warn().Err(err).Str("racha_id", id).Msg("warm racha failed")
			continue
		}
		warmed++
	}
	w.log.Info().Int("rachas", len(ids)).Int("warmed", warmed).Dur("took", time.Since(start)).Msg("stats cache warm cycle done")
	return warmed, nil
}

// Task adapts Run to a scheduler job bound to parent; each run gets its own timeout.
func (w *StatsWarmer) Task(parent context.Context) func() {
	return func() {
		ctx, cancel := context.WithTimeout(parent, w.timeout)
		defer cancel()
		if _, err := w.Run(ctx); err != nil {
			w.log.Error().Err(err).Msg("stats cache warm cycle failed")
		}
	}
}
