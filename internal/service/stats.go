package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/racha-stats-service/internal/cache"
	"github.com/maxviazov/racha-stats-service/internal/model"
	"github.com/maxviazov/racha-stats-service/internal/repository"
	"github.com/maxviazov/racha-stats-service/internal/stats"
)

type statsService struct {
	rachas  repository.RachaRepository
	matches repository.MatchRepository
	cache   cache.Stats
	now     func() time.Time
	log     zerolog.Logger
}

// NewStatsService wires the aggregator to storage. A nil cache disables caching.
func NewStatsService(rachas repository.RachaRepository, matches repository.MatchRepository, c cache.Stats, logger zerolog.Logger) StatsService {
	if c == nil {
		c = cache.Noop{}
	}
	l := logger.With().Str("module", "service").Str("component", "stats").Logger()
	return &statsService{rachas: rachas, matches: matches, cache: c, now: time.Now, log: l}
}

func (s *statsService) GetStandings(ctx context.Context, q StatsQuery) (model.StatsReport[model.TeamStat], error) {
	return getReport(ctx, s, q, cache.KindStandings, stats.ComputeTeamStats)
}

func (s *statsService) GetRanking(ctx context.Context, q StatsQuery) (model.StatsReport[model.PlayerStat], error) {
	return getReport(ctx, s, q, cache.KindRanking, stats.ComputePlayerStats)
}

// getReport is the read-through path shared by both reports: validate, try the cache,
// load finalized matches, aggregate and store.
func getReport[T any](ctx context.Context, s *statsService, q StatsQuery, kind cache.Kind, compute func([]model.Match) []T) (model.StatsReport[T], error) {
	period, ferrs := validateStatsQuery(q)
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("stats query validation failed")
		return model.StatsReport[T]{}, err
	}
	q.RachaID = canonicalID(q.RachaID)
	q.Period = string(period)
	if period == model.PeriodHistorico {
		q.Year = nil
	}

	// the generation must be read before the matches so a concurrent invalidation wins
	gen, genErr := s.cache.Generation(ctx, q.RachaID)
	if genErr != nil {
		s.log.Warn().Err(genErr).Str("racha_id", q.RachaID).Msg("stats cache generation read failed")
	}
	key := cache.Key{RachaID: q.RachaID, Gen: gen, Kind: kind, Period: q.Period, Year: q.Year}
	if genErr == nil {
		var cached model.StatsReport[T]
		hit, err := s.cache.Load(ctx, key, &cached)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key.String()).Msg("stats cache read failed")
		}
		if hit {
			return cached, nil
		}
	}

	if _, err := s.rachas.GetByID(ctx, q.RachaID); err != nil {
		return model.StatsReport[T]{}, err
	}
	all, err := s.matches.ListFinalized(ctx, q.RachaID)
	if err != nil {
		s.log.Error().Err(err).Str("racha_id", q.RachaID).Msg("load finalized matches failed")
		return model.StatsReport[T]{}, err
	}

	start := time.Now()
	report := buildReport(q.RachaID, period, q.Year, all, compute)
	s.log.Debug().
		Str("racha_id", q.RachaID).
		Str("kind", string(kind)).
		Str("periodo", q.Period).
		Int("matches", len(all)).
		Int("results", len(report.Results)).
		Dur("took", time.Since(start)).
		Msg("stats report computed")

	if genErr != nil {
		return report, nil
	}
	if err := s.cache.Store(ctx, key, report); err != nil {
		s.log.Warn().Err(err).Str("key", key.String()).Msg("stats cache write failed")
	}
	return report, nil
}

// buildReport filters all by period and aggregates. Available years always come from the
// full history so clients can offer every year regardless of the current filter.
func buildReport[T any](rachaID string, period model.Period, year *int, all []model.Match, compute func([]model.Match) []T) model.StatsReport[T] {
	filtered := stats.FilterMatchesByPeriod(all, period, year)
	results := compute(filtered)
	if results == nil {
		results = []T{}
	}
	years := stats.ExtractAvailableYears(all)
	if years == nil {
		years = []int{}
	}
	return model.StatsReport[T]{
		RachaID:        rachaID,
		Period:         period,
		Year:           year,
		AvailableYears: years,
		Results:        results,
		UpdatedAt:      stats.ComputeUpdatedAt(filtered),
	}
}

func (s *statsService) Warm(ctx context.Context, rachaID string) error {
	if !isValidUUID(rachaID) {
		return NewInvalidInputError([]FieldError{{Field: "rachaId", Message: "must be a UUID"}})
	}
	rachaID = canonicalID(rachaID)
	gen, err := s.cache.Generation(ctx, rachaID)
	if err != nil {
		return err
	}
	all, err := s.matches.ListFinalized(ctx, rachaID)
	if err != nil {
		return err
	}
	year := s.now().UTC().Year()
	queries := []struct {
		period model.Period
		year   *int
	}{
		{model.PeriodHistorico, nil},
		{model.PeriodAno, &year},
	}
	for _, q := range queries {
		standings := buildReport(rachaID, q.period, q.year, all, stats.ComputeTeamStats)
		if err := s.cache.Store(ctx, cache.Key{RachaID: rachaID, Gen: gen, Kind: cache.KindStandings, Period: string(q.period), Year: q.year}, standings); err != nil {
			return err
		}
		ranking := buildReport(rachaID, q.period, q.year, all, stats.ComputePlayerStats)
		if err := s.cache.Store(ctx, cache.Key{RachaID: rachaID, Gen: gen, Kind: cache.KindRanking, Period: string(q.period), Year: q.year}, ranking); err != nil {
			return err
		}
	}
	s.log.Debug().Str("racha_id", rachaID).Int("matches", len(all)).Msg("stats cache warmed")
	return nil
}
