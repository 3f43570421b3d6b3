package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxviazov/racha-stats-service/internal/cache"
	"github.com/maxviazov/racha-stats-service/internal/importer"
	"github.com/maxviazov/racha-stats-service/internal/model"
	"github.com/maxviazov/racha-stats-service/internal/repository"
	"github.com/maxviazov/racha-stats-service/internal/stats"
)

type matchService struct {
	rachas  repository.RachaRepository
	matches repository.MatchRepository
	tx      repository.TxManager
	cache   cache.Stats
	log     zerolog.Logger
}

// NewMatchService builds the match use cases. Writes that change finalized history
// invalidate the racha's cached reports.
func NewMatchService(rachas repository.RachaRepository, matches repository.MatchRepository, tx repository.TxManager, c cache.Stats, logger zerolog.Logger) MatchService {
	if c == nil {
		c = cache.Noop{}
	}
	l := logger.With().Str("module", "service").Str("component", "match").Logger()
	return &matchService{rachas: rachas, matches: matches, tx: tx, cache: c, log: l}
}

func (s *matchService) CreateMatch(ctx context.Context, in MatchInput) (model.Match, error) {
	teamA := strings.TrimSpace(in.TeamAName)
	teamB := strings.TrimSpace(in.TeamBName)

	var ferrs []FieldError
	if !isValidUUID(in.RachaID) {
		ferrs = append(ferrs, FieldError{Field: "rachaId", Message: "must be a UUID"})
	}
	ferrs = append(ferrs, validateTeamName("teamAName", teamA)...)
	ferrs = append(ferrs, validateTeamName("teamBName", teamB)...)
	if teamA != "" && strings.EqualFold(teamA, teamB) {
		ferrs = append(ferrs, FieldError{Field: "teams", Message: "team A and team B must differ"})
	}
	// Early exit if basic structure is invalid, do not touch the database.
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("match validation failed (structure)")
		return model.Match{}, err
	}

	rachaID := canonicalID(in.RachaID)
	var out model.Match
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.rachas.GetByID(ctx, rachaID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return NewInvalidInputError([]FieldError{{Field: "rachaId", Message: "racha does not exist"}})
			}
			return err
		}
		date := in.Date
		if !date.IsZero() {
			date = date.UTC()
		}
		created, err := s.matches.Create(ctx, model.Match{
			ID:        uuid.NewString(),
			RachaID:   rachaID,
			Date:      date,
			TeamAName: teamA,
			TeamBName: teamB,
		})
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidInput) {
			s.log.Error().Err(err).Str("racha_id", rachaID).Msg("create match failed")
		}
		return model.Match{}, err
	}
	s.log.Info().Str("match_id", out.ID).Str("racha_id", rachaID).Msg("match created")
	return out, nil
}

func (s *matchService) GetMatch(ctx context.Context, id string) (model.Match, error) {
	if !isValidUUID(id) {
		return model.Match{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must be a UUID"}})
	}
	return s.matches.GetByID(ctx, canonicalID(id))
}

func (s *matchService) ListMatches(ctx context.Context, rachaID string, page repository.Page) (repository.PageResult[model.Match], error) {
	if !isValidUUID(rachaID) {
		return repository.PageResult[model.Match]{}, NewInvalidInputError([]FieldError{{Field: "rachaId", Message: "must be a UUID"}})
	}
	p := normalizePage(page)
	res, err := s.matches.ListByRacha(ctx, canonicalID(rachaID), p)
	if err != nil {
		s.log.Error().Err(err).Str("racha_id", rachaID).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list matches failed")
		return repository.PageResult[model.Match]{}, err
	}
	return res, nil
}

// FinalizeMatch closes a match with its final score. When goal events are supplied they
// must add up to the score on each side.
func (s *matchService) FinalizeMatch(ctx context.Context, id string, res model.MatchResult) (model.Match, error) {
	start := time.Now()
	res.GoalEvents = trimEvents(res.GoalEvents)
	res.AssistEvents = trimEvents(res.AssistEvents)
	res.Attendance = trimEvents(res.Attendance)

	var ferrs []FieldError
	if !isValidUUID(id) {
		ferrs = append(ferrs, FieldError{Field: "id", Message: "must be a UUID"})
	}
	if res.GoalsA < 0 {
		ferrs = append(ferrs, FieldError{Field: "goalsA", Message: "must be >= 0"})
	}
	if res.GoalsB < 0 {
		ferrs = append(ferrs, FieldError{Field: "goalsB", Message: "must be >= 0"})
	}
	ferrs = append(ferrs, validateEvents("goalEvents", res.GoalEvents)...)
	ferrs = append(ferrs, validateEvents("assistEvents", res.AssistEvents)...)
	ferrs = append(ferrs, validateEvents("attendance", res.Attendance)...)
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("finalize validation failed (structure)")
		return model.Match{}, err
	}

	id = canonicalID(id)
	var out model.Match
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.matches.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current.Finalizada {
			return repository.ErrConflict
		}
		current.GoalsA, current.GoalsB = res.GoalsA, res.GoalsB
		if err := NewInvalidInputError(checkSides(current, res)); err != nil {
			return err
		}
		finalized, err := s.matches.Finalize(ctx, id, res)
		if err != nil {
			return err
		}
		out = finalized
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			s.log.Debug().Interface("field_errors", FieldErrors(err)).Str("match_id", id).Msg("finalize validation failed (events)")
		} else if !errors.Is(err, repository.ErrNotFound) && !errors.Is(err, repository.ErrConflict) {
			s.log.Error().Err(err).Str("match_id", id).Msg("finalize match failed")
		}
		return model.Match{}, err
	}

	s.invalidate(ctx, out.RachaID)
	s.log.Info().
		Dur("took", time.Since(start)).
		Str("match_id", out.ID).
		Int("goals_a", out.GoalsA).
		Int("goals_b", out.GoalsB).
		Msg("match finalized")
	return out, nil
}

// checkSides verifies every event names a side of m and that goal events match the score.
func checkSides(m model.Match, res model.MatchResult) []FieldError {
	var ferrs []FieldError
	counts := map[model.Side]int{}
	check := func(field string, events []model.PlayerEvent, count bool) {
		for i, ev := range events {
			side, ok := stats.ResolveSide(m, ev.Team)
			if !ok {
				ferrs = append(ferrs, FieldError{Field: indexed(field, i) + ".team", Message: "must be A, B or one of the match team names"})
				continue
			}
			if count {
				counts[side]++
			}
		}
	}
	check("goalEvents", res.GoalEvents, true)
	check("assistEvents", res.AssistEvents, false)
	check("attendance", res.Attendance, false)

	if len(res.GoalEvents) > 0 && len(ferrs) == 0 {
		if counts[model.SideA] != m.GoalsA || counts[model.SideB] != m.GoalsB {
			ferrs = append(ferrs, FieldError{
				Field:   "goalEvents",
				Message: fmt.Sprintf("goal events per side (%d-%d) must match the score (%d-%d)", counts[model.SideA], counts[model.SideB], m.GoalsA, m.GoalsB),
			})
		}
	}
	return ferrs
}

func (s *matchService) DeleteMatch(ctx context.Context, id string) (model.Match, error) {
	if !isValidUUID(id) {
		return model.Match{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must be a UUID"}})
	}
	var out model.Match
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		deleted, err := s.matches.Delete(ctx, canonicalID(id))
		if err != nil {
			return err
		}
		out = deleted
		return nil
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Str("match_id", id).Msg("delete match failed")
		}
		return model.Match{}, err
	}
	if out.Finalizada {
		s.invalidate(ctx, out.RachaID)
	}
	s.log.Info().Str("match_id", out.ID).Bool("finalizada", out.Finalizada).Msg("match deleted")
	return out, nil
}

func (s *matchService) ImportMatches(ctx context.Context, rachaID, filename string, r io.Reader) (ImportSummary, error) {
	if !isValidUUID(rachaID) {
		return ImportSummary{}, NewInvalidInputError([]FieldError{{Field: "rachaId", Message: "must be a UUID"}})
	}
	rachaID = canonicalID(rachaID)
	if _, err := s.rachas.GetByID(ctx, rachaID); err != nil {
		return ImportSummary{}, err
	}

	rows, err := importer.Parse(filename, r)
	if err != nil {
		return ImportSummary{}, importError(err)
	}

	summary := ImportSummary{Matches: make([]model.Match, 0, len(rows))}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, row := range rows {
			created, err := s.matches.Create(ctx, model.Match{
				ID:         uuid.NewString(),
				RachaID:    rachaID,
				Date:       row.Date,
				Finalizada: true,
				TeamAName:  row.TeamAName,
				TeamBName:  row.TeamBName,
				GoalsA:     row.GoalsA,
				GoalsB:     row.GoalsB,
			})
			if err != nil {
				return fmt.Errorf("import line %d: %w", row.Line, err)
			}
			summary.Matches = append(summary.Matches, created)
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Str("racha_id", rachaID).Str("file", filename).Msg("import matches failed")
		return ImportSummary{}, err
	}
	summary.Imported = len(summary.Matches)

	s.invalidate(ctx, rachaID)
	s.log.Info().Str("racha_id", rachaID).Str("file", filename).Int("imported", summary.Imported).Msg("matches imported")
	return summary, nil
}

// importError turns parser failures into client-facing field errors.
func importError(err error) error {
	var perr *importer.ParseError
	switch {
	case errors.Is(err, importer.ErrTooLarge):
		return err
	case errors.As(err, &perr):
		ferrs := make([]FieldError, 0, len(perr.Rows))
		for _, re := range perr.Rows {
			ferrs = append(ferrs, FieldError{
				Field:   fmt.Sprintf("file[line %d].%s", re.Line, re.Column),
				Message: re.Message,
			})
		}
		return NewInvalidInputError(ferrs)
	case errors.Is(err, importer.ErrUnsupportedFormat), errors.Is(err, importer.ErrEmpty):
		return NewInvalidInputError([]FieldError{{Field: "file", Message: err.Error()}})
	default:
		return NewInvalidInputError([]FieldError{{Field: "file", Message: "could not be read: " + err.Error()}})
	}
}

// invalidate drops the cached reports of rachaID. Failures are logged, never returned.
func (s *matchService) invalidate(ctx context.Context, rachaID string) {
	if err := s.cache.InvalidateRacha(ctx, rachaID); err != nil {
		s.log.Warn().Err(err).Str("racha_id", rachaID).Msg("stats cache invalidation failed")
	}
}

func validateTeamName(field, name string) []FieldError {
	if name == "" {
		return []FieldError{{Field: field, Message: "must not be empty"}}
	}
	if len([]rune(name)) > maxTeamName {
		return []FieldError{{Field: field, Message: "length must be at most 60"}}
	}
	return nil
}
