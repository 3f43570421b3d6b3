package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxviazov/racha-stats-service/internal/model"
	"github.com/maxviazov/racha-stats-service/internal/repository"
)

// rachaService holds racha use-case logic: validation + orchestration, no transport / SQL details.
type rachaService struct {
	repo repository.RachaRepository
	log  zerolog.Logger
}

func NewRachaService(repo repository.RachaRepository, logger zerolog.Logger) RachaService {
	l := logger.With().Str("module", "service").Str("component", "racha").Logger()
	return &rachaService{repo: repo, log: l}
}

func (s *rachaService) CreateRacha(ctx context.Context, name string) (model.Racha, error) {
	start := time.Now()
	original := name
	name = strings.TrimSpace(name)

	var ferrs []FieldError
	if name == "" {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "must not be empty"})
	} else if ln := len([]rune(name)); ln < minRachaName || ln > maxRachaName {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "length must be between 2 and 80"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Str("name_raw", original).Interface("field_errors", ferrs).Msg("racha validation failed")
		return model.Racha{}, err
	}

	out, err := s.repo.Create(ctx, model.Racha{ID: uuid.NewString(), Name: name})
	if err != nil {
		// Repository surfaces domain-level errors already, do not wrap.
		s.log.Error().Err(err).Str("name", name).Msg("create racha failed")
		return model.Racha{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Str("racha_id", out.ID).Msg("racha created")
	return out, nil
}

func (s *rachaService) GetRacha(ctx context.Context, id string) (model.Racha, error) {
	if !isValidUUID(id) {
		return model.Racha{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must be a UUID"}})
	}
	return s.repo.GetByID(ctx, canonicalID(id))
}

func (s *rachaService) ListRachas(ctx context.Context, page repository.Page) (repository.PageResult[model.Racha], error) {
	p := normalizePage(page)
	res, err := s.repo.List(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list rachas failed")
		return repository.PageResult[model.Racha]{}, err
	}
	return res, nil
}
