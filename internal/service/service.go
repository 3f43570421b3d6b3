// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/maxviazov/racha-stats-service/internal/model"
	"github.com/maxviazov/racha-stats-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// NewInvalidInputError builds an aggregated validation error if any field errors are present.
func NewInvalidInputError(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	var v interface{ Fields() []FieldError }
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// StatsQuery selects the racha and period of a report. Period defaults to historico.
type StatsQuery struct {
	RachaID string
	Period  string
	Year    *int
}

// StatsService serves the aggregated reports.
type StatsService interface {
	GetStandings(ctx context.Context, q StatsQuery) (model.StatsReport[model.TeamStat], error)
	GetRanking(ctx context.Context, q StatsQuery) (model.StatsReport[model.PlayerStat], error)
	// Warm recomputes and caches the historico and current-year reports of a racha.
	Warm(ctx context.Context, rachaID string) error
}

// RachaService defines racha-oriented use cases.
type RachaService interface {
	CreateRacha(ctx context.Context, name string) (model.Racha, error)
	GetRacha(ctx context.Context, id string) (model.Racha, error)
	ListRachas(ctx context.Context, page repository.Page) (repository.PageResult[model.Racha], error)
}

// MatchInput is the payload that schedules a match.
type MatchInput struct {
	RachaID   string
	Date      time.Time
	TeamAName string
	TeamBName string
}

// ImportSummary reports what a spreadsheet import stored.
type ImportSummary struct {
	Imported int           `json:"imported"`
	Matches  []model.Match `json:"matches"`
}

// MatchService defines match-oriented use cases.
type MatchService interface {
	CreateMatch(ctx context.Context, in MatchInput) (model.Match, error)
	GetMatch(ctx context.Context, id string) (model.Match, error)
	ListMatches(ctx context.Context, rachaID string, page repository.Page) (repository.PageResult[model.Match], error)
	FinalizeMatch(ctx context.Context, id string, res model.MatchResult) (model.Match, error)
	DeleteMatch(ctx context.Context, id string) (model.Match, error)
	// ImportMatches stores every row of a CSV/XLSX file as a finalized match, all or nothing.
	ImportMatches(ctx context.Context, rachaID, filename string, r io.Reader) (ImportSummary, error)
}
