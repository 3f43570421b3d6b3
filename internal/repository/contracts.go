package repository

import (
	"context"

	"github.com/maxviazov/racha-stats-service/internal/model"
)

// Pinger represents a minimal readiness check capability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// Repositories called with the ctx handed to fn join the transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// RachaRepository declares persistence operations for rachas (tenants).
type RachaRepository interface {
	Create(ctx context.Context, r model.Racha) (model.Racha, error)
	GetByID(ctx context.Context, id string) (model.Racha, error)
	List(ctx context.Context, p Page) (PageResult[model.Racha], error)
	// ListIDs returns every racha id; used by background jobs that walk all tenants.
	ListIDs(ctx context.Context) ([]string, error)
}

// MatchRepository declares persistence operations for matches and their player events.
type MatchRepository interface {
	Create(ctx context.Context, m model.Match) (model.Match, error)
	GetByID(ctx context.Context, id string) (model.Match, error)
	ListByRacha(ctx context.Context, rachaID string, p Page) (PageResult[model.Match], error)
	// ListFinalized returns every finalized match of a racha with its events loaded,
	// ordered by date ascending (unknown dates last) then id.
	ListFinalized(ctx context.Context, rachaID string) ([]model.Match, error)
	// Finalize stores the final score, replaces the match events and marks the match finalized.
	// It returns ErrConflict if the match is already finalized.
	Finalize(ctx context.Context, id string, res model.MatchResult) (model.Match, error)
	Delete(ctx context.Context, id string) (model.Match, error)
}
