package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinels every MatchRepository / RachaRepository implementation reports through.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrConflict      = errors.New("conflict")
)

// sqlStateKinds lists the SQLSTATE codes the services react to. A malformed uuid literal
// means the row cannot exist, so it reads as not found.
var sqlStateKinds = map[string]error{
	pgerrcode.UniqueViolation:           ErrAlreadyExists,
	pgerrcode.ForeignKeyViolation:       ErrConflict,
	pgerrcode.CheckViolation:            ErrConflict,
	pgerrcode.ExclusionViolation:        ErrConflict,
	pgerrcode.InvalidTextRepresentation: ErrNotFound,
}

// StoreError is a Postgres failure classified under one of the sentinels. Both the sentinel
// and the driver error stay reachable through errors.Is / errors.As.
type StoreError struct {
	Kind       error
	Constraint string
	Cause      *pgconn.PgError
}

func (e *StoreError) Error() string {
	if e.Constraint == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: constraint %s", e.Kind, e.Constraint)
}

func (e *StoreError) Unwrap() []error { return []error{e.Kind, e.Cause} }

// MapPgError classifies err for the service layer. Codes outside sqlStateKinds are returned
// untouched so callers still see the driver error.
func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	kind, ok := sqlStateKinds[pgErr.Code]
	if !ok {
		return err
	}
	return &StoreError{Kind: kind, Constraint: pgErr.ConstraintName, Cause: pgErr}
}
