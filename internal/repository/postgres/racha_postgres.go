package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/racha-stats-service/internal/model"
	"github.com/maxviazov/racha-stats-service/internal/repository"
)

type rachaRepository struct{ pool *pgxpool.Pool }

func NewRachaRepository(pool *pgxpool.Pool) repository.RachaRepository {
	return &rachaRepository{pool: pool}
}

func (r *rachaRepository) Create(ctx context.Context, in model.Racha) (model.Racha, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Racha{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO rachas (id, name) VALUES ($1, $2)
		 RETURNING id::text, name, created_at, updated_at`,
		in.ID, in.Name,
	)
	var out model.Racha
	if err := row.Scan(&out.ID, &out.Name, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return model.Racha{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *rachaRepository) GetByID(ctx context.Context, id string) (model.Racha, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Racha{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`SELECT id::text, name, created_at, updated_at FROM rachas WHERE id = $1`, id,
	)
	var out model.Racha
	if err := row.Scan(&out.ID, &out.Name, &out.CreatedAt, &out.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Racha{}, repository.ErrNotFound
		}
		return model.Racha{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *rachaRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.Racha], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Racha]{}, err
	}
	limit, offset := sanitizePage(p)
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT id::text, name, created_at, updated_at, COUNT(*) OVER() AS total
		 FROM rachas
		 ORDER BY name, id
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.Racha]{}, repository.MapPgError(err)
	}
	defer rows.Close()

	res := repository.PageResult[model.Racha]{Items: make([]model.Racha, 0, limit)}
	for rows.Next() {
		var it model.Racha
		if err := rows.Scan(&it.ID, &it.Name, &it.CreatedAt, &it.UpdatedAt, &res.Total); err != nil {
			return repository.PageResult[model.Racha]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, it)
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.Racha]{}, repository.MapPgError(err)
	}
	return res, nil
}

func (r *rachaRepository) ListIDs(ctx context.Context) ([]string, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx, `SELECT id::text FROM rachas ORDER BY id`)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return ids, nil
}

var _ repository.RachaRepository = (*rachaRepository)(nil)
