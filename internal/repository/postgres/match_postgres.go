package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/racha-stats-service/internal/model"
	"github.com/maxviazov/racha-stats-service/internal/repository"
)

const matchColumns = `id::text, racha_id::text, date, team_a_name, team_b_name, goals_a, goals_b, finalizada, created_at, updated_at`

const (
	kindGoal     = "goal"
	kindAssist   = "assist"
	kindPresence = "presence"
)

type matchRepository struct {
	pool *pgxpool.Pool
	tx   repository.TxManager
}

func NewMatchRepository(pool *pgxpool.Pool) repository.MatchRepository {
	return &matchRepository{pool: pool, tx: NewTxManager(pool)}
}

func (r *matchRepository) Create(ctx context.Context, m model.Match) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	var out model.Match
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		row := getQ(ctx, r.pool).QueryRow(ctx,
			`INSERT INTO matches (id, racha_id, date, team_a_name, team_b_name, goals_a, goals_b, finalizada)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING `+matchColumns,
			m.ID, m.RachaID, nullableTime(m.Date), m.TeamAName, m.TeamBName, m.GoalsA, m.GoalsB, m.Finalizada,
		)
		created, err := scanMatch(row)
		if err != nil {
			return err
		}
		if err := r.insertEvents(ctx, created.ID, m.GoalEvents, m.AssistEvents, m.Attendance); err != nil {
			return err
		}
		created.GoalEvents, created.AssistEvents, created.Attendance = copyEvents(m.GoalEvents), copyEvents(m.AssistEvents), copyEvents(m.Attendance)
		out = created
		return nil
	})
	if err != nil {
		return model.Match{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *matchRepository) GetByID(ctx context.Context, id string) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	out, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, repository.ErrNotFound
		}
		return model.Match{}, repository.MapPgError(err)
	}
	list := []model.Match{out}
	if err := r.attachEvents(ctx, list); err != nil {
		return model.Match{}, err
	}
	return list[0], nil
}

func (r *matchRepository) ListByRacha(ctx context.Context, rachaID string, p repository.Page) (repository.PageResult[model.Match], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Match]{}, err
	}
	limit, offset := sanitizePage(p)
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT `+matchColumns+`, COUNT(*) OVER() AS total
		 FROM matches
		 WHERE racha_id = $1
		 ORDER BY date DESC NULLS LAST, id
		 LIMIT $2 OFFSET $3`,
		rachaID, limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.Match]{}, repository.MapPgError(err)
	}
	defer rows.Close()

	res := repository.PageResult[model.Match]{Items: make([]model.Match, 0, limit)}
	for rows.Next() {
		it, err := scanMatch(rows, &res.Total)
		if err != nil {
			return repository.PageResult[model.Match]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, it)
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.Match]{}, repository.MapPgError(err)
	}
	if err := r.attachEvents(ctx, res.Items); err != nil {
		return repository.PageResult[model.Match]{}, err
	}
	return res, nil
}

func (r *matchRepository) ListFinalized(ctx context.Context, rachaID string) ([]model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT `+matchColumns+`
		 FROM matches
		 WHERE racha_id = $1 AND finalizada
		 ORDER BY date ASC NULLS LAST, id`,
		rachaID,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	out := make([]model.Match, 0, 32)
	for rows.Next() {
		it, err := scanMatch(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.MapPgError(err)
	}
	if err := r.attachEvents(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *matchRepository) Finalize(ctx context.Context, id string, res model.MatchResult) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	var out model.Match
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		row := getQ(ctx, r.pool).QueryRow(ctx,
			`UPDATE matches
			 SET goals_a = $2, goals_b = $3, finalizada = TRUE, updated_at = NOW()
			 WHERE id = $1 AND NOT finalizada
			 RETURNING `+matchColumns,
			id, res.GoalsA, res.GoalsB,
		)
		updated, err := scanMatch(row)
		if errors.Is(err, pgx.ErrNoRows) {
			// either missing or already closed
			if _, gerr := r.GetByID(ctx, id); gerr != nil {
				return gerr
			}
			return repository.ErrConflict
		}
		if err != nil {
			return err
		}
		if _, err := getQ(ctx, r.pool).Exec(ctx, `DELETE FROM match_events WHERE match_id = $1`, id); err != nil {
			return err
		}
		if err := r.insertEvents(ctx, id, res.GoalEvents, res.AssistEvents, res.Attendance); err != nil {
			return err
		}
		updated.GoalEvents, updated.AssistEvents, updated.Attendance = copyEvents(res.GoalEvents), copyEvents(res.AssistEvents), copyEvents(res.Attendance)
		out = updated
		return nil
	})
	if err != nil {
		return model.Match{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *matchRepository) Delete(ctx context.Context, id string) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx, `DELETE FROM matches WHERE id = $1 RETURNING `+matchColumns, id)
	out, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, repository.ErrNotFound
		}
		return model.Match{}, repository.MapPgError(err)
	}
	return out, nil
}

// insertEvents bulk loads the three event lists with COPY, keeping list order in seq.
func (r *matchRepository) insertEvents(ctx context.Context, matchID string, goals, assists, presence []model.PlayerEvent) error {
	rows := make([][]any, 0, len(goals)+len(assists)+len(presence))
	add := func(kind string, list []model.PlayerEvent) {
		for i, ev := range list {
			rows = append(rows, []any{matchID, kind, i, ev.PlayerID, ev.PlayerName, ev.Team})
		}
	}
	add(kindGoal, goals)
	add(kindAssist, assists)
	add(kindPresence, presence)
	if len(rows) == 0 {
		return nil
	}
	_, err := getQ(ctx, r.pool).CopyFrom(ctx,
		pgx.Identifier{"match_events"},
		[]string{"match_id", "kind", "seq", "player_id", "player_name", "team"},
		pgx.CopyFromRows(rows),
	)
	return err
}

// attachEvents loads the events of every match in list with a single query.
func (r *matchRepository) attachEvents(ctx context.Context, list []model.Match) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(list))
	pos := make(map[string]int, len(list))
	for i, m := range list {
		id, err := uuid.Parse(m.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
		pos[m.ID] = i
	}

	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT match_id::text, kind, player_id, player_name, team
		 FROM match_events
		 WHERE match_id = ANY($1)
		 ORDER BY match_id, kind, seq`,
		ids,
	)
	if err != nil {
		return repository.MapPgError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var matchID, kind string
		var ev model.PlayerEvent
		if err := rows.Scan(&matchID, &kind, &ev.PlayerID, &ev.PlayerName, &ev.Team); err != nil {
			return repository.MapPgError(err)
		}
		i, ok := pos[matchID]
		if !ok {
			continue
		}
		m := &list[i]
		switch kind {
		case kindGoal:
			m.GoalEvents = append(m.GoalEvents, ev)
		case kindAssist:
			m.AssistEvents = append(m.AssistEvents, ev)
		case kindPresence:
			m.Attendance = append(m.Attendance, ev)
		}
	}
	return repository.MapPgError(rows.Err())
}

func scanMatch(row pgx.Row, extra ...any) (model.Match, error) {
	var m model.Match
	var date *time.Time
	dest := append([]any{
		&m.ID, &m.RachaID, &date, &m.TeamAName, &m.TeamBName,
		&m.GoalsA, &m.GoalsB, &m.Finalizada, &m.CreatedAt, &m.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return model.Match{}, err
	}
	if date != nil {
		m.Date = *date
	}
	return m, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func copyEvents(in []model.PlayerEvent) []model.PlayerEvent {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.PlayerEvent, len(in))
	copy(out, in)
	return out
}

var _ repository.MatchRepository = (*matchRepository)(nil)
