package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/maxviazov/racha-stats-service/internal/model"
	"github.com/maxviazov/racha-stats-service/internal/repository"
)

type RachaFactory func(t *testing.T) (repository.RachaRepository, func())

type MatchFactory func(t *testing.T) (repo repository.MatchRepository, createRacha func(ctx context.Context, name string) (string, error), cleanup func())

type TxFactory func(t *testing.T) (tx repository.TxManager, rachas repository.RachaRepository, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

func RunRachaRepositoryContract(t *testing.T, makeRepo RachaFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Create(ctx, model.Racha{ID: uuid.NewString(), Name: "Quinta do Fut"})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.ID != created.ID || got.Name != created.Name {
			t.Fatalf("mismatch: %+v", got)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), uuid.NewString())
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list_pagination_total", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := 0; i < 7; i++ {
			name := "R-" + string(rune('A'+i))
			if _, err := repo.Create(ctx, model.Racha{ID: uuid.NewString(), Name: name}); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		res, err := repo.List(ctx, repository.Page{Limit: 3, Offset: 0})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 3 || res.Total != 7 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
		if res.Items[0].Name != "R-A" {
			t.Fatalf("expected name ordering, got %q first", res.Items[0].Name)
		}
		ids, err := repo.ListIDs(ctx)
		if err != nil {
			t.Fatalf("list ids: %v", err)
		}
		if len(ids) != 7 {
			t.Fatalf("expected 7 ids, got %d", len(ids))
		}
	})

	t.Run("create_duplicate_name_conflict", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if _, err := repo.Create(ctx, model.Racha{ID: uuid.NewString(), Name: "Dup"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
		_, err := repo.Create(ctx, model.Racha{ID: uuid.NewString(), Name: "Dup"})
		if !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func RunMatchRepositoryContract(t *testing.T, makeRepo MatchFactory) {
	t.Helper()

	newMatch := func(rachaID string, date time.Time) model.Match {
		return model.Match{
			ID:        uuid.NewString(),
			RachaID:   rachaID,
			Date:      date,
			TeamAName: "Azul",
			TeamBName: "Branco",
		}
	}

	t.Run("create_and_get_with_events", func(t *testing.T) {
		repo, mkRacha, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		rachaID, err := mkRacha(ctx, "Sabado")
		if err != nil {
			t.Fatalf("seed racha: %v", err)
		}
		m := newMatch(rachaID, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
		m.Finalizada = true
		m.GoalsA, m.GoalsB = 2, 1
		m.GoalEvents = []model.PlayerEvent{
			{PlayerID: "p1", PlayerName: "Ana", Team: "A"},
			{PlayerID: "p1", PlayerName: "Ana", Team: "A"},
			{PlayerID: "p2", PlayerName: "Bia", Team: "B"},
		}
		m.AssistEvents = []model.PlayerEvent{{PlayerID: "p3", PlayerName: "Caio", Team: "A"}}
		if _, err := repo.Create(ctx, m); err != nil {
			t.Fatalf("create: %v", err)
		}
		got, err := repo.GetByID(ctx, m.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.RachaID != rachaID || !got.Finalizada || got.GoalsA != 2 || got.GoalsB != 1 {
			t.Fatalf("mismatch: %+v", got)
		}
		if len(got.GoalEvents) != 3 || len(got.AssistEvents) != 1 || len(got.Attendance) != 0 {
			t.Fatalf("unexpected events: goals=%d assists=%d attendance=%d", len(got.GoalEvents), len(got.AssistEvents), len(got.Attendance))
		}
		if got.GoalEvents[2].PlayerID != "p2" {
			t.Fatalf("expected event order preserved, got %+v", got.GoalEvents)
		}
		if !got.Date.Equal(m.Date) {
			t.Fatalf("date mismatch: %v", got.Date)
		}
	})

	t.Run("unknown_racha_conflict", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.Create(context.Background(), newMatch(uuid.NewString(), time.Now().UTC()))
		if !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("list_finalized_order_and_nulls", func(t *testing.T) {
		repo, mkRacha, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		rachaID, err := mkRacha(ctx, "Domingo")
		if err != nil {
			t.Fatalf("seed racha: %v", err)
		}
		dates := []time.Time{
			time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
			{},
			time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		}
		for _, d := range dates {
			m := newMatch(rachaID, d)
			m.Finalizada = true
			if _, err := repo.Create(ctx, m); err != nil {
				t.Fatalf("seed match: %v", err)
			}
		}
		if _, err := repo.Create(ctx, newMatch(rachaID, time.Now().UTC())); err != nil {
			t.Fatalf("seed open match: %v", err)
		}

		got, err := repo.ListFinalized(ctx, rachaID)
		if err != nil {
			t.Fatalf("list finalized: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 finalized, got %d", len(got))
		}
		if got[0].Date.Year() != 2024 || got[1].Date.Year() != 2025 || !got[2].Date.IsZero() {
			t.Fatalf("unexpected order: %v %v %v", got[0].Date, got[1].Date, got[2].Date)
		}

		page, err := repo.ListByRacha(ctx, rachaID, repository.Page{Limit: 2})
		if err != nil {
			t.Fatalf("list by racha: %v", err)
		}
		if len(page.Items) != 2 || page.Total != 4 {
			t.Fatalf("unexpected page: len=%d total=%d", len(page.Items), page.Total)
		}
	})

	t.Run("finalize_once", func(t *testing.T) {
		repo, mkRacha, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		rachaID, err := mkRacha(ctx, "Terca")
		if err != nil {
			t.Fatalf("seed racha: %v", err)
		}
		m, err := repo.Create(ctx, newMatch(rachaID, time.Now().UTC()))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		res := model.MatchResult{
			GoalsA:     1,
			GoalEvents: []model.PlayerEvent{{PlayerID: "p1", PlayerName: "Ana", Team: "A"}},
			Attendance: []model.PlayerEvent{{PlayerID: "p9", PlayerName: "Zeca", Team: "B"}},
		}
		out, err := repo.Finalize(ctx, m.ID, res)
		if err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if !out.Finalizada || out.GoalsA != 1 || len(out.Attendance) != 1 {
			t.Fatalf("unexpected finalized match: %+v", out)
		}
		if _, err := repo.Finalize(ctx, m.ID, res); !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict on second finalize, got %v", err)
		}
		if _, err := repo.Finalize(ctx, uuid.NewString(), res); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for unknown match, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo, mkRacha, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		rachaID, err := mkRacha(ctx, "Quarta")
		if err != nil {
			t.Fatalf("seed racha: %v", err)
		}
		m, err := repo.Create(ctx, newMatch(rachaID, time.Now().UTC()))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		deleted, err := repo.Delete(ctx, m.ID)
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
		if deleted.RachaID != rachaID {
			t.Fatalf("expected deleted row returned, got %+v", deleted)
		}
		if _, err := repo.GetByID(ctx, m.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if _, err := repo.Delete(ctx, m.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		tx, rachas, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		id := uuid.NewString()
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			_, err := rachas.Create(ctx, model.Racha{ID: id, Name: "TxCommit"})
			return err
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := rachas.GetByID(ctx, id); err != nil {
			t.Fatalf("expected committed row visible, got err=%v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		tx, rachas, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		id := uuid.NewString()
		errMarker := errors.New("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := rachas.Create(ctx, model.Racha{ID: id, Name: "TxRollback"}); err != nil {
				return err
			}
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := rachas.GetByID(ctx, id); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}
