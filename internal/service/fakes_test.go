package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/maxviazov/racha-stats-service/internal/cache"
	"github.com/maxviazov/racha-stats-service/internal/model"
	"github.com/maxviazov/racha-stats-service/internal/repository"
	"github.com/maxviazov/racha-stats-service/internal/service"
)

type fakeRachaRepo struct {
	items     map[string]model.Racha
	createErr error
	lastPage  repository.Page
}

func newFakeRachaRepo(seed ...model.Racha) *fakeRachaRepo {
	f := &fakeRachaRepo{items: map[string]model.Racha{}}
	for _, r := range seed {
		f.items[r.ID] = r
	}
	return f
}

func (f *fakeRachaRepo) Create(_ context.Context, r model.Racha) (model.Racha, error) {
	if f.createErr != nil {
		return model.Racha{}, f.createErr
	}
	f.items[r.ID] = r
	return r, nil
}

func (f *fakeRachaRepo) GetByID(_ context.Context, id string) (model.Racha, error) {
	it, ok := f.items[id]
	if !ok {
		return model.Racha{}, repository.ErrNotFound
	}
	return it, nil
}

func (f *fakeRachaRepo) List(_ context.Context, p repository.Page) (repository.PageResult[model.Racha], error) {
	f.lastPage = p
	res := repository.PageResult[model.Racha]{}
	for _, v := range f.items {
		res.Items = append(res.Items, v)
	}
	res.Total = len(res.Items)
	return res, nil
}

func (f *fakeRachaRepo) ListIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.items))
	for id := range f.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

var _ repository.RachaRepository = (*fakeRachaRepo)(nil)

type fakeMatchRepo struct {
	items          map[string]model.Match
	order          []string
	listErr        error
	createErr      error
	finalizedCalls int
	// onListFinalized runs after the matches are read, before they are returned.
	onListFinalized func()
}

func newFakeMatchRepo(seed ...model.Match) *fakeMatchRepo {
	f := &fakeMatchRepo{items: map[string]model.Match{}}
	for _, m := range seed {
		f.items[m.ID] = m
		f.order = append(f.order, m.ID)
	}
	return f
}

func (f *fakeMatchRepo) Create(_ context.Context, m model.Match) (model.Match, error) {
	if f.createErr != nil {
		return model.Match{}, f.createErr
	}
	f.items[m.ID] = m
	f.order = append(f.order, m.ID)
	return m, nil
}

func (f *fakeMatchRepo) GetByID(_ context.Context, id string) (model.Match, error) {
	it, ok := f.items[id]
	if !ok {
		return model.Match{}, repository.ErrNotFound
	}
	return it, nil
}

func (f *fakeMatchRepo) ListByRacha(_ context.Context, rachaID string, p repository.Page) (repository.PageResult[model.Match], error) {
	res := repository.PageResult[model.Match]{}
	for _, id := range f.order {
		if m, ok := f.items[id]; ok && m.RachaID == rachaID {
			res.Items = append(res.Items, m)
		}
	}
	res.Total = len(res.Items)
	return res, nil
}

func (f *fakeMatchRepo) ListFinalized(_ context.Context, rachaID string) ([]model.Match, error) {
	f.finalizedCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Match
	for _, id := range f.order {
		if m, ok := f.items[id]; ok && m.RachaID == rachaID && m.Finalizada {
			out = append(out, m)
		}
	}
	if f.onListFinalized != nil {
		f.onListFinalized()
	}
	return out, nil
}

func (f *fakeMatchRepo) Finalize(_ context.Context, id string, res model.MatchResult) (model.Match, error) {
	m, ok := f.items[id]
	if !ok {
		return model.Match{}, repository.ErrNotFound
	}
	if m.Finalizada {
		return model.Match{}, repository.ErrConflict
	}
	m.Finalizada = true
	m.GoalsA, m.GoalsB = res.GoalsA, res.GoalsB
	m.GoalEvents, m.AssistEvents, m.Attendance = res.GoalEvents, res.AssistEvents, res.Attendance
	f.items[id] = m
	return m, nil
}

func (f *fakeMatchRepo) Delete(_ context.Context, id string) (model.Match, error) {
	m, ok := f.items[id]
	if !ok {
		return model.Match{}, repository.ErrNotFound
	}
	delete(f.items, id)
	return m, nil
}

var _ repository.MatchRepository = (*fakeMatchRepo)(nil)

// fakeTx runs fn inline and records how many units of work it saw.
type fakeTx struct{ calls int }

func (f *fakeTx) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	f.calls++
	return fn(ctx)
}

var _ repository.TxManager = (*fakeTx)(nil)

// memCache keeps values as-is; Load copies them into dst through a type switch on report kinds.
type memCache struct {
	mu          sync.Mutex
	items       map[string]any
	gens        map[string]int64
	invalidated []string
	err         error
}

func newMemCache() *memCache { return &memCache{items: map[string]any{}, gens: map[string]int64{}} }

func (c *memCache) Generation(_ context.Context, rachaID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	return c.gens[rachaID], nil
}

func (c *memCache) Load(_ context.Context, key cache.Key, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	v, ok := c.items[key.String()]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *model.StatsReport[model.TeamStat]:
		*d = v.(model.StatsReport[model.TeamStat])
	case *model.StatsReport[model.PlayerStat]:
		*d = v.(model.StatsReport[model.PlayerStat])
	default:
		return false, errors.New("unexpected cache destination")
	}
	return true, nil
}

func (c *memCache) Store(_ context.Context, key cache.Key, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.items[key.String()] = v
	return nil
}

func (c *memCache) InvalidateRacha(_ context.Context, rachaID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, rachaID)
	if c.err != nil {
		return c.err
	}
	c.gens[rachaID]++
	for k := range c.items {
		if strings.HasPrefix(k, "stats:"+rachaID+":") {
			delete(c.items, k)
		}
	}
	return nil
}

var _ cache.Stats = (*memCache)(nil)

func fieldNames(err error) []string {
	var out []string
	for _, f := range service.FieldErrors(err) {
		out = append(out, f.Field)
	}
	return out
}
