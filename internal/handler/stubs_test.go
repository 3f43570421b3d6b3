package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/racha-stats-service/internal/handler"
	"github.com/maxviazov/racha-stats-service/internal/model"
	"github.com/maxviazov/racha-stats-service/internal/repository"
	"github.com/maxviazov/racha-stats-service/internal/service"
)

// stubPinger implements handler.Pinger for health endpoints.
type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubStatsService struct {
	lastQuery service.StatsQuery
	standings model.StatsReport[model.TeamStat]
	ranking   model.StatsReport[model.PlayerStat]
	err       error
}

func (s *stubStatsService) GetStandings(_ context.Context, q service.StatsQuery) (model.StatsReport[model.TeamStat], error) {
	s.lastQuery = q
	return s.standings, s.err
}

func (s *stubStatsService) GetRanking(_ context.Context, q service.StatsQuery) (model.StatsReport[model.PlayerStat], error) {
	s.lastQuery = q
	return s.ranking, s.err
}

func (s *stubStatsService) Warm(context.Context, string) error { return s.err }

type stubRachaService struct {
	racha    model.Racha
	list     repository.PageResult[model.Racha]
	lastName string
	lastPage repository.Page
	err      error
}

func (s *stubRachaService) CreateRacha(_ context.Context, name string) (model.Racha, error) {
	s.lastName = name
	return s.racha, s.err
}

func (s *stubRachaService) GetRacha(context.Context, string) (model.Racha, error) {
	return s.racha, s.err
}

func (s *stubRachaService) ListRachas(_ context.Context, p repository.Page) (repository.PageResult[model.Racha], error) {
	s.lastPage = p
	return s.list, s.err
}

type stubMatchService struct {
	match      model.Match
	list       repository.PageResult[model.Match]
	summary    service.ImportSummary
	lastInput  service.MatchInput
	lastResult model.MatchResult
	lastID     string
	lastFile   string
	lastBody   string
	err        error
}

func (s *stubMatchService) CreateMatch(_ context.Context, in service.MatchInput) (model.Match, error) {
	s.lastInput = in
	return s.match, s.err
}

func (s *stubMatchService) GetMatch(_ context.Context, id string) (model.Match, error) {
	s.lastID = id
	return s.match, s.err
}

func (s *stubMatchService) ListMatches(_ context.Context, rachaID string, _ repository.Page) (repository.PageResult[model.Match], error) {
	s.lastID = rachaID
	return s.list, s.err
}

func (s *stubMatchService) FinalizeMatch(_ context.Context, id string, res model.MatchResult) (model.Match, error) {
	s.lastID = id
	s.lastResult = res
	return s.match, s.err
}

func (s *stubMatchService) DeleteMatch(_ context.Context, id string) (model.Match, error) {
	s.lastID = id
	return s.match, s.err
}

func (s *stubMatchService) ImportMatches(_ context.Context, rachaID, filename string, r io.Reader) (service.ImportSummary, error) {
	s.lastID = rachaID
	s.lastFile = filename
	b, err := io.ReadAll(r)
	if err != nil {
		return service.ImportSummary{}, err
	}
	s.lastBody = string(b)
	return s.summary, s.err
}

type services struct {
	stats   *stubStatsService
	rachas  *stubRachaService
	matches *stubMatchService
}

func newEngine(t *testing.T, p handler.Pinger) (*gin.Engine, services) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svcs := services{stats: &stubStatsService{}, rachas: &stubRachaService{}, matches: &stubMatchService{}}
	r := gin.New()
	handler.Register(r, handler.NewHealthHandler(p), svcs.stats, svcs.rachas, svcs.matches)
	return r, svcs
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
