package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/racha-stats-service/internal/handler"
	"github.com/maxviazov/racha-stats-service/internal/model"
	"github.com/maxviazov/racha-stats-service/internal/repository"
	"github.com/maxviazov/racha-stats-service/internal/service"
)

const rachaID = "2f1c0d9e-6f4a-4c1b-9f2e-3a6b7c8d9e01"

func TestStandings_OK(t *testing.T) {
	r, svcs := newEngine(t, stubPinger{})
	updated := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)
	year := 2025
	svcs.stats.standings = model.StatsReport[model.TeamStat]{
		RachaID:        rachaID,
		Period:         model.PeriodAno,
		Year:           &year,
		AvailableYears: []int{2025, 2024},
		Results:        []model.TeamStat{{TeamName: "Azul", Games: 1, Wins: 1, Points: 3}},
		UpdatedAt:      &updated,
	}

	w := do(r, http.MethodGet, handler.APIV1Prefix+"/estatisticas/classificacao?rachaId="+rachaID+"&periodo=ano&ano=2025", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, rachaID, svcs.stats.lastQuery.RachaID)
	assert.Equal(t, "ano", svcs.stats.lastQuery.Period)
	require.NotNil(t, svcs.stats.lastQuery.Year)
	assert.Equal(t, 2025, *svcs.stats.lastQuery.Year)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ano", body["periodo"])
	assert.EqualValues(t, 2025, body["ano"])
	assert.Equal(t, "2025-03-10T20:00:00Z", body["updatedAt"])
	assert.Len(t, body["results"], 1)
}

func TestRanking_EmptyReportShape(t *testing.T) {
	r, svcs := newEngine(t, stubPinger{})
	svcs.stats.ranking = model.StatsReport[model.PlayerStat]{
		RachaID:        rachaID,
		Period:         model.PeriodHistorico,
		AvailableYears: []int{},
		Results:        []model.PlayerStat{},
	}

	w := do(r, http.MethodGet, handler.APIV1Prefix+"/estatisticas/ranking-geral?rachaId="+rachaID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rachaId":"`+rachaID+`","periodo":"historico","ano":null,"availableYears":[],"results":[],"updatedAt":null}`, w.Body.String())
	assert.Nil(t, svcs.stats.lastQuery.Year)
}

func TestStats_Errors(t *testing.T) {
	cases := []struct {
		name   string
		query  string
		svcErr error
		want   int
		code   string
	}{
		{"year not a number", "?rachaId=" + rachaID + "&periodo=ano&ano=dois", nil, http.StatusBadRequest, "invalid_input"},
		{"service validation", "?periodo=mes", service.NewInvalidInputError([]service.FieldError{{Field: "periodo", Message: "bad"}}), http.StatusBadRequest, "invalid_input"},
		{"unknown racha", "?rachaId=" + rachaID, repository.ErrNotFound, http.StatusNotFound, "not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, svcs := newEngine(t, stubPinger{})
			svcs.stats.err = tc.svcErr
			for _, path := range []string{"/estatisticas/classificacao", "/estatisticas/ranking-geral"} {
				w := do(r, http.MethodGet, handler.APIV1Prefix+path+tc.query, "")
				assert.Equal(t, tc.want, w.Code)
				var body map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tc.code, body["error"])
			}
		})
	}
}
