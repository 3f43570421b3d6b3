package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/racha-stats-service/internal/handler"
	"github.com/maxviazov/racha-stats-service/internal/model"
	"github.com/maxviazov/racha-stats-service/internal/repository"
	"github.com/maxviazov/racha-stats-service/internal/service"
)

func TestCreateRacha(t *testing.T) {
	r, svcs := newEngine(t, stubPinger{})
	svcs.rachas.racha = model.Racha{ID: rachaID, Name: "Quinta do Fut"}

	w := do(r, http.MethodPost, handler.APIV1Prefix+"/rachas", `{"name":"Quinta do Fut"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Quinta do Fut", svcs.rachas.lastName)

	var got model.Racha
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, rachaID, got.ID)
}

func TestCreateRacha_Errors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		svcErr error
		want   int
	}{
		{"malformed json", `{"name":`, nil, http.StatusBadRequest},
		{"invalid name", `{"name":""}`, service.NewInvalidInputError([]service.FieldError{{Field: "name", Message: "must not be empty"}}), http.StatusBadRequest},
		{"duplicate", `{"name":"Quinta"}`, repository.ErrAlreadyExists, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, svcs := newEngine(t, stubPinger{})
			svcs.rachas.err = tc.svcErr
			w := do(r, http.MethodPost, handler.APIV1Prefix+"/rachas", tc.body)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestGetRacha_NotFound(t *testing.T) {
	r, svcs := newEngine(t, stubPinger{})
	svcs.rachas.err = repository.ErrNotFound
	w := do(r, http.MethodGet, handler.APIV1Prefix+"/rachas/"+rachaID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRachas_PassesPage(t *testing.T) {
	r, svcs := newEngine(t, stubPinger{})
	svcs.rachas.list = repository.PageResult[model.Racha]{Items: []model.Racha{{ID: rachaID, Name: "Quinta"}}, Total: 7}

	w := do(r, http.MethodGet, handler.APIV1Prefix+"/rachas?limit=5&offset=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, repository.Page{Limit: 5, Offset: 5}, svcs.rachas.lastPage)

	var got repository.PageResult[model.Racha]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 7, got.Total)

	do(r, http.MethodGet, handler.APIV1Prefix+"/rachas?limit=abc", "")
	assert.Equal(t, repository.Page{}, svcs.rachas.lastPage, "garbage falls back to service defaults")
}
