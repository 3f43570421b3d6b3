package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/racha-stats-service/internal/service"
	"github.com/maxviazov/racha-stats-service/pkg/response"
)

type StatsHandler struct {
	svc service.StatsService
}

func NewStatsHandler(svc service.StatsService) *StatsHandler { return &StatsHandler{svc: svc} }

func (h *StatsHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/estatisticas")
	{
		g.GET("/classificacao", h.standings)
		g.GET("/ranking-geral", h.ranking)
	}
}

func (h *StatsHandler) standings(c *gin.Context) {
	q, err := statsQuery(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	rep, err := h.svc.GetStandings(c.Request.Context(), q)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, rep)
}

func (h *StatsHandler) ranking(c *gin.Context) {
	q, err := statsQuery(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	rep, err := h.svc.GetRanking(c.Request.Context(), q)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, rep)
}

// statsQuery reads rachaId, periodo and ano. Only the year needs parsing here;
// the service validates the rest.
func statsQuery(c *gin.Context) (service.StatsQuery, error) {
	q := service.StatsQuery{
		RachaID: c.Query("rachaId"),
		Period:  c.Query("periodo"),
	}
	if raw := strings.TrimSpace(c.Query("ano")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return service.StatsQuery{}, service.NewInvalidInputError([]service.FieldError{{Field: "ano", Message: "must be an integer year"}})
		}
		q.Year = &year
	}
	return q, nil
}
