package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/maxviazov/racha-stats-service/internal/service"
)

// Register mounts all public routes on the given engine.
// Accepts service layer dependencies for API endpoints.
func Register(r *gin.Engine, h *HealthHandler, statsSvc service.StatsService, rachaSvc service.RachaService, matchSvc service.MatchService) {
	// Health checks
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	// Docs endpoints (root-level)
	RegisterDocs(r)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewStatsHandler(statsSvc).Register(api)
		NewRachaHandler(rachaSvc).Register(api)
		NewMatchHandler(matchSvc).Register(api)
	}
}
