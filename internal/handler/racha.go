package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/racha-stats-service/internal/repository"
	"github.com/maxviazov/racha-stats-service/internal/service"
	"github.com/maxviazov/racha-stats-service/pkg/response"
)

type RachaHandler struct {
	svc service.RachaService
}

func NewRachaHandler(svc service.RachaService) *RachaHandler { return &RachaHandler{svc: svc} }

func (h *RachaHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/rachas")
	{
		g.POST("", h.create)
		// racha_id is shared with the nested /partidas routes; Gin requires one wildcard name per segment.
		g.GET("/:racha_id", h.getByID)
		g.GET("", h.list)
	}
}

type createRachaRequest struct {
	Name string `json:"name"`
}

func (h *RachaHandler) create(c *gin.Context) {
	var req createRachaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	racha, err := h.svc.CreateRacha(c.Request.Context(), req.Name)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, racha)
}

func (h *RachaHandler) getByID(c *gin.Context) {
	racha, err := h.svc.GetRacha(c.Request.Context(), c.Param("racha_id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, racha)
}

func (h *RachaHandler) list(c *gin.Context) {
	res, err := h.svc.ListRachas(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func pageFromQuery(c *gin.Context) repository.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return repository.Page{Limit: limit, Offset: offset}
}
