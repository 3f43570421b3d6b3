package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/racha-stats-service/internal/importer"
	"github.com/maxviazov/racha-stats-service/internal/model"
	"github.com/maxviazov/racha-stats-service/internal/service"
	"github.com/maxviazov/racha-stats-service/pkg/response"
)

// multipart envelope on top of the file itself
const importBodyLimit = importer.MaxFileSize + 1<<20

type MatchHandler struct {
	svc service.MatchService
}

func NewMatchHandler(svc service.MatchService) *MatchHandler { return &MatchHandler{svc: svc} }

func (h *MatchHandler) Register(r *gin.RouterGroup) {
	nested := r.Group("/rachas/:racha_id/partidas")
	{
		nested.POST("", h.create)
		nested.GET("", h.list)
		nested.POST("/import", h.importFile)
	}
	g := r.Group("/partidas")
	{
		g.GET("/:id", h.getByID)
		g.PUT("/:id/resultado", h.finalize)
		g.DELETE("/:id", h.delete)
	}
}

type createMatchRequest struct {
	Date      string `json:"date"`
	TeamAName string `json:"teamAName"`
	TeamBName string `json:"teamBName"`
}

func (h *MatchHandler) create(c *gin.Context) {
	var req createMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	date, ok := parseMatchDate(req.Date)
	if !ok {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "date", Message: "must be RFC3339 or YYYY-MM-DD"}}))
		return
	}
	m, err := h.svc.CreateMatch(c.Request.Context(), service.MatchInput{
		RachaID:   c.Param("racha_id"),
		Date:      date,
		TeamAName: req.TeamAName,
		TeamBName: req.TeamBName,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, m)
}

// parseMatchDate accepts an empty value (unknown date), RFC3339 or a bare calendar date.
func parseMatchDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(time.DateOnly, raw, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func (h *MatchHandler) list(c *gin.Context) {
	res, err := h.svc.ListMatches(c.Request.Context(), c.Param("racha_id"), pageFromQuery(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *MatchHandler) getByID(c *gin.Context) {
	m, err := h.svc.GetMatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, m)
}

type playerEventRequest struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Team       string `json:"team"`
}

type finalizeMatchRequest struct {
	GoalsA       *int                 `json:"goalsA"`
	GoalsB       *int                 `json:"goalsB"`
	GoalEvents   []playerEventRequest `json:"goalEvents"`
	AssistEvents []playerEventRequest `json:"assistEvents"`
	Attendance   []playerEventRequest `json:"attendance"`
}

func (h *MatchHandler) finalize(c *gin.Context) {
	var req finalizeMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	var ferrs []service.FieldError
	if req.GoalsA == nil {
		ferrs = append(ferrs, service.FieldError{Field: "goalsA", Message: "is required"})
	}
	if req.GoalsB == nil {
		ferrs = append(ferrs, service.FieldError{Field: "goalsB", Message: "is required"})
	}
	if err := service.NewInvalidInputError(ferrs); err != nil {
		response.WriteError(c, err)
		return
	}

	m, err := h.svc.FinalizeMatch(c.Request.Context(), c.Param("id"), model.MatchResult{
		GoalsA:       *req.GoalsA,
		GoalsB:       *req.GoalsB,
		GoalEvents:   toEvents(req.GoalEvents),
		AssistEvents: toEvents(req.AssistEvents),
		Attendance:   toEvents(req.Attendance),
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, m)
}

func toEvents(in []playerEventRequest) []model.PlayerEvent {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.PlayerEvent, len(in))
	for i, ev := range in {
		out[i] = model.PlayerEvent{PlayerID: ev.PlayerID, PlayerName: ev.PlayerName, Team: ev.Team}
	}
	return out
}

func (h *MatchHandler) delete(c *gin.Context) {
	if _, err := h.svc.DeleteMatch(c.Request.Context(), c.Param("id")); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MatchHandler) importFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, importBodyLimit)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.WriteError(c, err)
			return
		}
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "file", Message: "multipart field is required"}}))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.WriteError(c, err)
		return
	}
	defer f.Close()

	sum, err := h.svc.ImportMatches(c.Request.Context(), c.Param("racha_id"), fh.Filename, f)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, sum)
}
