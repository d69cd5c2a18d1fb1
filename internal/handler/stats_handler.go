package handler

import (
	"net/http"

	"wishwell/internal/service"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsSvc *service.StatsService
}

func NewStatsHandler(statsSvc *service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// Get serves the cached GlobalStatistics snapshot.
func (h *StatsHandler) Get(c *gin.Context) {
	snap, err := h.statsSvc.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
