package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tarcin/docissuer/internal/app/models/dto"
	"github.com/tarcin/docissuer/internal/middleware"
)

// StatsController serves dashboard counters and health
type StatsController struct {
	stats StatsService
	db    Pinger
}

// NewStatsController creates a new StatsController
func NewStatsController(stats StatsService, db Pinger) *StatsController {
	return &StatsController{stats: stats, db: db}
}

// GetStats handles GET /stats
func (ctrl *StatsController) GetStats(c *gin.Context) {
	stats, err := ctrl.stats.GetStats(c.Request.Context())
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(stats, ""))
}

// Health handles GET /health
func (ctrl *StatsController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := ctrl.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
}
