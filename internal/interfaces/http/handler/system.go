package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/lateleria/storefront/internal/application/catalog"
	"github.com/lateleria/storefront/internal/infrastructure/logger"
	"github.com/lateleria/storefront/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// DatabasePinger is the part of the database the status endpoints need
type DatabasePinger interface {
	PingContext(ctx context.Context) error
	Driver() string
}

// StatsProvider reports catalog counts
type StatsProvider interface {
	Stats(ctx context.Context) (*catalogapp.StatsResponse, error)
}

// SystemHandler serves health and database status endpoints
type SystemHandler struct {
	BaseHandler
	db        DatabasePinger
	stats     StatsProvider
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db DatabasePinger, stats StatsProvider) *SystemHandler {
	return &SystemHandler{
		db:        db,
		stats:     stats,
		startTime: time.Now(),
	}
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	GoVersion string `json:"goVersion"`
	Uptime    string `json:"uptime"`
}

// DBStatusResponse reports connectivity and catalog contents
type DBStatusResponse struct {
	Connected  bool                      `json:"connected"`
	Driver     string                    `json:"driver"`
	Products   int64                     `json:"products"`
	Categories []catalogapp.CategoryStat `json:"categories"`
}

// Health godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Database:  "connected",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		logger.GetGinLogger(c).Warn("health check: database unreachable", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DBStatus godoc
// @Summary      Database status
// @Description  Connectivity check plus per-category product counts
// @Tags         admin
// @Produce      json
// @Success      200 {object} dto.Response{data=DBStatusResponse}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/db-status [get]
func (h *SystemHandler) DBStatus(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.db.PingContext(ctx); err != nil {
		logger.GetGinLogger(c).Error("database ping failed", zap.Error(err))
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "No se puede conectar con la base de datos")
		return
	}

	stats, err := h.stats.Stats(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, DBStatusResponse{
		Connected:  true,
		Driver:     h.db.Driver(),
		Products:   stats.TotalProducts,
		Categories: stats.Categories,
	})
}
