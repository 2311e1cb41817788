package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutriplan/internal/logger"
	"nutriplan/internal/metrics"
)

const usageWindowDays = 7

// UsageSource reports model token usage.
type UsageSource interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

type AdminHandler struct {
	usage   UsageSource
	dataDir string
	log     *logger.Logger
}

func NewAdminHandler(usage UsageSource, dataDir string, log *logger.Logger) *AdminHandler {
	return &AdminHandler{usage: usage, dataDir: dataDir, log: log.With("handler", "admin")}
}

// Usage handles GET /api/admin/usage.
func (h *AdminHandler) Usage(c *gin.Context) {
	usage, err := h.usage.GetDailyUsage(c.Request.Context(), usageWindowDays)
	if err != nil {
		respondError(c, h.log, err, "Error loading usage", nil)
		return
	}
	respondOK(c, gin.H{
		"days":   usageWindowDays,
		"usage":  usage,
		"system": metrics.GetSysHealth(h.dataDir),
	})
}

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
