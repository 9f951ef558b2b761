package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

// OpsHandler exposes health and observability endpoints.
type OpsHandler struct {
	db      pinger
	metrics *service.MetricsService
}

// NewOpsHandler constructs an ops handler.
func NewOpsHandler(db pinger, metrics *service.MetricsService) *OpsHandler {
	return &OpsHandler{db: db, metrics: metrics}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *OpsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness checks.
func (h *OpsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the database answers a ping.
func (h *OpsHandler) Ready(c *gin.Context) {
	if h.db == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotReady, "database not configured"))
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		response.Error(c, appErrors.As(appErrors.ErrNotReady, err, "database unreachable"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
