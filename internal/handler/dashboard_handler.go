package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/middleware"
	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

type dashboardService interface {
	Admin(ctx context.Context, semesterID string) (*dto.AdminDashboard, bool, error)
	Student(ctx context.Context, caller *models.SessionUser, semesterID string) (*dto.StudentDashboard, bool, error)
	Accounting(ctx context.Context, semesterID string) (*dto.AccountingDashboard, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Admin godoc
// @Summary Admin dashboard summary
// @Tags Dashboard
// @Produce json
// @Param semester_id query string false "Semester ID, defaults to the active semester"
// @Success 200 {object} response.Envelope
// @Router /dashboard/admin [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	summary, cacheHit, err := h.service.Admin(c.Request.Context(), semesterParam(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.Meta(c))
}

// Student godoc
// @Summary Student dashboard summary
// @Tags Dashboard
// @Produce json
// @Param semester_id query string false "Semester ID, defaults to the active semester"
// @Success 200 {object} response.Envelope
// @Router /dashboard/student [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}
	summary, cacheHit, err := h.service.Student(c.Request.Context(), user, semesterParam(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.Meta(c))
}

// Accounting godoc
// @Summary Accounting dashboard summary
// @Tags Dashboard
// @Produce json
// @Param semester_id query string false "Semester ID, defaults to the active semester"
// @Success 200 {object} response.Envelope
// @Router /dashboard/accounting [get]
func (h *DashboardHandler) Accounting(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	summary, cacheHit, err := h.service.Accounting(c.Request.Context(), semesterParam(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.Meta(c))
}

func semesterParam(c *gin.Context) string {
	return strings.TrimSpace(c.Query("semester_id"))
}
