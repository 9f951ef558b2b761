package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/service"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// LegacyHandler serves the read-only routes kept for bearer-token clients.
type LegacyHandler struct {
	auth          authService
	requests      *service.RequestService
	notifications notificationService
}

// NewLegacyHandler constructs a legacy handler.
func NewLegacyHandler(auth authService, requests *service.RequestService, notifications notificationService) *LegacyHandler {
	return &LegacyHandler{auth: auth, requests: requests, notifications: notifications}
}

// Me godoc
// @Summary Current user (bearer)
// @Tags Legacy
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /legacy/me [get]
func (h *LegacyHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	info, err := h.auth.Me(c.Request.Context(), user.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info, nil)
}

// Requests godoc
// @Summary Document requests (bearer)
// @Tags Legacy
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /legacy/requests [get]
func (h *LegacyHandler) Requests(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var query dto.RequestQuery
	if !bindQuery(c, &query) {
		return
	}
	items, pagination, err := h.requests.List(c.Request.Context(), user, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Notifications godoc
// @Summary Notifications (bearer)
// @Tags Legacy
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /legacy/notifications [get]
func (h *LegacyHandler) Notifications(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var query dto.NotificationQuery
	if !bindQuery(c, &query) {
		return
	}
	items, pagination, err := h.notifications.List(c.Request.Context(), user.UserID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}
