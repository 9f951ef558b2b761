package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// RequirementHandler handles the admission requirement checklist.
type RequirementHandler struct {
	service *service.RequirementService
}

// NewRequirementHandler constructs a requirement handler.
func NewRequirementHandler(svc *service.RequirementService) *RequirementHandler {
	return &RequirementHandler{service: svc}
}

// List godoc
// @Summary List requirements
// @Description Students only see their own checklist
// @Tags Requirements
// @Produce json
// @Param student_id query string false "Student ID"
// @Param status query string false "pending, submitted, verified or rejected"
// @Success 200 {object} response.Envelope
// @Router /requirements [get]
func (h *RequirementHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var query dto.RequirementQuery
	if !bindQuery(c, &query) {
		return
	}
	items, err := h.service.List(c.Request.Context(), user, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Add requirement
// @Tags Requirements
// @Accept json
// @Produce json
// @Param payload body dto.CreateRequirementRequest true "Requirement payload"
// @Success 201 {object} response.Envelope
// @Router /requirements [post]
func (h *RequirementHandler) Create(c *gin.Context) {
	var req dto.CreateRequirementRequest
	if !bindJSON(c, &req, "invalid requirement payload") {
		return
	}
	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Upload godoc
// @Summary Submit requirement file
// @Tags Requirements
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Requirement ID"
// @Param file formData file true "Requirement document"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /requirements/{id}/upload [post]
func (h *RequirementHandler) Upload(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Invalid(err, "file is required"))
		return
	}
	item, err := h.service.Upload(c.Request.Context(), user, c.Param("id"), fh)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Verify godoc
// @Summary Verify requirement
// @Tags Requirements
// @Accept json
// @Produce json
// @Param id path string true "Requirement ID"
// @Param payload body dto.VerifyRequirementRequest true "Verification payload"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /requirements/{id}/verify [put]
func (h *RequirementHandler) Verify(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.VerifyRequirementRequest
	if !bindJSON(c, &req, "invalid verification payload") {
		return
	}
	item, err := h.service.Verify(c.Request.Context(), c.Param("id"), user.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete requirement
// @Tags Requirements
// @Param id path string true "Requirement ID"
// @Success 204 {object} response.Envelope
// @Router /requirements/{id} [delete]
func (h *RequirementHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
