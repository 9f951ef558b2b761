package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/service"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// RegistrationHandler exposes the admission workflow.
type RegistrationHandler struct {
	service *service.RegistrationService
}

// NewRegistrationHandler constructs a registration handler.
func NewRegistrationHandler(svc *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{service: svc}
}

// Submit godoc
// @Summary Submit registration
// @Description Public admission form, accepted only while registration is open
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body dto.RegistrationRequest true "Registration form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Submit(c *gin.Context) {
	var req dto.RegistrationRequest
	if !bindJSON(c, &req, "invalid registration payload") {
		return
	}

	reg, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, reg)
}

// List godoc
// @Summary List registrations
// @Tags Registrations
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Param program query string false "Program"
// @Param year_level query int false "Year level"
// @Param semester_id query string false "Semester ID"
// @Param search query string false "Name or email"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	var query dto.RegistrationQuery
	if !bindQuery(c, &query) {
		return
	}

	items, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get registration
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /registrations/{id} [get]
func (h *RegistrationHandler) Get(c *gin.Context) {
	reg, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, reg, nil)
}

// Mine godoc
// @Summary Get my registration
// @Description Returns the registration linked to the calling student
// @Tags Registrations
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /registrations/me [get]
func (h *RegistrationHandler) Mine(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	reg, err := h.service.Mine(c.Request.Context(), user.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, reg, nil)
}

// Update godoc
// @Summary Update registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body dto.RegistrationRequest true "Registration form"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /registrations/{id} [put]
func (h *RegistrationHandler) Update(c *gin.Context) {
	var req dto.RegistrationRequest
	if !bindJSON(c, &req, "invalid registration payload") {
		return
	}

	reg, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, reg, nil)
}

// Delete godoc
// @Summary Delete registration
// @Tags Registrations
// @Param id path string true "Registration ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /registrations/{id} [delete]
func (h *RegistrationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Approve godoc
// @Summary Approve registration
// @Description Creates the student account, seeds requirements and notifies the student
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body dto.ApproveRegistrationRequest false "Optional id number and password"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /registrations/{id}/approve [post]
func (h *RegistrationHandler) Approve(c *gin.Context) {
	var req dto.ApproveRegistrationRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req, "invalid approval payload") {
		return
	}

	res, err := h.service.Approve(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Reject godoc
// @Summary Reject registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body dto.RejectRegistrationRequest true "Rejection remarks"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /registrations/{id}/reject [post]
func (h *RegistrationHandler) Reject(c *gin.Context) {
	var req dto.RejectRegistrationRequest
	if !bindJSON(c, &req, "invalid rejection payload") {
		return
	}

	reg, err := h.service.Reject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, reg, nil)
}
