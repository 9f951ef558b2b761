package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/service"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// CurriculumHandler manages subjects and their placement in programs.
type CurriculumHandler struct {
	service *service.CurriculumService
}

// NewCurriculumHandler constructs a curriculum handler.
func NewCurriculumHandler(svc *service.CurriculumService) *CurriculumHandler {
	return &CurriculumHandler{service: svc}
}

// ListSubjects godoc
// @Summary List subjects
// @Tags Curriculum
// @Produce json
// @Param search query string false "Code or title"
// @Success 200 {object} response.Envelope
// @Router /curriculum/subjects [get]
func (h *CurriculumHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.service.ListSubjects(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// CreateSubject godoc
// @Summary Create subject
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param payload body dto.SubjectRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /curriculum/subjects [post]
func (h *CurriculumHandler) CreateSubject(c *gin.Context) {
	var req dto.SubjectRequest
	if !bindJSON(c, &req, "invalid subject payload") {
		return
	}
	subject, err := h.service.CreateSubject(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// UpdateSubject godoc
// @Summary Update subject
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param payload body dto.SubjectRequest true "Subject payload"
// @Success 200 {object} response.Envelope
// @Router /curriculum/subjects/{id} [put]
func (h *CurriculumHandler) UpdateSubject(c *gin.Context) {
	var req dto.SubjectRequest
	if !bindJSON(c, &req, "invalid subject payload") {
		return
	}
	subject, err := h.service.UpdateSubject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// DeleteSubject godoc
// @Summary Delete subject
// @Tags Curriculum
// @Param id path string true "Subject ID"
// @Success 204 {object} response.Envelope
// @Router /curriculum/subjects/{id} [delete]
func (h *CurriculumHandler) DeleteSubject(c *gin.Context) {
	if err := h.service.DeleteSubject(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List godoc
// @Summary List curriculum entries
// @Tags Curriculum
// @Produce json
// @Param program query string false "Program"
// @Param year_level query int false "Year level"
// @Param term query string false "first, second or summer"
// @Success 200 {object} response.Envelope
// @Router /curriculum [get]
func (h *CurriculumHandler) List(c *gin.Context) {
	var query dto.CurriculumQuery
	if !bindQuery(c, &query) {
		return
	}
	entries, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Create godoc
// @Summary Add subject to curriculum
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param payload body dto.CurriculumRequest true "Curriculum payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /curriculum [post]
func (h *CurriculumHandler) Create(c *gin.Context) {
	var req dto.CurriculumRequest
	if !bindJSON(c, &req, "invalid curriculum payload") {
		return
	}
	entry, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Delete godoc
// @Summary Remove curriculum entry
// @Tags Curriculum
// @Param id path string true "Curriculum ID"
// @Success 204 {object} response.Envelope
// @Router /curriculum/{id} [delete]
func (h *CurriculumHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
