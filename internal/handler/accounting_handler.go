package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/service"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// AccountingHandler exposes assessments and student ledgers.
type AccountingHandler struct {
	service *service.AccountingService
}

// NewAccountingHandler constructs an accounting handler.
func NewAccountingHandler(svc *service.AccountingService) *AccountingHandler {
	return &AccountingHandler{service: svc}
}

// CreateAssessment godoc
// @Summary Assess fees
// @Description Bills a student for a semester; amounts are in cents
// @Tags Accounting
// @Accept json
// @Produce json
// @Param payload body dto.CreateAssessmentRequest true "Assessment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /accounting/assessments [post]
func (h *AccountingHandler) CreateAssessment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateAssessmentRequest
	if !bindJSON(c, &req, "invalid assessment payload") {
		return
	}
	assessment, err := h.service.CreateAssessment(c.Request.Context(), user.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assessment)
}

// ListAssessments godoc
// @Summary List assessments
// @Tags Accounting
// @Produce json
// @Param student_id query string false "Student ID"
// @Param semester_id query string false "Semester ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /accounting/assessments [get]
func (h *AccountingHandler) ListAssessments(c *gin.Context) {
	var query dto.AssessmentQuery
	if !bindQuery(c, &query) {
		return
	}
	items, pagination, err := h.service.ListAssessments(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Ledger godoc
// @Summary Student ledger
// @Description Assessments and verified payments with running balance; students may only read their own
// @Tags Accounting
// @Produce json
// @Param id path string true "Student user ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /accounting/students/{id}/ledger [get]
func (h *AccountingHandler) Ledger(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	ledger, err := h.service.Ledger(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ledger, nil)
}

// Summary godoc
// @Summary Collection summary
// @Tags Accounting
// @Produce json
// @Param semester_id query string false "Semester ID"
// @Success 200 {object} response.Envelope
// @Router /accounting/summary [get]
func (h *AccountingHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), c.Query("semester_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
