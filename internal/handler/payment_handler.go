package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

type paymentService interface {
	Create(ctx context.Context, caller *models.SessionUser, req dto.CreatePaymentRequest, proof *multipart.FileHeader) (*models.Payment, error)
	List(ctx context.Context, caller *models.SessionUser, query dto.PaymentQuery) ([]models.PaymentDetail, *models.Pagination, error)
	Get(ctx context.Context, caller *models.SessionUser, id string) (*models.PaymentDetail, error)
	Verify(ctx context.Context, id, verifierID string, req dto.VerifyPaymentRequest) (*models.PaymentDetail, error)
	Export(ctx context.Context, caller *models.SessionUser, query dto.PaymentQuery) (*service.ExportFile, error)
	Receipt(ctx context.Context, caller *models.SessionUser, id string) (*service.ExportFile, error)
}

// PaymentHandler handles payment submission, verification and documents.
type PaymentHandler struct {
	service paymentService
}

// NewPaymentHandler constructs a payment handler.
func NewPaymentHandler(svc paymentService) *PaymentHandler {
	return &PaymentHandler{service: svc}
}

// Create godoc
// @Summary Record payment
// @Description Students submit their own payments with optional proof; staff may record for any student
// @Tags Payments
// @Accept multipart/form-data
// @Produce json
// @Param semester_id formData string true "Semester ID"
// @Param amount_cents formData int true "Amount in cents"
// @Param method formData string true "cash, bank_transfer, gcash, card or other"
// @Param reference_number formData string false "Reference number"
// @Param student_id formData string false "Student ID (staff only)"
// @Param proof formData file false "Proof of payment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreatePaymentRequest
	if !bindForm(c, &req, "invalid payment payload") {
		return
	}
	proof, err := c.FormFile("proof")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		response.Error(c, appErrors.Invalid(err, "invalid proof upload"))
		return
	}

	payment, err := h.service.Create(c.Request.Context(), user, req, proof)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// List godoc
// @Summary List payments
// @Description Students only see their own payments
// @Tags Payments
// @Produce json
// @Param student_id query string false "Student ID"
// @Param semester_id query string false "Semester ID"
// @Param status query string false "pending, verified or rejected"
// @Param method query string false "Method"
// @Param from query string false "Paid on or after (YYYY-MM-DD)"
// @Param to query string false "Paid on or before (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var query dto.PaymentQuery
	if !bindQuery(c, &query) {
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), user, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	payment, err := h.service.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// Verify godoc
// @Summary Verify payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param payload body dto.VerifyPaymentRequest true "Verification payload"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /payments/{id}/verify [put]
func (h *PaymentHandler) Verify(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.VerifyPaymentRequest
	if !bindJSON(c, &req, "invalid verification payload") {
		return
	}
	payment, err := h.service.Verify(c.Request.Context(), c.Param("id"), user.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// Export godoc
// @Summary Export payments
// @Tags Payments
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param semester_id query string false "Semester ID"
// @Param status query string false "Status"
// @Param from query string false "From (YYYY-MM-DD)"
// @Param to query string false "To (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /payments/export [get]
func (h *PaymentHandler) Export(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var query dto.PaymentQuery
	if !bindQuery(c, &query) {
		return
	}
	file, err := h.service.Export(c.Request.Context(), user, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Name, file.ContentType, file.Data)
}

// Receipt godoc
// @Summary Payment receipt
// @Description PDF receipt for a verified payment
// @Tags Payments
// @Produce application/pdf
// @Param id path string true "Payment ID"
// @Success 200 {file} file
// @Failure 412 {object} response.Envelope
// @Router /payments/{id}/receipt [get]
func (h *PaymentHandler) Receipt(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	file, err := h.service.Receipt(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Name, file.ContentType, file.Data)
}
