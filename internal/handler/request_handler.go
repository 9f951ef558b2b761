package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/dto"
	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

const requestFilesField = "files"

// RequestHandler handles document requests.
type RequestHandler struct {
	service *service.RequestService
}

// NewRequestHandler constructs a request handler.
func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{service: svc}
}

// Create godoc
// @Summary File a document request
// @Description Multipart form with optional supporting files under "files"
// @Tags Requests
// @Accept multipart/form-data
// @Produce json
// @Param document_type formData string true "Document type"
// @Param purpose formData string true "Purpose"
// @Param student_id formData string false "Student ID (admins only)"
// @Param files formData file false "Supporting documents"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateDocumentRequest
	if !bindForm(c, &req, "invalid request payload") {
		return
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File[requestFilesField]
	}

	created, err := h.service.Create(c.Request.Context(), user, req, files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// List godoc
// @Summary List document requests
// @Description Students only see their own requests
// @Tags Requests
// @Produce json
// @Param student_id query string false "Student ID"
// @Param status query string false "Status"
// @Param document_type query string false "Document type"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var query dto.RequestQuery
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
// @Summary Get document request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	item, err := h.service.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// UpdateStatus godoc
// @Summary Update request status
// @Description Moves the request and notifies the owning student
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.UpdateRequestStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/status [put]
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateRequestStatusRequest
	if !bindJSON(c, &req, "invalid status payload") {
		return
	}
	item, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Withdraw or delete request
// @Description Students may only withdraw their own pending requests
// @Tags Requests
// @Param id path string true "Request ID"
// @Success 204 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /requests/{id} [delete]
func (h *RequestHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), user, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DocumentLink godoc
// @Summary Signed link for an attachment
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Param index path int true "Attachment index"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id}/documents/{index}/link [get]
func (h *RequestHandler) DocumentLink(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "document index must be a number"))
		return
	}
	link, err := h.service.DocumentLink(c.Request.Context(), user, c.Param("id"), index)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}
