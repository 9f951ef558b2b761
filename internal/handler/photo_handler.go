package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
	"github.com/noah-isme/school-admin-api/pkg/storage"
)

// PhotoHandler manages profile photos.
type PhotoHandler struct {
	service *service.PhotoService
}

// NewPhotoHandler constructs a photo handler.
func NewPhotoHandler(svc *service.PhotoService) *PhotoHandler {
	return &PhotoHandler{service: svc}
}

// Upload godoc
// @Summary Upload profile photo
// @Description Replaces the caller's photo; admins may pass user_id to change another account
// @Tags Photos
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Image"
// @Param user_id formData string false "Target user (admins only)"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /photos [post]
func (h *PhotoHandler) Upload(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, appErrors.Invalid(err, "photo is required"))
		return
	}
	target := c.DefaultPostForm("user_id", user.UserID)

	info, err := h.service.Upload(c.Request.Context(), user, target, fh)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info, nil)
}

// Delete godoc
// @Summary Remove profile photo
// @Tags Photos
// @Param user_id query string false "Target user (admins only)"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /photos [delete]
func (h *PhotoHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	target := c.DefaultQuery("user_id", user.UserID)
	if err := h.service.Delete(c.Request.Context(), user, target); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Get godoc
// @Summary Get profile photo
// @Tags Photos
// @Produce image/jpeg
// @Produce image/png
// @Param userId path string true "User ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /photos/{userId} [get]
func (h *PhotoHandler) Get(c *gin.Context) {
	path, err := h.service.Path(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, path, storage.ContentTypeOf(path))
}
