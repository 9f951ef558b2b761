package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/middleware"
	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// currentUser returns the caller attached by the session or bearer gate and
// writes a 401 envelope when there is none.
func currentUser(c *gin.Context) (*models.SessionUser, bool) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return user, true
}

func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Invalid(err, message))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid query parameters"))
		return false
	}
	return true
}

// bindForm binds the text fields of a multipart body.
func bindForm(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBind(dst); err != nil {
		response.Error(c, appErrors.Invalid(err, message))
		return false
	}
	return true
}
