package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// TokenValidator parses bearer tokens issued for the legacy routes.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// LegacyJWT protects the legacy routes with an HS256 bearer token. The
// claims are attached as a *models.SessionUser like a session would be.
func LegacyJWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Abort(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			return
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			response.Abort(c, err)
			return
		}

		c.Set(ContextUserKey, claims.SessionUser())
		c.Next()
	}
}
