package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

const (
	// ContextUserKey is the gin context key storing the *models.SessionUser.
	ContextUserKey = "currentUser"
	// ContextSessionTokenKey stores the raw session token of the request.
	ContextSessionTokenKey = "sessionToken"

	// DefaultSessionCookie is used when no cookie name is configured.
	DefaultSessionCookie = "sessionToken"
	sessionHeader        = "X-Session-Token"
)

// SessionAuthenticator resolves a session token into the caller's identity.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.SessionUser, error)
}

// SessionGate builds session-checking middleware.
type SessionGate struct {
	auth       SessionAuthenticator
	cookieName string
}

// NewSessionGate constructs a SessionGate reading tokens from cookieName.
func NewSessionGate(auth SessionAuthenticator, cookieName string) *SessionGate {
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	return &SessionGate{auth: auth, cookieName: cookieName}
}

// Session validates the request's session token and, when roles is not
// empty, requires the caller to hold one of them.
func (g *SessionGate) Session(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, g.cookieName)
		if token == "" {
			response.Abort(c, appErrors.Clone(appErrors.ErrUnauthorized, "session token required"))
			return
		}

		user, err := g.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Abort(c, err)
			return
		}

		if len(roles) > 0 && !hasRole(user.Role, roles) {
			response.Abort(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient role for this resource"))
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextSessionTokenKey, token)
		c.Next()
	}
}

// RequireSession admits any signed-in user.
func (g *SessionGate) RequireSession() gin.HandlerFunc {
	return g.Session()
}

// AdminOnly admits admins.
func (g *SessionGate) AdminOnly() gin.HandlerFunc {
	return g.Session(models.RoleAdmin)
}

// StudentOrAdmin admits students and admins.
func (g *SessionGate) StudentOrAdmin() gin.HandlerFunc {
	return g.Session(models.RoleStudent, models.RoleAdmin)
}

// AccountingOrAdmin admits accounting staff and admins.
func (g *SessionGate) AccountingOrAdmin() gin.HandlerFunc {
	return g.Session(models.RoleAccounting, models.RoleAdmin)
}

// SessionToken reads the token from the cookie, then the sessionToken and
// X-Session-Token headers.
func SessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	if header := strings.TrimSpace(c.GetHeader(DefaultSessionCookie)); header != "" {
		return header
	}
	return strings.TrimSpace(c.GetHeader(sessionHeader))
}

// CurrentUser returns the identity attached by Session or LegacyJWT.
func CurrentUser(c *gin.Context) *models.SessionUser {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, _ := value.(*models.SessionUser)
	return user
}

// CurrentToken returns the session token attached by Session.
func CurrentToken(c *gin.Context) string {
	return c.GetString(ContextSessionTokenKey)
}

func hasRole(role models.UserRole, allowed []models.UserRole) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
