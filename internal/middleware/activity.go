package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/pkg/middleware/requestid"
)

// ActivityRecorder persists activity log entries.
type ActivityRecorder interface {
	Record(ctx context.Context, entry *models.ActivityLog)
}

// Activity writes an activity log row after every successful mutating
// request made by a signed-in user. Routes under skipPrefixes record their
// own entries and are left alone.
func Activity(recorder ActivityRecorder, skipPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if recorder == nil || !mutating(c.Request.Method) || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		user := CurrentUser(c)
		if user == nil {
			return
		}

		resource := c.FullPath()
		if resource == "" {
			resource = c.Request.URL.Path
		}
		for _, prefix := range skipPrefixes {
			if strings.HasPrefix(resource, prefix) {
				return
			}
		}
		details, _ := json.Marshal(map[string]interface{}{
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": requestid.Value(c),
		})

		entry := &models.ActivityLog{
			UserID:    &user.UserID,
			Action:    c.Request.Method,
			Resource:  resource,
			Details:   details,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if id := c.Param("id"); id != "" {
			entry.ResourceID = &id
		}
		recorder.Record(context.WithoutCancel(c.Request.Context()), entry)
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
