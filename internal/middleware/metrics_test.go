package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	method string
	path   string
	status int
}

type captureObserver struct {
	seen []observation
}

func (c *captureObserver) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	c.seen = append(c.seen, observation{method: method, path: path, status: status})
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &captureObserver{}
	r := gin.New()
	r.Use(Metrics(observer), ResponseMeta())
	r.GET("/payments/:id", func(c *gin.Context) {
		SetCacheHit(c, true)
		c.JSON(http.StatusOK, Meta(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payments/pay-1", nil))
	assert.Contains(t, w.Body.String(), `"cache_hit":true`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wp-login.php", nil))

	require.Len(t, observer.seen, 2)
	assert.Equal(t, observation{http.MethodGet, "/payments/:id", http.StatusOK}, observer.seen[0])
	assert.Equal(t, observation{http.MethodGet, "unmatched", http.StatusNotFound}, observer.seen[1])
}
