package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey  = "response_meta"
	responseStartKey = "response_start"
)

// ResponseMeta prepares a per-request map that handlers fill with envelope
// metadata such as cache hits.
func ResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseStartKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// SetMeta stores a metadata entry for the current response.
func SetMeta(c *gin.Context, key string, value interface{}) {
	meta(c)[key] = value
}

// SetCacheHit records whether the payload came from the cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, "cache_hit", hit)
}

// Meta returns the metadata map stamped with the elapsed processing time.
// It is created on demand when ResponseMeta is not mounted.
func Meta(c *gin.Context) map[string]interface{} {
	m := meta(c)
	if value, ok := c.Get(responseStartKey); ok {
		if start, ok := value.(time.Time); ok {
			m["processing_time_ms"] = time.Since(start).Milliseconds()
		}
	}
	return m
}

func meta(c *gin.Context) map[string]interface{} {
	if value, ok := c.Get(responseMetaKey); ok {
		if m, ok := value.(map[string]interface{}); ok {
			return m
		}
	}
	m := map[string]interface{}{}
	c.Set(responseMetaKey, m)
	return m
}
