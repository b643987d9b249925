package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studynotion-backend/internal/observability"
)

// Metrics records request count and latency per route template. Requests that
// match no route share one label, and files served from mediaPrefix are
// counted under it, so label cardinality stays bounded.
func Metrics(m *observability.Metrics, mediaPrefix string) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	mediaPrefix = "/" + strings.Trim(mediaPrefix, "/")
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		m.ObserveAPI(c.Request.Method, routeLabel(c, mediaPrefix), strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func routeLabel(c *gin.Context, mediaPrefix string) string {
	if route := c.FullPath(); route != "" {
		if mediaPrefix != "/" && strings.HasPrefix(route, mediaPrefix+"/") {
			return mediaPrefix
		}
		return route
	}
	return "unmatched"
}
