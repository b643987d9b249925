package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LimitRequestBody caps the bytes a handler may read from the request body.
// Reads past the cap fail, which surfaces as a multipart parse error.
func LimitRequestBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
