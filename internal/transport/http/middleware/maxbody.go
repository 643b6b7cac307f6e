package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "marketplace-admin/internal/transport/http/response"
)

// MaxBodyBytes limits request bodies to n bytes. Oversized requests with a
// declared length are rejected up front; others fail when the binder reads.
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > n {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				resp.Error(http.StatusRequestEntityTooLarge, "request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
