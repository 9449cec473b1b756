package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBody caps request bodies at limit bytes. Reads past the cap fail with
// *http.MaxBytesError, which handlers turn into 413.
func MaxBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil && limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
