package middleware

import (
	"strconv"

	"tripdesk/services/progress"

	"github.com/gin-gonic/gin"
)

// ProgressHeader is the response header carrying the number of booking
// submissions in flight, for clients that drive a global progress bar.
const ProgressHeader = "X-Progress-Active"

// ProgressMiddleware reports the tracker's count as the request arrives.
func ProgressMiddleware(t *progress.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set(ProgressHeader, strconv.Itoa(t.Active()))
		c.Next()
	}
}
