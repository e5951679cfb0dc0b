package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// VisitorKey is the gin context key holding the visitor id.
const VisitorKey = "visitorID"

// VisitorMiddleware identifies the browser with a long lived cookie, issuing
// a fresh id when none (or a malformed one) is presented.
func VisitorMiddleware(cookieName string, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, id, 60*60*24*30, "/", "", secure, true)
		}
		c.Set(VisitorKey, id)
		c.Next()
	}
}

// VisitorID returns the id set by VisitorMiddleware.
func VisitorID(c *gin.Context) string {
	return c.GetString(VisitorKey)
}
