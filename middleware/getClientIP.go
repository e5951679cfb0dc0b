package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// getClientIP returns the caller's address. Forwarding headers are honoured
// only when the immediate peer is one of the engine's trusted proxies, so a
// client cannot pick its own rate limit bucket.
func getClientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return strings.TrimSpace(c.Request.RemoteAddr)
}

// TrustedProxies parses a comma separated list of proxy addresses or CIDRs
// for gin.Engine.SetTrustedProxies. An empty list trusts no proxy.
func TrustedProxies(list string) []string {
	var out []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
