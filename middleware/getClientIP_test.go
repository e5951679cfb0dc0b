package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clientIPFor(t *testing.T, trusted []string, remote, xff string) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(trusted))
	var got string
	r.GET("/", func(c *gin.Context) {
		got = getClientIP(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remote
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	r.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestClientIPIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	assert.Equal(t, "203.0.113.9", clientIPFor(t, nil, "203.0.113.9:5123", "10.0.0.1"))
}

func TestClientIPHonoursTrustedProxy(t *testing.T) {
	assert.Equal(t, "198.51.100.7", clientIPFor(t, []string{"10.0.0.0/8"}, "10.1.2.3:443", "198.51.100.7"))
}

func TestTrustedProxies(t *testing.T) {
	assert.Nil(t, TrustedProxies(""))
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, TrustedProxies(" 10.0.0.0/8, ,127.0.0.1 "))
}

func TestRateLimitBucketsSpoofedForwardedFor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(nil))
	r.Use(RateLimitMiddleware(1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 2)
	for _, xff := range []string{"1.1.1.1", "2.2.2.2"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.9:5123"
		req.Header.Set("X-Forwarded-For", xff)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}
