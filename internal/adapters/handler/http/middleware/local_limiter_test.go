package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLocalRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewLocalRateLimiter(2, time.Hour)
	router := gin.New()
	router.Use(limiter.Middleware())
	router.GET("/readiness", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(ip string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/readiness", nil)
		req.RemoteAddr = "127.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", ip)
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)

	blocked := call("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "2", blocked.Header().Get("X-RateLimit-Limit"))
	assert.Contains(t, blocked.Body.String(), "too many requests")

	assert.Equal(t, http.StatusOK, call("10.0.0.2").Code, "other clients keep their own bucket")
}
