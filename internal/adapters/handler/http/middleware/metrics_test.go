package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observed struct {
	method, route string
	status        int
}

type fakeObserver struct {
	mu   sync.Mutex
	seen []observed
}

func (f *fakeObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, observed{method, route, status})
}

func TestRequestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	obs := &fakeObserver{}
	router := gin.New()
	router.Use(RequestMetrics(obs))
	router.POST("/readiness/:date", func(c *gin.Context) { c.Status(http.StatusCreated) })

	for _, path := range []string{"/readiness/2025-03-10", "/nowhere"} {
		req, _ := http.NewRequest("POST", path, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, obs.seen, 2)
	assert.Equal(t, observed{"POST", "/readiness/:date", http.StatusCreated}, obs.seen[0])
	assert.Equal(t, observed{"POST", "unmatched", http.StatusNotFound}, obs.seen[1])
}
