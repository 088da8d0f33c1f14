package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func integrationRedis(t *testing.T) *redis.Client {
	t.Helper()
	_ = godotenv.Load("../../../../../.env")

	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", getEnv("REDIS_HOST", "localhost"), getEnv("REDIS_PORT", "6379")),
		Password: getEnv("REDIS_PASSWORD", "secret_redis_pass_local"),
		DB:       1,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		t.Skipf("Skipping integration test (Redis down): %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestRateLimiterMiddleware_Integration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb := integrationRedis(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		limit    int
		requests int
		wantLast int
	}{
		{"Under the limit", 5, 5, http.StatusOK},
		{"At the limit plus one", 2, 3, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, rdb.FlushDB(ctx).Err())

			router := gin.New()
			router.Use(RateLimiterMiddleware(rdb, tt.limit, time.Minute, zerolog.Nop()))
			router.GET("/api/v1/readiness", func(c *gin.Context) { c.Status(http.StatusOK) })

			var w *httptest.ResponseRecorder
			for i := 1; i <= tt.requests; i++ {
				w = httptest.NewRecorder()
				req, _ := http.NewRequest("GET", "/api/v1/readiness", nil)
				req.Header.Set("X-Forwarded-For", "192.168.1.100")
				router.ServeHTTP(w, req)

				if i <= tt.limit {
					assert.Equal(t, http.StatusOK, w.Code, "request %d", i)
					assert.Equal(t, strconv.Itoa(tt.limit-i), w.Header().Get("X-RateLimit-Remaining"))
				}
			}
			assert.Equal(t, tt.wantLast, w.Code)
		})
	}

	t.Run("Unreachable redis fails open", func(t *testing.T) {
		badRdb := redis.NewClient(&redis.Options{Addr: "localhost:9999"})
		defer badRdb.Close()

		router := gin.New()
		router.Use(RateLimiterMiddleware(badRdb, 5, time.Minute, zerolog.Nop()))
		router.GET("/api/v1/trends", func(c *gin.Context) { c.String(http.StatusOK, "passed") })

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/trends", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "passed", w.Body.String())
	})
}

func TestRateLimiterMiddleware_Mocked(t *testing.T) {
	gin.SetMode(gin.TestMode)
	key := "rate_limit:10.0.0.7"

	newRouter := func(rdb *redis.Client, limit int) *gin.Engine {
		router := gin.New()
		router.Use(RateLimiterMiddleware(rdb, limit, time.Minute, zerolog.Nop()))
		router.GET("/trends", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}
	request := func() *http.Request {
		req, _ := http.NewRequest("GET", "/trends", nil)
		req.RemoteAddr = "127.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", "10.0.0.7")
		return req
	}

	t.Run("First request opens the window", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectIncr(key).SetVal(1)
		mock.ExpectExpire(key, time.Minute).SetVal(true)
		mock.ExpectTTL(key).SetVal(time.Minute)

		w := httptest.NewRecorder()
		newRouter(rdb, 3).ServeHTTP(w, request())

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Remaining"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Over the limit is rejected", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectIncr(key).SetVal(4)
		mock.ExpectTTL(key).SetVal(42 * time.Second)

		w := httptest.NewRecorder()
		newRouter(rdb, 3).ServeHTTP(w, request())

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
		assert.Contains(t, w.Body.String(), `"retry_in_s":42`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Redis error fails open", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectIncr(key).SetErr(errors.New("connection refused"))

		w := httptest.NewRecorder()
		newRouter(rdb, 3).ServeHTTP(w, request())

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	})
}
