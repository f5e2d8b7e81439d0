package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRateLimitRouter(t *testing.T, limit int, window time.Duration) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/signup", RateLimit(client, limit, window), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router, mr
}

func hit(router *gin.Engine) int {
	req, _ := http.NewRequest("POST", "/signup", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_UnderLimit(t *testing.T) {
	router, _ := setupRateLimitRouter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(router))
	}
}

func TestRateLimit_OverLimit(t *testing.T) {
	router, _ := setupRateLimitRouter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		hit(router)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(router))
}

func TestRateLimit_WindowExpiry(t *testing.T) {
	router, mr := setupRateLimitRouter(t, 1, time.Minute)

	assert.Equal(t, http.StatusOK, hit(router))
	assert.Equal(t, http.StatusTooManyRequests, hit(router))

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, hit(router))
}

func TestRateLimit_RedisDownFailsOpen(t *testing.T) {
	router, mr := setupRateLimitRouter(t, 1, time.Minute)
	mr.Close()

	assert.Equal(t, http.StatusOK, hit(router))
	assert.Equal(t, http.StatusOK, hit(router))
}
