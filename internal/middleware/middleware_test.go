package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func setupMiddlewareTest() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	router := setupMiddlewareTest()
	router.Use(LoggingMiddleware())
	router.GET("/test", func(c *gin.Context) {
		assert.NotNil(t, GetLoggerFromContext(c))
		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString("request_id")})
	})

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
		assert.Contains(t, w.Body.String(), "req-123")
	})
}

func TestGetLoggerFromContext_Fallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.NotNil(t, GetLoggerFromContext(c))
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := setupMiddlewareTest()
	limiter := NewRateLimiter(ctx, rate.Every(time.Hour), 2)
	router.POST("/orders", limiter.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/orders", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_SeparateClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := setupMiddlewareTest()
	limiter := NewRateLimiter(ctx, rate.Every(time.Hour), 1)
	router.POST("/orders", limiter.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	for _, addr := range []string{"10.0.0.1:1000", "10.0.0.2:1000"} {
		req := httptest.NewRequest("POST", "/orders", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code, addr)
	}
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := NewRateLimiter(ctx, rate.Every(time.Second), 1)
	limiter.getVisitor("10.0.0.1")

	limiter.evictIdle(time.Now())
	assert.Len(t, limiter.visitors, 1)

	limiter.evictIdle(time.Now().Add(visitorIdleTTL + time.Second))
	assert.Empty(t, limiter.visitors)
}

func TestQueryTimeout(t *testing.T) {
	router := setupMiddlewareTest()
	router.GET("/slow", QueryTimeout(50*time.Millisecond), func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
		c.Status(http.StatusNoContent)
	})
	router.GET("/unbounded", QueryTimeout(0), func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.False(t, ok)
		c.Status(http.StatusNoContent)
	})

	for _, path := range []string{"/slow", "/unbounded"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}
