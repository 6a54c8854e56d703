package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modernmen-backend/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		utils.RespondSuccess(c, http.StatusOK, "pong", nil)
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("kaboom")
	})
	return r
}

func get(r http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	store := NewMemoryStore(2, time.Minute)
	r := newRouter(RequestID(), RateLimit(store, 2, time.Minute))

	assert.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)

	w := get(r, "/ping", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))

	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, utils.CodeRateLimitExceeded, body.Code)
	assert.Equal(t, w.Header().Get(RequestIDHeader), body.RequestID)
}

type brokenStore struct{}

func (brokenStore) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis unreachable")
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := newRouter(RateLimit(brokenStore{}, 1, time.Minute))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)
	}
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	store := NewMemoryStore(1, time.Hour)
	ctx := context.Background()

	ok, _ := store.Allow(ctx, "user:a")
	assert.True(t, ok)
	ok, _ = store.Allow(ctx, "user:a")
	assert.False(t, ok)
	ok, _ = store.Allow(ctx, "user:b")
	assert.True(t, ok)
}

func TestRequestID(t *testing.T) {
	r := newRouter(RequestID())

	w := get(r, "/ping", map[string]string{RequestIDHeader: "trace-123"})
	assert.Equal(t, "trace-123", w.Header().Get(RequestIDHeader))
	var body utils.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "trace-123", body.RequestID)
	assert.True(t, body.Success)

	w = get(r, "/ping", nil)
	assert.True(t, strings.HasPrefix(w.Header().Get(RequestIDHeader), "req_"))

	w = get(r, "/ping", map[string]string{RequestIDHeader: strings.Repeat("x", 200)})
	assert.True(t, strings.HasPrefix(w.Header().Get(RequestIDHeader), "req_"), "oversized ids are replaced")
}

func TestRecovery(t *testing.T) {
	r := newRouter(RequestID(), Recovery())

	w := get(r, "/panic", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, utils.CodeInternal, body.Code)
}

func TestMetrics(t *testing.T) {
	r := newRouter(Metrics())
	r.GET("/metrics", MetricsHandler())

	get(r, "/ping", nil)
	w := get(r, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `modernmen_http_requests_total{method="GET",path="/ping",status="200"}`)
}
