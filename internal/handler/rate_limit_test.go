package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
)

func newLimitedRouter(perSecond float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimiter(perSecond, burst).Middleware())
	r.GET("/categories", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func get(r *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/categories", nil)
	req.RemoteAddr = remoteAddr
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	r := newLimitedRouter(0.5, 2)

	assert.Equal(t, http.StatusOK, get(r, "192.0.2.1:1234").Code)
	assert.Equal(t, http.StatusOK, get(r, "192.0.2.1:1234").Code)

	w := get(r, "192.0.2.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
}

func TestRateLimiter_PerClient(t *testing.T) {
	r := newLimitedRouter(0.5, 1)

	assert.Equal(t, http.StatusOK, get(r, "192.0.2.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "192.0.2.1:1234").Code)
	assert.Equal(t, http.StatusOK, get(r, "198.51.100.7:4321").Code)
}

func TestRateLimiter_MinimumBurst(t *testing.T) {
	r := newLimitedRouter(0.5, 0)

	assert.Equal(t, http.StatusOK, get(r, "192.0.2.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "192.0.2.1:1234").Code)
}
