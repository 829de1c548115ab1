package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TestLimiterCache_PerKey(t *testing.T) {
	cache := newLimiterCache(1, 1)

	if !cache.get("10.0.0.1").Allow() {
		t.Fatal("First request should be allowed")
	}
	if cache.get("10.0.0.1").Allow() {
		t.Error("Second request from the same client should be limited")
	}
	if !cache.get("10.0.0.2").Allow() {
		t.Error("Other clients have their own bucket")
	}
}

func TestLimiterCache_ResetsWhenFull(t *testing.T) {
	cache := newLimiterCache(1, 1)
	for i := 0; i < maxTrackedClients; i++ {
		cache.get(fmt.Sprintf("client-%d", i))
	}
	cache.get("overflow")

	if len(cache.limiters) != 1 {
		t.Errorf("Expected map reset to 1 entry, got %d", len(cache.limiters))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		rps      float64
		requests int
		want     []int
	}{
		{"disabled", 0, 3, []int{200, 200, 200}},
		{"burst of two", 0.001, 3, []int{200, 200, 429}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", rateLimitMiddleware("test", tt.rps, 2, zerolog.Nop()), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			for i := 0; i < tt.requests; i++ {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
				if w.Code != tt.want[i] {
					t.Errorf("Request %d: expected %d, got %d", i, tt.want[i], w.Code)
				}
			}
		})
	}
}
