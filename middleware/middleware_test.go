package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ShashankBhake/st-shield-backend/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) { c.Status(http.StatusOK) }

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())

	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = logger.RequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "unknown", seen)
	assert.Equal(t, seen, w.Header().Get(HeaderRequestID))
}

func TestRequestID_ReusesInbound(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-abc", w.Header().Get(HeaderRequestID))
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter(rate.Every(time.Hour), 2, time.Minute)
	defer limiter.Stop()

	r := gin.New()
	r.Use(RateLimitMiddleware(limiter))
	r.GET("/", okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		method     string
		wantStatus int
		wantHeader string
	}{
		{"no origin passes", nil, "", http.MethodGet, http.StatusOK, ""},
		{"empty list blocks cross origin", nil, "https://evil.example", http.MethodGet, http.StatusForbidden, ""},
		{"listed origin allowed", []string{"https://app.example/"}, "https://app.example", http.MethodGet, http.StatusOK, "https://app.example"},
		{"unlisted origin blocked", []string{"https://app.example"}, "https://other.example", http.MethodGet, http.StatusForbidden, ""},
		{"wildcard allows any", []string{"*"}, "https://any.example", http.MethodGet, http.StatusOK, "*"},
		{"preflight", []string{"https://app.example"}, "https://app.example", http.MethodOptions, http.StatusNoContent, "https://app.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORSMiddleware(tt.allowed))
			r.Any("/", okHandler)

			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantHeader, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestTimeout_SetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(time.Second))

	var hasDeadline bool
	r.GET("/", func(c *gin.Context) {
		_, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, hasDeadline)
}

func TestPrometheus_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(Prometheus(), MetricsMiddleware(nil, "test"))
	r.GET("/ping", okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatusCodeToRange(t *testing.T) {
	assert.Equal(t, "2xx", statusCodeToRange(201))
	assert.Equal(t, "3xx", statusCodeToRange(302))
	assert.Equal(t, "4xx", statusCodeToRange(404))
	assert.Equal(t, "5xx", statusCodeToRange(503))
	assert.Equal(t, "unknown", statusCodeToRange(100))
}

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestAdminAuth(t *testing.T) {
	const secret = "admin-secret"
	future := time.Now().Add(time.Hour).Unix()
	past := time.Now().Add(-time.Hour).Unix()

	tests := []struct {
		name   string
		secret string
		header string
		want   int
	}{
		{"not configured", "", "Bearer x", http.StatusServiceUnavailable},
		{"missing header", secret, "", http.StatusUnauthorized},
		{"not bearer", secret, "Basic abc", http.StatusUnauthorized},
		{"bad signature", secret, "Bearer " + signToken(t, jwt.SigningMethodHS256, "other", jwt.MapClaims{"role": "admin", "exp": future}), http.StatusUnauthorized},
		{"wrong algorithm", secret, "Bearer " + signToken(t, jwt.SigningMethodHS512, secret, jwt.MapClaims{"role": "admin", "exp": future}), http.StatusUnauthorized},
		{"expired", secret, "Bearer " + signToken(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"role": "admin", "exp": past}), http.StatusUnauthorized},
		{"not admin", secret, "Bearer " + signToken(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"role": "user", "exp": future}), http.StatusForbidden},
		{"admin", secret, "Bearer " + signToken(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"role": "admin", "sub": "ops", "exp": future}), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(AdminAuth(tt.secret))
			r.GET("/", okHandler)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequestLogger_DoesNotAlterResponse(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RequestLogger())
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil).WithContext(context.Background()))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
