package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"realones/config"
	"realones/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthRequired(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "s3cret", Issuer: "realones", Audience: "authenticated", AccessExpiry: time.Hour}
	id := uuid.New()
	tok, err := auth.GenerateAccessToken(cfg, id, "")
	if err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	r.GET("/me", AuthRequired(cfg), func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c).String())
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + tok, http.StatusOK},
		{"lowercase scheme", "bearer " + tok, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.status == http.StatusOK && w.Body.String() != id.String() {
				t.Errorf("user id = %q", w.Body.String())
			}
		})
	}
}

func TestGetUserID_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if GetUserID(c) != uuid.Nil {
		t.Error("expected uuid.Nil without auth")
	}
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(2, time.Minute, zap.NewNop()))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, send("10.0.0.1:5000").Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}
	if w := send("10.0.0.2:5000"); w.Code != http.StatusOK {
		t.Errorf("other IP limited: %d", w.Code)
	}
	if w := send("10.0.0.1:6000"); w.Header().Get("Retry-After") == "" || w.Body.String() != `{"error":"rate limit exceeded"}` {
		t.Errorf("limited response headers %v, body %q", w.Header(), w.Body.String())
	}
}
