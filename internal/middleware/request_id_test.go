package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware(), LoggerMiddleware(nil))
	r.GET("/", func(c *gin.Context) {
		if Logger(c) == nil {
			t.Error("expected request logger")
		}
		c.String(http.StatusOK, RequestID(c.Request.Context()))
	})

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generated when missing", "", false},
		{"propagated", "req-123", true},
		{"oversized replaced", strings.Repeat("x", maxRequestIDLength+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(requestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			got := rec.Header().Get(requestIDHeader)
			if got == "" || rec.Body.String() != got {
				t.Fatalf("header %q, body %q", got, rec.Body.String())
			}
			if tt.keep && got != tt.incoming {
				t.Fatalf("expected %q to be kept, got %q", tt.incoming, got)
			}
			if !tt.keep && got == tt.incoming {
				t.Fatalf("expected a generated id")
			}
		})
	}
}
