package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/osvaldoandrade/pitchflow/internal/ratelimit"
)

// mockLimiter implements ratelimit.SubmitLimiter for testing
type mockLimiter struct {
	verdict  ratelimit.Verdict
	err      error
	calls    int
	clientID string
}

func (m *mockLimiter) AllowSubmit(ctx context.Context, clientID string) (ratelimit.Verdict, error) {
	m.calls++
	m.clientID = clientID
	return m.verdict, m.err
}

func newSubmitContext(clientID string) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/api/submissions", nil)
	if clientID != "" {
		ctx.Set(clientIDKey, clientID)
	}
	return ctx, rec
}

func TestRateLimitSubmit_Allowed(t *testing.T) {
	limiter := &mockLimiter{verdict: ratelimit.Verdict{Allowed: true, Remaining: 3}}
	ctx, rec := newSubmitContext("client-1")

	RateLimitSubmit(limiter)(ctx)

	if ctx.IsAborted() {
		t.Fatal("expected request to pass through when rate limit allows")
	}
	if limiter.clientID != "client-1" {
		t.Fatalf("expected bucket keyed by client id, got %q", limiter.clientID)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "3" {
		t.Fatalf("expected X-RateLimit-Remaining: 3, got %q", got)
	}
}

func TestRateLimitSubmit_Denied(t *testing.T) {
	limiter := &mockLimiter{verdict: ratelimit.Verdict{Allowed: false, RetryAfter: 5 * time.Second}}
	ctx, rec := newSubmitContext("client-1")

	RateLimitSubmit(limiter)(ctx)

	if !ctx.IsAborted() {
		t.Fatal("expected request to be aborted when rate limited")
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 status, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "5" {
		t.Fatalf("expected Retry-After: 5, got %s", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("expected X-RateLimit-Remaining: 0, got %q", got)
	}

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		RetryAfterSeconds int `json:"retryAfterSeconds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal JSON response: %v", err)
	}
	if body.Error.Code != "rate_limited" || body.Error.Message == "" {
		t.Fatalf("unexpected error body %+v", body.Error)
	}
	if body.RetryAfterSeconds != 5 {
		t.Fatalf("expected retryAfterSeconds=5, got %d", body.RetryAfterSeconds)
	}
}

func TestRateLimitSubmit_LimiterError(t *testing.T) {
	limiter := &mockLimiter{err: context.DeadlineExceeded}
	ctx, _ := newSubmitContext("client-1")

	RateLimitSubmit(limiter)(ctx)

	if ctx.IsAborted() {
		t.Fatal("expected request to pass through when limiter returns error (fail open)")
	}
}

func TestRateLimitSubmit_NoClient(t *testing.T) {
	limiter := &mockLimiter{}
	ctx, _ := newSubmitContext("")

	RateLimitSubmit(limiter)(ctx)

	if ctx.IsAborted() {
		t.Fatal("requests without a client id should pass through")
	}
	if limiter.calls != 0 {
		t.Fatalf("limiter should not be consulted, got %d calls", limiter.calls)
	}
}

func TestRateLimitSubmit_NilLimiter(t *testing.T) {
	ctx, _ := newSubmitContext("client-1")

	RateLimitSubmit(nil)(ctx)

	if ctx.IsAborted() {
		t.Fatal("expected request to pass through with nil limiter")
	}
}

func TestRateLimitSubmit_RetryAfterLessThanOne(t *testing.T) {
	limiter := &mockLimiter{verdict: ratelimit.Verdict{Allowed: false, RetryAfter: 500 * time.Millisecond}}
	ctx, rec := newSubmitContext("client-1")

	RateLimitSubmit(limiter)(ctx)

	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("expected Retry-After: 1 (minimum), got %s", got)
	}
}
