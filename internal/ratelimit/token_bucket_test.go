package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/jonboulle/clockwork"
)

func newTestLimiter(t *testing.T, quota SubmitQuota) (*RedisSubmitLimiter, *clockwork.FakeClock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	clock := clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	return NewRedisSubmitLimiter(rdb, quota, clock), clock, mr
}

func TestAllowSubmit_DisabledQuota(t *testing.T) {
	lim, _, _ := newTestLimiter(t, SubmitQuota{})

	v, err := lim.AllowSubmit(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !v.Allowed {
		t.Fatal("expected allowed when the quota is disabled")
	}
}

func TestAllowSubmit_NilLimiter(t *testing.T) {
	var lim *RedisSubmitLimiter
	v, err := lim.AllowSubmit(context.Background(), "client-1")
	if err != nil || !v.Allowed {
		t.Fatalf("nil limiter must allow, got %+v, %v", v, err)
	}
}

func TestAllowSubmit_EmptyClient(t *testing.T) {
	lim, _, _ := newTestLimiter(t, SubmitQuota{PerMinute: 1, Burst: 1})
	if _, err := lim.AllowSubmit(context.Background(), "  "); err == nil {
		t.Fatal("expected an error for an empty client id")
	}
}

func TestAllowSubmit_SpendsBurstPerClient(t *testing.T) {
	lim, _, mr := newTestLimiter(t, SubmitQuota{PerMinute: 6, Burst: 2})
	ctx := context.Background()

	first, err := lim.AllowSubmit(ctx, "client-1")
	if err != nil || !first.Allowed || first.Remaining != 1 {
		t.Fatalf("first = %+v, %v", first, err)
	}
	second, err := lim.AllowSubmit(ctx, "client-1")
	if err != nil || !second.Allowed || second.Remaining != 0 {
		t.Fatalf("second = %+v, %v", second, err)
	}

	third, err := lim.AllowSubmit(ctx, "client-1")
	if err != nil {
		t.Fatalf("third: %v", err)
	}
	if third.Allowed {
		t.Fatal("expected third submission to be limited")
	}
	// one token every 10 seconds
	if third.RetryAfter != 10*time.Second || third.RetryAfterSeconds() != 10 {
		t.Fatalf("retry after = %v", third.RetryAfter)
	}

	other, err := lim.AllowSubmit(ctx, "client-2")
	if err != nil || !other.Allowed {
		t.Fatalf("other client must have its own bucket, got %+v, %v", other, err)
	}

	if !mr.Exists("pitchflow:submit:client-1") {
		t.Fatal("expected bucket key for client-1")
	}
	if ttl := mr.TTL("pitchflow:submit:client-1"); ttl != 80*time.Second {
		t.Fatalf("bucket ttl = %v, want 80s", ttl)
	}
}

func TestAllowSubmit_RefillsOverTime(t *testing.T) {
	lim, clock, _ := newTestLimiter(t, SubmitQuota{PerMinute: 6, Burst: 1})
	ctx := context.Background()

	if v, _ := lim.AllowSubmit(ctx, "client-1"); !v.Allowed {
		t.Fatal("expected first submission to be allowed")
	}
	clock.Advance(4 * time.Second)
	v, _ := lim.AllowSubmit(ctx, "client-1")
	if v.Allowed {
		t.Fatal("expected submission before refill to be limited")
	}
	if v.RetryAfter != 6*time.Second {
		t.Fatalf("retry after = %v, want 6s", v.RetryAfter)
	}

	clock.Advance(7 * time.Second)
	v, err := lim.AllowSubmit(ctx, "client-1")
	if err != nil {
		t.Fatalf("allow after refill: %v", err)
	}
	if !v.Allowed {
		t.Fatal("expected the bucket to refill")
	}
}

func TestVerdictRetryAfterSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{0, 1},
		{300 * time.Millisecond, 1},
		{1500 * time.Millisecond, 2},
		{10 * time.Second, 10},
	}
	for _, tt := range tests {
		if got := (Verdict{RetryAfter: tt.in}).RetryAfterSeconds(); got != tt.want {
			t.Errorf("RetryAfterSeconds(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSubmitQuotaKeyTTL(t *testing.T) {
	if got := (SubmitQuota{PerMinute: 1, Burst: 1}).keyTTL(); got != 2*time.Minute {
		t.Fatalf("ttl = %v", got)
	}
	if got := (SubmitQuota{PerMinute: 60, Burst: 5}).keyTTL(); got != 65*time.Second {
		t.Fatalf("ttl = %v", got)
	}
}
