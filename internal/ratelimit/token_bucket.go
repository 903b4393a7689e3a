package ratelimit

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jonboulle/clockwork"
)

const submitKeyPrefix = "pitchflow:submit:"

// SubmitQuota is how many deck submissions one client may start: Burst at
// once, refilled at PerMinute. Either value at zero disables limiting.
type SubmitQuota struct {
	PerMinute int
	Burst     int
}

func (q SubmitQuota) Enabled() bool {
	return q.PerMinute > 0 && q.Burst > 0
}

func (q SubmitQuota) refillPerMS() float64 {
	return float64(q.PerMinute) / float64(time.Minute.Milliseconds())
}

// keyTTL keeps a client's bucket until it would be full again, plus a minute.
func (q SubmitQuota) keyTTL() time.Duration {
	perMinute := int64(q.PerMinute)
	fullMS := (int64(q.Burst)*time.Minute.Milliseconds() + perMinute - 1) / perMinute
	return time.Duration(fullMS)*time.Millisecond + time.Minute
}

// Verdict is the answer for one submission attempt.
type Verdict struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, at least 1.
func (v Verdict) RetryAfterSeconds() int {
	s := int(math.Ceil(v.RetryAfter.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

type SubmitLimiter interface {
	AllowSubmit(ctx context.Context, clientID string) (Verdict, error)
}

// RedisSubmitLimiter keeps one token bucket per client in Redis so every
// pitchflow instance spends from the same quota.
type RedisSubmitLimiter struct {
	rdb   *redis.Client
	quota SubmitQuota
	clock clockwork.Clock
}

func NewRedisSubmitLimiter(rdb *redis.Client, quota SubmitQuota, clock clockwork.Clock) *RedisSubmitLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RedisSubmitLimiter{rdb: rdb, quota: quota, clock: clock}
}

// KEYS[1] bucket; ARGV refill per ms, burst, now ms, ttl ms.
// Returns {allowed, whole tokens left, ms until the next token}.
var submitBucketScript = redis.NewScript(`
local refill = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local state = redis.call("HMGET", KEYS[1], "tokens", "at")
local tokens = tonumber(state[1]) or burst
local at = tonumber(state[2]) or now
if now > at then
  tokens = math.min(burst, tokens + (now - at) * refill)
end

local allowed = 0
local wait = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
else
  wait = math.ceil((1 - tokens) / refill)
end

redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "at", now)
redis.call("PEXPIRE", KEYS[1], ARGV[4])
return {allowed, math.floor(tokens), wait}
`)

func (l *RedisSubmitLimiter) AllowSubmit(ctx context.Context, clientID string) (Verdict, error) {
	if l == nil || l.rdb == nil || !l.quota.Enabled() {
		return Verdict{Allowed: true}, nil
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return Verdict{}, fmt.Errorf("submit limiter: empty client id")
	}

	res, err := submitBucketScript.Run(ctx, l.rdb, []string{submitKeyPrefix + clientID},
		l.quota.refillPerMS(),
		l.quota.Burst,
		l.clock.Now().UnixMilli(),
		l.quota.keyTTL().Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Verdict{}, fmt.Errorf("submit limiter: %w", err)
	}
	if len(res) != 3 {
		return Verdict{}, fmt.Errorf("submit limiter: unexpected reply %v", res)
	}
	return Verdict{
		Allowed:    res[0] == 1,
		Remaining:  int(res[1]),
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}
