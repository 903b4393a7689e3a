package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/osvaldoandrade/pitchflow/internal/metrics"
	"github.com/osvaldoandrade/pitchflow/internal/ratelimit"
)

const rateLimitRemainingHeader = "X-RateLimit-Remaining"

// RateLimitSubmit spends one token of the caller's submit quota per request.
// A nil limiter, an unknown client or a limiter error lets the request through.
func RateLimitSubmit(lim ratelimit.SubmitLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := ClientID(c)
		if lim == nil || clientID == "" {
			c.Next()
			return
		}

		verdict, err := lim.AllowSubmit(c.Request.Context(), clientID)
		if err != nil {
			Logger(c).Warn("submit rate limit check failed", "err", err)
			c.Next()
			return
		}
		c.Header(rateLimitRemainingHeader, strconv.Itoa(verdict.Remaining))
		if verdict.Allowed {
			c.Next()
			return
		}

		retryAfter := verdict.RetryAfterSeconds()
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		metrics.RateLimitHitsTotal.WithLabelValues("client", "submit").Inc()
		Logger(c).Info("submission rate limited", "client_id", clientID, "retry_after_seconds", retryAfter)
		body := errorBody("rate_limited", "too many submissions, try again later")
		body["retryAfterSeconds"] = retryAfter
		c.AbortWithStatusJSON(http.StatusTooManyRequests, body)
	}
}
