package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/osvaldoandrade/pitchflow/pkg/auth"
)

const (
	ClientCookieName = "pitchflow_client"
	// ClientTokenHeader carries a freshly issued session token so API callers
	// without a cookie jar can send it back as a Bearer token.
	ClientTokenHeader = "X-Pitchflow-Client-Token"
	clientIDKey       = "client_id"
)

// SessionTokens is satisfied by clientsession.Tokens.
type SessionTokens interface {
	auth.Issuer
	auth.Validator
}

// ClientSessionMiddleware identifies the browser client by a signed cookie
// (or a Bearer token for API callers). A missing or invalid token gets a fresh
// client id, a new cookie and the same token in ClientTokenHeader.
func ClientSessionMiddleware(tokens SessionTokens, ttl time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			raw, _ = c.Cookie(ClientCookieName)
		}

		if raw != "" {
			if claims, err := tokens.Validate(raw); err == nil {
				c.Set(clientIDKey, claims.Subject)
				c.Next()
				return
			}
			Logger(c).Debug("client session token rejected, issuing a new one")
		}

		clientID := uuid.NewString()
		signed, _, err := tokens.Issue(clientID)
		if err != nil {
			Logger(c).Error("issue client session token", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("session_unavailable", "client session could not be created"))
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(ClientCookieName, signed, int(ttl.Seconds()), "/", "", secure, true)
		c.Header(ClientTokenHeader, signed)
		c.Set(clientIDKey, clientID)
		c.Next()
	}
}

// ClientID returns the client id set by ClientSessionMiddleware.
func ClientID(c *gin.Context) string {
	return c.GetString(clientIDKey)
}

func bearerToken(authHeader string) string {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func errorBody(code, message string) gin.H {
	return gin.H{"error": gin.H{"code": code, "message": message}}
}
