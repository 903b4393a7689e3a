package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// CORSMiddleware applies CORS headers to requests under pathPrefix and answers
// preflight requests there. Other paths are untouched. It must be installed
// with engine.Use so it also sees unrouted OPTIONS requests.
func CORSMiddleware(allowedOrigins []string, pathPrefix string) gin.HandlerFunc {
	if len(allowedOrigins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	policy := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedHeaders:       []string{"Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders:       []string{requestIDHeader, "Retry-After", ClientTokenHeader},
		AllowCredentials:     true,
		OptionsSuccessStatus: http.StatusNoContent,
	})

	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, pathPrefix) {
			c.Next()
			return
		}
		policy.HandlerFunc(c.Writer, c.Request)
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
