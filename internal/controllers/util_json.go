package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/osvaldoandrade/pitchflow/internal/middleware"
	"github.com/osvaldoandrade/pitchflow/internal/services"
)

// APIError is the error body of every JSON endpoint.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": APIError{Code: code, Message: message}})
}

func jsonMarshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// controllerFor resolves the submission controller of the calling client.
func controllerFor(c *gin.Context, registry services.ClientRegistry) (services.SubmissionController, bool) {
	clientID := middleware.ClientID(c)
	if clientID == "" {
		writeError(c, http.StatusUnauthorized, "no_client", "client session missing")
		return nil, false
	}
	return registry.Get(clientID), true
}
