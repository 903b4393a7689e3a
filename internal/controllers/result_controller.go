package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/osvaldoandrade/pitchflow/internal/services"
	"github.com/osvaldoandrade/pitchflow/pkg/domain"
)

type resultController struct{ registry services.ClientRegistry }

func NewResultController(registry services.ClientRegistry) *resultController {
	return &resultController{registry: registry}
}

// Handle redirects to the generated deck once the countdown is complete.
func (h *resultController) Handle(c *gin.Context) {
	ctrl, ok := controllerFor(c, h.registry)
	if !ok {
		return
	}
	done, ok := ctrl.State().(domain.Complete)
	if !ok || !done.HasResult() {
		writeError(c, http.StatusNotFound, "no_result", "no result available")
		return
	}
	c.Redirect(http.StatusFound, done.ResultURL)
}
