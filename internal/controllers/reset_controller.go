package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/osvaldoandrade/pitchflow/internal/middleware"
	"github.com/osvaldoandrade/pitchflow/internal/services"
)

type resetController struct{ registry services.ClientRegistry }

func NewResetController(registry services.ClientRegistry) *resetController {
	return &resetController{registry: registry}
}

func (h *resetController) HandleForm(c *gin.Context) {
	if h.reset(c) {
		c.Redirect(http.StatusSeeOther, "/")
	}
}

func (h *resetController) HandleAPI(c *gin.Context) {
	if h.reset(c) {
		ctrl, _ := controllerFor(c, h.registry)
		c.JSON(http.StatusOK, ctrl.Snapshot())
	}
}

func (h *resetController) reset(c *gin.Context) bool {
	ctrl, ok := controllerFor(c, h.registry)
	if !ok {
		return false
	}
	ctrl.Reset()
	middleware.Logger(c).Info("client reset")
	return true
}
