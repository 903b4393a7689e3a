package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/osvaldoandrade/pitchflow/internal/services"
)

type stateController struct{ registry services.ClientRegistry }

func NewStateController(registry services.ClientRegistry) *stateController {
	return &stateController{registry: registry}
}

func (h *stateController) Handle(c *gin.Context) {
	ctrl, ok := controllerFor(c, h.registry)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ctrl.Snapshot())
}
