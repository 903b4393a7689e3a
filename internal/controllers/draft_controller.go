package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/osvaldoandrade/pitchflow/internal/services"
)

type draftController struct{ registry services.ClientRegistry }

func NewDraftController(registry services.ClientRegistry) *draftController {
	return &draftController{registry: registry}
}

type draftReq struct {
	Text string `json:"text"`
}

func (h *draftController) Handle(c *gin.Context) {
	var req draftReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_body", "invalid body")
		return
	}
	ctrl, ok := controllerFor(c, h.registry)
	if !ok {
		return
	}
	if err := ctrl.SetDraft(req.Text); err != nil {
		if errors.Is(err, services.ErrDraftFrozen) {
			writeError(c, http.StatusConflict, "draft_frozen", err.Error())
			return
		}
		writeError(c, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
