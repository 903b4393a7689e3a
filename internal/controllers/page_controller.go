package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/osvaldoandrade/pitchflow/internal/middleware"
	"github.com/osvaldoandrade/pitchflow/internal/services"
	"github.com/osvaldoandrade/pitchflow/internal/view"
	"github.com/osvaldoandrade/pitchflow/pkg/domain"
)

type pageController struct{ registry services.ClientRegistry }

func NewPageController(registry services.ClientRegistry) *pageController {
	return &pageController{registry: registry}
}

func (h *pageController) Handle(c *gin.Context) {
	ctrl, ok := controllerFor(c, h.registry)
	if !ok {
		return
	}

	var notice *domain.Notice
	if n, ok := ctrl.TakeNotice(); ok {
		notice = &n
	}
	screen := view.Project(ctrl.State(), ctrl.Draft(), notice)

	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := view.Render(c.Writer, screen); err != nil {
		middleware.Logger(c).Error("render page", "err", err)
	}
}
