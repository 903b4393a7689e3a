package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/osvaldoandrade/pitchflow/internal/middleware"
	"github.com/osvaldoandrade/pitchflow/internal/services"
	"github.com/osvaldoandrade/pitchflow/pkg/domain"
)

const ideaFormField = "business-idea"

type submitController struct{ registry services.ClientRegistry }

func NewSubmitController(registry services.ClientRegistry) *submitController {
	return &submitController{registry: registry}
}

// HandleForm serves the page form. The outcome is shown by the page the
// browser is redirected to.
func (h *submitController) HandleForm(c *gin.Context) {
	ctrl, ok := controllerFor(c, h.registry)
	if !ok {
		return
	}
	outcome, err := ctrl.Submit(c.Request.Context(), domain.InputDraft{Text: c.PostForm(ideaFormField)})
	logOutcome(c, outcome, err)
	c.Redirect(http.StatusSeeOther, "/")
}

type submitReq struct {
	Text string `json:"text"`
}

func (h *submitController) HandleAPI(c *gin.Context) {
	var req submitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_body", "invalid body")
		return
	}
	ctrl, ok := controllerFor(c, h.registry)
	if !ok {
		return
	}

	outcome, err := ctrl.Submit(c.Request.Context(), domain.InputDraft{Text: req.Text})
	logOutcome(c, outcome, err)

	switch outcome {
	case domain.OutcomeAccepted:
		c.JSON(http.StatusAccepted, ctrl.Snapshot())
	case domain.OutcomeIgnoredBlank:
		writeError(c, http.StatusUnprocessableEntity, "blank_idea", "text must not be blank")
	case domain.OutcomeIgnoredBusy:
		writeError(c, http.StatusConflict, "busy", "a submission is already in progress")
	case domain.OutcomeStale:
		writeError(c, http.StatusConflict, "stale", "submission was superseded")
	case domain.OutcomeFailed:
		// The response carries the failure; the page must not replay it.
		ctrl.TakeNotice()
		writeError(c, http.StatusBadGateway, "webhook_failed", domain.SubmitFailedMessage)
	default:
		writeError(c, http.StatusInternalServerError, "internal", "unexpected outcome")
	}
}

func logOutcome(c *gin.Context, outcome domain.Outcome, err error) {
	logger := middleware.Logger(c).With("outcome", string(outcome))
	switch {
	case errors.Is(err, services.ErrSubmissionFailed):
		logger.Warn("submit failed", "err", err)
	case err != nil:
		logger.Error("submit", "err", err)
	default:
		logger.Info("submit handled")
	}
}
