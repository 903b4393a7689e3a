package view

import (
	"fmt"
	"strings"

	"github.com/osvaldoandrade/pitchflow/internal/countdown"
	"github.com/osvaldoandrade/pitchflow/pkg/domain"
)

type ScreenKind string

const (
	ScreenForm      ScreenKind = "form"
	ScreenCountdown ScreenKind = "countdown"
	ScreenComplete  ScreenKind = "complete"
)

// Screen is everything the page template needs for one render.
type Screen struct {
	Kind  ScreenKind
	Phase domain.Phase

	// form
	Draft     string
	Sending   bool
	CanSubmit bool

	// countdown
	Remaining        string
	RemainingSeconds int

	// complete
	ResultURL string
	HasResult bool

	Notice string
}

// Project maps controller state onto a screen. It has no side effects.
func Project(st domain.State, draft domain.InputDraft, notice *domain.Notice) Screen {
	s := Screen{Phase: st.Phase()}
	if notice != nil {
		s.Notice = notice.Message
	}

	switch v := st.(type) {
	case domain.Idle:
		s.Kind = ScreenForm
		s.Draft = draft.Text
		s.CanSubmit = !draft.Blank()
	case domain.Submitting:
		s.Kind = ScreenForm
		s.Draft = draft.Text
		s.Sending = true
	case domain.Running:
		s.Kind = ScreenCountdown
		s.RemainingSeconds = v.RemainingSeconds
		s.Remaining = countdown.Format(v.RemainingSeconds)
	case domain.Complete:
		s.Kind = ScreenComplete
		s.ResultURL = strings.TrimSpace(v.ResultURL)
		s.HasResult = v.HasResult()
	default:
		panic(fmt.Sprintf("view: unhandled state %T", st))
	}
	return s
}

// SubmitLabel is the caption of the submit button.
func (s Screen) SubmitLabel() string {
	if s.Sending {
		return "Wird gesendet..."
	}
	return "Los geht's!"
}

// Live reports whether the page expects further server-side transitions.
func (s Screen) Live() bool {
	return s.Sending || s.Kind == ScreenCountdown
}
