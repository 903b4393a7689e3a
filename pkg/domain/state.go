package domain

import "strings"

// CountdownBudget is the fixed window, in seconds, the UI allots to the remote
// pipeline once a submission has been accepted.
const CountdownBudget = 180

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseRunning    Phase = "running"
	PhaseComplete   Phase = "complete"
)

// State is one of Idle, Submitting, Running or Complete. The variants are the
// only implementations; a controller holds exactly one of them at a time.
type State interface {
	Phase() Phase
	isState()
}

type Idle struct{}

type Submitting struct {
	Session SessionID
}

type Running struct {
	Session          SessionID
	RemainingSeconds int
	ResultURL        string
}

type Complete struct {
	Session   SessionID
	ResultURL string
}

func (Idle) Phase() Phase       { return PhaseIdle }
func (Submitting) Phase() Phase { return PhaseSubmitting }
func (Running) Phase() Phase    { return PhaseRunning }
func (Complete) Phase() Phase   { return PhaseComplete }

func (Idle) isState()       {}
func (Submitting) isState() {}
func (Running) isState()    {}
func (Complete) isState()   {}

// HasResult reports whether the remote workflow delivered a link.
func (c Complete) HasResult() bool { return strings.TrimSpace(c.ResultURL) != "" }

// Busy reports whether s blocks a new submission.
func Busy(s State) bool {
	switch s.(type) {
	case Submitting, Running:
		return true
	default:
		return false
	}
}

// SessionOf returns the session a state belongs to, empty for Idle.
func SessionOf(s State) SessionID {
	switch v := s.(type) {
	case Submitting:
		return v.Session
	case Running:
		return v.Session
	case Complete:
		return v.Session
	default:
		return ""
	}
}
