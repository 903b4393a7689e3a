package domain

import "fmt"

// Snapshot is the wire projection of a State. Remaining carries the formatted
// countdown and is filled by the caller that owns the formatter.
type Snapshot struct {
	Phase            Phase     `json:"phase"`
	SessionID        SessionID `json:"sessionId,omitempty"`
	RemainingSeconds *int      `json:"remainingSeconds,omitempty"`
	Remaining        string    `json:"remaining,omitempty"`
	ResultURL        string    `json:"resultUrl,omitempty"`
}

type EventType string

const (
	EventState  EventType = "state"
	EventNotice EventType = "notice"
)

// Event is pushed to subscribers of a controller.
type Event struct {
	Type   EventType `json:"type"`
	State  *Snapshot `json:"state,omitempty"`
	Notice *Notice   `json:"notice,omitempty"`
}

// Describe projects a State into a Snapshot.
func Describe(s State) Snapshot {
	switch v := s.(type) {
	case Idle:
		return Snapshot{Phase: PhaseIdle}
	case Submitting:
		return Snapshot{Phase: PhaseSubmitting, SessionID: v.Session}
	case Running:
		remaining := v.RemainingSeconds
		return Snapshot{
			Phase:            PhaseRunning,
			SessionID:        v.Session,
			RemainingSeconds: &remaining,
			ResultURL:        v.ResultURL,
		}
	case Complete:
		return Snapshot{Phase: PhaseComplete, SessionID: v.Session, ResultURL: v.ResultURL}
	default:
		panic(fmt.Sprintf("domain: unknown state %T", s))
	}
}
