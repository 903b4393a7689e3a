package domain

import "strings"

// SessionID correlates one submission attempt with its remote result.
type SessionID string

func (id SessionID) String() string { return string(id) }

// InputDraft is the text the user typed into the idea field.
type InputDraft struct {
	Text string `json:"text"`
}

func (d InputDraft) Blank() bool { return strings.TrimSpace(d.Text) == "" }

// RemoteResult is the body returned by the deck webhook. ResultURL is optional.
type RemoteResult struct {
	ResultURL string `json:"resultUrl,omitempty"`
}

func (r RemoteResult) HasResult() bool { return strings.TrimSpace(r.ResultURL) != "" }

// Outcome describes what a single Submit call did.
type Outcome string

const (
	OutcomeAccepted     Outcome = "accepted"
	OutcomeFailed       Outcome = "failed"
	OutcomeIgnoredBlank Outcome = "ignored_blank"
	OutcomeIgnoredBusy  Outcome = "ignored_busy"
	OutcomeStale        Outcome = "stale"
)

// Notice is a user-visible failure notification.
type Notice struct {
	Message string `json:"message"`
}

// SubmitFailedMessage is shown for every transport failure.
const SubmitFailedMessage = "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."
