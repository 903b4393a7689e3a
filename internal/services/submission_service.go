package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/osvaldoandrade/pitchflow/internal/countdown"
	"github.com/osvaldoandrade/pitchflow/internal/metrics"
	"github.com/osvaldoandrade/pitchflow/internal/providers"
	"github.com/osvaldoandrade/pitchflow/internal/session"
	"github.com/osvaldoandrade/pitchflow/pkg/domain"
)

var (
	ErrSubmissionFailed = errors.New("submission failed")
	ErrDraftFrozen      = errors.New("draft is read-only while a submission is in progress")
)

const subscriberBufSize = 16

// SubmissionController drives one client's submit -> countdown -> complete flow.
type SubmissionController interface {
	// Submit sends draft to the deck webhook. Blank drafts and calls made while
	// a submission is in flight or counting down are ignored. The returned
	// error is non-nil only for OutcomeFailed.
	Submit(ctx context.Context, draft domain.InputDraft) (domain.Outcome, error)
	// SetDraft mirrors the input field. Only accepted while idle.
	SetDraft(text string) error
	// Tick advances the running countdown by one second.
	Tick()
	// Reset returns to Idle and cancels the countdown. It is ignored while a
	// webhook call is in flight so at most one call runs per client.
	Reset()
	State() domain.State
	Snapshot() domain.Snapshot
	Draft() domain.InputDraft
	// TakeNotice returns and clears the pending failure notice.
	TakeNotice() (domain.Notice, bool)
	Subscribe() (<-chan domain.Event, func())
	Close()
}

type submissionController struct {
	webhook providers.DeckWebhook
	gen     session.Generator
	ticker  *countdown.Ticker
	logger  *slog.Logger

	mu      sync.Mutex
	state   domain.State
	draft   domain.InputDraft
	notice  *domain.Notice
	ticking *countdown.Handle
	subs    map[chan domain.Event]struct{}
	closed  bool
}

func NewSubmissionController(webhook providers.DeckWebhook, gen session.Generator, ticker *countdown.Ticker, logger *slog.Logger) SubmissionController {
	if gen == nil {
		gen = session.NewGenerator()
	}
	if ticker == nil {
		ticker = countdown.NewTicker(nil, countdown.DefaultPeriod)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &submissionController{
		webhook: webhook,
		gen:     gen,
		ticker:  ticker,
		logger:  logger,
		state:   domain.Idle{},
		subs:    make(map[chan domain.Event]struct{}),
	}
}

func (s *submissionController) Submit(ctx context.Context, draft domain.InputDraft) (domain.Outcome, error) {
	if draft.Blank() {
		metrics.SubmissionsTotal.WithLabelValues(string(domain.OutcomeIgnoredBlank)).Inc()
		return domain.OutcomeIgnoredBlank, nil
	}

	s.mu.Lock()
	if s.closed || domain.Busy(s.state) {
		s.mu.Unlock()
		metrics.SubmissionsTotal.WithLabelValues(string(domain.OutcomeIgnoredBusy)).Inc()
		return domain.OutcomeIgnoredBusy, nil
	}
	id := s.gen.Generate()
	s.stopTickerLocked()
	s.draft = draft
	s.notice = nil
	s.setStateLocked(domain.Submitting{Session: id})
	s.mu.Unlock()

	logger := s.logger.With("session_id", string(id))
	logger.Info("submitting idea to deck webhook")

	// The in-flight call outlives the caller; a late answer is matched by session below.
	res, err := s.webhook.Request(context.WithoutCancel(ctx), draft.Text, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.state.(domain.Submitting)
	if s.closed || !ok || cur.Session != id {
		metrics.StaleResponsesTotal.Inc()
		metrics.SubmissionsTotal.WithLabelValues(string(domain.OutcomeStale)).Inc()
		logger.Info("discarding stale webhook response", "current_phase", string(s.state.Phase()))
		return domain.OutcomeStale, nil
	}

	if err != nil {
		s.setStateLocked(domain.Idle{})
		n := domain.Notice{Message: domain.SubmitFailedMessage}
		s.notice = &n
		s.broadcastLocked(domain.Event{Type: domain.EventNotice, Notice: &n})
		metrics.SubmissionsTotal.WithLabelValues(string(domain.OutcomeFailed)).Inc()
		logger.Warn("submission failed", "err", err)
		return domain.OutcomeFailed, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	s.setStateLocked(domain.Running{
		Session:          id,
		RemainingSeconds: domain.CountdownBudget,
		ResultURL:        res.ResultURL,
	})
	s.ticking = s.ticker.Start(func() bool { return s.step(id) })
	metrics.SubmissionsTotal.WithLabelValues(string(domain.OutcomeAccepted)).Inc()
	logger.Info("countdown started", "seconds", domain.CountdownBudget, "has_result", res.HasResult())
	return domain.OutcomeAccepted, nil
}

func (s *submissionController) SetDraft(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.(domain.Idle); !ok {
		return ErrDraftFrozen
	}
	s.draft = domain.InputDraft{Text: text}
	return nil
}

func (s *submissionController) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if running, ok := s.state.(domain.Running); ok {
		s.stepLocked(running)
	}
}

// step is the ticker callback for one Running episode. It stops itself once
// the episode is no longer current.
func (s *submissionController) step(id domain.SessionID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	running, ok := s.state.(domain.Running)
	if !ok || running.Session != id || s.closed {
		return false
	}
	return s.stepLocked(running)
}

func (s *submissionController) stepLocked(running domain.Running) bool {
	next := running.RemainingSeconds - 1
	if next > 0 {
		running.RemainingSeconds = next
		s.setStateLocked(running)
		return true
	}

	s.stopTickerLocked()
	s.setStateLocked(domain.Complete{Session: running.Session, ResultURL: running.ResultURL})
	label := "absent"
	if running.ResultURL != "" {
		label = "present"
	}
	metrics.CountdownsCompletedTotal.WithLabelValues(label).Inc()
	s.logger.Info("countdown complete", "session_id", string(running.Session), "result", label)
	return false
}

func (s *submissionController) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, inFlight := s.state.(domain.Submitting); inFlight {
		s.logger.Debug("reset ignored while submitting")
		return
	}
	s.stopTickerLocked()
	s.draft = domain.InputDraft{}
	s.notice = nil
	if _, idle := s.state.(domain.Idle); !idle {
		s.setStateLocked(domain.Idle{})
	}
}

func (s *submissionController) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *submissionController) Snapshot() domain.Snapshot {
	return snapshotOf(s.State())
}

func (s *submissionController) Draft() domain.InputDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *submissionController) TakeNotice() (domain.Notice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notice == nil {
		return domain.Notice{}, false
	}
	n := *s.notice
	s.notice = nil
	return n, true
}

// Subscribe returns a channel of state and notice events, primed with the
// current state. Slow subscribers miss events rather than block the controller.
func (s *submissionController) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, subscriberBufSize)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}
	snap := snapshotOf(s.state)
	ch <- domain.Event{Type: domain.EventState, State: &snap}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.subs[ch]; ok {
				delete(s.subs, ch)
				close(ch)
			}
		})
	}
}

func (s *submissionController) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopTickerLocked()
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
}

func (s *submissionController) setStateLocked(next domain.State) {
	s.state = next
	snap := snapshotOf(next)
	s.broadcastLocked(domain.Event{Type: domain.EventState, State: &snap})
}

func (s *submissionController) broadcastLocked(ev domain.Event) {
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *submissionController) stopTickerLocked() {
	if s.ticking != nil {
		s.ticking.Stop()
		s.ticking = nil
	}
}

func snapshotOf(st domain.State) domain.Snapshot {
	snap := domain.Describe(st)
	if snap.RemainingSeconds != nil {
		snap.Remaining = countdown.Format(*snap.RemainingSeconds)
	}
	return snap
}
