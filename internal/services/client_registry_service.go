package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/osvaldoandrade/pitchflow/pkg/domain"
)

// ClientRegistry owns one SubmissionController per browser client.
type ClientRegistry interface {
	Get(clientID string) SubmissionController
	Lookup(clientID string) (SubmissionController, bool)
	CountByPhase() map[domain.Phase]int
	// Sweep closes and evicts idle clients not seen within the TTL.
	Sweep() int
	// Start runs Sweep periodically until ctx is done.
	Start(ctx context.Context)
	Close()
}

type clientEntry struct {
	ctrl     SubmissionController
	lastSeen time.Time
}

type clientRegistry struct {
	newController func() SubmissionController
	logger        *slog.Logger
	clock         clockwork.Clock
	ttl           time.Duration
	interval      time.Duration

	mu      sync.Mutex
	clients map[string]*clientEntry
	closed  bool
}

func NewClientRegistry(newController func() SubmissionController, logger *slog.Logger, clock clockwork.Clock, ttlSeconds int, intervalSeconds int) ClientRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttlSeconds <= 0 {
		ttlSeconds = 3600
	}
	if intervalSeconds <= 0 {
		intervalSeconds = 60
	}
	return &clientRegistry{
		newController: newController,
		logger:        logger,
		clock:         clock,
		ttl:           time.Duration(ttlSeconds) * time.Second,
		interval:      time.Duration(intervalSeconds) * time.Second,
		clients:       make(map[string]*clientEntry),
	}
}

func (r *clientRegistry) Get(clientID string) SubmissionController {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.clients[clientID]
	if !ok {
		e = &clientEntry{ctrl: r.newController()}
		if !r.closed {
			r.clients[clientID] = e
		} else {
			e.ctrl.Close()
		}
	}
	e.lastSeen = r.clock.Now()
	return e.ctrl
}

func (r *clientRegistry) Lookup(clientID string) (SubmissionController, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.clients[clientID]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.clock.Now()
	return e.ctrl, true
}

func (r *clientRegistry) CountByPhase() map[domain.Phase]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[domain.Phase]int, 4)
	for _, e := range r.clients {
		out[e.ctrl.State().Phase()]++
	}
	return out
}

func (r *clientRegistry) Sweep() int {
	cutoff := r.clock.Now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.clients {
		if e.lastSeen.After(cutoff) || domain.Busy(e.ctrl.State()) {
			continue
		}
		e.ctrl.Close()
		delete(r.clients, id)
		removed++
	}
	return removed
}

func (r *clientRegistry) Start(ctx context.Context) {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if removed := r.Sweep(); removed > 0 {
				r.logger.Info("client cleanup removed", "count", removed)
			}
		}
	}
}

func (r *clientRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for id, e := range r.clients {
		e.ctrl.Close()
		delete(r.clients, id)
	}
}
