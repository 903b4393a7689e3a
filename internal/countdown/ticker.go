package countdown

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultPeriod is the countdown tick period.
const DefaultPeriod = time.Second

// Ticker starts owned, cancellable periodic tasks on a clock.
type Ticker struct {
	clock  clockwork.Clock
	period time.Duration
}

func NewTicker(clock clockwork.Clock, period time.Duration) *Ticker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Ticker{clock: clock, period: period}
}

// Handle controls one running periodic task.
type Handle struct {
	ticker clockwork.Ticker
	done   chan struct{}
	once   sync.Once
}

// Start runs fn once per period until fn returns false or the handle is
// stopped. The underlying ticker is registered before Start returns.
func (t *Ticker) Start(fn func() bool) *Handle {
	h := &Handle{
		ticker: t.clock.NewTicker(t.period),
		done:   make(chan struct{}),
	}
	go h.loop(fn)
	return h
}

func (h *Handle) loop(fn func() bool) {
	defer h.ticker.Stop()
	for {
		select {
		case <-h.done:
			return
		case <-h.ticker.Chan():
			select {
			case <-h.done:
				return
			default:
			}
			if !fn() {
				h.Stop()
				return
			}
		}
	}
}

// Stop cancels the task. Safe to call more than once and from inside fn.
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.done) })
}

// Stopped reports whether Stop has been called.
func (h *Handle) Stopped() bool {
	if h == nil {
		return true
	}
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}
