package countdown

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func waitTick(t *testing.T, ch <-chan int) int {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tick")
		return 0
	}
}

func TestTickerRunsUntilFnReturnsFalse(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ticker := NewTicker(clock, time.Second)

	ticks := make(chan int, 1)
	count := 0
	h := ticker.Start(func() bool {
		count++
		ticks <- count
		return count < 3
	})

	for want := 1; want <= 3; want++ {
		clock.Advance(time.Second)
		if got := waitTick(t, ticks); got != want {
			t.Fatalf("tick = %d, want %d", got, want)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for !h.Stopped() {
		if time.Now().After(deadline) {
			t.Fatal("expected handle to stop after fn returned false")
		}
		time.Sleep(5 * time.Millisecond)
	}

	clock.Advance(5 * time.Second)
	select {
	case n := <-ticks:
		t.Fatalf("unexpected tick %d after stop", n)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTickerStopIsIdempotent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ticker := NewTicker(clock, time.Second)

	ticks := make(chan int, 1)
	h := ticker.Start(func() bool {
		ticks <- 1
		return true
	})

	clock.Advance(time.Second)
	waitTick(t, ticks)

	h.Stop()
	h.Stop()
	if !h.Stopped() {
		t.Fatal("expected handle to report stopped")
	}

	clock.Advance(3 * time.Second)
	select {
	case <-ticks:
		t.Fatal("tick fired after stop")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNilHandleStop(t *testing.T) {
	var h *Handle
	h.Stop()
	if !h.Stopped() {
		t.Fatal("nil handle should report stopped")
	}
}

func TestNewTickerDefaults(t *testing.T) {
	tk := NewTicker(nil, 0)
	if tk.period != DefaultPeriod {
		t.Fatalf("period = %v, want %v", tk.period, DefaultPeriod)
	}
	if tk.clock == nil {
		t.Fatal("expected real clock default")
	}
}
