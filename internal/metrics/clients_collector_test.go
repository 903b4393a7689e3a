package metrics

import (
	"strings"
	"testing"

	"github.com/osvaldoandrade/pitchflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fixedCounter map[domain.Phase]int

func (f fixedCounter) CountByPhase() map[domain.Phase]int { return f }

func TestClientsCollector(t *testing.T) {
	c := newClientsCollector(fixedCounter{domain.PhaseRunning: 2, domain.PhaseIdle: 1}, nil)
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}

	expected := `
# HELP pitchflow_clients Current number of tracked clients by submission phase.
# TYPE pitchflow_clients gauge
pitchflow_clients{phase="complete"} 0
pitchflow_clients{phase="idle"} 1
pitchflow_clients{phase="running"} 2
pitchflow_clients{phase="submitting"} 0
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "pitchflow_clients"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}

func TestClientsCollectorNilSource(t *testing.T) {
	c := newClientsCollector(nil, nil)
	if n := testutil.CollectAndCount(c); n != 0 {
		t.Fatalf("expected no metrics, got %d", n)
	}
}

type countingSource struct {
	counts map[domain.Phase]int
}

func (s *countingSource) CountByPhase() map[domain.Phase]int { return s.counts }

func TestClientsCollectorFollowsNewestSource(t *testing.T) {
	c := newClientsCollector(nil, nil)
	first := &countingSource{counts: map[domain.Phase]int{domain.PhaseRunning: 3}}
	second := &countingSource{counts: map[domain.Phase]int{domain.PhaseIdle: 1}}

	c.attach(first, nil)
	c.attach(second, nil)

	if c.detach(first) {
		t.Fatal("detaching a replaced source must be a no-op")
	}
	expected := `
# HELP pitchflow_clients Current number of tracked clients by submission phase.
# TYPE pitchflow_clients gauge
pitchflow_clients{phase="complete"} 0
pitchflow_clients{phase="idle"} 1
pitchflow_clients{phase="running"} 0
pitchflow_clients{phase="submitting"} 0
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "pitchflow_clients"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}

	if !c.detach(second) {
		t.Fatal("expected current source to detach")
	}
	if n := testutil.CollectAndCount(c); n != 0 {
		t.Fatalf("expected no metrics after detach, got %d", n)
	}
}

func TestRegisterClientsCollectorSwitchesSource(t *testing.T) {
	first := &countingSource{counts: map[domain.Phase]int{domain.PhaseRunning: 1}}
	second := &countingSource{counts: map[domain.Phase]int{domain.PhaseComplete: 2}}

	RegisterClientsCollector(first, nil)
	RegisterClientsCollector(second, nil)
	t.Cleanup(func() { ReleaseClientsCollector(second) })

	expected := `
# HELP pitchflow_clients Current number of tracked clients by submission phase.
# TYPE pitchflow_clients gauge
pitchflow_clients{phase="complete"} 2
pitchflow_clients{phase="idle"} 0
pitchflow_clients{phase="running"} 0
pitchflow_clients{phase="submitting"} 0
`
	if err := testutil.GatherAndCompare(prometheus.DefaultGatherer, strings.NewReader(expected), "pitchflow_clients"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}
