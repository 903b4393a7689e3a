package metrics

import (
	"log/slog"
	"sync"

	"github.com/osvaldoandrade/pitchflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// PhaseCounter reports how many clients currently sit in each phase.
type PhaseCounter interface {
	CountByPhase() map[domain.Phase]int
}

type clientsCollector struct {
	mu     sync.RWMutex
	source PhaseCounter
	logger *slog.Logger

	clientsDesc *prometheus.Desc
}

var phases = []domain.Phase{domain.PhaseIdle, domain.PhaseSubmitting, domain.PhaseRunning, domain.PhaseComplete}

func newClientsCollector(source PhaseCounter, logger *slog.Logger) *clientsCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &clientsCollector{
		source: source,
		logger: logger,
		clientsDesc: prometheus.NewDesc(
			namespace+"_clients",
			"Current number of tracked clients by submission phase.",
			[]string{"phase"},
			nil,
		),
	}
}

func (c *clientsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.clientsDesc
}

func (c *clientsCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	source := c.source
	c.mu.RUnlock()
	if source == nil {
		return
	}
	counts := source.CountByPhase()
	for _, p := range phases {
		emitGauge(ch, c.clientsDesc, float64(counts[p]), string(p))
	}
}

func emitGauge(ch chan<- prometheus.Metric, desc *prometheus.Desc, v float64, labelValues ...string) {
	m, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue, v, labelValues...)
	if err != nil {
		return
	}
	ch <- m
}

// attach makes source the one reported. A nil logger keeps the current one.
func (c *clientsCollector) attach(source PhaseCounter, logger *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = source
	if logger != nil {
		c.logger = logger
	}
}

// detach drops source if it is still the one reported.
func (c *clientsCollector) detach(source PhaseCounter) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source == nil || c.source != source {
		return false
	}
	c.source = nil
	c.logger.Debug("clients collector detached")
	return true
}

var defaultClientsCollector = newClientsCollector(nil, nil)

var registerClientsCollectorOnce sync.Once

// RegisterClientsCollector reports source under pitchflow_clients. The
// collector is registered with the default registry once; later calls switch
// it to the newest source.
func RegisterClientsCollector(source PhaseCounter, logger *slog.Logger) {
	registerClientsCollectorOnce.Do(func() {
		prometheus.MustRegister(defaultClientsCollector)
	})
	defaultClientsCollector.attach(source, logger)
}

// ReleaseClientsCollector stops reporting source. A newer source registered
// since is left in place. Sources must be comparable (pointer types).
func ReleaseClientsCollector(source PhaseCounter) {
	defaultClientsCollector.detach(source)
}
