package resolver

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the resolver's prometheus collectors.
// A nil *Metrics records nothing.
type Metrics struct {
	probes    *prometheus.CounterVec
	retries   prometheus.Counter
	cacheHits prometheus.Counter
	outcomes  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reflink",
			Name:      "probes_total",
			Help:      "HTTP existence checks issued, by probe result.",
		}, []string{"result"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reflink",
			Name:      "retries_total",
			Help:      "Probe retries scheduled after transient failures.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reflink",
			Name:      "cache_hits_total",
			Help:      "Resolutions answered from the run cache.",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reflink",
			Name:      "resolutions_total",
			Help:      "Terminal resolution outcomes, by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.probes, m.retries, m.cacheHits, m.outcomes)
	}
	return m
}

func (m *Metrics) observeProbe(kind ProbeKind) {
	if m == nil {
		return
	}
	m.probes.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) observeRetry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

func (m *Metrics) observeCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) observeOutcome(kind OutcomeKind) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(kind.String()).Inc()
}
