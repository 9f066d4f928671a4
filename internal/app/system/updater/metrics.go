package updater

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "groupsync"

// Metrics holds the Prometheus collectors for the update pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	enqueued  *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	processed *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer, depth func() float64) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		enqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "messages_enqueued_total",
			Help:      "Messages accepted into the update queue.",
		}, []string{"kind"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "messages_dropped_total",
			Help:      "Messages dropped because the update queue was full.",
		}, []string{"kind"}),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "profile_updates_total",
			Help:      "Group updates handled by the worker, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.enqueued,
		m.dropped,
		m.processed,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "queue_depth",
			Help:      "Messages currently waiting in the update queue.",
		}, depth),
	)
	return m
}

func (m *Metrics) incEnqueued(kind string) {
	if m != nil {
		m.enqueued.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) incDropped(kind string) {
	if m != nil {
		m.dropped.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) incProcessed(result string) {
	if m != nil {
		m.processed.WithLabelValues(result).Inc()
	}
}
