package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for the chat and booking flows.
// A nil receiver is a no-op so callers never need to guard.
type ChatMetrics struct {
	messagesTotal     *prometheus.CounterVec
	completionLatency prometheus.Histogram
	bookingsCommitted prometheus.Counter
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quantumvibe",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Total chat messages handled, by outcome",
		}, []string{"outcome"}),
		completionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quantumvibe",
			Subsystem: "chat",
			Name:      "completion_latency_seconds",
			Help:      "Latency of completion backend calls",
			Buckets:   prometheus.DefBuckets,
		}),
		bookingsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quantumvibe",
			Subsystem: "bookings",
			Name:      "committed_total",
			Help:      "Total reservations committed through the chat flow",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messagesTotal, m.completionLatency, m.bookingsCommitted)
	return m
}

func (m *ChatMetrics) ObserveMessage(outcome string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(outcome).Inc()
}

func (m *ChatMetrics) ObserveCompletionLatency(seconds float64) {
	if m == nil {
		return
	}
	m.completionLatency.Observe(seconds)
}

func (m *ChatMetrics) ObserveBookingCommitted() {
	if m == nil {
		return
	}
	m.bookingsCommitted.Inc()
}
