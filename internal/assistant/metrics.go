package assistant

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for assistant replies.
type Metrics struct {
	replies     *prometheus.CounterVec
	llmDuration *prometheus.HistogramVec
}

// MustNewMetrics registers the assistant collectors with reg. A nil reg
// yields unregistered collectors, which is what tests usually want.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	replies := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "neurolens",
			Subsystem: "assistant",
			Name:      "replies_total",
			Help:      "Assistant replies by endpoint, source and fallback reason.",
		},
		[]string{"endpoint", "source", "reason"},
	)
	llmDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "neurolens",
			Subsystem: "assistant",
			Name:      "llm_duration_seconds",
			Help:      "Latency of remote completion attempts.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint", "outcome"},
	)
	if reg != nil {
		reg.MustRegister(replies, llmDuration)
	}
	return &Metrics{replies: replies, llmDuration: llmDuration}
}

func (m *Metrics) observeReply(endpoint, source, reason string) {
	if m == nil {
		return
	}
	m.replies.WithLabelValues(endpoint, source, reason).Inc()
}

func (m *Metrics) observeCall(endpoint string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = FallbackReason(err)
	}
	m.llmDuration.WithLabelValues(endpoint, outcome).Observe(elapsed.Seconds())
}
