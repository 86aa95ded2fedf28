package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// streamBuckets covers completion durations from 100ms to two minutes.
var streamBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	streamsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llmstream_streams_total",
			Help: "Completed relay streams by transport, provider and outcome.",
		},
		[]string{"transport", "provider", "outcome"},
	)
	streamsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "llmstream_streams_active",
			Help: "Relay streams currently open.",
		},
		[]string{"transport"},
	)
	fragmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llmstream_fragments_total",
			Help: "Text fragments relayed to clients.",
		},
		[]string{"transport", "provider"},
	)
	streamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llmstream_stream_duration_seconds",
			Help:    "Time from request to end of stream.",
			Buckets: streamBuckets,
		},
		[]string{"transport", "provider"},
	)
)

func init() {
	prometheus.MustRegister(streamsTotal, streamsActive, fragmentsTotal, streamDuration)
}

// Stream outcomes recorded in llmstream_streams_total.
const (
	outcomeDone      = "done"
	outcomeError     = "error"
	outcomeRejected  = "rejected"
	outcomeAbandoned = "abandoned"
)

// streamMetrics records one relayed stream.
type streamMetrics struct {
	transport string
	provider  string
	start     time.Time
}

func (s *Server) trackStream(transport string) *streamMetrics {
	streamsActive.WithLabelValues(transport).Inc()
	return &streamMetrics{transport: transport, provider: s.provider.Name(), start: time.Now()}
}

func (m *streamMetrics) fragment() {
	fragmentsTotal.WithLabelValues(m.transport, m.provider).Inc()
}

func (m *streamMetrics) finish(outcome string) {
	streamsActive.WithLabelValues(m.transport).Dec()
	streamsTotal.WithLabelValues(m.transport, m.provider, outcome).Inc()
	streamDuration.WithLabelValues(m.transport, m.provider).Observe(time.Since(m.start).Seconds())
}
