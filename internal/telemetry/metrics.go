package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "ghostline").
	Namespace string

	// Buckets are the histogram buckets for session duration.
	// Default: one second to roughly one day.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithBuckets sets the session duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "ghostline",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 9),
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the gateway collectors.
type Metrics struct {
	sessionAttempts *prometheus.CounterVec
	sessionDuration prometheus.Histogram
	sessionReady    prometheus.Gauge
	heartbeatsSent  prometheus.Counter
	heartbeatAcks   prometheus.Counter
	framesSent      *prometheus.CounterVec
	framesReceived  *prometheus.CounterVec
	probeFailures   prometheus.Counter
}

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		sessionAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "session_attempts_total",
			Help:      "Gateway connection attempts by outcome",
		}, []string{"outcome"}),

		sessionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "session_duration_seconds",
			Help:      "Lifetime of gateway sessions in seconds",
			Buckets:   config.Buckets,
		}),

		sessionReady: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "session_ready",
			Help:      "1 while a gateway session is in the ready state",
		}),

		heartbeatsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "heartbeats_sent_total",
			Help:      "Heartbeat frames written to the gateway",
		}),

		heartbeatAcks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "heartbeat_acks_total",
			Help:      "Heartbeat acknowledgements received from the gateway",
		}),

		framesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "frames_sent_total",
			Help:      "Frames written to the gateway by opcode",
		}, []string{"op"}),

		framesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "frames_received_total",
			Help:      "Frames read from the gateway by opcode",
		}, []string{"op"}),

		probeFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "probe_failures_total",
			Help:      "Failed connectivity probes while waiting for the network",
		}),
	}
}

// SessionAttempt records the end of one connection attempt.
func (m *Metrics) SessionAttempt(outcome string) {
	if m == nil {
		return
	}
	m.sessionAttempts.WithLabelValues(outcome).Inc()
}

// SessionDuration records how long a session lasted.
func (m *Metrics) SessionDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.sessionDuration.Observe(d.Seconds())
}

// SetReady flips the ready gauge.
func (m *Metrics) SetReady(ready bool) {
	if m == nil {
		return
	}
	if ready {
		m.sessionReady.Set(1)
	} else {
		m.sessionReady.Set(0)
	}
}

// HeartbeatSent counts one heartbeat.
func (m *Metrics) HeartbeatSent() {
	if m == nil {
		return
	}
	m.heartbeatsSent.Inc()
}

// HeartbeatAck counts one acknowledgement.
func (m *Metrics) HeartbeatAck() {
	if m == nil {
		return
	}
	m.heartbeatAcks.Inc()
}

// FrameSent counts an outbound frame.
func (m *Metrics) FrameSent(op string) {
	if m == nil {
		return
	}
	m.framesSent.WithLabelValues(op).Inc()
}

// FrameReceived counts an inbound frame.
func (m *Metrics) FrameReceived(op string) {
	if m == nil {
		return
	}
	m.framesReceived.WithLabelValues(op).Inc()
}

// ProbeFailed counts a failed connectivity probe.
func (m *Metrics) ProbeFailed() {
	if m == nil {
		return
	}
	m.probeFailures.Inc()
}
