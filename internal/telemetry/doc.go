// Package telemetry exposes ghostline's runtime metrics and traces.
//
// Metrics are Prometheus collectors registered on a caller-supplied
// registry. Every method on *Metrics is safe to call on a nil receiver, so
// components can be constructed without telemetry in tests:
//
//	reg := prometheus.NewRegistry()
//	m := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//	m.SessionAttempt("transport_failure")
//
// Traces use the global OpenTelemetry tracer provider. StartAttempt opens
// one span per gateway connection attempt; install a provider with
// otel.SetTracerProvider to export them.
//
// Server serves /metrics and /healthz over HTTP when --metrics-addr is set.
package telemetry
