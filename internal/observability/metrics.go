// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Engine metrics
	DirectivesApplied *prometheus.CounterVec
	TicketsAccepted   prometheus.Counter
	TicketsMinted     prometheus.Counter
	OutboundIntents   *prometheus.CounterVec
	SagaSteps         *prometheus.CounterVec
	InvocationErrors  *prometheus.CounterVec

	// Host ledger metrics
	DispatchesSubmitted *prometheus.CounterVec
	DispatchErrors      prometheus.Counter
	CallbacksReceived   *prometheus.CounterVec
	RPCCallLatency      *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastCallbackTimestamp prometheus.Gauge
	UptimeSeconds         prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "bridge_port"
	}

	return &Metrics{
		// Engine metrics
		DirectivesApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "directives_applied_total",
			Help:      "Total number of governance directives applied by kind",
		}, []string{"kind"}),
		TicketsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "tickets_accepted_total",
			Help:      "Total number of inbound mint tickets accepted",
		}),
		TicketsMinted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "tickets_minted_total",
			Help:      "Total number of inbound mint tickets fully delivered",
		}),
		OutboundIntents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "outbound_intents_total",
			Help:      "Total number of outbound transfer intents by action",
		}, []string{"action"}),
		SagaSteps: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "saga_steps_total",
			Help:      "Total number of continuation steps by kind and outcome",
		}, []string{"kind", "outcome"}),
		InvocationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "invocation_errors_total",
			Help:      "Total number of failed invocations by entry point",
		}, []string{"entry_point"}),

		// Host ledger metrics
		DispatchesSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "dispatches_submitted_total",
			Help:      "Total number of operations dispatched to the host ledger by op type",
		}, []string{"op_type"}),
		DispatchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "dispatch_errors_total",
			Help:      "Total number of dispatch submissions that failed",
		}),
		CallbacksReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "callbacks_received_total",
			Help:      "Total number of callbacks received by outcome",
		}, []string{"outcome"}),
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "rpc_call_duration_seconds",
			Help:      "Host ledger RPC call latency by method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration by database and operation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors by database and operation",
		}, []string{"database", "operation"}),

		// Health metrics
		LastCallbackTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_callback_timestamp",
			Help:      "Unix timestamp of the last processed host ledger callback",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordDirectiveApplied increments the directives applied counter.
func RecordDirectiveApplied(kind string) {
	DefaultMetrics.DirectivesApplied.WithLabelValues(kind).Inc()
}

// RecordTicketAccepted increments the tickets accepted counter.
func RecordTicketAccepted() {
	DefaultMetrics.TicketsAccepted.Inc()
}

// RecordTicketMinted increments the tickets minted counter.
func RecordTicketMinted() {
	DefaultMetrics.TicketsMinted.Inc()
}

// RecordOutboundIntent records an outbound transfer intent.
func RecordOutboundIntent(action string) {
	DefaultMetrics.OutboundIntents.WithLabelValues(action).Inc()
}

// RecordSagaStep records one continuation step.
func RecordSagaStep(kind, outcome string) {
	DefaultMetrics.SagaSteps.WithLabelValues(kind, outcome).Inc()
	DefaultMetrics.CallbacksReceived.WithLabelValues(outcome).Inc()
}

// RecordInvocationError records a failed invocation.
func RecordInvocationError(entryPoint string) {
	DefaultMetrics.InvocationErrors.WithLabelValues(entryPoint).Inc()
}

// RecordDispatch records a dispatch submission.
func RecordDispatch(opType string, err error) {
	DefaultMetrics.DispatchesSubmitted.WithLabelValues(opType).Inc()
	if err != nil {
		DefaultMetrics.DispatchErrors.Inc()
	}
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
