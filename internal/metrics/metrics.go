// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fitcoach"

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Kind label values for StaleResults.
const (
	KindPlan = "plan"
	KindChat = "chat"
)

var (
	// PlanGenerations counts plan requests by result.
	PlanGenerations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "plan_generations_total",
		Help:      "Plan generation requests by result.",
	}, []string{"result"})

	// PlanGenerationDuration observes the model round trip for a plan.
	PlanGenerationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "plan_generation_duration_seconds",
		Help:      "Latency of plan generation calls.",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
	})

	// ChatMessages counts chat replies by result.
	ChatMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_messages_total",
		Help:      "Chat messages sent to the assistant by result.",
	}, []string{"result"})

	// ChatReplyDuration observes the model round trip for one chat turn.
	ChatReplyDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "chat_reply_duration_seconds",
		Help:      "Latency of chat replies.",
		Buckets:   prometheus.DefBuckets,
	})

	// StaleResults counts finished model calls whose session moved on before
	// the result arrived. The call itself is already counted by result.
	StaleResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_results_total",
		Help:      "Model results discarded because the session changed.",
	}, []string{"kind"})

	// ActiveSessions tracks live session state stores.
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Number of in-memory sessions.",
	})

	// ChatSockets tracks open chat WebSocket connections.
	ChatSockets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "chat_websockets",
		Help:      "Number of open chat WebSocket connections.",
	})
)

// Registry is the process-wide registry served by Handler.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		PlanGenerations,
		PlanGenerationDuration,
		ChatMessages,
		ChatReplyDuration,
		StaleResults,
		ActiveSessions,
		ChatSockets,
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
