// Package metrics holds the Prometheus collectors of the back office. They
// live in their own registry, exposed by Handler on GET /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	registry = prometheus.NewRegistry()

	// AssistantActions counts dispatcher actions by kind and outcome.
	// The fallback query path is recorded as action "consulta".
	AssistantActions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crov_assistant_actions_total",
		Help: "Acciones ejecutadas por el asistente del gerente.",
	}, []string{"action", "result"})

	// LLMRequests counts outbound completion calls (choose_action,
	// generate_query, summarize).
	LLMRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crov_llm_requests_total",
		Help: "Llamadas al servicio de completions.",
	}, []string{"call", "result"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crov_http_request_duration_seconds",
		Help:    "Duración de las peticiones HTTP.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// JobsProcessed counts background jobs by queue and outcome.
	JobsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crov_jobs_processed_total",
		Help: "Trabajos procesados por el pool de workers.",
	}, []string{"queue", "result"})
)

func init() {
	registry.MustRegister(
		AssistantActions,
		LLMRequests,
		HTTPDuration,
		JobsProcessed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// ObserveAction records one dispatcher action.
func ObserveAction(action string, err error) {
	AssistantActions.WithLabelValues(action, result(err)).Inc()
}

// ObserveLLM records one completion call.
func ObserveLLM(call string, err error) {
	LLMRequests.WithLabelValues(call, result(err)).Inc()
}

// ObserveJob records one processed job.
func ObserveJob(queue string, err error) {
	JobsProcessed.WithLabelValues(queue, result(err)).Inc()
}

// ObserveHTTP records the latency of one request. route is the matched
// route template so cardinality stays bounded.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	HTTPDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
