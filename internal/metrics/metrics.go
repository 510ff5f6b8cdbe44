// Package metrics holds the Prometheus collectors for guardrail invocations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "guardrail"

// Pipeline label values.
const (
	PipelineRemediate = "remediate"
	PipelineEvaluate  = "evaluate"
	PipelineUnknown   = "unknown"
)

// Recorder owns a private registry so that tests and multiple engines in one
// process never collide on the default registry.
type Recorder struct {
	registry *prometheus.Registry

	invocations        *prometheus.CounterVec
	remediationActions *prometheus.CounterVec
	evaluations        *prometheus.CounterVec
	duration           *prometheus.HistogramVec
}

// NewRecorder registers the guardrail collectors plus the Go runtime and
// process collectors on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		invocations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_total",
			Help:      "Total number of invocations, labelled by pipeline and terminal status.",
		}, []string{"pipeline", "status"}),
		remediationActions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remediation_actions_total",
			Help:      "Total number of corrective calls, labelled by action and outcome.",
		}, []string{"action", "outcome"}),
		evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Total number of compliance verdicts, labelled by rule and compliance type.",
		}, []string{"rule", "compliance"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invocation_duration_seconds",
			Help:      "End-to-end invocation latency in seconds.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"pipeline"}),
	}
}

// ObserveInvocation records one finished invocation.
func (r *Recorder) ObserveInvocation(pipeline, status string, elapsed time.Duration) {
	r.invocations.WithLabelValues(pipeline, status).Inc()
	r.duration.WithLabelValues(pipeline).Observe(elapsed.Seconds())
}

// ObserveAction records one corrective call.
func (r *Recorder) ObserveAction(action, outcome string) {
	r.remediationActions.WithLabelValues(action, outcome).Inc()
}

// ObserveEvaluation records one verdict.
func (r *Recorder) ObserveEvaluation(rule, compliance string) {
	r.evaluations.WithLabelValues(rule, compliance).Inc()
}

// Registry exposes the underlying registry for scraping and tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
