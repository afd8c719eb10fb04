// Package metrics exposes Prometheus collectors for the reasoning engine:
// tool executions, executor batches, model invocations, run outcomes and tool
// chains. Collectors register with the default registry on import.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smartagents"

// Status label values.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusNotFound = "not_found"
)

var (
	ToolExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tool_executions_total",
		Help:      "Tool executions by tool and status.",
	}, []string{"tool", "status"})

	ToolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tool_duration_seconds",
		Help:      "Tool execution duration in seconds.",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"tool"})

	BatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "executor_batch_size",
		Help:      "Number of tasks per parallel executor batch.",
		Buckets:   prometheus.LinearBuckets(1, 2, 8),
	})

	ModelInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_invocations_total",
		Help:      "Model invocations by agent and status.",
	}, []string{"agent", "status"})

	ModelLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "model_latency_seconds",
		Help:      "Model invocation latency in seconds.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"agent"})

	RunOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "agent_runs_total",
		Help:      "Agent runs by terminal outcome (done, budget_exceeded, error).",
	}, []string{"agent", "outcome"})

	RunIterations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "agent_run_iterations",
		Help:      "Loop iterations consumed per run.",
		Buckets:   prometheus.LinearBuckets(0, 1, 11),
	}, []string{"agent"})

	ChainExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chain_executions_total",
		Help:      "Tool chain executions by chain and status.",
	}, []string{"chain", "status"})
)

// RecordToolExecution counts one tool execution and observes its duration.
func RecordToolExecution(tool, status string, dur time.Duration) {
	ToolExecutions.WithLabelValues(tool, status).Inc()
	ToolDuration.WithLabelValues(tool).Observe(dur.Seconds())
}

// RecordBatch observes the size of an executor batch.
func RecordBatch(size int) {
	BatchSize.Observe(float64(size))
}

// RecordModelInvocation counts one model call and observes its latency.
func RecordModelInvocation(agent string, err error, dur time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}

	ModelInvocations.WithLabelValues(agent, status).Inc()
	ModelLatency.WithLabelValues(agent).Observe(dur.Seconds())
}

// RecordRun counts a finished run and observes its iteration count.
func RecordRun(agent, outcome string, iterations int) {
	RunOutcomes.WithLabelValues(agent, outcome).Inc()
	RunIterations.WithLabelValues(agent).Observe(float64(iterations))
}

// RecordChain counts one chain execution.
func RecordChain(chain string, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}

	ChainExecutions.WithLabelValues(chain, status).Inc()
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
