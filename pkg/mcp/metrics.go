package mcp

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Call outcomes recorded in the outcome label.
const (
	OutcomeOK               = "ok"
	OutcomeExitNonZero      = "exit_nonzero"
	OutcomeTimeout          = "timeout"
	OutcomeError            = "error"
	OutcomeUnknownTool      = "unknown_tool"
	OutcomeInvalidArguments = "invalid_arguments"
)

// unknownToolLabel replaces caller-supplied names that match no tool, keeping label cardinality bounded.
const unknownToolLabel = "_unknown"

// Metrics instruments tool calls.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the tool call metrics with reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mcp_exec",
			Name:      "tool_calls_total",
			Help:      "Number of tool calls by tool and outcome.",
		}, []string{"tool", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mcp_exec",
			Name:      "tool_call_duration_seconds",
			Help:      "Duration of tool calls including process execution.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"tool"}),
	}
}

func (m *Metrics) observe(tool, outcome string, elapsed time.Duration) {
	m.calls.WithLabelValues(tool, outcome).Inc()
	m.duration.WithLabelValues(tool).Observe(elapsed.Seconds())
}
