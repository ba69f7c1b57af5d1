package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widget_generations_total",
			Help: "Total number of widget generation runs by outcome",
		},
		[]string{"status", "error_code"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "widget_generation_duration_seconds",
			Help:    "Duration of a full widget generation run in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"status"},
	)

	BuildToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "widget_build_tool_duration_seconds",
			Help:    "Duration of external compiler invocations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"tool", "status"},
	)

	GenerationsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "widget_generations_active",
			Help: "Number of widget generation runs in flight",
		},
	)
)

// ObserveBuildTool records one compiler invocation. Its signature matches
// generator.BuildObserver.
func ObserveBuildTool(tool string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	BuildToolDuration.WithLabelValues(tool, status).Observe(elapsed.Seconds())
}
