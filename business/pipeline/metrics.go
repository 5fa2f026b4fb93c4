package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CompletionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_scan_completions_total",
			Help: "Count of scan completion pipeline runs.",
		},
	)

	StepFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_step_failures_total",
			Help: "Count of recoverable step failures by step name.",
		},
		[]string{"step"},
	)

	ModeTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_mode_transitions_total",
			Help: "Count of mode transitions by target mode.",
		},
		[]string{"to_mode"},
	)

	DetectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_implementation_detections_total",
			Help: "Count of implementation detections by type.",
		},
		[]string{"detection_type"},
	)

	CycleRotationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_cycle_rotations_total",
			Help: "Count of refresh cycle rotations that replaced recommendations.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		CompletionsTotal,
		StepFailuresTotal,
		ModeTransitionsTotal,
		DetectionsTotal,
		CycleRotationsTotal,
	)
}
