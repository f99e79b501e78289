package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(funnelTasksTotal, funnelTransitionsTotal) }

var (
	funnelTasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_tasks_total",
			Help: "Funnel task executions by task name and outcome.",
		},
		[]string{"task", "outcome"}, // 'done', 'skipped', 'invalid', 'failed'
	)

	funnelTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_transitions_total",
			Help: "Application step and status transitions.",
		},
		[]string{"from", "to"},
	)
)

func IncFunnelTask(task, outcome string) {
	funnelTasksTotal.WithLabelValues(norm(task), norm(outcome)).Inc()
}

func IncTransition(from, to string) {
	funnelTransitionsTotal.WithLabelValues(from, to).Inc()
}
