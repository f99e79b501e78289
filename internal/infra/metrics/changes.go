package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(changeEventsTotal, lockContentionTotal) }

var (
	changeEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "change_events_total",
			Help: "Document change events observed, by collection and kind.",
		},
		[]string{"collection", "kind"},
	)

	lockContentionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lock_requests_total",
			Help: "Distributed lock attempts by result.",
		},
		[]string{"result"}, // 'acquired', 'busy', 'error'
	)
)

func IncChangeEvent(collection, kind string) {
	changeEventsTotal.WithLabelValues(norm(collection), norm(kind)).Inc()
}

func IncLock(result string) {
	lockContentionTotal.WithLabelValues(norm(result)).Inc()
}
