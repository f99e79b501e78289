package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(messagesSentTotal) }

var messagesSentTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "messages_sent_total",
		Help: "Outbound chat messages by payload type, channel and status.",
	},
	[]string{"type", "channel", "status"},
)

func IncMessageSent(payloadType, channel, status string) {
	messagesSentTotal.WithLabelValues(norm(payloadType), norm(channel), norm(status)).Inc()
}
