package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(interviewLatencyMs, interviewPromptTokens) }

var (
	interviewLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "interview_generation_latency_ms",
			Help:    "Interview script generation latency in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 16000, 30000},
		},
		[]string{"provider", "success"},
	)

	interviewPromptTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_prompt_tokens",
			Help: "Sum of prompt tokens sent for interview generation.",
		},
		[]string{"provider"},
	)
)

func ObserveInterview(provider string, latencyMs int64, success bool) {
	interviewLatencyMs.WithLabelValues(norm(provider), strconv.FormatBool(success)).Observe(float64(latencyMs))
}

func AddPromptTokens(provider string, n int) {
	interviewPromptTokens.WithLabelValues(norm(provider)).Add(float64(n))
}
