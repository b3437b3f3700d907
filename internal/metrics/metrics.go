// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	TutorReplies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutor_replies_total",
			Help: "Tutor replies by persona and outcome",
		},
		[]string{"bot_type", "outcome"},
	)

	TutorLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tutor_model_call_duration_seconds",
			Help:    "Duration of language model calls made by the tutor router",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"bot_type"},
	)

	PracticeTestsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_tests_generated_total",
			Help: "Generated practice tests by question source",
		},
		[]string{"source"},
	)

	ActivityEventsFlushed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_activity_events_flushed_total",
			Help: "Chat activity events applied to session counters",
		},
	)
)

var once sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			TutorReplies,
			TutorLatency,
			PracticeTestsGenerated,
			ActivityEventsFlushed,
		)
	})
}

// Handler serves the Prometheus exposition format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
