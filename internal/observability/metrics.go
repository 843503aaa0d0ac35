// Package observability holds the Prometheus collectors exported by the activities API.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registrationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activities_service",
		Subsystem: "registry",
		Name:      "operations_total",
		Help:      "Signup and unregister attempts grouped by operation and outcome.",
	}, []string{"operation", "outcome"})

	enrolledGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "activities_service",
		Subsystem: "registry",
		Name:      "participants",
		Help:      "Current number of participants per activity.",
	}, []string{"activity"})

	capacityGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "activities_service",
		Subsystem: "registry",
		Name:      "capacity",
		Help:      "Maximum number of participants per activity.",
	}, []string{"activity"})

	publishFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activities_service",
		Subsystem: "events",
		Name:      "publish_failures_total",
		Help:      "Registration events that could not be delivered to Kafka.",
	})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "activities_service",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency grouped by method and status code.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"method", "status"})
)

func init() {
	prometheus.MustRegister(registrationCounter, enrolledGauge, capacityGauge, publishFailures, requestDuration)
}

// RecordRegistration counts a signup or unregister attempt.
func RecordRegistration(operation, outcome string) {
	registrationCounter.WithLabelValues(operation, outcome).Inc()
}

// RecordEnrollment updates the roster gauges for one activity.
func RecordEnrollment(activity string, enrolled, capacity int) {
	enrolledGauge.WithLabelValues(activity).Set(float64(enrolled))
	capacityGauge.WithLabelValues(activity).Set(float64(capacity))
}

// RecordPublishFailure counts an undelivered registration event.
func RecordPublishFailure() {
	publishFailures.Inc()
}

// RecordRequest observes a finished HTTP request.
func RecordRequest(method string, status int, elapsed time.Duration) {
	requestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
