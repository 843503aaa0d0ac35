package consumer

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	processedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster_consumer",
		Subsystem: "kafka",
		Name:      "messages_processed_total",
		Help:      "Number of Kafka messages successfully handled.",
	}, []string{"topic", "event_type"})

	handlerErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster_consumer",
		Subsystem: "kafka",
		Name:      "handler_errors_total",
		Help:      "Number of handler errors grouped by topic and event type.",
	}, []string{"topic", "event_type"})

	decodeErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster_consumer",
		Subsystem: "kafka",
		Name:      "decode_errors_total",
		Help:      "Number of decode failures per topic.",
	}, []string{"topic"})

	lastMessageGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "roster_consumer",
		Subsystem: "kafka",
		Name:      "last_message_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successfully processed message per topic.",
	}, []string{"topic"})

	rosterEnrolledGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "roster_consumer",
		Subsystem: "roster",
		Name:      "enrolled",
		Help:      "Participants per activity as of the latest registration event.",
	}, []string{"activity"})

	rosterSpotsLeftGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "roster_consumer",
		Subsystem: "roster",
		Name:      "spots_left",
		Help:      "Open spots per activity as of the latest registration event.",
	}, []string{"activity"})

	rosterEventsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster_consumer",
		Subsystem: "roster",
		Name:      "events_total",
		Help:      "Registration events applied, labeled by action.",
	}, []string{"action"})

	rosterStaleCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roster_consumer",
		Subsystem: "roster",
		Name:      "stale_events_total",
		Help:      "Registration events older than the latest applied event for the same activity.",
	})
)

func init() {
	prometheus.MustRegister(
		processedCounter, handlerErrorCounter, decodeErrorCounter, lastMessageGauge,
		rosterEnrolledGauge, rosterSpotsLeftGauge, rosterEventsCounter, rosterStaleCounter,
	)
}

func recordProcessed(msg Message) {
	processedCounter.WithLabelValues(msg.Topic, msg.EventType).Inc()
	if !msg.Timestamp.IsZero() {
		lastMessageGauge.WithLabelValues(msg.Topic).Set(float64(msg.Timestamp.Unix()))
	}
}

func recordHandlerError(msg Message) {
	handlerErrorCounter.WithLabelValues(msg.Topic, msg.EventType).Inc()
}

func recordDecodeError(topic string) {
	decodeErrorCounter.WithLabelValues(topic).Inc()
}
