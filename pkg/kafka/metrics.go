package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the producer and consumer collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	published      *prometheus.CounterVec
	publishErrors  *prometheus.CounterVec
	received       *prometheus.CounterVec
	processed      *prometheus.CounterVec
	failed         *prometheus.CounterVec
	duplicates     *prometheus.CounterVec
	deadLettered   *prometheus.CounterVec
	handleDuration *prometheus.HistogramVec
}

// NewMetrics registers the kafka collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	consumer := []string{"topic", "consumer_group"}
	return &Metrics{
		published: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_producer_messages_published_total",
			Help: "Messages published.",
		}, []string{"topic"}),
		publishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_producer_publish_errors_total",
			Help: "Publish attempts that failed.",
		}, []string{"topic"}),
		received: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_received_total",
			Help: "Messages fetched from the broker.",
		}, consumer),
		processed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_processed_total",
			Help: "Messages handled successfully.",
		}, consumer),
		failed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_failed_total",
			Help: "Messages that exhausted their retries.",
		}, consumer),
		duplicates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_duplicate_total",
			Help: "Messages skipped as already processed.",
		}, consumer),
		deadLettered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_dlq_published_total",
			Help: "Messages forwarded to a dead-letter topic.",
		}, consumer),
		handleDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kafka_consumer_processing_duration_seconds",
			Help:    "Handler latency.",
			Buckets: prometheus.DefBuckets,
		}, consumer),
	}
}

func (m *Metrics) incPublished(topic string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.publishErrors.WithLabelValues(topic).Inc()
		return
	}
	m.published.WithLabelValues(topic).Inc()
}

func (m *Metrics) consumed(topic, group string) {
	if m != nil {
		m.received.WithLabelValues(topic, group).Inc()
	}
}

func (m *Metrics) handled(topic, group string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.handleDuration.WithLabelValues(topic, group).Observe(seconds)
	if err != nil {
		m.failed.WithLabelValues(topic, group).Inc()
		return
	}
	m.processed.WithLabelValues(topic, group).Inc()
}

func (m *Metrics) duplicate(topic, group string) {
	if m != nil {
		m.duplicates.WithLabelValues(topic, group).Inc()
	}
}

func (m *Metrics) deadLetter(topic, group string) {
	if m != nil {
		m.deadLettered.WithLabelValues(topic, group).Inc()
	}
}
