package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MQTTMetrics tracks change event publishing.
type MQTTMetrics struct {
	connectionStatus prometheus.Gauge
	messagesTotal    *prometheus.CounterVec
	publishErrors    *prometheus.CounterVec
}

// NewMQTTMetrics creates and registers MQTT metrics.
func NewMQTTMetrics(registry *prometheus.Registry) (*MQTTMetrics, error) {
	m := &MQTTMetrics{
		connectionStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mqtt_connection_status",
			Help: "Current MQTT connection status (1 connected, 0 disconnected)",
		}),
		messagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mqtt_messages_published_total",
				Help: "Published change events by resource and action",
			},
			[]string{"resource", "action"},
		),
		publishErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mqtt_publish_errors_total",
				Help: "Failed change event publishes by resource",
			},
			[]string{"resource"},
		),
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MQTTMetrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{m.connectionStatus, m.messagesTotal, m.publishErrors}
}

// Describe implements the Collector interface
func (m *MQTTMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.getCollectors() {
		c.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *MQTTMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.getCollectors() {
		c.Collect(ch)
	}
}

// UpdateConnectionStatus sets the connection gauge.
func (m *MQTTMetrics) UpdateConnectionStatus(connected bool) {
	if connected {
		m.connectionStatus.Set(1)
		return
	}
	m.connectionStatus.Set(0)
}

// RecordPublish counts a published event.
func (m *MQTTMetrics) RecordPublish(resource, action string) {
	m.messagesTotal.WithLabelValues(resource, action).Inc()
}

// RecordPublishError counts a failed publish.
func (m *MQTTMetrics) RecordPublishError(resource string) {
	m.publishErrors.WithLabelValues(resource).Inc()
}
