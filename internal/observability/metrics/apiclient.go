package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// APIClientMetrics tracks calls the admin UI makes to the vocabulary API.
// It implements Recorder.
type APIClientMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec
	responsesTotal  *prometheus.CounterVec
}

// NewAPIClientMetrics creates and registers API client metrics.
func NewAPIClientMetrics(registry *prometheus.Registry) (*APIClientMetrics, error) {
	m := &APIClientMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vocab_api_client_requests_total",
				Help: "Total number of vocabulary API calls by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vocab_api_client_request_duration_seconds",
				Help:    "Round trip time of vocabulary API calls",
				Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount14),
			},
			[]string{"operation"},
		),
		requestErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vocab_api_client_errors_total",
				Help: "Failed vocabulary API calls by operation and error category",
			},
			[]string{"operation", "error_type"},
		),
		responsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vocab_api_client_responses_total",
				Help: "Responses received from the vocabulary API by method and status code",
			},
			[]string{"method", "code"},
		),
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *APIClientMetrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{m.requestsTotal, m.requestDuration, m.requestErrors, m.responsesTotal}
}

// Describe implements the Collector interface
func (m *APIClientMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.getCollectors() {
		c.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *APIClientMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.getCollectors() {
		c.Collect(ch)
	}
}

func (m *APIClientMetrics) RecordOperation(operation, status string) {
	m.requestsTotal.WithLabelValues(operation, status).Inc()
}

func (m *APIClientMetrics) RecordDuration(operation string, seconds float64) {
	m.requestDuration.WithLabelValues(operation).Observe(seconds)
}

func (m *APIClientMetrics) RecordError(operation, errorType string) {
	m.requestErrors.WithLabelValues(operation, errorType).Inc()
}

// RecordResponse counts a response by HTTP method and status code.
func (m *APIClientMetrics) RecordResponse(method string, statusCode int) {
	m.responsesTotal.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}
