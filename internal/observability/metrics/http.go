package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// HTTPMetrics tracks requests served by the admin UI and the reference API.
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	responseSize    *prometheus.HistogramVec
	panelActions    *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	rateLimited     prometheus.Counter
}

// NewHTTPMetrics creates and registers HTTP metrics.
func NewHTTPMetrics(registry *prometheus.Registry) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"}, // path is the route template, e.g. /languages/:id/edit
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Time taken for HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		responseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "Size of HTTP responses in bytes",
				Buckets: prometheus.ExponentialBuckets(BucketStart100B, BucketFactor10, BucketCount6),
			},
			[]string{"method", "path"},
		),
		panelActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ui_panel_actions_total",
				Help: "Admin UI panel actions by panel, action and outcome",
			},
			[]string{"panel", "action", "status"},
		),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ui_active_sessions",
			Help: "Number of live admin UI sessions",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *HTTPMetrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.requestsTotal,
		m.requestDuration,
		m.responseSize,
		m.panelActions,
		m.activeSessions,
		m.rateLimited,
	}
}

// Describe implements the Collector interface
func (m *HTTPMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.getCollectors() {
		c.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *HTTPMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.getCollectors() {
		c.Collect(ch)
	}
}

// RecordHTTPRequest records a served request.
func (m *HTTPMetrics) RecordHTTPRequest(method, path string, statusCode int, seconds float64, sizeBytes int64) {
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(seconds)
	if sizeBytes >= 0 {
		m.responseSize.WithLabelValues(method, path).Observe(float64(sizeBytes))
	}
}

// RecordPanelAction records a panel operation triggered from the UI.
func (m *HTTPMetrics) RecordPanelAction(panel, action, status string) {
	m.panelActions.WithLabelValues(panel, action, status).Inc()
}

// SessionStarted increments the live session gauge.
func (m *HTTPMetrics) SessionStarted() { m.activeSessions.Inc() }

// SessionEnded decrements the live session gauge.
func (m *HTTPMetrics) SessionEnded() { m.activeSessions.Dec() }

// RecordRateLimited counts a rejected request.
func (m *HTTPMetrics) RecordRateLimited() { m.rateLimited.Inc() }

// ActiveSessions returns the current session gauge value.
func (m *HTTPMetrics) ActiveSessions() float64 {
	metric := &dto.Metric{}
	if err := m.activeSessions.Write(metric); err != nil {
		return 0
	}
	return metric.GetGauge().GetValue()
}
