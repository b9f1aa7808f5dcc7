package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gather returns the metric family with name from registry
func gather(t *testing.T, registry *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric family %s not found", name)
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func TestAPIClientMetricsImplementsRecorder(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewAPIClientMetrics(registry)
	require.NoError(t, err)

	var r Recorder = m
	r.RecordOperation(OpCreateEntry, StatusError)
	r.RecordOperation(OpCreateEntry, StatusError)
	r.RecordDuration(OpCreateEntry, 0.2)
	r.RecordError(OpCreateEntry, "http-request")

	mf := gather(t, registry, "vocab_api_client_requests_total")
	require.Len(t, mf.GetMetric(), 1)
	assert.Equal(t, "error", labelValue(mf.GetMetric()[0], "status"))
	assert.InDelta(t, 2, mf.GetMetric()[0].GetCounter().GetValue(), 0)

	hist := gather(t, registry, "vocab_api_client_request_duration_seconds")
	assert.Equal(t, uint64(1), hist.GetMetric()[0].GetHistogram().GetSampleCount())

	errs := gather(t, registry, "vocab_api_client_errors_total")
	assert.Equal(t, "http-request", labelValue(errs.GetMetric()[0], "error_type"))
}

func TestAPIClientMetricsRecordsResponses(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewAPIClientMetrics(registry)
	require.NoError(t, err)

	var r ResponseRecorder = m
	r.RecordResponse("DELETE", 404)

	mf := gather(t, registry, "vocab_api_client_responses_total")
	require.Len(t, mf.GetMetric(), 1)
	assert.Equal(t, "DELETE", labelValue(mf.GetMetric()[0], "method"))
	assert.Equal(t, "404", labelValue(mf.GetMetric()[0], "code"))
}

func TestDuplicateRegistrationFails(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewDatastoreMetrics(registry)
	require.NoError(t, err)
	_, err = NewDatastoreMetrics(registry)
	assert.Error(t, err)
}

func TestActiveSessionsGauge(t *testing.T) {
	m, err := NewHTTPMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.SessionStarted()
	m.SessionStarted()
	m.SessionEnded()
	assert.InDelta(t, 1, m.ActiveSessions(), 0)
}

func TestMQTTConnectionStatus(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewMQTTMetrics(registry)
	require.NoError(t, err)

	m.UpdateConnectionStatus(true)
	assert.InDelta(t, 1, gather(t, registry, "mqtt_connection_status").GetMetric()[0].GetGauge().GetValue(), 0)
	m.UpdateConnectionStatus(false)
	assert.InDelta(t, 0, gather(t, registry, "mqtt_connection_status").GetMetric()[0].GetGauge().GetValue(), 0)
}

func TestTestRecorder(t *testing.T) {
	r := NewTestRecorder()
	r.RecordOperation(OpHealth, StatusSuccess)
	r.RecordDuration(OpHealth, 0.01)
	r.RecordError(OpHealth, "network")

	assert.Equal(t, 1, r.OperationCount(OpHealth, StatusSuccess))
	assert.Equal(t, 0, r.OperationCount(OpHealth, StatusError))
	assert.Equal(t, 1, r.DurationCount(OpHealth))
	assert.Equal(t, 1, r.ErrorCount(OpHealth, "network"))

	var _ Recorder = NoopRecorder{}
}
