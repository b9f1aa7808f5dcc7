package telemetry

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/vocab-manager/internal/conf"
	"github.com/tphakala/vocab-manager/internal/errors"
	"github.com/tphakala/vocab-manager/internal/logger"
)

// mockTransport captures events instead of sending them.
type mockTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (t *mockTransport) Configure(sentry.ClientOptions) {}

func (t *mockTransport) SendEvent(event *sentry.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

func (t *mockTransport) Flush(time.Duration) bool              { return true }
func (t *mockTransport) FlushWithContext(context.Context) bool { return true }
func (t *mockTransport) Close()                               {}

func (t *mockTransport) captured() []*sentry.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*sentry.Event(nil), t.events...)
}

func newTestReporter(t *testing.T) (*Reporter, *mockTransport) {
	t.Helper()
	transport := &mockTransport{}
	r, err := NewReporter(sentry.ClientOptions{
		Dsn:       "https://public@sentry.example.com/1",
		Transport: transport,
	}, logger.NewSlogLogger(io.Discard, logger.LogLevelDebug, time.UTC))
	require.NoError(t, err)
	return r, transport
}

func TestInitDisabled(t *testing.T) {
	r, err := Init(&conf.SentrySettings{Enabled: false, DSN: "https://public@sentry.example.com/1"}, "dev", nil)
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.False(t, r.IsEnabled())
	assert.True(t, r.Flush())
}

func TestReportErrorScrubsAndTags(t *testing.T) {
	r, transport := newTestReporter(t)
	require.True(t, r.IsEnabled())

	ee := errors.Newf("dial tcp: connect to http://api.local/api/languages?token=abc failed").
		Component("apiclient").
		Category(errors.CategoryNetwork).
		Context("operation", "list_languages").
		Build()
	r.ReportError(ee)

	events := transport.captured()
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, sentry.LevelWarning, ev.Level)
	assert.NotContains(t, ev.Message, "abc")
	assert.Equal(t, "apiclient", ev.Tags["component"])
	assert.Equal(t, "network", ev.Tags["category"])
	require.Len(t, ev.Exception, 1)
	assert.Equal(t, "apiclient/network/list_languages", ev.Exception[0].Type)
}

func TestExpectedCategoriesAreSkipped(t *testing.T) {
	r, transport := newTestReporter(t)

	for _, category := range []errors.ErrorCategory{errors.CategoryValidation, errors.CategoryNotFound, errors.CategoryCancellation} {
		r.ReportError(errors.Newf("expected").Category(category).Build())
	}
	assert.Empty(t, transport.captured())

	r.ReportError(errors.Newf("disk I/O error").Component("datastore").Category(errors.CategoryDatabase).Build())
	events := transport.captured()
	require.Len(t, events, 1)
	assert.Equal(t, sentry.LevelError, events[0].Level)
}

func TestReporterAsTelemetryHook(t *testing.T) {
	r, transport := newTestReporter(t)
	errors.SetTelemetryReporter(r)
	t.Cleanup(func() { errors.SetTelemetryReporter(nil) })

	ee := errors.Newf("broker unreachable").Component("events").Category(errors.CategoryIntegration).Build()
	assert.True(t, ee.IsReported())
	assert.Len(t, transport.captured(), 1)
}
