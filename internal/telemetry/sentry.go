// Package telemetry reports enhanced errors to Sentry. Reporting is opt-in;
// without a DSN nothing leaves the process.
package telemetry

import (
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tphakala/vocab-manager/internal/conf"
	"github.com/tphakala/vocab-manager/internal/errors"
	"github.com/tphakala/vocab-manager/internal/logger"
)

const flushTimeout = 2 * time.Second

// Reporter forwards enhanced errors to a Sentry hub.
type Reporter struct {
	hub *sentry.Hub
	log logger.Logger
}

// Init creates a reporter from settings and installs it as the error
// telemetry hook. It returns nil without error when telemetry is disabled.
func Init(settings *conf.SentrySettings, release string, log logger.Logger) (*Reporter, error) {
	if !settings.Enabled || settings.DSN == "" {
		return nil, nil
	}
	r, err := NewReporter(sentry.ClientOptions{
		Dsn:              settings.DSN,
		Environment:      settings.Environment,
		SampleRate:       settings.SampleRate,
		Release:          "vocab-manager@" + release,
		AttachStacktrace: false,
		ServerName:       "", // keep hostnames out of events
	}, log)
	if err != nil {
		return nil, err
	}
	errors.SetTelemetryReporter(r)
	r.log.Info("error telemetry enabled", logger.String("environment", settings.Environment))
	return r, nil
}

// NewReporter creates a reporter with its own hub.
func NewReporter(opts sentry.ClientOptions, log logger.Logger) (*Reporter, error) {
	if log == nil {
		log = logger.Global("telemetry")
	}
	opts.BeforeSend = scrubEvent
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, errors.New(err).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return &Reporter{
		hub: sentry.NewHub(client, sentry.NewScope()),
		log: log.Module("telemetry"),
	}, nil
}

// IsEnabled implements errors.TelemetryReporter.
func (r *Reporter) IsEnabled() bool {
	return r != nil && r.hub.Client() != nil
}

// ReportError implements errors.TelemetryReporter. Expected outcomes such
// as validation failures, missing rows and cancelled requests are skipped.
func (r *Reporter) ReportError(ee *errors.EnhancedError) {
	if !shouldReport(ee.Category) {
		return
	}
	title := errorTitle(ee)
	message := errors.ScrubMessage(fmt.Sprintf("[%s] %s", ee.Category, ee.Err.Error()))

	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", ee.Component)
		scope.SetTag("category", string(ee.Category))
		scope.SetTag("error_type", fmt.Sprintf("%T", ee.Err))
		for key, value := range ee.GetContext() {
			if s, ok := value.(string); ok {
				value = errors.ScrubMessage(s)
			}
			scope.SetContext(key, map[string]any{"value": value})
		}
		scope.SetFingerprint([]string{title, ee.Component, string(ee.Category)})

		event := sentry.NewEvent()
		event.Level = levelFor(ee.Category)
		event.Message = message
		event.Exception = []sentry.Exception{{Type: title, Value: message}}
		r.hub.CaptureEvent(event)
	})
}

// Flush waits for queued events to be sent.
func (r *Reporter) Flush() bool {
	if r == nil {
		return true
	}
	return r.hub.Flush(flushTimeout)
}

func shouldReport(category errors.ErrorCategory) bool {
	switch category {
	case errors.CategoryValidation, errors.CategoryNotFound, errors.CategoryCancellation:
		return false
	}
	return true
}

func levelFor(category errors.ErrorCategory) sentry.Level {
	switch category {
	case errors.CategoryNetwork, errors.CategoryHTTP, errors.CategoryConflict, errors.CategoryLimit:
		return sentry.LevelWarning
	default:
		return sentry.LevelError
	}
}

// errorTitle groups events by component, category and operation
func errorTitle(ee *errors.EnhancedError) string {
	parts := make([]string, 0, 3)
	if ee.Component != "" {
		parts = append(parts, ee.Component)
	}
	parts = append(parts, string(ee.Category))
	if op, ok := ee.GetContext()["operation"].(string); ok && op != "" {
		parts = append(parts, op)
	}
	return strings.Join(parts, "/")
}

func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	event.ServerName = ""
	event.User = sentry.User{}
	if event.Request != nil {
		event.Request.Cookies = ""
		event.Request.Headers = nil
		event.Request.QueryString = ""
	}
	return event
}
