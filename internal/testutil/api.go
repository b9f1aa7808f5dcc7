// Package testutil provides shared test fixtures: a discarding logger and a
// reference API on an in-memory database with a client bound to it.
package testutil

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/vocab-manager/internal/api"
	"github.com/tphakala/vocab-manager/internal/apiclient"
	"github.com/tphakala/vocab-manager/internal/conf"
	"github.com/tphakala/vocab-manager/internal/datastore"
	"github.com/tphakala/vocab-manager/internal/logger"
)

// Common test timeout constants.
const (
	// DefaultTestTimeout is the standard timeout for most async test operations.
	DefaultTestTimeout = 5 * time.Second

	// ShortTestTimeout is for operations expected to complete quickly.
	ShortTestTimeout = 1 * time.Second
)

// NewLogger returns a debug-level logger that discards output.
func NewLogger() logger.Logger {
	return logger.NewSlogLogger(io.Discard, logger.LogLevelDebug, time.UTC)
}

// APIFixture is a running reference API.
type APIFixture struct {
	URL    string
	Store  datastore.Interface
	Client *apiclient.Client
}

// StartAPI serves the reference API on an in-memory SQLite database. Server,
// client and store are closed when the test ends.
func StartAPI(t *testing.T, log logger.Logger, opts ...api.Option) *APIFixture {
	t.Helper()
	store, err := datastore.New(&conf.DatabaseSettings{
		Type:   conf.DatabaseSQLite,
		SQLite: conf.SQLiteSettings{Path: datastore.MemoryPath},
	}, datastore.Options{Logger: log})
	require.NoError(t, err)
	require.NoError(t, store.Open())

	e := echo.New()
	api.New(e, store, append([]api.Option{api.WithLogger(log)}, opts...)...)
	srv := httptest.NewServer(e)

	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, Timeout: DefaultTestTimeout}, log, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		srv.Close()
		assert.NoError(t, store.Close())
	})
	return &APIFixture{URL: srv.URL, Store: store, Client: client}
}
