// Package apiclient calls the vocabulary REST API. Every operation is one
// HTTP round trip with no retry or caching; any failure is returned as a
// single *errors.EnhancedError whose message is shown to the user.
package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tphakala/vocab-manager/internal/errors"
	"github.com/tphakala/vocab-manager/internal/httpclient"
	"github.com/tphakala/vocab-manager/internal/logger"
	"github.com/tphakala/vocab-manager/internal/model"
	"github.com/tphakala/vocab-manager/internal/observability/metrics"
)

const (
	componentName = "apiclient"
	apiRoot       = "/api"

	requestIDHeader = "X-Request-Id"
)

// Config configures the client.
type Config struct {
	BaseURL   string // scheme and host, e.g. http://localhost:8000
	Timeout   time.Duration
	UserAgent string

	// Transport overrides the HTTP transport, e.g. with httpmock
	Transport http.RoundTripper
}

// Client is safe for concurrent use.
type Client struct {
	http     *httpclient.Client
	baseURL  string
	timeout  time.Duration
	log      logger.Logger
	recorder metrics.Recorder
}

// New creates a client. A nil recorder disables metrics.
func New(cfg Config, log logger.Logger, recorder metrics.Recorder) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, errors.Newf("api base url is required").
			Component(componentName).
			Category(errors.CategoryConfiguration).
			Build()
	}
	if log == nil {
		log = logger.Global(componentName)
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	c := &Client{
		http: httpclient.New(&httpclient.Config{
			DefaultTimeout: cfg.Timeout,
			UserAgent:      cfg.UserAgent,
			Transport:      cfg.Transport,
		}),
		baseURL:  base + apiRoot,
		timeout:  cfg.Timeout,
		log:      log.Module(componentName),
		recorder: recorder,
	}
	c.http.SetAfterResponseHook(c.observeResponse)
	return c, nil
}

// observeResponse counts every response by status code and logs the API's
// request id so UI and API log lines can be correlated.
func (c *Client) observeResponse(req *http.Request, resp *http.Response, err error) {
	if err != nil || resp == nil {
		return
	}
	if rr, ok := c.recorder.(metrics.ResponseRecorder); ok {
		rr.RecordResponse(req.Method, resp.StatusCode)
	}
	c.log.Debug("api response",
		logger.String("method", req.Method),
		logger.String("path", req.URL.Path),
		logger.Int("status", resp.StatusCode),
		logger.String("request_id", resp.Header.Get(requestIDHeader)))
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.Close()
}

// ListLanguages returns every language in the catalog.
func (c *Client) ListLanguages(ctx context.Context) ([]model.Language, error) {
	var out []model.Language
	if err := c.call(ctx, metrics.OpListLanguages, http.MethodGet, "/languages", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateLanguage creates a language and returns it with its assigned id.
func (c *Client) CreateLanguage(ctx context.Context, fields model.LanguageFields) (model.Language, error) {
	var out model.Language
	err := c.call(ctx, metrics.OpCreateLanguage, http.MethodPost, "/languages", fields, &out)
	return out, err
}

// UpdateLanguage replaces the editable fields of language id.
func (c *Client) UpdateLanguage(ctx context.Context, id int64, fields model.LanguageFields) (model.Language, error) {
	var out model.Language
	err := c.call(ctx, metrics.OpUpdateLanguage, http.MethodPut, fmt.Sprintf("/languages/%d", id), fields, &out)
	return out, err
}

// DeleteLanguage deletes language id.
func (c *Client) DeleteLanguage(ctx context.Context, id int64) error {
	return c.call(ctx, metrics.OpDeleteLanguage, http.MethodDelete, fmt.Sprintf("/languages/%d", id), nil, nil)
}

// ListEntries returns the vocabulary of one language.
func (c *Client) ListEntries(ctx context.Context, languageID int64) ([]model.VocabularyEntry, error) {
	var out []model.VocabularyEntry
	if err := c.call(ctx, metrics.OpListEntries, http.MethodGet, entriesPath(languageID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateEntry creates an entry under languageID. The owning language id is
// sent in the body as well as the path.
func (c *Client) CreateEntry(ctx context.Context, languageID int64, fields model.EntryFields) (model.VocabularyEntry, error) {
	var out model.VocabularyEntry
	payload := model.NewEntryPayload{LanguageID: languageID, EntryFields: fields}
	err := c.call(ctx, metrics.OpCreateEntry, http.MethodPost, entriesPath(languageID), payload, &out)
	return out, err
}

// UpdateEntry replaces the editable fields of entry wordID.
func (c *Client) UpdateEntry(ctx context.Context, languageID, wordID int64, fields model.EntryFields) (model.VocabularyEntry, error) {
	var out model.VocabularyEntry
	path := fmt.Sprintf("%s/%d", entriesPath(languageID), wordID)
	err := c.call(ctx, metrics.OpUpdateEntry, http.MethodPut, path, fields, &out)
	return out, err
}

// DeleteEntry deletes entry wordID.
func (c *Client) DeleteEntry(ctx context.Context, languageID, wordID int64) error {
	path := fmt.Sprintf("%s/%d", entriesPath(languageID), wordID)
	return c.call(ctx, metrics.OpDeleteEntry, http.MethodDelete, path, nil, nil)
}

// Health probes the liveness endpoint. Any 2xx response is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, metrics.OpHealth, http.MethodGet, "/health", nil, nil)
}

func entriesPath(languageID int64) string {
	return fmt.Sprintf("/languages/%d/vocabulary", languageID)
}

// call performs one request and converts any failure into an EnhancedError
func (c *Client) call(ctx context.Context, operation, method, path string, body, out any) error {
	url := c.baseURL + path
	start := time.Now()

	err := c.http.DoJSON(ctx, method, url, body, out)
	elapsed := time.Since(start)
	c.recorder.RecordDuration(operation, elapsed.Seconds())

	if err == nil {
		c.recorder.RecordOperation(operation, metrics.StatusSuccess)
		c.log.Debug("api call completed",
			logger.String("operation", operation),
			logger.String("method", method),
			logger.String("path", path),
			logger.Duration("elapsed", elapsed))
		return nil
	}

	enhanced := c.wrapError(err, operation, method, url, elapsed)
	c.recorder.RecordOperation(operation, metrics.StatusError)
	c.recorder.RecordError(operation, enhanced.GetCategory())

	fields := []logger.Field{
		logger.String("operation", operation),
		logger.String("method", method),
		logger.String("path", path),
		logger.Duration("elapsed", elapsed),
		logger.Error(err),
	}
	if enhanced.Category == errors.CategoryCancellation {
		c.log.Debug("api call cancelled", fields...)
	} else {
		c.log.Warn("api call failed", fields...)
	}
	return enhanced
}

func (c *Client) wrapError(err error, operation, method, url string, elapsed time.Duration) *errors.EnhancedError {
	builder := errors.New(err).
		Component(componentName).
		Timing(operation, elapsed).
		Context("method", method)

	var statusErr *httpclient.StatusError
	switch {
	case errors.As(err, &statusErr):
		builder.Category(errors.CategoryHTTP).Context("status_code", statusErr.StatusCode)
	case errors.Is(err, context.Canceled):
		builder.Category(errors.CategoryCancellation)
	default:
		builder.Category(errors.CategoryNetwork).NetworkContext(url, c.timeout)
	}
	return builder.Build()
}
