package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, cfg *Config) *Client {
	t.Helper()
	client := New(cfg)
	t.Cleanup(client.Close)
	return client
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestNew(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		client := newTestClient(t, nil)
		assert.Equal(t, DefaultTimeout, client.defaultTimeout)
		assert.Equal(t, defaultUserAgent, client.userAgent)
	})

	t.Run("custom values", func(t *testing.T) {
		cfg := Config{DefaultTimeout: 5 * time.Second, UserAgent: "TestAgent/1.0"}
		client := newTestClient(t, &cfg)
		assert.Equal(t, 5*time.Second, client.defaultTimeout)
		assert.Equal(t, "TestAgent/1.0", client.userAgent)
		assert.Equal(t, Config{DefaultTimeout: 5 * time.Second, UserAgent: "TestAgent/1.0"}, cfg, "caller config is not mutated")
	})
}

func TestDoSetsUserAgentAndReadsBody(t *testing.T) {
	var receivedUA string
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		receivedUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("success"))
	})
	client := newTestClient(t, &Config{UserAgent: "CustomAgent/2.0", DefaultTimeout: time.Second})

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)
	resp, err := client.Do(t.Context(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "body stays readable after Do returns")
	assert.Equal(t, "success", string(body))
	assert.Equal(t, "CustomAgent/2.0", receivedUA)
}

func TestDoContextCancellation(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	client := newTestClient(t, nil)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := client.DoJSON(ctx, http.MethodGet, server.URL, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoDefaultTimeout(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	client := newTestClient(t, &Config{DefaultTimeout: 50 * time.Millisecond})

	err := client.DoJSON(context.Background(), http.MethodGet, server.URL, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/echo":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var in payload
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(payload{Name: in.Name + "!"})
		case "/missing":
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		}
	})
	client := newTestClient(t, nil)

	var out payload
	require.NoError(t, client.DoJSON(t.Context(), http.MethodPost, server.URL+"/echo", payload{Name: "hi"}, &out))
	assert.Equal(t, "hi!", out.Name)

	err := client.DoJSON(t.Context(), http.MethodGet, server.URL+"/missing", nil, &out)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "request failed with status code 404", err.Error())
	assert.Contains(t, statusErr.Body, "not found")
}

func TestJSONHeadersOnEveryMethod(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"), r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"), r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	client := newTestClient(t, nil)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		var body any
		if method == http.MethodPost || method == http.MethodPut {
			body = map[string]string{"iso": "lat"}
		}
		require.NoError(t, client.DoJSON(t.Context(), method, server.URL, body, nil))
	}
}

func TestAfterResponseHook(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	client := newTestClient(t, nil)

	var after atomic.Int32
	var status atomic.Int32
	client.SetAfterResponseHook(func(_ *http.Request, resp *http.Response, err error) {
		after.Add(1)
		if err == nil {
			status.Store(int32(resp.StatusCode))
		}
	})

	require.NoError(t, client.DoJSON(t.Context(), http.MethodDelete, server.URL, nil, nil))
	assert.Equal(t, int32(1), after.Load())
	assert.Equal(t, int32(http.StatusNoContent), status.Load())
}

func TestCustomTransport(t *testing.T) {
	var calls atomic.Int32
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls.Add(1)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(jsonReader(`{"status":"ok"}`)),
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Request:    r,
		}, nil
	})
	client := newTestClient(t, &Config{Transport: rt})

	var out map[string]string
	require.NoError(t, client.DoJSON(t.Context(), http.MethodGet, "http://example.invalid/api/health", nil, &out))
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, int32(1), calls.Load())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
