package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/vocab-manager/internal/conf"
	"github.com/tphakala/vocab-manager/internal/datastore"
	"github.com/tphakala/vocab-manager/internal/events"
	"github.com/tphakala/vocab-manager/internal/logger"
	"github.com/tphakala/vocab-manager/internal/model"
)

// capturePublisher records every published event.
type capturePublisher struct {
	mu     sync.Mutex
	events []events.ChangeEvent
}

func (p *capturePublisher) TryPublish(ev events.ChangeEvent) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return true
}

func (p *capturePublisher) snapshot() []events.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.ChangeEvent(nil), p.events...)
}

func setupTestServer(t *testing.T) (*echo.Echo, datastore.Interface, *capturePublisher) {
	t.Helper()
	log := logger.NewSlogLogger(io.Discard, logger.LogLevelDebug, time.UTC)
	store, err := datastore.New(&conf.DatabaseSettings{
		Type:   conf.DatabaseSQLite,
		SQLite: conf.SQLiteSettings{Path: datastore.MemoryPath},
	}, datastore.Options{Logger: log})
	require.NoError(t, err)
	require.NoError(t, store.Open())
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	pub := &capturePublisher{}
	e := echo.New()
	New(e, store, WithLogger(log), WithEvents(pub))
	return e, store, pub
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthCheck(t *testing.T) {
	e, _, _ := setupTestServer(t)

	rec := doRequest(e, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthCheckDatabaseDown(t *testing.T) {
	e, store, _ := setupTestServer(t)
	require.NoError(t, store.Close())
	t.Cleanup(func() { _ = store.Open() })

	rec := doRequest(e, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLanguageLifecycle(t *testing.T) {
	e, _, pub := setupTestServer(t)

	rec := doRequest(e, http.MethodPost, "/api/languages", `{"iso":"lat","endonym":"Latīna","exonym_en":"Latin"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	latin := decode[model.Language](t, rec)
	assert.NotZero(t, latin.ID)
	assert.Equal(t, "Latin", latin.ExonymEN)

	rec = doRequest(e, http.MethodPost, "/api/languages", `{"iso":"got","endonym":"Gutisk"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/languages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	langs := decode[[]model.Language](t, rec)
	require.Len(t, langs, 2)
	assert.Equal(t, "Gutisk", langs[0].Endonym, "ordered by endonym")

	rec = doRequest(e, http.MethodPut, "/api/languages/"+itoa(latin.ID), `{"iso":"lat","endonym":"Latīna","stage":"classical"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "classical", decode[model.Language](t, rec).Stage)

	rec = doRequest(e, http.MethodDelete, "/api/languages/"+itoa(latin.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	got := pub.snapshot()
	require.Len(t, got, 4)
	assert.Equal(t, events.ActionCreated, got[0].Action)
	assert.Equal(t, events.ActionUpdated, got[2].Action)
	assert.Equal(t, events.ActionDeleted, got[3].Action)
	assert.Equal(t, latin.ID, got[3].ID)
}

func TestLanguageRejections(t *testing.T) {
	e, _, pub := setupTestServer(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"missing endonym", http.MethodPost, "/api/languages", `{"iso":"lat"}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/api/languages", `{"iso":`, http.StatusBadRequest},
		{"non-numeric id", http.MethodPut, "/api/languages/abc", `{"iso":"lat","endonym":"L"}`, http.StatusBadRequest},
		{"zero id", http.MethodDelete, "/api/languages/0", "", http.StatusBadRequest},
		{"update unknown", http.MethodPut, "/api/languages/99", `{"iso":"lat","endonym":"L"}`, http.StatusNotFound},
		{"delete unknown", http.MethodDelete, "/api/languages/99", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(e, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.want, rec.Code)
			resp := decode[ErrorResponse](t, rec)
			assert.Equal(t, tt.want, resp.Code)
			assert.Len(t, resp.CorrelationID, 8)
		})
	}
	assert.Empty(t, pub.snapshot(), "failed mutations publish nothing")
}

func TestVocabularyLifecycle(t *testing.T) {
	e, _, pub := setupTestServer(t)

	rec := doRequest(e, http.MethodPost, "/api/languages", `{"iso":"lat","endonym":"Latīna"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/languages/" + itoa(decode[model.Language](t, rec).ID) + "/vocabulary"

	// The path language wins over the body
	rec = doRequest(e, http.MethodPost, base, `{"language_id":999,"part_of_speech":"noun","lemma":"ignis"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ignis := decode[model.VocabularyEntry](t, rec)
	assert.NotEqual(t, int64(999), ignis.LanguageID)

	rec = doRequest(e, http.MethodPost, base, `{"part_of_speech":"noun","lemma":"aqua"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(e, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode[[]model.VocabularyEntry](t, rec)
	require.Len(t, entries, 2)
	assert.Equal(t, "aqua", entries[0].Lemma, "ordered by lemma")

	rec = doRequest(e, http.MethodPut, base+"/"+itoa(ignis.ID), `{"part_of_speech":"noun","lemma":"ignis","definition":"fire"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fire", decode[model.VocabularyEntry](t, rec).Definition)

	rec = doRequest(e, http.MethodDelete, base+"/"+itoa(ignis.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	vocabEvents := 0
	for _, ev := range pub.snapshot() {
		if ev.Resource == events.ResourceVocabulary {
			vocabEvents++
			assert.Equal(t, ignis.LanguageID, ev.LanguageID)
		}
	}
	assert.Equal(t, 4, vocabEvents)
}

func TestVocabularyRejections(t *testing.T) {
	e, _, _ := setupTestServer(t)

	rec := doRequest(e, http.MethodPost, "/api/languages", `{"iso":"lat","endonym":"Latīna"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/languages/" + itoa(decode[model.Language](t, rec).ID) + "/vocabulary"

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"missing lemma", http.MethodPost, base, `{"part_of_speech":"noun"}`, http.StatusBadRequest},
		{"unknown part of speech", http.MethodPost, base, `{"part_of_speech":"gerund","lemma":"x"}`, http.StatusBadRequest},
		{"unknown language", http.MethodPost, "/api/languages/99/vocabulary", `{"part_of_speech":"noun","lemma":"x"}`, http.StatusNotFound},
		{"bad word id", http.MethodPut, base + "/x", `{"part_of_speech":"noun","lemma":"x"}`, http.StatusBadRequest},
		{"update unknown", http.MethodPut, base + "/42", `{"part_of_speech":"noun","lemma":"x"}`, http.StatusNotFound},
		{"delete unknown", http.MethodDelete, base + "/42", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(e, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestEntriesAreScopedToLanguage(t *testing.T) {
	e, _, _ := setupTestServer(t)

	rec := doRequest(e, http.MethodPost, "/api/languages", `{"iso":"lat","endonym":"Latīna"}`)
	latinID := itoa(decode[model.Language](t, rec).ID)
	rec = doRequest(e, http.MethodPost, "/api/languages", `{"iso":"got","endonym":"Gutisk"}`)
	gothicID := itoa(decode[model.Language](t, rec).ID)

	rec = doRequest(e, http.MethodPost, "/api/languages/"+latinID+"/vocabulary", `{"part_of_speech":"noun","lemma":"aqua"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	aqua := decode[model.VocabularyEntry](t, rec)

	rec = doRequest(e, http.MethodGet, "/api/languages/"+gothicID+"/vocabulary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]model.VocabularyEntry](t, rec))

	rec = doRequest(e, http.MethodDelete, "/api/languages/"+gothicID+"/vocabulary/"+itoa(aqua.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "entry belongs to another language")

	// Deleting the language takes its vocabulary with it
	rec = doRequest(e, http.MethodDelete, "/api/languages/"+latinID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(e, http.MethodGet, "/api/languages/"+latinID+"/vocabulary", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]model.VocabularyEntry](t, rec))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
