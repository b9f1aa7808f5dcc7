package httpcontroller

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/vocab-manager/internal/conf"
	"github.com/tphakala/vocab-manager/internal/observability"
	"github.com/tphakala/vocab-manager/internal/testutil"
)

var csrfPattern = regexp.MustCompile(`name="_csrf" value="([^"]+)"`)

// browser is a cookie-keeping client of the admin UI.
type browser struct {
	t      *testing.T
	client *http.Client
	base   string
}

func (b *browser) get(path string) (int, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp.StatusCode, string(body)
}

// post submits a form carrying the CSRF token of the current page.
func (b *browser) post(path string, form url.Values) (int, string) {
	b.t.Helper()
	_, page := b.get("/")
	m := csrfPattern.FindStringSubmatch(page)
	require.Len(b.t, m, 2, "page carries a CSRF token")
	if form == nil {
		form = url.Values{}
	}
	form.Set("_csrf", m[1])
	return b.postRaw(path, form)
}

func (b *browser) postRaw(path string, form url.Values) (int, string) {
	b.t.Helper()
	resp, err := b.client.PostForm(b.base+path, form)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp.StatusCode, string(body)
}

func testSettings(apiURL string) *conf.Settings {
	settings := &conf.Settings{}
	settings.WebServer.Session.Secret = "test-secret"
	settings.WebServer.Session.TTL = time.Hour
	settings.WebServer.MessageTTL = time.Minute
	settings.API.BaseURL = apiURL
	settings.API.Timeout = 5 * time.Second
	settings.Metrics.Enabled = true
	settings.Metrics.Path = "/metrics"
	return settings
}

// setupUI starts the reference API and the admin UI in front of it.
func setupUI(t *testing.T) (*browser, *Server) {
	t.Helper()
	log := testutil.NewLogger()
	fixture := testutil.StartAPI(t, log)

	settings := testSettings(fixture.URL)
	m, err := observability.NewMetrics()
	require.NoError(t, err)
	s, err := New(settings, fixture.Client, WithLogger(log), WithMetrics(m))
	require.NoError(t, err)
	uiSrv := httptest.NewServer(s.Echo)

	t.Cleanup(func() {
		uiSrv.Close()
		s.Sessions.Close()
	})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, client: &http.Client{Jar: jar, Timeout: 10 * time.Second}, base: uiSrv.URL}, s
}

func TestIndexStartsSession(t *testing.T) {
	b, s := setupUI(t)

	code, page := b.get("/")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, page, "Language Management")
	assert.Contains(t, page, "No languages yet.")
	assert.Regexp(t, `Vocabulary\s*</button>`, page)
	assert.Contains(t, page, "disabled", "vocabulary tab is disabled without a selection")
	assert.Equal(t, 1, s.Sessions.Count())

	b.get("/")
	assert.Equal(t, 1, s.Sessions.Count(), "cookie keeps the session")
}

func TestCreateLanguageThroughForm(t *testing.T) {
	b, _ := setupUI(t)

	code, page := b.post("/languages", url.Values{"iso": {"lat"}, "endonym": {"Latīna"}, "exonym_en": {"Latin"}})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, page, "Language created successfully!")
	assert.Contains(t, page, "LAT")
	assert.Contains(t, page, "Latīna")
	assert.Contains(t, page, `value=""`, "form is reset after create")
}

func TestRequiredFieldsShowError(t *testing.T) {
	b, _ := setupUI(t)

	code, page := b.post("/languages", url.Values{"iso": {"lat"}})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, page, "ISO and Endonym are required")
	assert.Contains(t, page, `value="lat"`, "form keeps what was typed")
}

func TestPostWithoutCSRFTokenIsRejected(t *testing.T) {
	b, _ := setupUI(t)
	b.get("/")

	code, _ := b.postRaw("/languages", url.Values{"iso": {"lat"}, "endonym": {"Latīna"}})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestVocabularyViewRequiresSelection(t *testing.T) {
	b, _ := setupUI(t)

	code, page := b.post("/views/vocabulary", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, page, "Select a language first")

	code, _ = b.post("/views/settings", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, page = b.post("/vocabulary", url.Values{"part_of_speech": {"noun"}, "lemma": {"aqua"}})
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, page, "Select a language first")

	code, page = b.post("/vocabulary/3/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, page, "Select a language first")
}

func TestEditAndCancel(t *testing.T) {
	b, _ := setupUI(t)
	b.post("/languages", url.Values{"iso": {"lat"}, "endonym": {"Latīna"}})
	id := firstID(t, b, "languages")

	_, page := b.post("/languages/"+id+"/edit", nil)
	assert.Contains(t, page, "Update Language")
	assert.Contains(t, page, `value="Latīna"`)

	_, page = b.post("/languages", url.Values{"iso": {"lat"}, "endonym": {"Lingua Latina"}})
	assert.Contains(t, page, "Language updated successfully!")
	assert.Contains(t, page, "Lingua Latina")
	assert.Contains(t, page, "Create Language")

	b.post("/languages/"+id+"/edit", nil)
	_, page = b.post("/languages/cancel", nil)
	assert.Contains(t, page, "Create Language")

	code, _ := b.post("/languages/999/edit", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestVocabularyFlow(t *testing.T) {
	b, _ := setupUI(t)
	b.post("/languages", url.Values{"iso": {"lat"}, "endonym": {"Latīna"}})
	langID := firstID(t, b, "languages")

	_, page := b.post("/languages/"+langID+"/select", nil)
	assert.Contains(t, page, "Vocabulary for Latīna")
	assert.Contains(t, page, "No vocabulary entries for this language.")

	_, page = b.post("/vocabulary", url.Values{"part_of_speech": {"noun"}, "lemma": {"aqua"}, "definition": {"water"}})
	assert.Contains(t, page, "Vocabulary entry created successfully!")
	assert.Contains(t, page, "aqua")
	assert.Contains(t, page, "<td>Noun</td>")
	wordID := firstID(t, b, "vocabulary")

	code, confirm := b.get("/vocabulary/" + wordID + "/delete")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, confirm, "Are you sure you want to delete this vocabulary entry?")
	assert.Contains(t, confirm, "aqua")

	_, page = b.post("/vocabulary/"+wordID+"/delete", url.Values{"confirm": {"no"}})
	assert.Contains(t, page, "aqua", "declined delete keeps the entry")

	_, page = b.post("/vocabulary/"+wordID+"/delete", url.Values{"confirm": {"yes"}})
	assert.Contains(t, page, "Vocabulary entry deleted successfully!")
	assert.Contains(t, page, "No vocabulary entries for this language.")

	// switching tabs keeps the selection
	_, page = b.post("/views/languages", nil)
	assert.Contains(t, page, "Language Management")
	assert.Contains(t, page, "Vocabulary (Latīna)")
}

func TestUnknownLanguageSelection(t *testing.T) {
	b, _ := setupUI(t)
	code, _ := b.post("/languages/77/select", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = b.post("/languages/abc/select", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealthzAndMetrics(t *testing.T) {
	b, _ := setupUI(t)
	b.get("/")

	code, body := b.get("/healthz")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok","sessions":1,"version":"unknown"}`, body)

	code, body = b.get("/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, `path="/"`)
}

func TestAssetsAreServed(t *testing.T) {
	b, s := setupUI(t)
	code, body := b.get("/assets/style.css")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, ".panel")
	assert.Equal(t, 0, s.Sessions.Count(), "assets do not start sessions")
}

var idPattern = regexp.MustCompile(`action="/(languages|vocabulary)/(\d+)/edit"`)

// firstID returns the id of the first listed item of kind
func firstID(t *testing.T, b *browser, kind string) string {
	t.Helper()
	_, page := b.get("/")
	for _, m := range idPattern.FindAllStringSubmatch(page, -1) {
		if m[1] == kind {
			return m[2]
		}
	}
	t.Fatalf("no %s item listed in page: %s", kind, strings.TrimSpace(page))
	return ""
}
