// Package session maps browser sessions onto shell state. The browser holds
// a signed cookie with a random session id; the shell for that id lives in
// an in-memory cache and is closed when it has been idle for the TTL.
package session

import (
	"crypto/sha256"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/patrickmn/go-cache"

	"github.com/tphakala/vocab-manager/internal/errors"
	"github.com/tphakala/vocab-manager/internal/logger"
	"github.com/tphakala/vocab-manager/internal/shell"
)

const (
	// CookieName is the session cookie.
	CookieName = "vocab_session"
	// DefaultTTL is the idle lifetime of a session.
	DefaultTTL = 30 * time.Minute

	idKey = "sid"
)

// Factory creates the shell of a new session.
type Factory func() *shell.Shell

// Gauge tracks live sessions; satisfied by *metrics.HTTPMetrics.
type Gauge interface {
	SessionStarted()
	SessionEnded()
}

// Config configures the manager.
type Config struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// Manager hands out the shell of the requesting browser.
type Manager struct {
	store   *sessions.CookieStore
	shells  *cache.Cache
	ttl     time.Duration
	factory Factory
	gauge   Gauge
	log     logger.Logger

	// serializes lookup and creation so one id never gets two shells
	mu sync.Mutex
}

// NewManager creates a manager. A nil gauge disables session metrics.
func NewManager(cfg Config, factory Factory, gauge Gauge, log logger.Logger) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, errors.Newf("session secret is required").
			Component("session").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if log == nil {
		log = logger.Global("session")
	}

	store := sessions.NewCookieStore(deriveKey(cfg.Secret), deriveKey(cfg.Secret+"encryption"))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0, // browser-session cookie; idle expiry is enforced server side
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	m := &Manager{
		store:   store,
		shells:  cache.New(cfg.TTL, cfg.TTL/2),
		ttl:     cfg.TTL,
		factory: factory,
		gauge:   gauge,
		log:     log.Module("session"),
	}
	m.shells.OnEvicted(m.evicted)
	return m, nil
}

// Shell returns the shell of the requesting browser, creating a session
// when the request carries none or an expired one. created reports whether
// the shell is new and still needs mounting.
func (m *Manager) Shell(w http.ResponseWriter, r *http.Request) (sh *shell.Shell, created bool, err error) {
	// a cookie that no longer verifies yields a fresh session and an error
	// we can ignore
	sess, _ := m.store.Get(r, CookieName)

	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := sess.Values[idKey].(string); ok {
		if cached, found := m.shells.Get(id); found {
			sh = cached.(*shell.Shell)
			m.shells.Set(id, sh, cache.DefaultExpiration)
			return sh, false, nil
		}
	}

	id := uuid.NewString()
	sess.Values[idKey] = id
	if err := sess.Save(r, w); err != nil {
		return nil, false, errors.New(err).
			Component("session").
			Category(errors.CategoryGeneric).
			Context("operation", "save_session").
			Build()
	}

	sh = m.factory()
	m.shells.Set(id, sh, cache.DefaultExpiration)
	if m.gauge != nil {
		m.gauge.SessionStarted()
	}
	m.log.Debug("session started", logger.String("session_id", id[:8]))
	return sh, true, nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	return m.shells.ItemCount()
}

// Close ends every session.
func (m *Manager) Close() {
	for id := range m.shells.Items() {
		m.shells.Delete(id)
	}
}

func (m *Manager) evicted(id string, value any) {
	if sh, ok := value.(*shell.Shell); ok {
		sh.Close()
	}
	if m.gauge != nil {
		m.gauge.SessionEnded()
	}
	m.log.Debug("session ended", logger.String("session_id", id[:min(8, len(id))]))
}

// deriveKey stretches the configured secret to a 32 byte key
func deriveKey(seed string) []byte {
	sum := sha256.Sum256([]byte(seed))
	return sum[:]
}
