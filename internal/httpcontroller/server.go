// Package httpcontroller serves the admin UI: server-rendered pages over the
// per-session shell, where every form post performs one panel or shell
// operation and redirects back to the page.
package httpcontroller

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	gommonlog "github.com/labstack/gommon/log"
	"golang.org/x/crypto/acme/autocert"

	vmw "github.com/tphakala/vocab-manager/internal/api/middleware"
	"github.com/tphakala/vocab-manager/internal/apiclient"
	"github.com/tphakala/vocab-manager/internal/conf"
	"github.com/tphakala/vocab-manager/internal/errors"
	"github.com/tphakala/vocab-manager/internal/logger"
	"github.com/tphakala/vocab-manager/internal/observability"
	"github.com/tphakala/vocab-manager/internal/panel"
	"github.com/tphakala/vocab-manager/internal/privacy"
	"github.com/tphakala/vocab-manager/internal/session"
	"github.com/tphakala/vocab-manager/internal/shell"
)

const (
	startupHealthTimeout = 5 * time.Second
	bodyLimit            = "64K"
)

// Server encapsulates the echo server of the admin UI.
type Server struct {
	Echo     *echo.Echo
	Settings *conf.Settings
	Client   *apiclient.Client
	Sessions *session.Manager

	metrics *observability.Metrics
	log     logger.Logger
}

// Option customizes a Server.
type Option func(*Server)

// WithMetrics records request, panel and session metrics and serves them
// on the configured metrics path.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New creates the admin UI server talking to client.
func New(settings *conf.Settings, client *apiclient.Client, opts ...Option) (*Server, error) {
	s := &Server{
		Echo:     echo.New(),
		Settings: settings,
		Client:   client,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Global("httpcontroller")
	}
	s.log = s.log.Module("httpcontroller")

	var gauge session.Gauge
	if s.metrics != nil {
		gauge = s.metrics.HTTP
	}
	sessions, err := session.NewManager(session.Config{
		Secret: settings.WebServer.Session.Secret,
		TTL:    settings.WebServer.Session.TTL,
		Secure: settings.WebServer.Session.Secure,
	}, s.newShell, gauge, s.log)
	if err != nil {
		return nil, err
	}
	s.Sessions = sessions

	renderer, err := NewTemplateRenderer(s.log)
	if err != nil {
		return nil, err
	}

	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.Renderer = renderer
	s.Echo.HTTPErrorHandler = s.errorHandler
	// request logging goes through our middleware
	s.Echo.Logger.SetLevel(gommonlog.OFF)
	if settings.Debug {
		s.Echo.Debug = true
		s.Echo.Logger.SetLevel(gommonlog.DEBUG)
	}

	s.configureMiddleware()
	s.initRoutes()
	return s, nil
}

// newShell builds the shell of a new browser session
func (s *Server) newShell() *shell.Shell {
	opts := panel.Options{
		MessageTTL: s.Settings.WebServer.MessageTTL,
		Logger:     s.log.Module("panel"),
	}
	if s.metrics != nil {
		opts.Actions = s.metrics.HTTP
	}
	return shell.New(s.Client.Languages(), func(languageID int64) panel.VocabularyResource {
		return s.Client.Vocabulary(languageID)
	}, opts)
}

func (s *Server) configureMiddleware() {
	var recorder vmw.RequestRecorder
	if s.metrics != nil {
		recorder = s.metrics.HTTP
	}
	requestLog := s.log.Module("request")
	if !s.Settings.WebServer.LogRequests {
		requestLog = nil
	}

	s.Echo.Use(middleware.Recover())
	s.Echo.Use(vmw.NewRequestID())
	s.Echo.Use(vmw.NewRequestLogger(requestLog, recorder, nil))
	security := vmw.DefaultSecurityConfig()
	if s.Settings.WebServer.AutoTLS.Enabled {
		security = security.WithHSTS()
	}
	s.Echo.Use(vmw.NewSecureHeaders(security))
	s.Echo.Use(vmw.NewBodyLimit(bodyLimit))
	s.Echo.Use(vmw.NewCSRF(s.log, s.Settings.WebServer.Session.Secure))
}

// Start checks the API once and then serves until Shutdown. It returns
// http.ErrServerClosed after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	if s.Settings.API.HealthCheck {
		s.checkAPI(ctx)
	}

	addr := s.Settings.WebServerAddress()
	tls := s.Settings.WebServer.AutoTLS
	s.log.Info("admin UI listening",
		logger.String("address", addr),
		logger.Bool("autotls", tls.Enabled),
		logger.String("api", privacy.RedactURL(s.Settings.API.BaseURL)))

	if tls.Enabled {
		s.Echo.AutoTLSManager.Prompt = autocert.AcceptTOS
		s.Echo.AutoTLSManager.Cache = autocert.DirCache(tls.CacheDir)
		s.Echo.AutoTLSManager.HostPolicy = autocert.HostWhitelist(tls.Domain)
		return s.Echo.StartAutoTLS(addr)
	}
	return s.Echo.Start(addr)
}

// checkAPI probes the API health endpoint. Failure is only logged; the UI
// shows per-panel errors until the API is reachable.
func (s *Server) checkAPI(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, startupHealthTimeout)
	defer cancel()
	if err := s.Client.Health(ctx); err != nil {
		s.log.Warn("vocabulary API is not healthy",
			logger.String("api", privacy.RedactURL(s.Settings.API.BaseURL)),
			logger.Error(err))
		return
	}
	s.log.Info("vocabulary API is healthy", logger.String("api", privacy.RedactURL(s.Settings.API.BaseURL)))
}

// Shutdown stops accepting requests and ends all sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.Echo.Shutdown(ctx)
	s.Sessions.Close()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
