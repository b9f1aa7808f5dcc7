// Package apiserver runs the reference vocabulary REST API.
package apiserver

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	gommonlog "github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/vocab-manager/internal/api"
	vmw "github.com/tphakala/vocab-manager/internal/api/middleware"
	"github.com/tphakala/vocab-manager/internal/conf"
	"github.com/tphakala/vocab-manager/internal/datastore"
	"github.com/tphakala/vocab-manager/internal/errors"
	"github.com/tphakala/vocab-manager/internal/events"
	"github.com/tphakala/vocab-manager/internal/logger"
	"github.com/tphakala/vocab-manager/internal/observability"
	"github.com/tphakala/vocab-manager/internal/privacy"
)

const (
	shutdownTimeout = 10 * time.Second
	bodyLimit       = "1M"
)

// Command creates the command that runs the reference API.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api",
		Short: "Run the reference vocabulary API",
		Long:  "Serve the languages and vocabulary REST API on a SQLite or MySQL database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), settings)
		},
	}

	if err := setupFlags(cmd); err != nil {
		fmt.Fprintf(os.Stderr, "error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().StringP("listen", "l", "", "Listen address of the API, e.g. 127.0.0.1:8000")
	cmd.Flags().String("db", "", "SQLite database path")
	cmd.Flags().Bool("mqtt", false, "Publish change events to MQTT")

	bindings := map[string]string{
		"apiserver.listen":     "listen",
		"database.sqlite.path": "db",
		"mqtt.enabled":         "mqtt",
	}
	for key, flag := range bindings {
		if err := conf.MapFlag(cmd.Flags(), flag, key); err != nil {
			return err
		}
	}
	return nil
}

// Run serves the API until ctx is done or SIGINT/SIGTERM arrives.
func Run(ctx context.Context, settings *conf.Settings) error {
	log := logger.Global("apiserver")

	m, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	store, err := datastore.New(&settings.Database, datastore.Options{
		Logger:        log,
		Metrics:       m.Datastore,
		SlowThreshold: settings.Database.SlowThreshold,
		Debug:         settings.Debug,
	})
	if err != nil {
		return err
	}
	if err := store.Open(); err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close datastore", logger.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus(events.DefaultConfig(), log)
	publisher := startMQTT(ctx, settings, bus, m, log)

	e := newEcho(settings, m, log)
	opts := []api.Option{api.WithEvents(bus), api.WithLogger(log)}
	if rl := settings.APIServer.RateLimit; rl.Enabled {
		opts = append(opts, api.WithRateLimit(vmw.RateLimitConfig{
			RequestsPerSecond: rl.RequestsPerSecond,
			Burst:             rl.Burst,
			OnLimited:         m.HTTP.RecordRateLimited,
		}))
	}
	api.New(e, store, opts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("vocabulary API listening",
			logger.String("address", settings.APIServer.Listen),
			logger.String("database", settings.Database.Type))
		if err := e.Start(settings.APIServer.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down vocabulary API")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		err := e.Shutdown(shutdownCtx)
		if err := bus.Shutdown(shutdownTimeout); err != nil {
			log.Warn("event bus did not drain", logger.Error(err))
		}
		if publisher != nil {
			publisher.Disconnect()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	return g.Wait()
}

// startMQTT connects the MQTT publisher and registers it on bus. A broker
// that cannot be reached is logged and events are not published.
func startMQTT(ctx context.Context, settings *conf.Settings, bus *events.Bus, m *observability.Metrics, log logger.Logger) *events.MQTTPublisher {
	if !settings.MQTT.Enabled {
		return nil
	}
	publisher := events.NewMQTTPublisher(events.MQTTConfig{
		Broker:   settings.MQTT.Broker,
		ClientID: settings.MQTT.ClientID,
		Username: settings.MQTT.Username,
		Password: settings.MQTT.Password,
		Topic:    settings.MQTT.Topic,
		Retain:   settings.MQTT.Retain,
	}, m.MQTT, log)

	if err := publisher.Connect(ctx); err != nil {
		log.Warn("change events will not be published",
			logger.String("broker", privacy.RedactURL(settings.MQTT.Broker)),
			logger.Error(err))
		return nil
	}
	if err := bus.RegisterConsumer(publisher); err != nil {
		log.Warn("failed to register MQTT publisher", logger.Error(err))
		publisher.Disconnect()
		return nil
	}
	log.Info("publishing change events", logger.String("broker", privacy.RedactURL(settings.MQTT.Broker)))
	return publisher
}

func newEcho(settings *conf.Settings, m *observability.Metrics, log logger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(gommonlog.OFF)
	if settings.Debug {
		e.Debug = true
		e.Logger.SetLevel(gommonlog.DEBUG)
	}

	e.Use(middleware.Recover())
	e.Use(vmw.NewRequestID())
	e.Use(vmw.NewRequestLogger(log.Module("request"), m.HTTP, nil))
	security := vmw.APISecurityConfig()
	e.Use(vmw.NewCORS(security))
	e.Use(vmw.NewSecureHeaders(security))
	e.Use(vmw.NewBodyLimit(bodyLimit))

	if settings.Metrics.Enabled {
		e.GET(settings.Metrics.Path, echo.WrapHandler(m.Handler()))
	}
	return e
}
