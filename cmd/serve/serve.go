package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/vocab-manager/internal/apiclient"
	"github.com/tphakala/vocab-manager/internal/conf"
	"github.com/tphakala/vocab-manager/internal/errors"
	"github.com/tphakala/vocab-manager/internal/httpcontroller"
	"github.com/tphakala/vocab-manager/internal/logger"
	"github.com/tphakala/vocab-manager/internal/observability"
)

const shutdownTimeout = 10 * time.Second

// Command creates the command that runs the admin UI.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin UI",
		Long:  "Serve the language and vocabulary admin UI backed by the vocabulary REST API.",
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

// setupFlags maps serve flags to their config keys; set flags override the
// config file.
func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("host", "", "Listen host of the admin UI")
	cmd.Flags().StringP("port", "p", "", "Listen port of the admin UI")
	cmd.Flags().String("api", "", "Base URL of the vocabulary API, e.g. http://localhost:8000")
	cmd.Flags().Bool("log-requests", false, "Log every request")

	bindings := map[string]string{
		"webserver.host":        "host",
		"webserver.port":        "port",
		"api.baseurl":           "api",
		"webserver.logrequests": "log-requests",
	}
	for key, flag := range bindings {
		if err := conf.MapFlag(cmd.Flags(), flag, key); err != nil {
			return err
		}
	}
	return nil
}

// Run serves the admin UI until ctx is done or SIGINT/SIGTERM arrives.
func Run(ctx context.Context, settings *conf.Settings) error {
	log := logger.Global("serve")

	m, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	client, err := apiclient.New(apiclient.Config{
		BaseURL:   settings.API.BaseURL,
		Timeout:   settings.API.Timeout,
		UserAgent: settings.API.UserAgent,
	}, log, m.APIClient)
	if err != nil {
		return err
	}
	defer client.Close()

	server, err := httpcontroller.New(settings, client,
		httpcontroller.WithMetrics(m),
		httpcontroller.WithLogger(log))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Start(gctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("admin UI server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down admin UI")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
