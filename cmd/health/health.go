package health

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tphakala/vocab-manager/internal/apiclient"
	"github.com/tphakala/vocab-manager/internal/conf"
	"github.com/tphakala/vocab-manager/internal/logger"
)

// Command creates the command that probes the vocabulary API. It exits
// non-zero when the API is unreachable or unhealthy.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the vocabulary API is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := Check(cmd.Context(), settings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is healthy\n", settings.API.BaseURL)
			return nil
		},
	}

	cmd.Flags().String("api", "", "Base URL of the vocabulary API")
	if err := conf.MapFlag(cmd.Flags(), "api", "api.baseurl"); err != nil {
		fmt.Fprintf(os.Stderr, "error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// Check calls the API health endpoint once.
func Check(ctx context.Context, settings *conf.Settings) error {
	client, err := apiclient.New(apiclient.Config{
		BaseURL:   settings.API.BaseURL,
		Timeout:   settings.API.Timeout,
		UserAgent: settings.API.UserAgent,
	}, logger.Global("health"), nil)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("%s is not healthy: %w", settings.API.BaseURL, err)
	}
	return nil
}
