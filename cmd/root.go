package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tphakala/vocab-manager/cmd/apiserver"
	configcmd "github.com/tphakala/vocab-manager/cmd/config"
	"github.com/tphakala/vocab-manager/cmd/health"
	"github.com/tphakala/vocab-manager/cmd/serve"
	"github.com/tphakala/vocab-manager/internal/buildinfo"
	"github.com/tphakala/vocab-manager/internal/conf"
	"github.com/tphakala/vocab-manager/internal/logger"
	"github.com/tphakala/vocab-manager/internal/telemetry"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	var (
		configPath string
		central    *logger.CentralLogger
		reporter   *telemetry.Reporter
	)

	rootCmd := &cobra.Command{
		Use:           "vocab-manager",
		Short:         "Language and vocabulary catalog manager",
		Version:       buildinfo.Current().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := setupFlags(rootCmd, &configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error setting up flags: %v\n", err)
		os.Exit(1)
	}

	configCmd := configcmd.Command(settings)
	rootCmd.AddCommand(
		serve.Command(settings),
		apiserver.Command(settings),
		health.Command(settings),
		configCmd,
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// printing the embedded defaults needs no settings
		if cmd.Name() == configcmd.DefaultCommandName && cmd.Parent() == configCmd {
			return nil
		}

		if err := conf.BindFlags(cmd.Flags()); err != nil {
			return err
		}
		loaded, err := conf.Load(configPath)
		if err != nil {
			return err
		}
		*settings = *loaded

		central, err = logger.NewCentralLogger(&settings.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		if settings.Debug {
			central.SetLevel(logger.LogLevelDebug)
		}
		logger.SetGlobal(central)

		reporter, err = telemetry.Init(&settings.Sentry, buildinfo.Current().GetVersion(), central.Module("telemetry"))
		if err != nil {
			// telemetry is optional, keep running without it
			central.Module("main").Warn("error telemetry disabled", logger.Error(err))
		}
		return nil
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		reporter.Flush()
		if central != nil {
			return central.Close()
		}
		return nil
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, configPath *string) error {
	rootCmd.PersistentFlags().StringVarP(configPath, "config", "c", "", "Path to config.yaml (default: search standard locations)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug output")
	return conf.MapFlag(rootCmd.PersistentFlags(), "debug", "debug")
}
