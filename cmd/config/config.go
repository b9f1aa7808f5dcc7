// Package config holds the config subcommands.
package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/vocab-manager/internal/conf"
)

// DefaultCommandName runs without loading settings.
const DefaultCommandName = "default"

// Command creates the config command group.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(dumpCommand(settings), defaultCommand())
	return cmd
}

// dumpCommand prints the effective settings, or writes them to a file.
func dumpCommand(settings *conf.Settings) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration as YAML",
		Long:  "Print the configuration after merging defaults, config file, environment and flags.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" {
				if err := conf.SaveYAMLConfig(output, settings); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "configuration written to %s\n", output)
				return nil
			}
			data, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("error marshaling settings to YAML: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func defaultCommand() *cobra.Command {
	return &cobra.Command{
		Use:   DefaultCommandName,
		Short: "Print the default config.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(conf.DefaultConfig())
			return err
		},
	}
}
