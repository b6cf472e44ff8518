// Package config manages the callscope configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tphakala/callscope/internal/conf"
)

// Command creates the config command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(initCommand(settings))
	return cmd
}

func initCommand(settings *conf.Settings) *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective settings to a config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", output)
			}
			if err := conf.SaveYAMLConfig(output, settings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "config.yaml", "File to write")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}
