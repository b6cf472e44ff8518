// Package cmd wires the callscope subcommands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/callscope/cmd/config"
	"github.com/tphakala/callscope/cmd/replay"
	"github.com/tphakala/callscope/cmd/serve"
	"github.com/tphakala/callscope/cmd/version"
	"github.com/tphakala/callscope/cmd/view"
	"github.com/tphakala/callscope/internal/conf"
	"github.com/tphakala/callscope/internal/logger"
)

// RootCommand creates and returns the root command. Subcommands share settings, which are
// loaded before any of them runs.
func RootCommand() *cobra.Command {
	settings := conf.Defaults()
	var (
		configFile string
		debug      bool
		central    *logger.CentralLogger
	)

	rootCmd := &cobra.Command{
		Use:           "callscope",
		Short:         "Interactive spectrogram selection engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config.yaml (default: search . ~/.config/callscope /etc/callscope)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug output")

	viewCmd := view.Command(settings)
	versionCmd := version.Command()

	rootCmd.AddCommand(
		serve.Command(settings),
		viewCmd,
		replay.Command(settings),
		config.Command(settings),
		versionCmd,
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Build metadata needs neither settings nor logging.
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		loaded, err := conf.Load(configFile)
		if err != nil {
			return err
		}
		*settings = *loaded
		if debug {
			settings.Debug = true
		}

		// The terminal viewer owns stdout, so its logs go to the log file.
		cl, err := initialize(settings, cmd.Name() == viewCmd.Name())
		if err != nil {
			return err
		}
		central = cl
		return nil
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if central == nil {
			return nil
		}
		return central.Close()
	}

	return rootCmd
}

// initialize builds the central logger from settings and makes it global.
func initialize(settings *conf.Settings, quietConsole bool) (*logger.CentralLogger, error) {
	cfg := settings.Logging
	if settings.Debug {
		cfg.DefaultLevel = string(logger.LogLevelDebug)
		if cfg.Console != nil {
			console := *cfg.Console
			console.Level = cfg.DefaultLevel
			cfg.Console = &console
		}
		if cfg.FileOutput != nil {
			file := *cfg.FileOutput
			file.Level = cfg.DefaultLevel
			cfg.FileOutput = &file
		}
	}
	if quietConsole {
		cfg.Console = &logger.ConsoleOutput{Enabled: false}
		file := logger.FileOutput{Path: logger.DefaultLogPath, Level: cfg.DefaultLevel}
		if cfg.FileOutput != nil {
			file = *cfg.FileOutput
		}
		file.Enabled = true
		cfg.FileOutput = &file
	}

	cl, err := logger.NewCentralLogger(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.SetGlobal(cl)
	return cl, nil
}
