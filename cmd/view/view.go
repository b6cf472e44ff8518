// Package view runs the terminal viewer.
package view

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/callscope/internal/conf"
	"github.com/tphakala/callscope/internal/tui"
)

// Command creates the view command.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		duration float64
		zoom     float64
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Annotate a spectrogram area in the terminal",
		Long:  "Open a terminal viewer that maps mouse input to the annotator: drag to select, right-click to place a marker.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := tui.ConfigFromSettings(settings)
			if cmd.Flags().Changed("duration") {
				cfg.Duration = duration
			}
			if cmd.Flags().Changed("zoom") {
				cfg.Zoom = zoom
			}
			return tui.Run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().Float64Var(&duration, "duration", 0, "Seconds of audio shown")
	cmd.Flags().Float64Var(&zoom, "zoom", 0, "Initial zoom in pixels per second")

	return cmd
}
