// Package replay runs a gesture script and prints the outcome.
package replay

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/callscope/internal/conf"
	script "github.com/tphakala/callscope/internal/replay"
)

// Output formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Command creates the replay command.
func Command(settings *conf.Settings) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "replay [script.yaml]",
		Short: "Replay a gesture script against the engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != FormatYAML && format != FormatJSON {
				return fmt.Errorf("unsupported format %q, use %s or %s", format, FormatYAML, FormatJSON)
			}
			s, err := script.LoadFile(args[0])
			if err != nil {
				return err
			}
			result, err := script.Run(cmd.Context(), s, settings.ToAnnotatorConfig())
			if err != nil {
				return err
			}
			return Write(cmd.OutOrStdout(), result, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", FormatYAML, "Output format (yaml or json)")

	return cmd
}

// Write prints result in format. YAML output goes through JSON first so both formats use
// the same field names.
func Write(w io.Writer, result *script.Result, format string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if format == FormatJSON {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("convert result to yaml: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return enc.Close()
}
