package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/terrain/pkg/errors"
	terrainio "github.com/matzehuels/terrain/pkg/io"
	"github.com/matzehuels/terrain/pkg/pipeline"
)

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		format string
		scale  int
	)

	cmd := &cobra.Command{
		Use:   "convert [in.json] [out]",
		Short: "Re-export a JSON heightfield as PNG, TIFF or JSON",
		Long: `Convert reads a heightfield written with -f json and exports it again.
The output format is taken from --format or, if unset, from the output extension.`,
		Example: `  terrain convert island.json island.tiff
  terrain convert island.json preview.png --scale 4`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]
			if format == "" {
				format = strings.ToLower(strings.TrimPrefix(filepath.Ext(out), "."))
				if format == "" {
					return errors.New(errors.ErrCodeInvalidFormat,
						"cannot infer format from %q; pass --format", out)
				}
			}
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}

			g, err := terrainio.ImportJSON(in)
			if err != nil {
				return err
			}
			if err := terrainio.ExportFile(g, format, scale, out); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("converted heightfield", "from", in, "to", out, "format", format)
			printSuccess("Converted %dx%d heightfield", g.Width(), g.Height())
			printFile(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: png, tiff, json (default from extension)")
	cmd.Flags().IntVar(&scale, "scale", pipeline.DefaultScale, "integer upscaling for png/tiff output")
	return cmd
}
