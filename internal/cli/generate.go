package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/terrain/pkg/errors"
	"github.com/matzehuels/terrain/pkg/pipeline"
)

// generateOpts holds the output flags of the generate command.
type generateOpts struct {
	output   string // output file path (or base path for multiple formats)
	formats  string // comma-separated output formats
	scale    int    // integer upscaling for image formats
	refresh  bool   // bypass cached results
	redisURL string // shared cache instead of the file cache
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var flags genFlags
	opts := generateOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a heightfield and write it to disk",
		Long: `Generate a heightfield with diamond-square or midpoint displacement.

Diamond-square produces a (base-width·2^i + 1) × (base-height·2^i + 1) grid;
midpoint displacement produces a (base-width·2^i + 1) × 1 profile.`,
		Example: `  terrain generate -i 7 -r 1.3 -o island.png
  terrain generate -a md -i 10 -f json -o profile
  terrain generate --preset islands -f png,tiff -o out/island`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveOptions(cmd, &flags)
			if err != nil {
				return err
			}
			o := cfg.Options
			if cmd.Flags().Changed("format") || len(o.Formats) == 0 {
				o.Formats = parseFormats(opts.formats)
			}
			if cmd.Flags().Changed("scale") {
				o.Scale = opts.scale
			}
			o.Refresh = opts.refresh
			return c.runGenerate(cmd.Context(), o, opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): png (default), tiff, json (comma-separated)")
	cmd.Flags().IntVar(&opts.scale, "scale", opts.scale, "integer upscaling for png/tiff output")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "regenerate even if a cached result exists")
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", "", "use a shared redis cache (e.g. redis://localhost:6379/0)")

	return cmd
}

// runGenerate executes the pipeline and writes one file per format.
func (c *CLI) runGenerate(ctx context.Context, o pipeline.Options, opts generateOpts) error {
	logger := loggerFromContext(ctx)

	if err := o.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.redisURL)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Generating heightfield...")
	restore := trackPasses(spinner, "Generating heightfield...", o.Iterations)
	spinner.Start()
	result, err := runner.Execute(ctx, o)
	restore()
	if err != nil {
		if spinner.Cancelled() {
			spinner.StopWithError("Generation interrupted")
			return ctx.Err()
		}
		spinner.Stop()
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Generated %s heightfield", o.Algorithm))
	prog.done(fmt.Sprintf("Generated %dx%d heightfield", result.Stats.Width, result.Stats.Height))

	paths, err := outputPaths(opts.output, o.Formats, o.Algorithm)
	if err != nil {
		return err
	}

	printGridStats(result.Stats.Width, result.Stats.Height, result.Stats.Range.Start, result.Stats.Range.End,
		result.CacheInfo.GenerateHit)
	for _, format := range o.Formats {
		path := paths[format]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// outputPaths maps each format to a file path.
//
// With one format, output is used as-is (an extension is added if missing).
// With several, output is a base path and each format appends its extension.
// An empty output defaults to "<algorithm>.<ext>".
func outputPaths(output string, formats []string, algorithm string) (map[string]string, error) {
	base := output
	if base == "" {
		base = algorithm
	} else if err := errors.ValidateOutputPath(output); err != nil {
		return nil, err
	}

	paths := make(map[string]string, len(formats))
	if len(formats) == 1 {
		ext := "." + formats[0]
		if strings.EqualFold(filepath.Ext(base), ext) {
			paths[formats[0]] = base
		} else {
			paths[formats[0]] = base + ext
		}
		return paths, nil
	}

	base = strings.TrimSuffix(base, filepath.Ext(base))
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths, nil
}
