package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/terrain/internal/server"
	"github.com/matzehuels/terrain/pkg/cache"
)

const (
	defaultAddr = ":8080"

	// redisKeyPrefix namespaces keys in a shared redis instance.
	redisKeyPrefix = "terrain:"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var flags genFlags
	var addr, redisURL string
	var maxCells int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve heightfields over HTTP",
		Long: `Serve heightfields over HTTP.

  GET  /healthz
  GET  /v1/heightfield.{png,tiff,json}?iterations=6&roughness=1.2&seed=7
  POST /v1/heightfield.{png,tiff,json}   (JSON options body)

Generation flags set the defaults for parameters a request leaves out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveOptions(cmd, &flags)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") && cfg.Server.Addr != "" {
				addr = cfg.Server.Addr
			}
			if !cmd.Flags().Changed("redis-url") && cfg.Server.RedisURL != "" {
				redisURL = cfg.Server.RedisURL
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, redisURL)
			if err != nil {
				return err
			}
			defer runner.Close()
			if redisURL != "" {
				runner.Keyer = cache.NewScopedKeyer(runner.Keyer, redisKeyPrefix)
			}

			srv := server.New(runner, server.Config{
				Defaults: cfg.Options,
				MaxCells: maxCells,
			}, loggerFromContext(ctx))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "shared redis cache (e.g. redis://localhost:6379/0)")
	cmd.Flags().IntVar(&maxCells, "max-cells", server.DefaultMaxCells, "largest grid a request may generate")

	return cmd
}
