package cli

import (
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/terrain/pkg/errors"
	"github.com/matzehuels/terrain/pkg/pipeline"
)

// =============================================================================
// Config File
// =============================================================================

// configFile is the layout of terrain.toml:
//
//	algorithm = "ds"
//	iterations = 6
//	roughness = 1.2
//
//	[presets.islands]
//	iterations = 7
//	roughness = 1.4
//	low = -2.0
//
//	[server]
//	addr = ":8080"
//
// Top-level keys override pipeline defaults; a preset overrides the top level.
type configFile struct {
	pipeline.Options
	Presets map[string]toml.Primitive `toml:"presets"`
	Server  serverConfig              `toml:"server"`
}

// serverConfig holds the [server] table.
type serverConfig struct {
	Addr     string `toml:"addr"`
	RedisURL string `toml:"redis_url"`
}

// config is the resolved configuration handed to commands.
type config struct {
	Options pipeline.Options
	Server  serverConfig
	Path    string // empty if no file was read
}

// loadConfig reads the config file and applies the selected preset.
// A missing default config file is not an error; a missing --config file is.
func (c *CLI) loadConfig() (*config, error) {
	if c.preset != "" {
		if err := errors.ValidatePresetName(c.preset); err != nil {
			return nil, err
		}
	}

	path := c.configPath
	if path == "" {
		if _, err := os.Stat(configFileName); err != nil {
			if c.preset != "" {
				return nil, errors.New(errors.ErrCodePresetNotFound,
					"preset %q requested but no config file found", c.preset)
			}
			return &config{Options: pipeline.DefaultOptions()}, nil
		}
		path = configFileName
	}

	cfg := configFile{Options: pipeline.DefaultOptions()}
	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	opts := cfg.Options
	if c.preset != "" {
		prim, ok := cfg.Presets[c.preset]
		if !ok {
			names := make([]string, 0, len(cfg.Presets))
			for name := range cfg.Presets {
				names = append(names, name)
			}
			slices.Sort(names)
			return nil, errors.New(errors.ErrCodePresetNotFound,
				"preset %q not found in %s (available: %s)", c.preset, path, strings.Join(names, ", "))
		}
		if err := md.PrimitiveDecode(prim, &opts); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "preset %q", c.preset)
		}
	}

	for _, key := range md.Undecoded() {
		// Unselected presets are never decoded.
		if len(key) > 0 && key[0] == "presets" {
			continue
		}
		c.Logger.Warn("unknown config key", "file", path, "key", key.String())
	}

	c.Logger.Debug("loaded config", "file", path, "preset", c.preset)
	return &config{Options: opts, Server: cfg.Server, Path: path}, nil
}

// =============================================================================
// Generation Flags
// =============================================================================

// genFlags holds the generation flags shared by generate, preview and serve.
type genFlags struct {
	algorithm  string
	baseWidth  int
	baseHeight int
	iterations int
	roughness  float64
	low        float64
	high       float64
	seed       uint64
}

// register adds the flags to cmd, showing pipeline defaults in the help text.
func (f *genFlags) register(cmd *cobra.Command) {
	d := pipeline.DefaultOptions()
	fs := cmd.Flags()
	fs.StringVarP(&f.algorithm, "algorithm", "a", d.Algorithm, "algorithm: diamond-square (ds), midpoint (md)")
	fs.IntVar(&f.baseWidth, "base-width", d.BaseWidth, "lattice squares per row (segments for midpoint)")
	fs.IntVar(&f.baseHeight, "base-height", d.BaseHeight, "lattice squares per column (diamond-square only)")
	fs.IntVarP(&f.iterations, "iterations", "i", d.Iterations, "subdivision passes")
	fs.Float64VarP(&f.roughness, "roughness", "r", d.Roughness, "jitter bound (>= 1.0; 1.0 disables jitter)")
	fs.Float64Var(&f.low, "low", d.Low, "lower bound of the seed interval")
	fs.Float64Var(&f.high, "high", d.High, "upper bound of the seed interval (exclusive)")
	fs.Uint64VarP(&f.seed, "seed", "s", d.Seed, "random seed")
}

// apply copies every flag the user set explicitly onto opts.
func (f *genFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	fs := cmd.Flags()
	if fs.Changed("algorithm") {
		opts.Algorithm = f.algorithm
	}
	if fs.Changed("base-width") {
		opts.BaseWidth = f.baseWidth
	}
	if fs.Changed("base-height") {
		opts.BaseHeight = f.baseHeight
	}
	if fs.Changed("iterations") {
		opts.Iterations = f.iterations
	}
	if fs.Changed("roughness") {
		opts.Roughness = f.roughness
	}
	if fs.Changed("low") {
		opts.Low = f.low
	}
	if fs.Changed("high") {
		opts.High = f.high
	}
	if fs.Changed("seed") {
		opts.Seed = f.seed
	}
}

// resolveOptions loads the config file and overlays explicitly set flags.
func (c *CLI) resolveOptions(cmd *cobra.Command, f *genFlags) (*config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	f.apply(cmd, &cfg.Options)
	return cfg, nil
}
