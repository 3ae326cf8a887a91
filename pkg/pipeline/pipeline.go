// Package pipeline provides the generate → export pipeline for terrain.
//
// This package implements the pipeline shared by the CLI, the HTTP server and
// the preview TUI. By centralizing this logic, every entry point validates,
// caches and logs the same way.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Generate: Run diamond-square or midpoint displacement into a [terrain.Grid]
//  2. Export: Encode the grid in one or more formats (PNG, TIFF, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Iterations = 6
//	opts.Formats = []string{"png"}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts["png"]
//
// Run individual stages:
//
//	// Generate only
//	grid, err := runner.Generate(ctx, opts)
//
//	// Export an existing grid
//	artifacts, err := runner.Export(ctx, grid, opts)
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/terrain/pkg/cache"
	"github.com/matzehuels/terrain/pkg/errors"
	terrainio "github.com/matzehuels/terrain/pkg/io"
	"github.com/matzehuels/terrain/pkg/terrain"
	"github.com/matzehuels/terrain/pkg/terrain/diamondsquare"
	"github.com/matzehuels/terrain/pkg/terrain/midpoint"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and TUI
// =============================================================================

// Algorithm names.
const (
	AlgorithmDiamondSquare = "diamond-square"
	AlgorithmMidpoint      = "midpoint"
)

const (
	// DefaultAlgorithm is the algorithm used when none is given.
	DefaultAlgorithm = AlgorithmDiamondSquare

	// DefaultBase is the default lattice size (base width, base height and
	// midpoint segment count).
	DefaultBase = 4

	// DefaultIterations is the default number of subdivision passes.
	DefaultIterations = 2

	// DefaultRoughness is the default jitter bound.
	DefaultRoughness = 1.1

	// DefaultLow and DefaultHigh bound the seed interval.
	DefaultLow  = -1.0
	DefaultHigh = 1.0

	// DefaultScale is the default image upscaling factor.
	DefaultScale = 1
)

// Format constants re-exported from pkg/io.
const (
	FormatPNG  = terrainio.FormatPNG
	FormatTIFF = terrainio.FormatTIFF
	FormatJSON = terrainio.FormatJSON
)

// algorithmAliases maps accepted spellings to canonical algorithm names.
var algorithmAliases = map[string]string{
	"diamond-square": AlgorithmDiamondSquare,
	"diamondsquare":  AlgorithmDiamondSquare,
	"ds":             AlgorithmDiamondSquare,
	"midpoint":       AlgorithmMidpoint,
	"mpd":            AlgorithmMidpoint,
	"md":             AlgorithmMidpoint,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the terrain pipeline.
// This struct supports JSON and TOML serialization for API requests and
// config files.
//
// Only Algorithm, Formats and Logger are filled in when empty. Every numeric
// field is used as given, so a zero BaseWidth, Roughness or Scale is rejected
// rather than defaulted. Start from [DefaultOptions] to get every default.
type Options struct {
	// Generate options
	Algorithm  string  `json:"algorithm,omitempty" toml:"algorithm"`
	BaseWidth  int     `json:"base_width,omitempty" toml:"base_width"`
	BaseHeight int     `json:"base_height,omitempty" toml:"base_height"`
	Iterations int     `json:"iterations" toml:"iterations"`
	Roughness  float64 `json:"roughness,omitempty" toml:"roughness"`
	Low        float64 `json:"low" toml:"low"`
	High       float64 `json:"high" toml:"high"`
	Seed       uint64  `json:"seed" toml:"seed"`
	Refresh    bool    `json:"refresh,omitempty" toml:"-"`

	// Export options
	Formats []string `json:"formats,omitempty" toml:"formats"`
	Scale   int      `json:"scale,omitempty" toml:"scale"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// DefaultOptions returns options with every default applied: a 17×17
// diamond-square grid over [-1, 1) exported as PNG.
func DefaultOptions() Options {
	return Options{
		Algorithm:  DefaultAlgorithm,
		BaseWidth:  DefaultBase,
		BaseHeight: DefaultBase,
		Iterations: DefaultIterations,
		Roughness:  DefaultRoughness,
		Low:        DefaultLow,
		High:       DefaultHigh,
		Formats:    []string{FormatPNG},
		Scale:      DefaultScale,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Grid is the generated heightfield.
	Grid *terrain.Grid

	// GridHash is the content hash of the JSON-encoded grid.
	GridHash string

	// Artifacts contains encoded outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Width        int
	Height       int
	Range        terrain.Range
	GenerateTime time.Duration
	ExportTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GenerateHit bool // Whether the grid came from cache
	ExportHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ParseAlgorithm resolves an algorithm name or alias ("ds", "md", ...).
func ParseAlgorithm(name string) (string, error) {
	if a, ok := algorithmAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return a, nil
	}
	return "", errors.New(errors.ErrCodeInvalidConfig,
		"unknown algorithm %q (must be one of: %s, %s)", name, AlgorithmDiamondSquare, AlgorithmMidpoint)
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !terrainio.IsValidFormat(format) {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(terrainio.ValidFormats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateScale checks the image upscaling factor.
func ValidateScale(scale int) error {
	if scale < 1 || scale > terrainio.MaxScale {
		return errors.New(errors.ErrCodeInvalidInput,
			"scale must be between 1 and %d, got %d", terrainio.MaxScale, scale)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForGenerate(); err != nil {
		return err
	}
	if err := o.ValidateForExport(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetGenerateDefaults fills in the algorithm and logger. Numeric fields are
// left alone so that explicit zeros reach validation.
func (o *Options) SetGenerateDefaults() {
	if o.Algorithm == "" {
		o.Algorithm = DefaultAlgorithm
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForGenerate applies generation defaults, resolves the algorithm
// alias and validates the engine configuration.
func (o *Options) ValidateForGenerate() error {
	o.SetGenerateDefaults()
	a, err := ParseAlgorithm(o.Algorithm)
	if err != nil {
		return err
	}
	o.Algorithm = a
	if o.IsMidpoint() {
		return o.MidpointConfig().Validate()
	}
	return o.DiamondSquareConfig().Validate()
}

// SetExportDefaults sets default values for exporting.
func (o *Options) SetExportDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForExport validates and sets defaults for exporting.
func (o *Options) ValidateForExport() error {
	o.SetExportDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateScale(o.Scale)
}

// IsMidpoint reports whether the options select midpoint displacement.
func (o *Options) IsMidpoint() bool {
	a, err := ParseAlgorithm(o.Algorithm)
	return err == nil && a == AlgorithmMidpoint
}

// DiamondSquareConfig returns the engine configuration for diamond-square.
func (o *Options) DiamondSquareConfig() diamondsquare.Config {
	return diamondsquare.Config{
		BaseWidth:  o.BaseWidth,
		BaseHeight: o.BaseHeight,
		Iterations: o.Iterations,
		Roughness:  o.Roughness,
		Low:        o.Low,
		High:       o.High,
		Seed:       o.Seed,
	}
}

// MidpointConfig returns the engine configuration for midpoint displacement.
// BaseWidth is the number of segments; BaseHeight is ignored.
func (o *Options) MidpointConfig() midpoint.Config {
	return midpoint.Config{
		Length:     o.BaseWidth,
		Iterations: o.Iterations,
		Roughness:  o.Roughness,
		Low:        o.Low,
		High:       o.High,
		Seed:       o.Seed,
	}
}

// GridKeyOpts returns cache key options for generation.
func (o *Options) GridKeyOpts() cache.GridKeyOpts {
	k := cache.GridKeyOpts{
		Algorithm:  o.Algorithm,
		BaseWidth:  o.BaseWidth,
		BaseHeight: o.BaseHeight,
		Iterations: o.Iterations,
		Roughness:  o.Roughness,
		Low:        o.Low,
		High:       o.High,
		Seed:       o.Seed,
	}
	if o.IsMidpoint() {
		k.BaseHeight = 0
	}
	return k
}

// ArtifactKeyOpts returns cache key options for exporting one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Scale: o.Scale}
	if format == FormatJSON {
		k.Scale = 1
	}
	return k
}
