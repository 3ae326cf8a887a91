package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/terrain/pkg/cache"
	terrainio "github.com/matzehuels/terrain/pkg/io"
	"github.com/matzehuels/terrain/pkg/observability"
	"github.com/matzehuels/terrain/pkg/terrain"
)

// Cache key types reported to observability.CacheHooks.
const (
	keyTypeGrid     = "grid"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the HTTP server and the preview TUI share it.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete generate → export pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Generate
	genStart := time.Now()
	grid, genHit, err := r.GenerateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Grid = grid
	result.Stats.GenerateTime = time.Since(genStart)
	result.Stats.Width, result.Stats.Height = grid.Size()
	result.Stats.Range = grid.Range()
	result.CacheInfo.GenerateHit = genHit

	if data, err := terrainio.MarshalGrid(grid); err == nil {
		result.GridHash = cache.Hash(data)
	}

	r.Logger.Info("generated heightfield",
		"algorithm", opts.Algorithm,
		"size", fmt.Sprintf("%dx%d", result.Stats.Width, result.Stats.Height),
		"cached", genHit,
		"duration", result.Stats.GenerateTime)

	// Stage 2: Export
	exportStart := time.Now()
	artifacts, exportHit, err := r.ExportWithCacheInfo(ctx, grid, opts)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.ExportTime = time.Since(exportStart)
	result.CacheInfo.ExportHit = exportHit

	r.Logger.Info("exported outputs",
		"formats", opts.Formats,
		"cached", exportHit,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// GenerateWithCacheInfo produces a heightfield with caching and returns cache hit info.
//
// Generation cannot be interrupted once started; ctx is checked before the
// engine runs.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts Options) (*terrain.Grid, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.GridKey(opts.GridKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if g, err := terrainio.UnmarshalGrid(data); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeGrid)
				return g, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeGrid)
	}

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	gen, err := NewGenerator(opts, func(pass, step int) {
		opts.Logger.Debug("subdivision pass", "algorithm", opts.Algorithm, "pass", pass, "step", step)
		hooks.OnPass(ctx, opts.Algorithm, pass, step)
	})
	if err != nil {
		return nil, false, err
	}

	w, h := gen.Size()
	hooks.OnGenerateStart(ctx, opts.Algorithm, w, h)
	start := time.Now()
	g := gen.Generate()
	hooks.OnGenerateComplete(ctx, opts.Algorithm, g.Len(), time.Since(start), nil)

	if data, err := terrainio.MarshalGrid(g); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLGrid); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeGrid, len(data))
		} else {
			opts.Logger.Warn("cache write failed", "key", cacheKey, "err", err)
		}
	}

	return g, false, nil
}

// Generate is a convenience wrapper that calls GenerateWithCacheInfo and discards the cache hit info.
func (r *Runner) Generate(ctx context.Context, opts Options) (*terrain.Grid, error) {
	g, _, err := r.GenerateWithCacheInfo(ctx, opts)
	return g, err
}

// ExportWithCacheInfo encodes artifacts with caching and returns cache hit info.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, g *terrain.Grid, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForExport(); err != nil {
		return nil, false, err
	}

	gridData, err := terrainio.MarshalGrid(g)
	if err != nil {
		return nil, false, fmt.Errorf("serialize grid for cache key: %w", err)
	}
	gridHash := cache.Hash(gridData)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(gridHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			continue
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
		allCached = false
		break
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnExportStart(ctx, opts.Formats)
	start := time.Now()
	encoded, err := Export(g, opts)
	size := 0
	for _, data := range encoded {
		size += len(data)
	}
	hooks.OnExportComplete(ctx, opts.Formats, size, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range encoded {
		cacheKey := r.Keyer.ArtifactKey(gridHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}

	return encoded, false, nil
}

// Export is a convenience wrapper that calls ExportWithCacheInfo and discards the cache hit info.
func (r *Runner) Export(ctx context.Context, g *terrain.Grid, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.ExportWithCacheInfo(ctx, g, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
