// Package pkg provides the core libraries for fractal terrain generation.
//
// # Overview
//
// Terrain synthesizes heightfields with two recursive subdivision
// algorithms: diamond-square for 2D grids and midpoint displacement for 1D
// profiles. The pkg directory is organized into three main areas:
//
//  1. [terrain] - Domain logic (grid, range tracking, engines)
//  2. [cache], [observability] - Infrastructure (result caching, hooks)
//  3. [pipeline], [io] - Orchestration (generate → export)
//
// # Architecture
//
// The typical data flow:
//
//	pipeline.Options (CLI flags, terrain.toml, HTTP request)
//	         ↓
//	    [terrain/diamondsquare] or [terrain/midpoint] (generate)
//	         ↓
//	    [terrain] Grid (cells + normalization range)
//	         ↓
//	    [io] package (PNG, 16-bit TIFF, JSON)
//
// # Quick Start
//
// Generate a grid and write it as a grayscale PNG:
//
//	import (
//	    "os"
//	    "github.com/matzehuels/terrain/pkg/io"
//	    "github.com/matzehuels/terrain/pkg/terrain/diamondsquare"
//	)
//
//	// 1. Configure the engine
//	cfg := diamondsquare.DefaultConfig()
//	cfg.Iterations = 6
//	cfg.Roughness = 1.3
//
//	// 2. Generate
//	e, _ := diamondsquare.New(cfg)
//	g := e.Generate()
//
//	// 3. Export
//	f, _ := os.Create("island.png")
//	defer f.Close()
//	_ = io.Export(g, io.FormatPNG, f)
//
// # Main Packages
//
// ## Core Domain Logic
//
// [terrain] - The Grid container, the Range tracker and the shared
// validation used by every engine.
//
// [terrain/uniform] - Seeded uniform sampler; the only source of randomness.
//
// [terrain/diamondsquare] - 2D heightfields of (w·2^n + 1) × (h·2^n + 1) cells.
//
// [terrain/midpoint] - 1D profiles of (l·2^n + 1) cells.
//
// ## Infrastructure
//
// [cache] - Content-addressed result cache with file, redis and null
// backends.
//
// [observability] - Hooks for generation, cache and HTTP events.
//
// ## Orchestration
//
// [pipeline] - Options, validation and the caching Runner used by the CLI
// and the HTTP server.
//
// [io] - Exporters and the JSON importer.
//
// [terrain]: https://pkg.go.dev/github.com/matzehuels/terrain/pkg/terrain
// [terrain/uniform]: https://pkg.go.dev/github.com/matzehuels/terrain/pkg/terrain/uniform
// [terrain/diamondsquare]: https://pkg.go.dev/github.com/matzehuels/terrain/pkg/terrain/diamondsquare
// [terrain/midpoint]: https://pkg.go.dev/github.com/matzehuels/terrain/pkg/terrain/midpoint
// [cache]: https://pkg.go.dev/github.com/matzehuels/terrain/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/terrain/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/terrain/pkg/pipeline
// [io]: https://pkg.go.dev/github.com/matzehuels/terrain/pkg/io
package pkg
