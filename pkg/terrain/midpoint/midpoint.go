// Package midpoint generates one-dimensional heightfields with midpoint
// displacement.
//
// Length segments are seeded at their endpoints with values drawn uniformly
// from [Low, High). Each of the Iterations passes halves the spacing and sets
// every new midpoint to the average of its left and right neighbors,
// multiplied by a factor drawn from [1/Roughness, Roughness).
//
// The result is a terrain.Grid with Length*2^Iterations + 1 columns and a
// single row. Points are seeded and refined left to right from one stream,
// so equal Configs produce bit-identical rows.
package midpoint

import (
	"github.com/matzehuels/terrain/pkg/terrain"
	"github.com/matzehuels/terrain/pkg/terrain/uniform"
)

// Config describes a midpoint displacement run.
type Config struct {
	Length     int     `json:"length" toml:"length"`
	Iterations int     `json:"iterations" toml:"iterations"`
	Roughness  float64 `json:"roughness" toml:"roughness"`
	Low        float64 `json:"low" toml:"low"`
	High       float64 `json:"high" toml:"high"`
	Seed       uint64  `json:"seed" toml:"seed"`
}

// DefaultConfig returns 4 segments subdivided twice (17 points) with
// roughness 1.1 over [-1, 1) and seed 0.
func DefaultConfig() Config {
	return Config{
		Length:     4,
		Iterations: 2,
		Roughness:  1.1,
		Low:        -1,
		High:       1,
	}
}

// Validate checks every field and returns the first violation as an
// INVALID_CONFIG error.
func (c Config) Validate() error {
	_, err := c.length()
	return err
}

func (c Config) length() (int, error) {
	if err := terrain.ValidateBase("length", c.Length); err != nil {
		return 0, err
	}
	if err := terrain.ValidateIterations(c.Iterations); err != nil {
		return 0, err
	}
	if err := terrain.ValidateRoughness(c.Roughness); err != nil {
		return 0, err
	}
	if err := terrain.ValidateInterval(c.Low, c.High); err != nil {
		return 0, err
	}
	if err := terrain.ValidateGrowth(c.Low, c.High, c.Roughness, c.Iterations); err != nil {
		return 0, err
	}
	return terrain.FinalSize("length", c.Length, c.Iterations)
}

// Option configures a Generator.
type Option func(*Generator)

// WithPassHook registers f to be called after every subdivision pass.
func WithPassHook(f terrain.PassFunc) Option {
	return func(g *Generator) { g.onPass = f }
}

// Generator runs midpoint displacement for a validated Config.
type Generator struct {
	cfg    Config
	length int
	onPass terrain.PassFunc
}

// New validates cfg and returns a Generator for it.
func New(cfg Config, opts ...Option) (*Generator, error) {
	n, err := cfg.length()
	if err != nil {
		return nil, err
	}
	g := &Generator{cfg: cfg, length: n}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate is a convenience wrapper around New and Generator.Generate.
func Generate(cfg Config, opts ...Option) (*terrain.Grid, error) {
	g, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return g.Generate(), nil
}

// Config returns the configuration the generator was built with.
func (g *Generator) Config() Config { return g.cfg }

// Length returns the number of points in the generated row.
func (g *Generator) Length() int { return g.length }

// Size returns (Length(), 1).
func (g *Generator) Size() (int, int) { return g.length, 1 }

// Generate produces the heightfield row.
func (g *Generator) Generate() *terrain.Grid {
	s := uniform.New(g.cfg.Seed)
	b := terrain.NewBuilder(g.length, 1)
	step := 1 << g.cfg.Iterations

	for x := 0; x < g.length; x += step {
		b.Set(x, 0, s.Float64(g.cfg.Low, g.cfg.High))
	}

	j := terrain.NewJitter(s, g.cfg.Roughness)
	for pass := 1; step > 1; pass++ {
		half := step / 2
		// length-1 is a multiple of step, so x+half stays inside the row.
		for x := half; x < g.length; x += step {
			b.Set(x, 0, j.Average2(b.Get(x-half, 0), b.Get(x+half, 0)))
		}
		if g.onPass != nil {
			g.onPass(pass, step)
		}
		step = half
	}
	return b.Grid()
}

var _ terrain.Generator = (*Generator)(nil)
