// Package diamondsquare generates two-dimensional heightfields with the
// diamond-square algorithm.
//
// A coarse lattice of BaseWidth×BaseHeight squares is seeded with values drawn
// uniformly from [Low, High). Each of the Iterations passes halves the lattice
// spacing: the diamond step fills the centre of every square from its four
// corners, then the square step fills the midpoint of every edge from its
// axis-aligned neighbors. Interpolated values are multiplied by a factor drawn
// from [1/Roughness, Roughness).
//
// The grid has BaseWidth*2^Iterations + 1 columns and BaseHeight*2^Iterations
// + 1 rows. Edges do not wrap: square-step neighbors that fall outside the
// grid are left out and the remaining ones are averaged.
//
// Output is fully determined by the Config. Lattice points are seeded in
// row-major order and every pass visits its cells row-major, drawing from a
// single stream, so two runs with the same Config are bit-identical.
package diamondsquare

import (
	"github.com/matzehuels/terrain/pkg/terrain"
	"github.com/matzehuels/terrain/pkg/terrain/uniform"
)

// Config describes a diamond-square run.
type Config struct {
	BaseWidth  int     `json:"base_width" toml:"base_width"`
	BaseHeight int     `json:"base_height" toml:"base_height"`
	Iterations int     `json:"iterations" toml:"iterations"`
	Roughness  float64 `json:"roughness" toml:"roughness"`
	Low        float64 `json:"low" toml:"low"`
	High       float64 `json:"high" toml:"high"`
	Seed       uint64  `json:"seed" toml:"seed"`
}

// DefaultConfig returns a 4×4 base subdivided twice (a 17×17 grid) with
// roughness 1.1 over [-1, 1) and seed 0.
func DefaultConfig() Config {
	return Config{
		BaseWidth:  4,
		BaseHeight: 4,
		Iterations: 2,
		Roughness:  1.1,
		Low:        -1,
		High:       1,
	}
}

// Validate checks every field and returns the first violation as an
// INVALID_CONFIG error.
func (c Config) Validate() error {
	_, _, err := c.size()
	return err
}

func (c Config) size() (int, int, error) {
	if err := terrain.ValidateBase("base width", c.BaseWidth); err != nil {
		return 0, 0, err
	}
	if err := terrain.ValidateBase("base height", c.BaseHeight); err != nil {
		return 0, 0, err
	}
	if err := terrain.ValidateIterations(c.Iterations); err != nil {
		return 0, 0, err
	}
	if err := terrain.ValidateRoughness(c.Roughness); err != nil {
		return 0, 0, err
	}
	if err := terrain.ValidateInterval(c.Low, c.High); err != nil {
		return 0, 0, err
	}
	// Diamond and square steps each jitter once per iteration.
	if err := terrain.ValidateGrowth(c.Low, c.High, c.Roughness, 2*c.Iterations); err != nil {
		return 0, 0, err
	}
	w, err := terrain.FinalSize("base width", c.BaseWidth, c.Iterations)
	if err != nil {
		return 0, 0, err
	}
	h, err := terrain.FinalSize("base height", c.BaseHeight, c.Iterations)
	if err != nil {
		return 0, 0, err
	}
	if err := terrain.ValidateSize(w, h); err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// Option configures a Generator.
type Option func(*Generator)

// WithPassHook registers f to be called after every subdivision pass.
func WithPassHook(f terrain.PassFunc) Option {
	return func(g *Generator) { g.onPass = f }
}

// Generator runs diamond-square for a validated Config.
type Generator struct {
	cfg           Config
	width, height int
	onPass        terrain.PassFunc
}

// New validates cfg and returns a Generator for it.
func New(cfg Config, opts ...Option) (*Generator, error) {
	w, h, err := cfg.size()
	if err != nil {
		return nil, err
	}
	g := &Generator{cfg: cfg, width: w, height: h}
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

// Size returns the dimensions of the generated grid.
func (g *Generator) Size() (int, int) { return g.width, g.height }

// Generate produces the heightfield.
func (g *Generator) Generate() *terrain.Grid {
	s := uniform.New(g.cfg.Seed)
	b := terrain.NewBuilder(g.width, g.height)
	step := 1 << g.cfg.Iterations

	seedLattice(b, s, step, g.cfg.Low, g.cfg.High)

	j := terrain.NewJitter(s, g.cfg.Roughness)
	for pass := 1; step > 1; pass++ {
		half := step / 2
		diamond(b, j, step, half)
		square(b, j, step, half)
		if g.onPass != nil {
			g.onPass(pass, step)
		}
		step = half
	}
	return b.Grid()
}

// seedLattice draws every point whose coordinates are multiples of step.
func seedLattice(b *terrain.Builder, s *uniform.Sampler, step int, lo, hi float64) {
	for y := 0; y < b.Height(); y += step {
		for x := 0; x < b.Width(); x += step {
			b.Set(x, y, s.Float64(lo, hi))
		}
	}
}

// diamond fills the centre of every step×step square from its corners.
// Width-1 and Height-1 are multiples of step, so all corners are in the grid.
func diamond(b *terrain.Builder, j terrain.Jitter, step, half int) {
	for y := half; y < b.Height(); y += step {
		for x := half; x < b.Width(); x += step {
			vs := [4]float64{
				b.Get(x-half, y-half), b.Get(x+half, y-half),
				b.Get(x-half, y+half), b.Get(x+half, y+half),
			}
			b.Set(x, y, j.AverageN(&vs, 4))
		}
	}
}

// square fills the edge midpoints left after the diamond step: on rows that
// are multiples of step the odd multiples of half, on the rows in between
// the multiples of step.
func square(b *terrain.Builder, j terrain.Jitter, step, half int) {
	w, h := b.Width(), b.Height()
	for y := 0; y < h; y += half {
		x0 := half
		if (y/half)%2 == 1 {
			x0 = 0
		}
		for x := x0; x < w; x += step {
			var vs [4]float64
			n := 0
			if x >= half {
				vs[n] = b.Get(x-half, y)
				n++
			}
			if x+half < w {
				vs[n] = b.Get(x+half, y)
				n++
			}
			if y >= half {
				vs[n] = b.Get(x, y-half)
				n++
			}
			if y+half < h {
				vs[n] = b.Get(x, y+half)
				n++
			}
			b.Set(x, y, j.AverageN(&vs, n))
		}
	}
}

var _ terrain.Generator = (*Generator)(nil)
