package diamondsquare

import (
	"math"
	"testing"

	"github.com/matzehuels/terrain/pkg/errors"
	"github.com/matzehuels/terrain/pkg/terrain"
	"github.com/matzehuels/terrain/pkg/terrain/uniform"
)

// goldenConfig is the 4×4, two-iteration fixture used across these tests.
func goldenConfig() Config {
	return Config{
		BaseWidth:  4,
		BaseHeight: 4,
		Iterations: 2,
		Roughness:  1.1,
		Low:        -1,
		High:       1,
		Seed:       42,
	}
}

func mustGenerate(t *testing.T, cfg Config, opts ...Option) *terrain.Grid {
	t.Helper()
	g, err := Generate(cfg, opts...)
	if err != nil {
		t.Fatalf("Generate(%+v) error = %v", cfg, err)
	}
	return g
}

func cell(t *testing.T, g *terrain.Grid, x, y int) float64 {
	t.Helper()
	v, err := g.At(x, y)
	if err != nil {
		t.Fatalf("At(%d, %d) error = %v", x, y, err)
	}
	return v
}

// classify returns the half-step a non-lattice cell was written at and
// whether it was filled by the diamond step.
func classify(x, y, initialStep int) (half int, isDiamond bool) {
	for half = initialStep / 2; half >= 1; half /= 2 {
		if x%half == 0 && y%half == 0 {
			break
		}
	}
	step := half * 2
	return half, x%step != 0 && y%step != 0
}

// expectedAverage recomputes the unjittered neighbor average of a derived cell
// the same way the engine does.
func expectedAverage(t *testing.T, g *terrain.Grid, x, y, initialStep int) float64 {
	t.Helper()
	half, isDiamond := classify(x, y, initialStep)
	if isDiamond {
		sum := cell(t, g, x-half, y-half) + cell(t, g, x+half, y-half) +
			cell(t, g, x-half, y+half) + cell(t, g, x+half, y+half)
		return sum / 4
	}
	w, h := g.Size()
	var sum float64
	n := 0
	if x >= half {
		sum += cell(t, g, x-half, y)
		n++
	}
	if x+half < w {
		sum += cell(t, g, x+half, y)
		n++
	}
	if y >= half {
		sum += cell(t, g, x, y-half)
		n++
	}
	if y+half < h {
		sum += cell(t, g, x, y+half)
		n++
	}
	return sum / float64(n)
}

func TestSizeLaw(t *testing.T) {
	tests := []struct {
		name                  string
		baseW, baseH, iter    int
		wantWidth, wantHeight int
	}{
		{"default", 4, 4, 2, 17, 17},
		{"no iterations", 3, 2, 0, 4, 3},
		{"single cell base", 1, 1, 3, 9, 9},
		{"rectangular", 4, 2, 3, 33, 17},
		{"tall", 1, 5, 1, 3, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.BaseWidth, cfg.BaseHeight, cfg.Iterations = tt.baseW, tt.baseH, tt.iter

			gen, err := New(cfg)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if w, h := gen.Size(); w != tt.wantWidth || h != tt.wantHeight {
				t.Errorf("Size() = (%d, %d), want (%d, %d)", w, h, tt.wantWidth, tt.wantHeight)
			}

			g := gen.Generate()
			if w, h := g.Size(); w != tt.wantWidth || h != tt.wantHeight {
				t.Errorf("grid size = (%d, %d), want (%d, %d)", w, h, tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestDeterminism(t *testing.T) {
	cfg := goldenConfig()
	cfg.Iterations = 5

	a := mustGenerate(t, cfg)
	b := mustGenerate(t, cfg)
	if !a.Equal(b) {
		t.Error("two runs with the same config produced different grids")
	}

	cfg.Seed++
	c := mustGenerate(t, cfg)
	if a.Equal(c) {
		t.Error("different seeds produced identical grids")
	}
}

func TestSeedPreservation(t *testing.T) {
	cfg := goldenConfig()
	cfg.BaseWidth = 3
	cfg.Iterations = 3
	g := mustGenerate(t, cfg)

	step := 1 << cfg.Iterations
	s := uniform.New(cfg.Seed)
	w, h := g.Size()
	for y := 0; y < h; y += step {
		for x := 0; x < w; x += step {
			want := s.Float64(cfg.Low, cfg.High)
			if got := cell(t, g, x, y); got != want {
				t.Errorf("lattice (%d, %d) = %v, want seeded %v", x, y, got, want)
			}
		}
	}
}

func TestRangeContainment(t *testing.T) {
	cfg := goldenConfig()
	cfg.Iterations = 4
	cfg.Roughness = 1.5
	g := mustGenerate(t, cfg)

	r := g.Range()
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range g.Values() {
		if !r.Contains(v) {
			t.Fatalf("value %v outside range [%v, %v]", v, r.Start, r.End)
		}
		lo, hi = min(lo, v), max(hi, v)
	}
	if r.Start != lo || r.End != hi {
		t.Errorf("Range() = [%v, %v], want true extremes [%v, %v]", r.Start, r.End, lo, hi)
	}
}

func TestNormalizeEndpoints(t *testing.T) {
	g := mustGenerate(t, goldenConfig())
	r := g.Range()
	if got := g.Normalize(r.Start); got != 0 {
		t.Errorf("Normalize(start) = %v, want 0", got)
	}
	if got := g.Normalize(r.End); got != 1 {
		t.Errorf("Normalize(end) = %v, want 1", got)
	}
}

func TestRoughnessOneIsPlainAverage(t *testing.T) {
	cfg := goldenConfig()
	cfg.Roughness = 1
	cfg.Iterations = 3
	cfg.BaseHeight = 2
	g := mustGenerate(t, cfg)

	step := 1 << cfg.Iterations
	w, h := g.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x%step == 0 && y%step == 0 {
				continue
			}
			if got, want := cell(t, g, x, y), expectedAverage(t, g, x, y, step); got != want {
				t.Errorf("(%d, %d) = %v, want average %v", x, y, got, want)
			}
		}
	}
}

func TestGoldenFixture(t *testing.T) {
	cfg := goldenConfig()
	g := mustGenerate(t, cfg)

	if w, h := g.Size(); w != 17 || h != 17 {
		t.Fatalf("Size() = (%d, %d), want (17, 17)", w, h)
	}

	s := uniform.New(cfg.Seed)
	lattice := []int{0, 4, 8, 12, 16}
	for _, y := range lattice {
		for _, x := range lattice {
			if got, want := cell(t, g, x, y), s.Float64(-1, 1); got != want {
				t.Errorf("lattice (%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}

	const eps = 1e-12
	for y := 0; y < 17; y++ {
		for x := 0; x < 17; x++ {
			if x%4 == 0 && y%4 == 0 {
				continue
			}
			v := cell(t, g, x, y)
			avg := expectedAverage(t, g, x, y, 4)
			if avg == 0 {
				if v != 0 {
					t.Errorf("(%d, %d) = %v, want 0 for zero average", x, y, v)
				}
				continue
			}
			if f := v / avg; f < 1/cfg.Roughness-eps || f > cfg.Roughness+eps {
				t.Errorf("(%d, %d) jitter factor %v outside [%v, %v)", x, y, f, 1/cfg.Roughness, cfg.Roughness)
			}
		}
	}
}

func TestZeroIterationsIsLatticeOnly(t *testing.T) {
	cfg := goldenConfig()
	cfg.Iterations = 0
	g := mustGenerate(t, cfg)

	s := uniform.New(cfg.Seed)
	for i, v := range g.Values() {
		if want := s.Float64(cfg.Low, cfg.High); v != want {
			t.Errorf("cell %d = %v, want %v", i, v, want)
		}
	}
}

func TestPassHook(t *testing.T) {
	cfg := goldenConfig()
	cfg.Iterations = 3

	var passes, steps []int
	mustGenerate(t, cfg, WithPassHook(func(pass, step int) {
		passes = append(passes, pass)
		steps = append(steps, step)
	}))

	wantSteps := []int{8, 4, 2}
	if len(steps) != len(wantSteps) {
		t.Fatalf("hook called %d times, want %d", len(steps), len(wantSteps))
	}
	for i := range wantSteps {
		if passes[i] != i+1 || steps[i] != wantSteps[i] {
			t.Errorf("call %d = (pass %d, step %d), want (pass %d, step %d)",
				i, passes[i], steps[i], i+1, wantSteps[i])
		}
	}
}

func TestHookDoesNotChangeOutput(t *testing.T) {
	cfg := goldenConfig()
	a := mustGenerate(t, cfg)
	b := mustGenerate(t, cfg, WithPassHook(func(int, int) {}))
	if !a.Equal(b) {
		t.Error("registering a pass hook changed the output")
	}
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"roughness below one", func(c *Config) { c.Roughness = 0.9 }},
		{"roughness NaN", func(c *Config) { c.Roughness = math.NaN() }},
		{"roughness infinite", func(c *Config) { c.Roughness = math.Inf(1) }},
		{"zero width", func(c *Config) { c.BaseWidth = 0 }},
		{"negative height", func(c *Config) { c.BaseHeight = -1 }},
		{"negative iterations", func(c *Config) { c.Iterations = -1 }},
		{"iterations at bound", func(c *Config) { c.Iterations = terrain.MaxIterations }},
		{"grid too large", func(c *Config) { c.Iterations = 20 }},
		{"empty interval", func(c *Config) { c.Low, c.High = 1, 1 }},
		{"inverted interval", func(c *Config) { c.Low, c.High = 1, -1 }},
		{"infinite bound", func(c *Config) { c.High = math.Inf(1) }},
		{"jitter overflows", func(c *Config) { c.Roughness, c.Low, c.High = 1e200, -1e200, 1e200 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := goldenConfig()
			tt.modify(&cfg)

			if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() error = %v, want %s", err, errors.ErrCodeInvalidConfig)
			}
			gen, err := New(cfg)
			if gen != nil || !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("New() = (%v, %v), want INVALID_CONFIG", gen, err)
			}
		})
	}
}

func TestExtremeIntervalStaysFinite(t *testing.T) {
	cfg := goldenConfig()
	cfg.Roughness = 1
	cfg.Low, cfg.High = 1e308, 1.7e308

	g := mustGenerate(t, cfg)
	for i, v := range g.Values() {
		if math.IsInf(v, 0) || v < cfg.Low || v > cfg.High {
			t.Fatalf("cell %d = %g, want finite value in [%g, %g]", i, v, cfg.Low, cfg.High)
		}
	}
	if r := g.Range(); math.IsInf(r.End, 0) || math.IsInf(r.Start, 0) {
		t.Errorf("Range() = %+v, want finite bounds", r)
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestOutOfBoundsAccess(t *testing.T) {
	g := mustGenerate(t, goldenConfig())
	w, _ := g.Size()
	if _, err := g.At(w, 0); !errors.Is(err, errors.ErrCodeOutOfBounds) {
		t.Errorf("At(width, 0) error = %v, want %s", err, errors.ErrCodeOutOfBounds)
	}
}

func BenchmarkGenerate(b *testing.B) {
	cfg := goldenConfig()
	cfg.Iterations = 7
	gen, err := New(cfg)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gen.Generate()
	}
}
