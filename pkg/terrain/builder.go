package terrain

// Generator is implemented by the subdivision engines.
type Generator interface {
	// Size returns the dimensions of the grids Generate produces.
	Size() (width, height int)
	// Generate runs the engine to completion. It cannot fail: engines
	// validate their configuration when they are constructed.
	Generate() *Grid
}

// PassFunc is called by the engines after each subdivision pass.
// pass counts from 1; step is the lattice spacing the pass worked at.
type PassFunc func(pass, step int)

// Builder is the write side of a Grid used by the engines while generating.
//
// Get and Set do not return errors. Callers derive coordinates from loop
// bounds that keep them inside the grid; an out-of-range coordinate is a
// programming error and panics on the slice access.
type Builder struct {
	width, height int
	cells         []float64
	tracker       Tracker
}

// NewBuilder allocates a zeroed width×height builder.
func NewBuilder(width, height int) *Builder {
	return &Builder{width: width, height: height, cells: make([]float64, width*height)}
}

// Width returns the number of columns.
func (b *Builder) Width() int { return b.width }

// Height returns the number of rows.
func (b *Builder) Height() int { return b.height }

// Get returns the value at (x, y).
func (b *Builder) Get(x, y int) float64 { return b.cells[y*b.width+x] }

// Set writes v at (x, y) and records it in the range tracker.
func (b *Builder) Set(x, y int, v float64) {
	b.cells[y*b.width+x] = v
	b.tracker.Observe(v)
}

// Grid hands the cells and observed range over to a Grid.
// The builder must not be used afterwards.
func (b *Builder) Grid() *Grid {
	g := &Grid{width: b.width, height: b.height, cells: b.cells, rng: b.tracker.Range()}
	b.cells = nil
	return g
}
