package terrain

import (
	"math"
	"slices"

	"github.com/matzehuels/terrain/pkg/errors"
)

// Grid is a finished heightfield: a width×height row-major array of
// elevations and the range used to normalize them.
type Grid struct {
	width, height int
	cells         []float64
	rng           Range
}

// FromValues wraps values, laid out row-major, in a Grid of the given size.
// The range is computed from the values. The slice is copied.
func FromValues(width, height int, values []float64) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"grid dimensions must be positive, got %dx%d", width, height)
	}
	if width > MaxCells/height {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"grid of %dx%d exceeds %d cells", width, height, MaxCells)
	}
	if len(values) != width*height {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"grid of %dx%d needs %d values, got %d", width, height, width*height, len(values))
	}
	g := &Grid{width: width, height: height, cells: slices.Clone(values)}
	g.Recompute()
	return g, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Size returns (width, height).
func (g *Grid) Size() (int, int) { return g.width, g.height }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.cells) }

// Range returns the current normalization range.
func (g *Grid) Range() Range { return g.rng }

// At returns the value at column x, row y.
// It fails with OUT_OF_BOUNDS if the coordinates lie outside the grid.
func (g *Grid) At(x, y int) (float64, error) {
	if !g.inBounds(x, y) {
		return 0, errors.New(errors.ErrCodeOutOfBounds,
			"(%d, %d) is out of bounds (%d, %d)", x, y, g.width, g.height)
	}
	return g.at(x, y), nil
}

// NormalizedAt is At followed by Normalize.
func (g *Grid) NormalizedAt(x, y int) (float64, error) {
	v, err := g.At(x, y)
	if err != nil {
		return 0, err
	}
	return g.Normalize(v), nil
}

func (g *Grid) at(x, y int) float64 { return g.cells[y*g.width+x] }

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// Row returns a copy of row y.
func (g *Grid) Row(y int) ([]float64, error) {
	if y < 0 || y >= g.height {
		return nil, errors.New(errors.ErrCodeOutOfBounds,
			"row %d is out of bounds (%d)", y, g.height)
	}
	return slices.Clone(g.cells[y*g.width : (y+1)*g.width]), nil
}

// Values returns a row-major copy of every cell.
func (g *Grid) Values() []float64 { return slices.Clone(g.cells) }

// Normalize maps v linearly onto [0, 1] relative to the grid's range.
// It returns NaN when the range is degenerate (Start == End).
func (g *Grid) Normalize(v float64) float64 {
	span := g.rng.Span()
	if span == 0 {
		return math.NaN()
	}
	return (v - g.rng.Start) / span
}

// SetMin moves the lower normalization bound to v.
// It fails with INVALID_RANGE unless v is below the current upper bound.
func (g *Grid) SetMin(v float64) error {
	if !(v < g.rng.End) {
		return errors.New(errors.ErrCodeInvalidRange,
			"new minimum height %g is not lower than current maximum height %g", v, g.rng.End)
	}
	g.rng.Start = v
	return nil
}

// SetMax moves the upper normalization bound to v.
// It fails with INVALID_RANGE unless v is above the current lower bound.
func (g *Grid) SetMax(v float64) error {
	if !(v > g.rng.Start) {
		return errors.New(errors.ErrCodeInvalidRange,
			"new maximum height %g is not higher than current minimum height %g", v, g.rng.Start)
	}
	g.rng.End = v
	return nil
}

// SetRange replaces both bounds at once. r must satisfy Start < End.
func (g *Grid) SetRange(r Range) error {
	if !r.Valid() {
		return errors.New(errors.ErrCodeInvalidRange,
			"range start %g is not lower than range end %g", r.Start, r.End)
	}
	g.rng = r
	return nil
}

// MapHeight replaces every cell v with f(v). The range is left unchanged.
func (g *Grid) MapHeight(f func(float64) float64) {
	for i, v := range g.cells {
		g.cells[i] = f(v)
	}
}

// Recompute resets the range to the true minimum and maximum of the cells.
func (g *Grid) Recompute() {
	var t Tracker
	for _, v := range g.cells {
		t.Observe(v)
	}
	g.rng = t.Range()
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	return &Grid{width: g.width, height: g.height, cells: slices.Clone(g.cells), rng: g.rng}
}

// Equal reports whether g and o have the same size, range and bit-identical cells.
func (g *Grid) Equal(o *Grid) bool {
	if g.width != o.width || g.height != o.height || g.rng != o.rng {
		return false
	}
	for i, v := range g.cells {
		if math.Float64bits(v) != math.Float64bits(o.cells[i]) {
			return false
		}
	}
	return true
}
