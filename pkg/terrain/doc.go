// Package terrain holds heightfields produced by fractal subdivision.
//
// # Overview
//
// A heightfield is a dense, row-major grid of float64 elevations together with
// the range of values observed while it was generated. The two engines in the
// subpackages produce them:
//
//   - [diamondsquare]: two-dimensional diamond-square subdivision
//   - [midpoint]: one-dimensional midpoint displacement (a grid of height 1)
//
// Both engines share the pieces defined here: the validation rules for their
// configuration, the [Tracker] that records the observed range, the [Jitter]
// that perturbs interpolated values, and the [Builder] they write into before
// handing over a finished [Grid].
//
// # Grid
//
// [Grid] is the consumer-facing container. Reads are bounds-checked:
//
//	v, err := g.At(x, y)
//	if errors.Is(err, errors.ErrCodeOutOfBounds) {
//	    // x or y outside the grid
//	}
//
// [Grid.Normalize] maps a value linearly onto [0, 1] relative to the tracked
// range, which is what image exporters use. The range may be widened or
// narrowed afterwards with [Grid.SetMin] and [Grid.SetMax]; both reject any
// bound that would break Start < End with an INVALID_RANGE error.
//
// [Grid.MapHeight] rewrites every cell in place. It does not touch the range;
// call [Grid.Recompute] if the new values should define it.
//
// # Edges and jitter
//
// Generated grids use non-wrapping "landscape" edges: a grid built from a base
// of N cells with n iterations has N*2^n + 1 cells per axis, and neighbors
// that fall outside the grid are left out of averages. Interpolated values are
// multiplied by a factor drawn from [1/roughness, roughness); a roughness of
// exactly 1 disables the jitter and yields plain averages.
//
// # Concurrency
//
// A finished Grid may be read from multiple goroutines. SetMin, SetMax,
// SetRange, MapHeight and Recompute require exclusive access.
//
// [diamondsquare]: github.com/matzehuels/terrain/pkg/terrain/diamondsquare
// [midpoint]: github.com/matzehuels/terrain/pkg/terrain/midpoint
package terrain
