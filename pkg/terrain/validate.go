package terrain

import (
	"math"

	"github.com/matzehuels/terrain/pkg/errors"
)

const (
	// MaxIterations bounds the iteration count. Each iteration doubles the
	// grid side, so the count is exclusive: valid values are 0..MaxIterations-1.
	MaxIterations = 30

	// MaxCells bounds the total number of cells an engine may allocate.
	MaxCells = 1 << 28
)

// ValidateBase checks a base dimension (width, height or length).
func ValidateBase(name string, v int) error {
	if v <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "%s must be positive, got %d", name, v)
	}
	if v > MaxCells {
		return errors.New(errors.ErrCodeInvalidConfig, "%s must be at most %d, got %d", name, MaxCells, v)
	}
	return nil
}

// ValidateIterations checks that n is in [0, MaxIterations).
func ValidateIterations(n int) error {
	if n < 0 || n >= MaxIterations {
		return errors.New(errors.ErrCodeInvalidConfig,
			"iterations must be in [0, %d), got %d", MaxIterations, n)
	}
	return nil
}

// ValidateRoughness checks that r is finite and at least 1.
// A roughness of exactly 1 disables jitter.
func ValidateRoughness(r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "roughness must be finite, got %g", r)
	}
	if r < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "roughness must be at least 1.0, got %g", r)
	}
	return nil
}

// ValidateInterval checks that [lo, hi) is a finite, non-empty interval.
func ValidateInterval(lo, hi float64) error {
	for _, v := range []float64{lo, hi} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidConfig, "value interval bounds must be finite, got [%g, %g)", lo, hi)
		}
	}
	if lo >= hi {
		return errors.New(errors.ErrCodeInvalidConfig, "value interval low %g must be below high %g", lo, hi)
	}
	return nil
}

// ValidateGrowth checks that jitter applied over the given number of
// sequential passes cannot push a value seeded in [lo, hi) past
// ±MaxFloat64. Each pass can scale a magnitude by at most roughness.
func ValidateGrowth(lo, hi, roughness float64, passes int) error {
	m := max(math.Abs(lo), math.Abs(hi))
	if m == 0 || roughness == 1 {
		return nil
	}
	if math.Log(m)+float64(passes)*math.Log(roughness) >= math.Log(math.MaxFloat64) {
		return errors.New(errors.ErrCodeInvalidConfig,
			"roughness %g over %d passes overflows values seeded in [%g, %g)", roughness, passes, lo, hi)
	}
	return nil
}

// FinalSize returns the number of cells along one axis after subdividing
// base cells n times: base*2^n + 1. It fails with INVALID_CONFIG when the
// axis alone would exceed MaxCells. base and n must already be validated.
func FinalSize(name string, base, n int) (int, error) {
	if base > (MaxCells-1)>>n {
		return 0, errors.New(errors.ErrCodeInvalidConfig,
			"%s %d with %d iterations exceeds the limit of %d cells", name, base, n, MaxCells)
	}
	return base<<n + 1, nil
}

// ValidateSize checks that a width×height grid stays within MaxCells.
func ValidateSize(width, height int) error {
	if width > MaxCells || height > MaxCells || width > MaxCells/height {
		return errors.New(errors.ErrCodeInvalidConfig,
			"grid of %dx%d exceeds the limit of %d cells", width, height, MaxCells)
	}
	return nil
}
