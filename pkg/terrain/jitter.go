package terrain

import "github.com/matzehuels/terrain/pkg/terrain/uniform"

// Jitter perturbs interpolated values by a random factor in [1/roughness, roughness).
type Jitter struct {
	sampler   *uniform.Sampler
	roughness float64
	inverse   float64
}

// NewJitter returns a Jitter drawing from s. roughness must have passed
// ValidateRoughness.
func NewJitter(s *uniform.Sampler, roughness float64) Jitter {
	return Jitter{sampler: s, roughness: roughness, inverse: 1 / roughness}
}

// Apply returns avg scaled by a fresh factor. With roughness 1 it returns avg
// unchanged and consumes nothing from the stream.
func (j Jitter) Apply(avg float64) float64 {
	// Exact compare: roughness is the configured value, never computed.
	if j.roughness == 1 {
		return avg
	}
	return avg * j.sampler.Float64(j.inverse, j.roughness)
}

// Average2 returns the jittered mean of a and b.
func (j Jitter) Average2(a, b float64) float64 {
	return j.Apply(Mean([]float64{a, b}))
}

// AverageN returns the jittered mean of the first n values of vs.
func (j Jitter) AverageN(vs *[4]float64, n int) float64 {
	return j.Apply(Mean(vs[:n]))
}

// Mean returns the arithmetic mean of vs, which must not be empty.
// Values are scaled by 1/4 before summing so that means of finite values
// near ±MaxFloat64 stay finite. Scaling by a power of two is exact, so for
// normal values the result equals sum/len.
func Mean(vs []float64) float64 {
	var q float64
	for _, v := range vs {
		q += v / 4
	}
	return q / float64(len(vs)) * 4
}
