package sampler

import "math/rand/v2"

import "github.com/pkg/errors"

// SearchRank returns the smallest rank position k with r <= a[k]. A search
// running past the end of the table, which float rounding can cause for r
// close to 1, is clamped to the last rank. It returns -1 for an empty table.
func SearchRank(a []float64, r float64) int {
	begin, end := 0, len(a)
	for begin < end {
		mid := (begin + end) / 2
		if r <= a[mid] {
			end = mid
		} else {
			begin = mid + 1
		}
	}
	if begin == len(a) {
		begin--
	}
	return begin
}

// SampleIndex maps the draw r through the cumulative table a to a rank
// position, and the rank position through indices to an example index.
func SampleIndex(a []float64, indices []int, r float64) int {
	return indices[SearchRank(a, r)]
}

// Sampler draws example indices with replacement from a cumulative table.
type Sampler struct {
	rnd *rand.Rand
}

// New creates a sampler. Seed 0 seeds from the runtime's random source.
func New(seed uint64) *Sampler {
	if seed == 0 {
		return &Sampler{rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	return &Sampler{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Float64 draws uniformly from [0, 1).
func (s *Sampler) Float64() float64 {
	return s.rnd.Float64()
}

// Batch draws size example indices independently. The same example can be drawn more than once.
func (s *Sampler) Batch(size int, d *Distribution, r *Ranks) ([]int, error) {
	if d == nil || r == nil || len(d.A) == 0 {
		return nil, errors.Wrap(ErrDegenerateDistribution, "sampling from an empty table")
	}
	if len(d.A) != len(r.Indices) {
		return nil, errors.Errorf("cumulative table has %d ranks, rank table has %d", len(d.A), len(r.Indices))
	}
	out := make([]int, size)
	for i := range out {
		out[i] = SampleIndex(d.A, r.Indices, s.rnd.Float64())
	}
	return out, nil
}
