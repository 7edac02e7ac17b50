package sampler

import "fmt"
import "math"

import "github.com/pkg/errors"
import "gonum.org/v1/gonum/floats"
import "gonum.org/v1/gonum/stat"

// ErrDegenerateDistribution is returned when the rank weights cannot be normalized.
var ErrDegenerateDistribution = errors.New("degenerate distribution")

// Distribution is the probability table P and the cumulative table A, both
// aligned to rank position.
type Distribution struct {
	P []float64
	A []float64
}

// Build computes the rank-based distribution of the losses in rank order.
// Rank k (1-based) of N gets weight sorted[k]^(-k/N) before normalization.
// Ranks holding equal losses share their weight evenly.
func Build(sorted []float64) (*Distribution, error) {
	d := new(Distribution)
	if err := d.Rebuild(sorted); err != nil {
		return nil, err
	}
	return d, nil
}

// Rebuild recomputes the distribution in place.
func (d *Distribution) Rebuild(sorted []float64) error {
	n := len(sorted)
	if n == 0 {
		return errors.Wrap(ErrDegenerateDistribution, "empty loss vector")
	}
	for k, l := range sorted {
		if !(l > 0) || math.IsInf(l, 0) {
			return errors.Wrapf(ErrDegenerateDistribution, "loss %v at rank %d (%s)", l, k, Summary(sorted))
		}
	}
	if cap(d.P) < n {
		d.P = make([]float64, n)
		d.A = make([]float64, n)
	}
	d.P = d.P[:n]
	d.A = d.A[:n]

	for k, l := range sorted {
		d.P[k] = math.Exp(-float64(k+1) / float64(n) * math.Log(l))
	}
	shareTies(d.P, sorted)
	sum := floats.Sum(d.P)
	if sum == 0 || math.IsInf(sum, 0) || math.IsNaN(sum) {
		return errors.Wrapf(ErrDegenerateDistribution, "weight sum %v (%s)", sum, Summary(sorted))
	}
	floats.Scale(1/sum, d.P)
	floats.CumSum(d.A, d.P)
	d.A[n-1] = 1
	return nil
}

// shareTies gives every run of equal losses the mean weight of the ranks it
// spans, so equally hard examples are equally likely to be drawn.
func shareTies(w, sorted []float64) {
	for begin := 0; begin < len(sorted); {
		end := begin + 1
		for end < len(sorted) && sorted[end] == sorted[begin] {
			end++
		}
		if end-begin > 1 {
			mean := floats.Sum(w[begin:end]) / float64(end-begin)
			for k := begin; k < end; k++ {
				w[k] = mean
			}
		}
		begin = end
	}
}

// Summary formats count, min, max and mean of a loss vector for error messages and logs.
func Summary(loss []float64) string {
	if len(loss) == 0 {
		return "n=0"
	}
	return fmt.Sprintf("n=%d min=%g max=%g mean=%g", len(loss), floats.Min(loss), floats.Max(loss), stat.Mean(loss, nil))
}
