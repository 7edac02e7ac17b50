package sampler

import "gonum.org/v1/gonum/floats"

// Ranks is a rank table over the loss vector. Indices maps rank position to
// example index, ascending by loss. Reverse maps example index to rank position.
// The two slices are always rebuilt together and are mutual inverses.
type Ranks struct {
	Indices []int
	Reverse []int

	sorted []float64
}

// NewRanks builds the rank table of loss.
func NewRanks(loss []float64) *Ranks {
	r := new(Ranks)
	r.Rebuild(loss)
	return r
}

// Rebuild re-sorts the rank table from loss in place. Ties keep example order,
// so rebuilding from an unmodified loss vector yields identical tables.
func (r *Ranks) Rebuild(loss []float64) {
	n := len(loss)
	if cap(r.Indices) < n {
		r.Indices = make([]int, n)
		r.Reverse = make([]int, n)
		r.sorted = make([]float64, n)
	}
	r.Indices = r.Indices[:n]
	r.Reverse = r.Reverse[:n]
	r.sorted = r.sorted[:n]

	copy(r.sorted, loss)
	for i := range r.Indices {
		r.Indices[i] = i
	}
	floats.ArgsortStable(r.sorted, r.Indices)
	for k, i := range r.Indices {
		r.Reverse[i] = k
	}
}

// Len returns the number of ranked examples.
func (r *Ranks) Len() int {
	return len(r.Indices)
}

// Sorted returns the losses in rank order, as seen at the last rebuild.
// The slice is owned by the rank table.
func (r *Ranks) Sorted() []float64 {
	return r.sorted
}

// Top returns the example indices at rank positions 0..m-1.
func (r *Ranks) Top(m int) []int {
	if m > len(r.Indices) {
		m = len(r.Indices)
	}
	if m < 0 {
		m = 0
	}
	return append([]int(nil), r.Indices[:m]...)
}
