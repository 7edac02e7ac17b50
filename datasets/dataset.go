// Package datasets implements the in-memory training set types shared by the
// dataset providers, the model and the trainer
package datasets

import "github.com/pkg/errors"

// Input is one encoded sequence: ordinal n-gram codes, 0 is padding.
type Input []uint32

// Set holds encoded inputs and one label array per task. Labels[t][i] is the
// label vector (one-hot or multi-hot) of example i for task t.
type Set struct {
	Inputs []Input
	Labels [][][]float64
}

// Len returns the number of examples.
func (s *Set) Len() int {
	return len(s.Inputs)
}

// Tasks returns the number of task heads.
func (s *Set) Tasks() int {
	return len(s.Labels)
}

// Gather copies the examples at rows into a new set, keeping every task's labels.
// Rows can repeat.
func (s *Set) Gather(rows []int) (*Set, error) {
	out := &Set{
		Inputs: make([]Input, len(rows)),
		Labels: make([][][]float64, len(s.Labels)),
	}
	for t := range s.Labels {
		out.Labels[t] = make([][]float64, len(rows))
	}
	for j, i := range rows {
		if i < 0 || i >= len(s.Inputs) {
			return nil, errors.Errorf("row %d out of range [0, %d)", i, len(s.Inputs))
		}
		out.Inputs[j] = s.Inputs[i]
		for t := range s.Labels {
			out.Labels[t][j] = s.Labels[t][i]
		}
	}
	return out, nil
}

// Validate checks that every task has one label row per input.
func (s *Set) Validate() error {
	for t, labels := range s.Labels {
		if len(labels) != len(s.Inputs) {
			return errors.Errorf("task %d has %d label rows for %d inputs", t, len(labels), len(s.Inputs))
		}
	}
	return nil
}
