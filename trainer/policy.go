package trainer

import "github.com/pkg/errors"

// ErrConfiguration reports a policy that cannot drive a run.
var ErrConfiguration = errors.New("configuration error")

// Policy holds the training policy. It is built once per run and not modified.
type Policy struct {
	BatchSize                 int     // examples per mini-batch
	Epochs                    int     // number of epochs
	PeriodOfSort              int     // re-rank every this many steps
	RecomputationFreqPerEpoch int     // recompute stale losses every this many steps
	RatioOfRecomputation      float64 // fraction of examples refreshed by a recompute
	Task                      int     // task head whose loss drives sampling
	Seed                      uint64  // sampling seed, 0 is random
}

// BatchLength returns the number of steps per epoch over n examples.
func (p Policy) BatchLength(n int) int {
	if p.BatchSize <= 0 {
		return 0
	}
	return n / p.BatchSize
}

// Refresh returns how many examples a recompute refreshes out of n, at least one.
func (p Policy) Refresh(n int) int {
	m := int(float64(n) * p.RatioOfRecomputation)
	if m < 1 {
		m = 1
	}
	if m > n {
		m = n
	}
	return m
}

// Validate checks the policy against a training set of n examples and tasks heads.
func (p Policy) Validate(n, tasks int) error {
	switch {
	case p.BatchSize <= 0:
		return errors.Wrapf(ErrConfiguration, "batch_size must be positive, got %d", p.BatchSize)
	case p.Epochs <= 0:
		return errors.Wrapf(ErrConfiguration, "epochs must be positive, got %d", p.Epochs)
	case p.PeriodOfSort <= 0:
		return errors.Wrapf(ErrConfiguration, "period_of_sort must be positive, got %d", p.PeriodOfSort)
	case p.RecomputationFreqPerEpoch <= 0:
		return errors.Wrapf(ErrConfiguration, "recomputation_freq_per_epoch must be positive, got %d", p.RecomputationFreqPerEpoch)
	case !(p.RatioOfRecomputation > 0 && p.RatioOfRecomputation <= 1):
		return errors.Wrapf(ErrConfiguration, "ratio_of_recomputation must be in (0, 1], got %v", p.RatioOfRecomputation)
	case p.Task < 0 || p.Task >= tasks:
		return errors.Wrapf(ErrConfiguration, "task %d out of range, the data has %d tasks", p.Task, tasks)
	case p.BatchLength(n) == 0:
		return errors.Wrapf(ErrConfiguration, "batch_length is zero: %d examples, batch_size %d", n, p.BatchSize)
	}
	return nil
}
