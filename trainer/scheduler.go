package trainer

import "github.com/neurlang/enzyme/datasets"
import "github.com/neurlang/enzyme/loss"
import "github.com/neurlang/enzyme/sampler"

// Event is what the scheduler does before a step.
type Event int

const (
	None      Event = iota
	Rerank          // rebuild the rank table from the current losses
	Recompute       // refresh the top ranked losses, then rebuild ranks and probabilities
)

func (e Event) String() string {
	switch e {
	case Rerank:
		return "rerank"
	case Recompute:
		return "recompute"
	}
	return "none"
}

// Scheduler decides on which steps losses are re-ranked or recomputed. Steps
// are numbered from 1 and keep counting across epochs.
type Scheduler struct {
	PeriodOfSort              int
	RecomputationFreqPerEpoch int
}

// Due returns the event for step. A recompute includes a re-rank, so it wins
// when both are due.
func (s Scheduler) Due(step int) Event {
	if step%s.RecomputationFreqPerEpoch == 0 {
		return Recompute
	}
	if step%s.PeriodOfSort == 0 {
		return Rerank
	}
	return None
}

// ranking is the loss vector of an epoch with the tables built from it.
type ranking struct {
	loss  []float64
	ranks *sampler.Ranks
	dist  *sampler.Distribution
}

// recompute predicts the examples at the first m rank positions afresh,
// patches their losses and rebuilds the tables. It returns the refreshed rows.
// Ranks are ascending, so these are the most sampled ranks, whose cached
// losses age fastest, not the highest loss examples.
func (t *Trainer) recompute(r *ranking, m int, oracle loss.Func, st State) ([]int, error) {
	rows := r.ranks.Top(m)
	subset, err := t.Data.Gather(rows)
	if err != nil {
		return nil, &StageError{Stage: StagePredict, Epoch: st.Epoch, Step: st.Step, Err: err}
	}
	pred, err := t.predict(subset.Inputs)
	if err != nil {
		return nil, &StageError{Stage: StagePredict, Epoch: st.Epoch, Step: st.Step, Err: err}
	}
	fresh, err := oracle(pred, subset.Labels[t.Policy.Task])
	if err != nil {
		return nil, &StageError{Stage: StageOracle, Epoch: st.Epoch, Step: st.Step, Err: err}
	}
	for j, i := range rows {
		r.loss[i] = fresh[j]
	}
	r.ranks.Rebuild(r.loss)
	if err := r.dist.Rebuild(r.ranks.Sorted()); err != nil {
		return nil, &StageError{Stage: StageProbability, Epoch: st.Epoch, Step: st.Step, Err: err}
	}
	return rows, nil
}

// rank computes the full loss vector of the set and builds fresh tables.
func (t *Trainer) rank(set *datasets.Set, oracle loss.Func, st State) (*ranking, error) {
	pred, err := t.predict(set.Inputs)
	if err != nil {
		return nil, &StageError{Stage: StagePredict, Epoch: st.Epoch, Step: st.Step, Err: err}
	}
	l, err := oracle(pred, set.Labels[t.Policy.Task])
	if err != nil {
		return nil, &StageError{Stage: StageOracle, Epoch: st.Epoch, Step: st.Step, Err: err}
	}
	// owned copy, never an alias of the oracle output
	r := &ranking{loss: append([]float64(nil), l...)}
	r.ranks = sampler.NewRanks(r.loss)
	r.dist, err = sampler.Build(r.ranks.Sorted())
	if err != nil {
		return nil, &StageError{Stage: StageProbability, Epoch: st.Epoch, Step: st.Step, Err: err}
	}
	return r, nil
}
