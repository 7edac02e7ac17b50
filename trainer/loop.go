package trainer

import "fmt"
import "log/slog"

import "github.com/pkg/errors"

import "github.com/neurlang/enzyme/datasets"
import "github.com/neurlang/enzyme/loss"
import "github.com/neurlang/enzyme/provenance"
import "github.com/neurlang/enzyme/sampler"

// Model is what the trainer needs from a learnable model.
type Model interface {

	// Predict infers outputs of every input, one array per task indexed [task][example][class].
	Predict(inputs []datasets.Input) ([][][]float64, error)

	// TrainOnBatch performs one synchronous update on a batch. Labels are indexed [task][example][class].
	TrainOnBatch(inputs []datasets.Input, labels [][][]float64) error
}

// Stage names the part of a step that failed.
type Stage string

const (
	StageOracle      Stage = "oracle"
	StageProbability Stage = "probability"
	StageSampling    Stage = "sampling"
	StageUpdate      Stage = "update"
	StagePredict     Stage = "predict"
)

// StageError is a fatal training failure. Updates applied before it are kept.
type StageError struct {
	Stage Stage
	Epoch int
	Step  int
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed at epoch %d step %d: %v", e.Stage, e.Epoch, e.Step, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// State is the position of the loop. Step counts across epochs.
type State struct {
	Epoch int
	Step  int
}

// Stats counts what happened during a run.
type Stats struct {
	Epochs      int
	Steps       int
	Reranks     int
	Recomputes  int
	OracleCalls int
	Refreshed   int // examples whose loss was recomputed mid epoch
}

// Trainer trains Model on Data drawing batches by loss rank.
type Trainer struct {
	Policy Policy
	Model  Model
	Data   *datasets.Set

	Frame      *datasets.Frame // identifying columns of Data, needed by Sink
	Sink       provenance.Sink // optional, closed when Train returns
	LogColumns []string        // Frame columns written to Sink

	Oracle  loss.Func    // loss.BinaryEntropy when nil
	Logger  *slog.Logger // slog.Default() when nil
	OnEpoch func(epoch int, stats Stats)
}

func (t *Trainer) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default().With("component", "trainer")
}

// predict returns the outputs of the task that drives sampling.
func (t *Trainer) predict(inputs []datasets.Input) ([][]float64, error) {
	pred, err := t.Model.Predict(inputs)
	if err != nil {
		return nil, err
	}
	if t.Policy.Task >= len(pred) {
		return nil, errors.Wrapf(loss.ErrShapeMismatch, "model predicted %d tasks, sampling uses task %d", len(pred), t.Policy.Task)
	}
	return pred[t.Policy.Task], nil
}

func (t *Trainer) validate() error {
	if t.Model == nil {
		return errors.Wrap(ErrConfiguration, "no model")
	}
	if t.Data == nil {
		return errors.Wrap(ErrConfiguration, "no training data")
	}
	if err := t.Data.Validate(); err != nil {
		return errors.Wrap(ErrConfiguration, err.Error())
	}
	if t.Sink != nil {
		if t.Frame == nil || len(t.LogColumns) == 0 {
			return errors.Wrap(ErrConfiguration, "provenance needs a training frame and log_columns")
		}
		if len(t.Frame.Rows) != t.Data.Len() {
			return errors.Wrapf(ErrConfiguration, "training frame has %d rows for %d examples", len(t.Frame.Rows), t.Data.Len())
		}
		if _, err := t.Frame.Select(nil, t.LogColumns); err != nil {
			return errors.Wrap(ErrConfiguration, err.Error())
		}
	}
	return t.Policy.Validate(t.Data.Len(), t.Data.Tasks())
}

// Train runs every epoch of the policy. It stops at the first failure, which
// is a *StageError; configuration problems are reported before any work.
func (t *Trainer) Train() (stats Stats, err error) {
	log := t.logger()
	if err := t.validate(); err != nil {
		if t.Sink != nil {
			t.Sink.Close()
		}
		return stats, err
	}
	var oracle = t.Oracle
	if oracle == nil {
		oracle = loss.BinaryEntropy
	}
	var sink = t.Sink
	defer func() {
		if sink != nil {
			if cerr := sink.Close(); cerr != nil {
				log.Warn("closing provenance sink", "err", cerr)
			}
		}
	}()

	var (
		n           = t.Data.Len()
		batchLength = t.Policy.BatchLength(n)
		refresh     = t.Policy.Refresh(n)
		sched       = Scheduler{PeriodOfSort: t.Policy.PeriodOfSort, RecomputationFreqPerEpoch: t.Policy.RecomputationFreqPerEpoch}
		draw        = sampler.New(t.Policy.Seed)
		st          State
	)
	log.Info("training", "examples", n, "batch_length", batchLength, "epochs", t.Policy.Epochs, "refresh", refresh)

	for epoch := 0; epoch < t.Policy.Epochs; epoch++ {
		st.Epoch = epoch
		r, err := t.rank(t.Data, oracle, st)
		if err != nil {
			return stats, err
		}
		stats.OracleCalls++
		log.Info("epoch start", "epoch", epoch, "loss", sampler.Summary(r.loss))

		for b := 0; b < batchLength; b++ {
			st.Step++
			switch sched.Due(st.Step) {
			case Recompute:
				rows, err := t.recompute(r, refresh, oracle, st)
				if err != nil {
					return stats, err
				}
				stats.OracleCalls++
				stats.Recomputes++
				stats.Refreshed += len(rows)
				log.Debug("recomputed", "step", st.Step, "examples", len(rows))
			case Rerank:
				r.ranks.Rebuild(r.loss)
				stats.Reranks++
				log.Debug("reranked", "step", st.Step)
			}

			rows, err := draw.Batch(t.Policy.BatchSize, r.dist, r.ranks)
			if err != nil {
				return stats, &StageError{Stage: StageSampling, Epoch: st.Epoch, Step: st.Step, Err: err}
			}
			batch, err := t.Data.Gather(rows)
			if err != nil {
				return stats, &StageError{Stage: StageSampling, Epoch: st.Epoch, Step: st.Step, Err: err}
			}
			if err := t.Model.TrainOnBatch(batch.Inputs, batch.Labels); err != nil {
				return stats, &StageError{Stage: StageUpdate, Epoch: st.Epoch, Step: st.Step, Err: err}
			}
			if sink != nil {
				if err := t.record(sink, rows, st); err != nil {
					log.Warn("provenance disabled", "epoch", st.Epoch, "step", st.Step, "err", err)
					sink.Close()
					sink = nil
				}
			}
			stats.Steps++
		}
		stats.Epochs++
		log.Info("epoch done", "epoch", epoch, "steps", stats.Steps, "recomputes", stats.Recomputes, "reranks", stats.Reranks)
		if t.OnEpoch != nil {
			t.OnEpoch(epoch, stats)
		}
	}
	return stats, nil
}

func (t *Trainer) record(sink provenance.Sink, rows []int, st State) error {
	values, err := t.Frame.Select(rows, t.LogColumns)
	if err != nil {
		return errors.Wrap(provenance.ErrIO, err.Error())
	}
	return sink.Append(provenance.Batch{
		Epoch:   st.Epoch,
		Step:    st.Step,
		Indices: rows,
		Columns: t.LogColumns,
		Rows:    values,
	})
}
