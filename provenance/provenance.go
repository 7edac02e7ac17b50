// Package provenance records which training examples every batch selected
package provenance

import "log/slog"

import "github.com/pkg/errors"

// ErrIO marks a failed provenance write. The trainer treats it as non-fatal.
var ErrIO = errors.New("provenance write failed")

// Batch is the selection of one training step. Rows[j] holds the Columns of
// the example at Indices[j].
type Batch struct {
	Epoch   int
	Step    int
	Indices []int
	Columns []string
	Rows    [][]string
}

// Sink receives the batches selected during training.
type Sink interface {
	Append(b Batch) error
	Close() error
}

type multi struct {
	sinks []Sink
	log   *slog.Logger
}

// Multi fans batches out to every sink. A sink that fails is closed and
// dropped while the others keep recording; Append reports ErrIO only once no
// sink is left.
func Multi(sinks ...Sink) Sink {
	return &multi{sinks: sinks, log: slog.Default().With("component", "provenance")}
}

func (m *multi) Append(b Batch) error {
	var kept = m.sinks[:0]
	var last error
	for _, s := range m.sinks {
		if err := s.Append(b); err != nil {
			m.log.Warn("provenance sink dropped", "epoch", b.Epoch, "step", b.Step, "err", err)
			s.Close()
			last = err
			continue
		}
		kept = append(kept, s)
	}
	m.sinks = kept
	if len(m.sinks) == 0 {
		if last == nil {
			return errors.Wrap(ErrIO, "no provenance sink left")
		}
		return last
	}
	return nil
}

func (m *multi) Close() error {
	var first error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	m.sinks = nil
	return first
}

// Open opens the tab separated log at tsvPath and the SQLite log at dbPath,
// skipping empty paths. A log that cannot be opened is reported on log and
// left out. It returns nil when no log is open.
func Open(log *slog.Logger, tsvPath, dbPath, configJSON string) Sink {
	var sinks []Sink
	if tsvPath != "" {
		tsv, err := CreateTSV(tsvPath)
		if err != nil {
			log.Warn("provenance disabled", "file", tsvPath, "err", err)
		} else {
			sinks = append(sinks, tsv)
		}
	}
	if dbPath != "" {
		db, err := OpenSQLite(dbPath, configJSON)
		if err != nil {
			log.Warn("provenance disabled", "db", dbPath, "err", err)
		} else {
			log.Info("provenance run", "run_id", db.RunID())
			sinks = append(sinks, db)
		}
	}
	switch len(sinks) {
	case 0:
		return nil
	case 1:
		return sinks[0]
	}
	return Multi(sinks...)
}
