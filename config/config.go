// Package config loads the flat JSON run configuration and projects it onto
// the dataset, model and training policy of one run
package config

import "encoding/json"
import "io"
import "log/slog"
import "os"

import "github.com/pkg/errors"

import "github.com/neurlang/enzyme/datasets/enzyme"
import "github.com/neurlang/enzyme/net/feedforward"
import "github.com/neurlang/enzyme/trainer"

// Config is the flat run configuration. Values derived while loading data are
// not stored here; they are returned by the dataset provider.
type Config struct {
	// training
	BatchSize                 int      `json:"batch_size"`
	Epochs                    int      `json:"epochs"`
	PeriodOfSort              int      `json:"period_of_sort"`
	RecomputationFreqPerEpoch int      `json:"recomputation_freq_per_epoch"`
	RatioOfRecomputation      float64  `json:"ratio_of_recomputation"`
	Task                      int      `json:"task"` // negative counts from the last task
	Seed                      uint64   `json:"seed"`
	DebugFile                 string   `json:"debug_file"`
	LogColumns                []string `json:"log_columns"`
	LogColums                 []string `json:"log_colums,omitempty"` // older spelling of log_columns
	DebugDB                   string   `json:"debug_db"`

	// data
	FilePath              string  `json:"file_path"`
	Mode                  string  `json:"mode"`
	SequenceKey           string  `json:"sequence_key"`
	LabelKey              string  `json:"label_key"`
	MaxLen                int     `json:"max_len"`
	Fraction              float64 `json:"fraction"`
	TrainPercent          float64 `json:"train_percent"`
	NGram                 int     `json:"ngram"`
	Alphabet              string  `json:"alphabet"`
	ECLevel               int     `json:"ec_level"`
	DropMultilabel        bool    `json:"drop_multilabel"`
	ApplyDummyLabel       bool    `json:"apply_dummy_label"`
	ClassExampleThreshold int     `json:"class_example_threshold"`

	// model
	Buckets      uint32  `json:"buckets"`
	Hidden       int     `json:"hidden"`
	LearningRate float64 `json:"learning_rate"`

	// evaluation and logging
	Significance byte   `json:"significance"`
	LogLevel     string `json:"log_level"`
}

// Default returns the configuration used when a key is absent.
func Default() Config {
	return Config{
		BatchSize:                 400,
		Epochs:                    20,
		PeriodOfSort:              10,
		RecomputationFreqPerEpoch: 50,
		RatioOfRecomputation:      0.1,
		Task:                      -1,

		Mode:         enzyme.ModeEC,
		SequenceKey:  "Sequence",
		LabelKey:     "EC number",
		MaxLen:       1000,
		Fraction:     1,
		TrainPercent: 0.7,
		NGram:        2,
		ECLevel:      4,

		Buckets:      8192,
		Hidden:       64,
		LearningRate: 0.001,

		Significance: 95,
		LogLevel:     "info",
	}
}

// Load reads the JSON object at path over the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a JSON object over the defaults.
func Read(r io.Reader) (*Config, error) {
	c := Default()
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, errors.Wrapf(trainer.ErrConfiguration, "decode config: %v", err)
	}
	if len(c.LogColumns) == 0 {
		c.LogColumns = c.LogColums
	}
	c.LogColums = nil
	return &c, nil
}

// Validate checks the keys that the training loop does not check itself.
func (c *Config) Validate() error {
	switch {
	case c.Epochs <= 0:
		return errors.Wrapf(trainer.ErrConfiguration, "epochs must be positive, got %d", c.Epochs)
	case c.DebugFile != "" && len(c.LogColumns) == 0:
		return errors.Wrap(trainer.ErrConfiguration, "debug_file needs log_columns")
	case c.DebugDB != "" && len(c.LogColumns) == 0:
		return errors.Wrap(trainer.ErrConfiguration, "debug_db needs log_columns")
	case c.Mode != enzyme.ModeEC && c.Mode != enzyme.ModeEnzyme:
		return errors.Wrapf(trainer.ErrConfiguration, "unknown mode %q", c.Mode)
	case !(c.Fraction > 0 && c.Fraction <= 1):
		return errors.Wrapf(trainer.ErrConfiguration, "fraction must be in (0, 1], got %v", c.Fraction)
	case !(c.TrainPercent > 0 && c.TrainPercent <= 1):
		return errors.Wrapf(trainer.ErrConfiguration, "train_percent must be in (0, 1], got %v", c.TrainPercent)
	case c.NGram <= 0:
		return errors.Wrapf(trainer.ErrConfiguration, "ngram must be positive, got %d", c.NGram)
	case c.Mode == enzyme.ModeEC && c.ECLevel <= 0:
		return errors.Wrapf(trainer.ErrConfiguration, "ec_level must be positive, got %d", c.ECLevel)
	case c.Hidden <= 0:
		return errors.Wrapf(trainer.ErrConfiguration, "hidden must be positive, got %d", c.Hidden)
	case c.Significance >= 100:
		return errors.Wrapf(trainer.ErrConfiguration, "significance must be below 100, got %d", c.Significance)
	}
	return nil
}

// Data projects the dataset keys.
func (c *Config) Data() enzyme.Config {
	return enzyme.Config{
		FilePath:              c.FilePath,
		Mode:                  c.Mode,
		SequenceKey:           c.SequenceKey,
		LabelKey:              c.LabelKey,
		MaxLen:                c.MaxLen,
		Fraction:              c.Fraction,
		TrainPercent:          c.TrainPercent,
		NGram:                 c.NGram,
		Alphabet:              c.Alphabet,
		ECLevel:               c.ECLevel,
		DropMultilabel:        c.DropMultilabel,
		ApplyDummyLabel:       c.ApplyDummyLabel,
		ClassExampleThreshold: c.ClassExampleThreshold,
		Seed:                  c.Seed,
	}
}

// Model projects the model keys.
func (c *Config) Model() feedforward.Config {
	return feedforward.Config{
		Buckets:      c.Buckets,
		Hidden:       c.Hidden,
		LearningRate: c.LearningRate,
		Salt:         uint32(c.Seed),
		Seed:         c.Seed,
	}
}

// Policy projects the training keys for data with the given number of tasks.
// A negative task counts from the last one.
func (c *Config) Policy(tasks int) trainer.Policy {
	task := c.Task
	if task < 0 {
		task += tasks
	}
	return trainer.Policy{
		BatchSize:                 c.BatchSize,
		Epochs:                    c.Epochs,
		PeriodOfSort:              c.PeriodOfSort,
		RecomputationFreqPerEpoch: c.RecomputationFreqPerEpoch,
		RatioOfRecomputation:      c.RatioOfRecomputation,
		Task:                      task,
		Seed:                      c.Seed,
	}
}

// JSON returns the configuration as stored with provenance runs.
func (c *Config) JSON() string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return string(data)
}

// Logger returns a text logger at the configured level writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
