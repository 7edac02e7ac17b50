package main

import "fmt"
import "log/slog"
import "os"

import "github.com/spf13/cobra"

import "github.com/neurlang/enzyme/config"
import "github.com/neurlang/enzyme/datasets/enzyme"
import "github.com/neurlang/enzyme/net/feedforward"
import "github.com/neurlang/enzyme/parallel"
import "github.com/neurlang/enzyme/provenance"
import "github.com/neurlang/enzyme/trainer"

var (
	configPath string
	dstmodel   string
	resume     bool
	override   config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "train_enzyme",
	Short: "Train the enzyme classifier with loss ranked batches",
	Long: `Train the enzyme classifier on a UniProt tab separated export.

Keys of the --config JSON file are overridden by the flags given on the command line.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := config.Default()
		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			c = *loaded
		}
		apply(cmd, &c)
		if err := c.Validate(); err != nil {
			return err
		}
		log := c.Logger(os.Stderr)
		slog.SetDefault(log)
		return train(&c, log)
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&configPath, "config", "", "JSON configuration file")
	f.StringVar(&dstmodel, "dstmodel", "", "model destination .json.lzw file")
	f.BoolVar(&resume, "resume", false, "resume training from --dstmodel")
	f.StringVar(&override.FilePath, "file", "", "UniProt tab separated export")
	f.StringVar(&override.Mode, "mode", "", "labeling, ec or enzyme")
	f.IntVar(&override.BatchSize, "batch-size", 0, "examples per batch")
	f.IntVar(&override.Epochs, "epochs", 0, "number of epochs")
	f.IntVar(&override.PeriodOfSort, "period-of-sort", 0, "re-rank every this many steps")
	f.IntVar(&override.RecomputationFreqPerEpoch, "recomputation-freq", 0, "recompute stale losses every this many steps")
	f.Float64Var(&override.RatioOfRecomputation, "ratio-of-recomputation", 0, "fraction of examples refreshed by a recompute")
	f.IntVar(&override.Task, "task", 0, "task whose loss drives sampling, negative counts from the last")
	f.Uint64Var(&override.Seed, "seed", 0, "random seed, 0 is random")
	f.StringVar(&override.DebugFile, "debug-file", "", "tab separated log of every selected batch")
	f.StringVar(&override.DebugDB, "debug-db", "", "SQLite log of every selected batch")
	f.StringSliceVar(&override.LogColumns, "log-columns", nil, "columns written to the batch logs")
}

// apply copies the flags set on the command line over c.
func apply(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	set := func(name string, do func()) {
		if f.Changed(name) {
			do()
		}
	}
	set("file", func() { c.FilePath = override.FilePath })
	set("mode", func() { c.Mode = override.Mode })
	set("batch-size", func() { c.BatchSize = override.BatchSize })
	set("epochs", func() { c.Epochs = override.Epochs })
	set("period-of-sort", func() { c.PeriodOfSort = override.PeriodOfSort })
	set("recomputation-freq", func() { c.RecomputationFreqPerEpoch = override.RecomputationFreqPerEpoch })
	set("ratio-of-recomputation", func() { c.RatioOfRecomputation = override.RatioOfRecomputation })
	set("task", func() { c.Task = override.Task })
	set("seed", func() { c.Seed = override.Seed })
	set("debug-file", func() { c.DebugFile = override.DebugFile })
	set("debug-db", func() { c.DebugDB = override.DebugDB })
	set("log-columns", func() { c.LogColumns = override.LogColumns })
}

func train(c *config.Config, log *slog.Logger) error {
	fmt.Println("cpu:", parallel.Brand(), "threads:", parallel.Threads())

	data, err := enzyme.Load(c.Data())
	if err != nil {
		return err
	}
	fmt.Println("training set:", data.Train.Len(), "test set:", data.Test.Len(), "tasks:", data.Tasks)
	fmt.Println("max_len:", data.Encoding.MaxLen, "features:", data.Encoding.Features)

	net := trainer.Resume(&resume, &dstmodel, c.LearningRate)
	if net == nil {
		net, err = feedforward.New(feedforward.Header{Tasks: data.Tasks, Classes: data.Classes, Encoding: data.Encoding}, c.Model())
		if err != nil {
			return err
		}
	} else if net.Encoding != data.Encoding || net.Heads() != len(data.Tasks) {
		return fmt.Errorf("resumed model %s does not match the data encoding", dstmodel)
	}
	fmt.Println("buckets:", net.Buckets(), "heads:", net.Heads())

	sink := provenance.Open(log.With("component", "provenance"), c.DebugFile, c.DebugDB, c.JSON())

	var best float64
	evaluate := trainer.NewEvaluateFunc(net, data.Test, data.Tasks, data.Classes, c.Significance,
		&best, &dstmodel, net.WriteCompressedWeightsToFile, c.Seed)

	tr := &trainer.Trainer{
		Policy:     c.Policy(data.Train.Tasks()),
		Model:      net,
		Data:       data.Train,
		Frame:      data.TrainFrame,
		Sink:       sink,
		LogColumns: c.LogColumns,
		Logger:     log.With("component", "trainer"),
		OnEpoch: func(epoch int, stats trainer.Stats) {
			if data.Test.Len() == 0 {
				return
			}
			report, err := evaluate()
			if err != nil {
				log.Error("evaluation failed", "epoch", epoch, "err", err)
				return
			}
			fmt.Println("[epoch]", epoch)
			report.Print(os.Stdout)
		},
	}
	stats, err := tr.Train()
	if err != nil {
		return err
	}
	fmt.Printf("epochs: %d steps: %d reranks: %d recomputes: %d oracle calls: %d refreshed: %d\n",
		stats.Epochs, stats.Steps, stats.Reranks, stats.Recomputes, stats.OracleCalls, stats.Refreshed)
	if dstmodel != "" && data.Test.Len() == 0 {
		return net.WriteCompressedWeightsToFile(dstmodel)
	}
	return nil
}
