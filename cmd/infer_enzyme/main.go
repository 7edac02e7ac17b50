package main

import "fmt"
import "os"
import "text/tabwriter"

import "github.com/spf13/cobra"

import "github.com/neurlang/enzyme/datasets/enzyme"
import "github.com/neurlang/enzyme/net/feedforward"

var (
	model       string
	sequenceKey string
	idKey       string
	threshold   float64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "infer_enzyme [file.tsv]",
	Short: "Classify sequences with a trained enzyme classifier",
	Long: `Classify the sequences of a tab separated file. Sequences not shorter than
the trained max_len are skipped. Every class at or above --threshold is printed,
or the most probable class when none is.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := feedforward.ReadCompressedWeightsFromFile(model, 0)
		if err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		inputs, frame, err := enzyme.LoadSequences(f, sequenceKey, net.Encoding)
		if err != nil {
			return err
		}
		pred, err := net.Predict(inputs)
		if err != nil {
			return err
		}
		id := frame.Column(idKey)
		w := tabwriter.NewWriter(os.Stdout, 0, 8, 1, '\t', 0)
		fmt.Fprintln(w, "Entry\ttask\tclass\tprob")
		for i := range inputs {
			entry := fmt.Sprint(i)
			if id >= 0 && id < len(frame.Rows[i]) {
				entry = frame.Rows[i][id]
			}
			for t := range pred {
				for _, c := range chosen(pred[t][i], threshold) {
					fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\n", entry, net.Tasks[t], net.Classes[t][c], pred[t][i][c])
				}
			}
		}
		return w.Flush()
	},
}

// chosen returns the classes at or above threshold, or the most probable one.
func chosen(p []float64, threshold float64) (out []int) {
	best := 0
	for c, v := range p {
		if v >= threshold {
			out = append(out, c)
		}
		if v > p[best] {
			best = c
		}
	}
	if len(out) == 0 && len(p) > 0 {
		out = append(out, best)
	}
	return
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&model, "model", "", "trained model .json.lzw file")
	f.StringVar(&sequenceKey, "sequence-key", "Sequence", "sequence column")
	f.StringVar(&idKey, "id-key", "Entry", "identifier column")
	f.Float64Var(&threshold, "threshold", 0.5, "class probability threshold")
	rootCmd.MarkFlagRequired("model")
}
