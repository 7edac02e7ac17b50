package trainer

import "fmt"
import "io"
import "math"
import "math/rand/v2"
import "text/tabwriter"

import "github.com/pkg/errors"

import "github.com/neurlang/enzyme/datasets"
import "github.com/neurlang/enzyme/parallel"

// ClassReport holds the scores of one class, predicted positive at probability 0.5.
type ClassReport struct {
	Class     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// TaskReport holds the scores of one task head. Accuracy counts examples whose
// whole predicted class set equals the labeled set.
type TaskReport struct {
	Task     string
	Accuracy float64
	Classes  []ClassReport
}

// Report is the result of one evaluation.
type Report struct {
	Examples int // evaluated examples
	Accuracy float64
	Tasks    []TaskReport
	Digest   [32]byte // digest of the predicted class sets
}

// sampleSize calculates the statistically sufficient sample size
// for a given dataset size N and significance level (0–100).
func sampleSize(N int, significance byte) int {

	// Convert significance level to Z-score
	z := zScoreFromAlpha(100 - significance)

	// Assume worst-case proportion p = 0.5 for max variability
	p := 0.5
	e := float64(100-significance) * 0.01 // Margin of error

	// Initial sample size without population correction
	ss := math.Pow(z, 2) * p * (1 - p) / math.Pow(e, 2)

	// Apply finite population correction
	correctedSS := ss * float64(N) / (float64(N) - 1 + ss)

	if int(correctedSS) > N {
		return N
	}
	return int(correctedSS)
}

// zScoreFromAlpha returns the Z-score for a given alpha level
// Common: 90% => 1.645, 95% => 1.96, 99% => 2.576
func zScoreFromAlpha(alpha byte) float64 {
	switch {
	case alpha <= 1:
		return 2.576 // 99% confidence
	case alpha <= 5:
		return 1.96 // 95% confidence
	case alpha <= 10:
		return 1.645 // 90% confidence
	default:
		return 1.96 // default fallback
	}
}

// positives returns the classes at or above 0.5, or the most probable class when none is.
func positives(p []float64) []bool {
	var out = make([]bool, len(p))
	var best, found = 0, false
	for c, v := range p {
		if v >= 0.5 {
			out[c] = true
			found = true
		}
		if v > p[best] {
			best = c
		}
	}
	if !found && len(p) > 0 {
		out[best] = true
	}
	return out
}

// Evaluate predicts rows of set (all rows when nil) and scores every task.
func Evaluate(model Model, set *datasets.Set, rows []int, tasks []string, classes [][]string) (*Report, error) {
	if rows != nil {
		var err error
		if set, err = set.Gather(rows); err != nil {
			return nil, err
		}
	}
	pred, err := model.Predict(set.Inputs)
	if err != nil {
		return nil, err
	}
	if len(pred) != set.Tasks() {
		return nil, errors.Errorf("model predicted %d tasks, the set has %d", len(pred), set.Tasks())
	}
	var n = set.Len()
	var report = &Report{Examples: n}
	var digest = parallel.NewDigest(n)
	var codes = make([]uint32, n)

	for t := range pred {
		var tr = TaskReport{Task: fmt.Sprint(t)}
		if t < len(tasks) {
			tr.Task = tasks[t]
		}
		var width = 0
		if n > 0 {
			width = len(set.Labels[t][0])
		}
		tp := make([]int, width)
		fp := make([]int, width)
		fn := make([]int, width)
		var correct int
		for i := 0; i < n; i++ {
			if len(pred[t][i]) != width || len(set.Labels[t][i]) != width {
				return nil, errors.Errorf("task %d example %d: %d predicted classes, %d labeled, want %d",
					t, i, len(pred[t][i]), len(set.Labels[t][i]), width)
			}
			got := positives(pred[t][i])
			exact := true
			for c := range got {
				want := set.Labels[t][i][c] >= 0.5
				switch {
				case got[c] && want:
					tp[c]++
				case got[c]:
					fp[c]++
					exact = false
				case want:
					fn[c]++
					exact = false
				}
				if got[c] {
					codes[i] = codes[i]*31 + uint32(c) + 1
				}
			}
			if exact {
				correct++
			}
		}
		if n > 0 {
			tr.Accuracy = float64(correct) / float64(n)
		}
		for c := 0; c < width; c++ {
			cr := ClassReport{Class: fmt.Sprint(c), Support: tp[c] + fn[c]}
			if t < len(classes) && c < len(classes[t]) {
				cr.Class = classes[t][c]
			}
			if tp[c]+fp[c] > 0 {
				cr.Precision = float64(tp[c]) / float64(tp[c]+fp[c])
			}
			if tp[c]+fn[c] > 0 {
				cr.Recall = float64(tp[c]) / float64(tp[c]+fn[c])
			}
			if cr.Precision+cr.Recall > 0 {
				cr.F1 = 2 * cr.Precision * cr.Recall / (cr.Precision + cr.Recall)
			}
			tr.Classes = append(tr.Classes, cr)
		}
		report.Tasks = append(report.Tasks, tr)
		report.Accuracy += tr.Accuracy
	}
	if len(report.Tasks) > 0 {
		report.Accuracy /= float64(len(report.Tasks))
	}
	parallel.ForEach(n, 0, func(i int) {
		digest.MustPut(i, codes[i])
	})
	report.Digest = digest.Sum()
	return report, nil
}

// Print writes the report as an aligned table.
func (r *Report) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "task\tclass\tprecision\trecall\tf1\tsupport\t\n")
	for _, t := range r.Tasks {
		for _, c := range t.Classes {
			if c.Support == 0 && c.Precision == 0 {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.3f\t%.3f\t%d\t\n", t.Task, c.Class, c.Precision, c.Recall, c.F1, c.Support)
		}
		fmt.Fprintf(tw, "%s\taccuracy\t\t\t%.3f\t%d\t\n", t.Task, t.Accuracy, r.Examples)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "accuracy: %.2f%% on %d examples, digest %x\n", 100*r.Accuracy, r.Examples, r.Digest)
	return err
}

// NewEvaluateFunc returns a function evaluating model on the test set. While the
// best accuracy is unknown or below 99% it evaluates a sample of sampleSize
// examples. Without dstmodel every evaluation is saved as output.<pct>.json.t.lzw;
// with it, dstmodel is saved whenever the accuracy improves on *best.
func NewEvaluateFunc(model Model, test *datasets.Set, tasks []string, classes [][]string, significance byte,
	best *float64, dstmodel *string, save func(name string) error, seed uint64) func() (*Report, error) {

	var rnd = rand.New(rand.NewPCG(seed, seed+1))
	if seed == 0 {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return func() (*Report, error) {
		var rows []int
		length := test.Len()
		if significance > 0 && (best == nil || (*best > 0 && *best < 0.99)) {
			if l := sampleSize(length, significance); l < length {
				rows = rnd.Perm(length)[:l]
			}
		}
		report, err := Evaluate(model, test, rows, tasks, classes)
		if err != nil {
			return nil, err
		}
		if save == nil {
			return report, nil
		}
		if dstmodel == nil || *dstmodel == "" {
			if err := save(fmt.Sprintf("output.%d.json.t.lzw", int(100*report.Accuracy))); err != nil {
				println(err.Error())
			}
		} else if best == nil || report.Accuracy > *best {
			if err := save(*dstmodel); err != nil {
				println(err.Error())
			}
		}
		if best != nil && report.Accuracy > *best {
			*best = report.Accuracy
		}
		return report, nil
	}
}
