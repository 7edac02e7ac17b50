// Package enzyme loads UniProt tab separated exports into enzyme classification datasets.
//
// Two labelings are supported. ModeEnzyme is a single binary task, enzyme versus
// non-enzyme, decided by whether the entry lists an EC number. ModeEC is one task
// per EC level, where task i classifies the first i+1 components of the EC number.
package enzyme

import "encoding/csv"
import "fmt"
import "io"
import "math"
import "math/rand/v2"
import "os"
import "sort"
import "strings"

import "github.com/pkg/errors"

import "github.com/neurlang/enzyme/datasets"
import "github.com/neurlang/enzyme/datasets/ngram"

const ModeEnzyme = "enzyme"
const ModeEC = "ec"

// Other is the class that absorbs EC classes with too few examples.
const Other = "other"

// Missing is the class of an EC level the entry does not specify, with dummy labels enabled.
const Missing = "-"

type Config struct {
	FilePath string // tab separated UniProt export
	Mode     string // ModeEnzyme or ModeEC

	SequenceKey string // sequence column, default "Sequence"
	LabelKey    string // EC number column, default "EC number"

	MaxLen       int     // drop sequences longer than this, 0 keeps all
	Fraction     float64 // fraction of entries to use
	TrainPercent float64 // fraction of used entries in the training set
	NGram        int     // n-gram size of the encoding
	Alphabet     string  // encoding alphabet, default ngram.AminoAcids

	ECLevel               int  // number of EC level tasks (ModeEC)
	DropMultilabel        bool // drop entries listing more than one EC number
	ApplyDummyLabel       bool // keep incomplete EC numbers, labeling missing levels as Missing
	ClassExampleThreshold int  // classes with fewer examples merge into Other

	Seed uint64 // shuffle seed, 0 is random
}

// Data is a loaded dataset split into training and test parts.
type Data struct {
	Train, Test           *datasets.Set
	TrainFrame, TestFrame *datasets.Frame

	Tasks    []string   // task names
	Classes  [][]string // class names per task
	Encoding ngram.Encoding
}

type entry struct {
	row    []string
	seq    string
	labels [][]string // per task, the class names the entry belongs to
}

// Load reads and encodes the dataset at c.FilePath.
func Load(c Config) (*Data, error) {
	f, err := os.Open(c.FilePath)
	if err != nil {
		return nil, errors.Wrap(err, "open dataset")
	}
	defer f.Close()
	return Read(f, c)
}

// ReadFrame reads a tab separated table with a header row.
func ReadFrame(r io.Reader) (*datasets.Frame, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read tsv")
	}
	if len(records) == 0 {
		return nil, errors.New("read tsv: missing header")
	}
	return &datasets.Frame{Columns: records[0], Rows: records[1:]}, nil
}

func (c *Config) defaults() {
	if c.SequenceKey == "" {
		c.SequenceKey = "Sequence"
	}
	if c.LabelKey == "" {
		c.LabelKey = "EC number"
	}
	if c.Mode == "" {
		c.Mode = ModeEnzyme
	}
	if c.Fraction <= 0 || c.Fraction > 1 {
		c.Fraction = 1
	}
	if c.NGram <= 0 {
		c.NGram = 1
	}
	if c.ECLevel <= 0 {
		c.ECLevel = 4
	}
}

// Read reads and encodes a dataset from r.
func Read(r io.Reader, c Config) (*Data, error) {
	c.defaults()
	if c.TrainPercent <= 0 || c.TrainPercent > 1 {
		return nil, errors.Errorf("train_percent must be in (0, 1], got %v", c.TrainPercent)
	}
	frame, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	seqCol := frame.Column(c.SequenceKey)
	labCol := frame.Column(c.LabelKey)
	if seqCol < 0 {
		return nil, errors.Errorf("missing column %q", c.SequenceKey)
	}
	if labCol < 0 {
		return nil, errors.Errorf("missing column %q", c.LabelKey)
	}

	var entries []entry
	var tasks []string
	switch c.Mode {
	case ModeEnzyme:
		tasks = []string{"enzyme"}
		for _, row := range frame.Rows {
			e := entry{row: row, seq: field(row, seqCol)}
			if strings.TrimSpace(field(row, labCol)) == "" {
				e.labels = [][]string{{"N"}}
			} else {
				e.labels = [][]string{{"Y"}}
			}
			entries = append(entries, e)
		}
	case ModeEC:
		for i := 0; i < c.ECLevel; i++ {
			tasks = append(tasks, fmt.Sprintf("level%d", i+1))
		}
		for _, row := range frame.Rows {
			ecs := parseECs(field(row, labCol))
			if len(ecs) == 0 {
				continue
			}
			if c.DropMultilabel && len(ecs) > 1 {
				continue
			}
			labels, ok := levelLabels(ecs, c.ECLevel, c.ApplyDummyLabel)
			if !ok {
				continue
			}
			entries = append(entries, entry{row: row, seq: field(row, seqCol), labels: labels})
		}
	default:
		return nil, errors.Errorf("unknown mode %q", c.Mode)
	}

	if c.MaxLen > 0 {
		kept := entries[:0]
		for _, e := range entries {
			if len(e.seq) <= c.MaxLen {
				kept = append(kept, e)
			}
		}
		entries = kept
	}

	var rnd *rand.Rand
	if c.Seed == 0 {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	} else {
		rnd = rand.New(rand.NewPCG(c.Seed, c.Seed+1))
	}
	rnd.Shuffle(len(entries), func(i, j int) { entries[i], entries[j] = entries[j], entries[i] })
	entries = entries[:int(math.Round(float64(len(entries))*c.Fraction))]
	if len(entries) == 0 {
		return nil, errors.New("no entries left after filtering")
	}

	var classes [][]string
	if c.Mode == ModeEnzyme {
		classes = [][]string{{"N", "Y"}}
	} else {
		classes = classMaps(entries, len(tasks), c.ClassExampleThreshold)
	}

	enc, err := ngram.NewEncoder(c.Alphabet, c.NGram)
	if err != nil {
		return nil, err
	}
	var maxLen int
	for _, e := range entries {
		if len(e.seq) > maxLen {
			maxLen = len(e.seq)
		}
	}

	all := &datasets.Set{Labels: make([][][]float64, len(tasks))}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = e.row
		all.Inputs = append(all.Inputs, ngram.Pad(enc.Encode(e.seq), maxLen, false))
		for t := range tasks {
			all.Labels[t] = append(all.Labels[t], hot(classes[t], e.labels[t]))
		}
	}

	split := int(float64(len(entries)) * c.TrainPercent)
	if split == 0 {
		return nil, errors.Errorf("training set is empty (%d entries, train_percent %v)", len(entries), c.TrainPercent)
	}
	trainIdx := make([]int, split)
	testIdx := make([]int, len(entries)-split)
	for i := range trainIdx {
		trainIdx[i] = i
	}
	for i := range testIdx {
		testIdx[i] = split + i
	}
	train, _ := all.Gather(trainIdx)
	test, _ := all.Gather(testIdx)
	full := &datasets.Frame{Columns: frame.Columns, Rows: rows}

	return &Data{
		Train:      train,
		Test:       test,
		TrainFrame: full.Slice(0, split),
		TestFrame:  full.Slice(split, len(rows)),
		Tasks:      tasks,
		Classes:    classes,
		Encoding: ngram.Encoding{
			Alphabet: enc.Alphabet(),
			N:        enc.N(),
			MaxLen:   maxLen,
			Features: enc.Features(),
		},
	}, nil
}

func field(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}

// parseECs splits an EC number field such as "1.1.1.1; 2.7.11.1" into component lists.
func parseECs(s string) (out [][]string) {
	for _, ec := range strings.Split(s, ";") {
		ec = strings.TrimSpace(ec)
		if ec == "" {
			continue
		}
		out = append(out, strings.Split(ec, "."))
	}
	return
}

// levelLabels returns the class names of the ECs at each level. Incomplete levels
// drop the EC unless dummy is set, in which case they read Missing.
func levelLabels(ecs [][]string, levels int, dummy bool) ([][]string, bool) {
	labels := make([][]string, levels)
	var found bool
	for _, ec := range ecs {
		var complete = true
		for i := 0; i < levels; i++ {
			if i >= len(ec) || ec[i] == "-" || ec[i] == "" {
				complete = false
			}
		}
		if !complete && !dummy {
			continue
		}
		found = true
		var prefix []string
		for i := 0; i < levels; i++ {
			if i < len(ec) && ec[i] != "-" && ec[i] != "" && (i == 0 || prefix[i-1] != Missing) {
				prefix = append(prefix, strings.Join(ec[:i+1], "."))
			} else {
				prefix = append(prefix, Missing)
			}
			labels[i] = appendUnique(labels[i], prefix[i])
		}
	}
	return labels, found
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

// classMaps lists the classes of each task in sorted order, merging rare classes into Other.
func classMaps(entries []entry, tasks, threshold int) [][]string {
	out := make([][]string, tasks)
	for t := 0; t < tasks; t++ {
		count := map[string]int{}
		for _, e := range entries {
			for _, l := range e.labels[t] {
				count[l]++
			}
		}
		var rare bool
		for class, n := range count {
			if n < threshold {
				rare = true
				continue
			}
			out[t] = append(out[t], class)
		}
		sort.Strings(out[t])
		if rare {
			out[t] = append(out[t], Other)
			for i := range entries {
				for j, l := range entries[i].labels[t] {
					if count[l] < threshold {
						entries[i].labels[t][j] = Other
					}
				}
			}
		}
	}
	return out
}

// hot encodes the labels as a one-hot or multi-hot vector over classes.
func hot(classes, labels []string) []float64 {
	out := make([]float64, len(classes))
	for _, l := range labels {
		for i, c := range classes {
			if c == l {
				out[i] = 1
			}
		}
	}
	return out
}

// LoadSequences reads entries to classify with a trained encoding. Sequences
// not shorter than the encoding's MaxLen are dropped, the rest are padded at the end.
func LoadSequences(r io.Reader, sequenceKey string, enc ngram.Encoding) ([]datasets.Input, *datasets.Frame, error) {
	if sequenceKey == "" {
		sequenceKey = "Sequence"
	}
	frame, err := ReadFrame(r)
	if err != nil {
		return nil, nil, err
	}
	col := frame.Column(sequenceKey)
	if col < 0 {
		return nil, nil, errors.Errorf("missing column %q", sequenceKey)
	}
	encoder, err := ngram.NewEncoder(enc.Alphabet, enc.N)
	if err != nil {
		return nil, nil, err
	}
	var inputs []datasets.Input
	kept := &datasets.Frame{Columns: frame.Columns}
	for _, row := range frame.Rows {
		seq := field(row, col)
		if len(seq) >= enc.MaxLen {
			continue
		}
		inputs = append(inputs, ngram.Pad(encoder.Encode(seq), enc.MaxLen, true))
		kept.Rows = append(kept.Rows, row)
	}
	return inputs, kept, nil
}
