package feedforward

import "bytes"
import "math"
import "path/filepath"
import "testing"

import "github.com/neurlang/enzyme/datasets"
import "github.com/neurlang/enzyme/datasets/ngram"

func toy(t *testing.T) ([]datasets.Input, [][][]float64, Header) {
	enc, err := ngram.NewEncoder("", 1)
	if err != nil {
		t.Fatal(err)
	}
	var seqs = []string{"AAAKA", "KAAAA", "AAGA", "CCCWC", "WCCC", "CCYC"}
	var inputs []datasets.Input
	var labels = [][][]float64{nil}
	for i, s := range seqs {
		inputs = append(inputs, ngram.Pad(enc.Encode(s), 8, false))
		if i < 3 {
			labels[0] = append(labels[0], []float64{1, 0})
		} else {
			labels[0] = append(labels[0], []float64{0, 1})
		}
	}
	header := Header{
		Tasks:    []string{"toy"},
		Classes:  [][]string{{"a", "c"}},
		Encoding: ngram.Encoding{Alphabet: ngram.AminoAcids, N: 1, MaxLen: 8, Features: enc.Features()},
	}
	return inputs, labels, header
}

// learning test on a separable task
func TestLearnsToy(t *testing.T) {
	inputs, labels, header := toy(t)
	f, err := New(header, Config{Buckets: 64, Hidden: 8, LearningRate: 0.05, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	if f.Buckets() != 67 {
		t.Errorf("buckets %d not rounded to the next prime", f.Buckets())
	}
	for epoch := 0; epoch < 300; epoch++ {
		if err := f.TrainOnBatch(inputs, labels); err != nil {
			t.Fatal(err)
		}
	}
	pred, err := f.Predict(inputs)
	if err != nil {
		t.Fatal(err)
	}
	if len(pred) != 1 || len(pred[0]) != len(inputs) {
		t.Fatalf("prediction shape %d tasks", len(pred))
	}
	for i := range inputs {
		for c := range labels[0][i] {
			if math.Abs(pred[0][i][c]-labels[0][i][c]) > 0.2 {
				t.Errorf("example %d class %d: predicted %f want %f", i, c, pred[0][i][c], labels[0][i][c])
			}
		}
	}
}

func TestTrainOnBatchShapes(t *testing.T) {
	inputs, labels, header := toy(t)
	f, err := New(header, Config{Buckets: 16, Hidden: 4, Seed: 2})
	if err != nil {
		t.Fatal(err)
	}
	if f.TrainOnBatch(inputs, nil) == nil {
		t.Errorf("missing task labels accepted")
	}
	if f.TrainOnBatch(inputs[:2], labels) == nil {
		t.Errorf("row mismatch accepted")
	}
	bad := [][][]float64{append([][]float64{{1, 0, 0}}, labels[0][1:]...)}
	if f.TrainOnBatch(inputs, bad) == nil {
		t.Errorf("class mismatch accepted")
	}
	if _, err := New(Header{}, Config{Hidden: 4}); err == nil {
		t.Errorf("network without tasks accepted")
	}
}

// round trip test through the lzw weights
func TestWeightsRoundTrip(t *testing.T) {
	inputs, labels, header := toy(t)
	f, err := New(header, Config{Buckets: 32, Hidden: 6, LearningRate: 0.01, Salt: 3, Seed: 3})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if err := f.TrainOnBatch(inputs, labels); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.WriteCompressedWeights(&buf); err != nil {
		t.Fatal(err)
	}
	g, err := ReadCompressedWeights(&buf, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if g.Encoding != header.Encoding || g.Tasks[0] != "toy" || g.Classes[0][1] != "c" {
		t.Errorf("header not restored: %+v", g.Header)
	}
	p1, _ := f.Predict(inputs)
	p2, _ := g.Predict(inputs)
	for i := range p1[0] {
		for c := range p1[0][i] {
			if p1[0][i][c] != p2[0][i][c] {
				t.Errorf("example %d class %d: %f != %f", i, c, p1[0][i][c], p2[0][i][c])
			}
		}
	}

	name := filepath.Join(t.TempDir(), "weights.json.lzw")
	if err := g.WriteCompressedWeightsToFile(name); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadCompressedWeightsFromFile(name, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadCompressedWeights(bytes.NewReader([]byte("garbage")), 0); err == nil {
		t.Errorf("garbage weights accepted")
	}
}
