package loss

import "errors"
import "math"
import "testing"

func TestBinaryEntropy(t *testing.T) {
	pred := [][]float64{{0.5, 0.5}, {0.9, 0.1}}
	targ := [][]float64{{1, 0}, {1, 0}}
	out, err := BinaryEntropy(pred, targ)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 2 * math.Log(2); math.Abs(out[0]-want) > 1e-12 {
		t.Errorf("row 0: got %v want %v", out[0], want)
	}
	if want := -2 * math.Log(0.9); math.Abs(out[1]-want) > 1e-12 {
		t.Errorf("row 1: got %v want %v", out[1], want)
	}
}

func TestBinaryEntropyClamp(t *testing.T) {
	pred := [][]float64{{0, 1}, {1, 0}, {math.NaN(), 0.5}}
	targ := [][]float64{{1, 0}, {1, 0}, {0, 0}}
	out, err := BinaryEntropy(pred, targ)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range out {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			t.Errorf("row %d: loss is not finite: %v", i, v)
		}
		if v <= 0 {
			t.Errorf("row %d: loss must be strictly positive, got %v", i, v)
		}
	}
	if out[0] < 50 {
		t.Errorf("confidently wrong row should have a large loss, got %v", out[0])
	}
}

func TestBinaryEntropyShapeMismatch(t *testing.T) {
	pred := make([][]float64, 9)
	targ := make([][]float64, 10)
	for i := range pred {
		pred[i] = []float64{0.5}
	}
	for i := range targ {
		targ[i] = []float64{1}
	}
	_, err := BinaryEntropy(pred, targ)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}

	_, err = BinaryEntropy([][]float64{{0.5, 0.5}}, [][]float64{{1}})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch on class count, got %v", err)
	}

	_, err = BinaryEntropy([][]float64{{0.5}, {}}, [][]float64{{1}, {}})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch on an empty row, got %v", err)
	}
}

func FuzzBinaryEntropy(f *testing.F) {
	f.Add(0.5, 1.0)
	f.Add(0.0, 0.0)
	f.Fuzz(func(t *testing.T, p, y float64) {
		if math.IsNaN(y) || math.IsInf(y, 0) || y < 0 || y > 1 {
			return
		}
		out, err := BinaryEntropy([][]float64{{p}}, [][]float64{{y}})
		if err != nil {
			t.Fatal(err)
		}
		if !(out[0] > 0) || math.IsInf(out[0], 0) {
			t.Errorf("BinaryEntropy(%v, %v) == %v (want finite positive)", p, y, out[0])
		}
	})
}
