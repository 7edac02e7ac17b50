// Package loss implements the per-example loss used to rank training samples
package loss

import "math"

import "github.com/pkg/errors"

// Epsilon bounds predicted probabilities away from 0 and 1 before taking logarithms.
const Epsilon = 1e-12

// ErrShapeMismatch is returned when predictions and targets disagree in shape.
var ErrShapeMismatch = errors.New("shape mismatch")

// Func computes one scalar loss per example from per-example prediction
// and target vectors.
type Func func(predictions, targets [][]float64) ([]float64, error)

// clamp forces p into [Epsilon, 1-Epsilon]
func clamp(p float64) float64 {
	if p < Epsilon || math.IsNaN(p) {
		return Epsilon
	}
	if p > 1-Epsilon {
		return 1 - Epsilon
	}
	return p
}

// BinaryEntropy sums the binary cross-entropy over the output classes of each example.
// Rows without classes are a shape mismatch. For targets in [0, 1] every loss is
// strictly positive, because predictions are clamped.
func BinaryEntropy(predictions, targets [][]float64) ([]float64, error) {
	if len(predictions) != len(targets) {
		return nil, errors.Wrapf(ErrShapeMismatch, "predictions have %d rows, targets have %d rows",
			len(predictions), len(targets))
	}
	out := make([]float64, len(predictions))
	for i, row := range predictions {
		if len(row) != len(targets[i]) {
			return nil, errors.Wrapf(ErrShapeMismatch, "row %d: predictions have %d classes, targets have %d classes",
				i, len(row), len(targets[i]))
		}
		if len(row) == 0 {
			return nil, errors.Wrapf(ErrShapeMismatch, "row %d has no classes", i)
		}
		var sum float64
		for c, p := range row {
			y := targets[i][c]
			p = clamp(p)
			sum -= y*math.Log(p) + (1-y)*math.Log(1-p)
		}
		out[i] = sum
	}
	return out, nil
}
