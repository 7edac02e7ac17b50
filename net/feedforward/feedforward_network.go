// Package feedforward implements a feedforward network type: a hashed n-gram bag
// embedding, one ReLU hidden layer and one sigmoid head per task
package feedforward

import "math"
import "math/rand/v2"

import "github.com/pkg/errors"
import "gonum.org/v1/gonum/floats"
import "gonum.org/v1/gonum/mat"

import "github.com/neurlang/enzyme/datasets"
import "github.com/neurlang/enzyme/datasets/ngram"
import "github.com/neurlang/enzyme/hash"
import "github.com/neurlang/enzyme/parallel"

// Config holds the network hyper parameters
type Config struct {
	Buckets      uint32  // requested hashed feature buckets, rounded up to a prime
	Hidden       int     // hidden layer width
	LearningRate float64 // Adam step size
	Salt         uint32  // feature hash salt
	Seed         uint64  // weight init seed, 0 is random
}

// Header describes what the network predicts. It is saved with the weights
// so inference can rebuild the encoder and name the outputs.
type Header struct {
	Tasks    []string       `json:"tasks"`
	Classes  [][]string     `json:"classes"`
	Encoding ngram.Encoding `json:"encoding"`
}

type head struct {
	w *mat.Dense // classes x hidden
	b *mat.VecDense
}

// FeedforwardNetwork is the feedforward network
type FeedforwardNetwork struct {
	Header

	buckets uint32
	salt    uint32
	hidden  int

	w1    *mat.Dense // buckets x hidden
	b1    *mat.VecDense
	heads []head

	opt *adam
}

// New creates a network with one sigmoid head per task in header.
func New(header Header, c Config) (*FeedforwardNetwork, error) {
	if len(header.Classes) == 0 {
		return nil, errors.New("network needs at least one task")
	}
	if c.Hidden <= 0 {
		return nil, errors.Errorf("hidden width must be positive, got %d", c.Hidden)
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.001
	}
	var seed = c.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	var rnd = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	f := &FeedforwardNetwork{
		Header:  header,
		buckets: hash.Buckets(c.Buckets),
		salt:    c.Salt,
		hidden:  c.Hidden,
	}
	f.w1 = mat.NewDense(int(f.buckets), f.hidden, gaussian(rnd, int(f.buckets)*f.hidden, 1/math.Sqrt(float64(f.hidden))))
	f.b1 = mat.NewVecDense(f.hidden, nil)
	for t, classes := range header.Classes {
		if len(classes) == 0 {
			return nil, errors.Errorf("task %d has no classes", t)
		}
		f.heads = append(f.heads, head{
			w: mat.NewDense(len(classes), f.hidden, gaussian(rnd, len(classes)*f.hidden, math.Sqrt(2/float64(len(classes)+f.hidden)))),
			b: mat.NewVecDense(len(classes), nil),
		})
	}
	f.opt = newAdam(c.LearningRate, f.params())
	return f, nil
}

func gaussian(rnd *rand.Rand, n int, scale float64) []float64 {
	var out = make([]float64, n)
	for i := range out {
		out[i] = rnd.NormFloat64() * scale
	}
	return out
}

// params lists the trainable weights as flat slices backed by the matrices.
func (f *FeedforwardNetwork) params() (out [][]float64) {
	out = append(out, f.w1.RawMatrix().Data, f.b1.RawVector().Data)
	for _, h := range f.heads {
		out = append(out, h.w.RawMatrix().Data, h.b.RawVector().Data)
	}
	return
}

// Heads returns the number of task heads.
func (f *FeedforwardNetwork) Heads() int {
	return len(f.heads)
}

// Buckets returns the (prime) number of hashed feature buckets.
func (f *FeedforwardNetwork) Buckets() uint32 {
	return f.buckets
}

// activation holds the forward pass of one example.
type activation struct {
	bag  []uint32
	pre  *mat.VecDense   // hidden pre-activation
	h    *mat.VecDense   // hidden output
	outs []*mat.VecDense // per task probabilities
}

func (f *FeedforwardNetwork) forward(in datasets.Input, a *activation) {
	a.bag = hash.Bag(a.bag[:0], in, f.salt, f.buckets)
	pre := a.pre.RawVector().Data
	for i := range pre {
		pre[i] = 0
	}
	for _, j := range a.bag {
		floats.Add(pre, f.w1.RawRowView(int(j)))
	}
	if len(a.bag) > 0 {
		floats.Scale(1/float64(len(a.bag)), pre)
	}
	floats.Add(pre, f.b1.RawVector().Data)

	h := a.h.RawVector().Data
	for i, v := range pre {
		h[i] = math.Max(v, 0)
	}
	for t, hd := range f.heads {
		a.outs[t].MulVec(hd.w, a.h)
		a.outs[t].AddVec(a.outs[t], hd.b)
		o := a.outs[t].RawVector().Data
		for i := range o {
			o[i] = sigmoid(o[i])
		}
	}
}

func (f *FeedforwardNetwork) newActivation() *activation {
	a := &activation{
		pre: mat.NewVecDense(f.hidden, nil),
		h:   mat.NewVecDense(f.hidden, nil),
	}
	for _, hd := range f.heads {
		r, _ := hd.w.Dims()
		a.outs = append(a.outs, mat.NewVecDense(r, nil))
	}
	return a
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// Predict infers class probabilities of every input, one array per task
// indexed [task][example][class]. Examples are processed in parallel.
func (f *FeedforwardNetwork) Predict(inputs []datasets.Input) ([][][]float64, error) {
	var out = make([][][]float64, len(f.heads))
	for t := range out {
		out[t] = make([][]float64, len(inputs))
	}
	parallel.ForEach(len(inputs), parallel.Threads(), func(i int) {
		a := f.newActivation()
		f.forward(inputs[i], a)
		for t := range f.heads {
			out[t][i] = append([]float64(nil), a.outs[t].RawVector().Data...)
		}
	})
	return out, nil
}

// TrainOnBatch performs one Adam step on the mean binary cross entropy of the
// batch, summed over every task head and class. Labels are indexed
// [task][example][class].
func (f *FeedforwardNetwork) TrainOnBatch(inputs []datasets.Input, labels [][][]float64) error {
	if len(labels) != len(f.heads) {
		return errors.Errorf("got labels for %d tasks, network has %d", len(labels), len(f.heads))
	}
	if len(inputs) == 0 {
		return errors.New("empty batch")
	}
	for t := range labels {
		r, _ := f.heads[t].w.Dims()
		if len(labels[t]) != len(inputs) {
			return errors.Errorf("task %d has %d label rows for %d inputs", t, len(labels[t]), len(inputs))
		}
		for i := range labels[t] {
			if len(labels[t][i]) != r {
				return errors.Errorf("task %d example %d has %d classes, head has %d", t, i, len(labels[t][i]), r)
			}
		}
	}

	grads := f.opt.zeroGrads()
	gw1 := mat.NewDense(int(f.buckets), f.hidden, grads[0])
	gb1 := grads[1]
	var scale = 1 / float64(len(inputs))

	a := f.newActivation()
	dh := mat.NewVecDense(f.hidden, nil)
	tmp := mat.NewVecDense(f.hidden, nil)
	for i, in := range inputs {
		f.forward(in, a)
		dh.Zero()
		for t, hd := range f.heads {
			r, _ := hd.w.Dims()
			dz := mat.NewVecDense(r, nil)
			// d BCE / d logit = p - y
			floats.SubTo(dz.RawVector().Data, a.outs[t].RawVector().Data, labels[t][i])
			dz.ScaleVec(scale, dz)

			gw := mat.NewDense(r, f.hidden, grads[2+2*t])
			gw.RankOne(gw, 1, dz, a.h)
			floats.Add(grads[3+2*t], dz.RawVector().Data)

			tmp.MulVec(hd.w.T(), dz)
			dh.AddVec(dh, tmp)
		}
		// relu
		d := dh.RawVector().Data
		for k, v := range a.pre.RawVector().Data {
			if v <= 0 {
				d[k] = 0
			}
		}
		floats.Add(gb1, d)
		if len(a.bag) > 0 {
			var share = 1 / float64(len(a.bag))
			for _, j := range a.bag {
				floats.AddScaled(gw1.RawRowView(int(j)), share, d)
			}
		}
	}
	f.opt.step()
	return nil
}
