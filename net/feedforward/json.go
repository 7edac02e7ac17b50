package feedforward

import "compress/lzw"
import "encoding/json"
import "io"
import "os"

import "github.com/pkg/errors"
import "gonum.org/v1/gonum/mat"

type headWeights struct {
	Classes int       `json:"classes"`
	W       []float64 `json:"w"`
	B       []float64 `json:"b"`
}

type weightsJson struct {
	Header
	Buckets uint32        `json:"buckets"`
	Salt    uint32        `json:"salt"`
	Hidden  int           `json:"hidden"`
	W1      []float64     `json:"w1"`
	B1      []float64     `json:"b1"`
	Heads   []headWeights `json:"heads"`
}

// WriteCompressedWeightsToFile writes model weights to a lzw file
func (f *FeedforwardNetwork) WriteCompressedWeightsToFile(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	err = f.WriteCompressedWeights(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteCompressedWeights writes model weights to a writer
func (f *FeedforwardNetwork) WriteCompressedWeights(w io.Writer) error {
	lw := lzw.NewWriter(w, lzw.LSB, 8)
	var out = weightsJson{
		Header:  f.Header,
		Buckets: f.buckets,
		Salt:    f.salt,
		Hidden:  f.hidden,
		W1:      f.w1.RawMatrix().Data,
		B1:      f.b1.RawVector().Data,
	}
	for _, h := range f.heads {
		r, _ := h.w.Dims()
		out.Heads = append(out.Heads, headWeights{Classes: r, W: h.w.RawMatrix().Data, B: h.b.RawVector().Data})
	}
	if err := json.NewEncoder(lw).Encode(&out); err != nil {
		return err
	}
	return lw.Close()
}

// ReadCompressedWeightsFromFile reads a network from a lzw file
func ReadCompressedWeightsFromFile(name string, rate float64) (*FeedforwardNetwork, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCompressedWeights(file, rate)
}

// ReadCompressedWeights reads a network from a reader. The optimizer starts
// fresh with the given learning rate.
func ReadCompressedWeights(r io.Reader, rate float64) (*FeedforwardNetwork, error) {
	lr := lzw.NewReader(r, lzw.LSB, 8)
	defer lr.Close()

	var in weightsJson
	if err := json.NewDecoder(lr).Decode(&in); err != nil {
		return nil, errors.Wrap(err, "decoding weights")
	}
	if in.Hidden <= 0 || in.Buckets == 0 || len(in.W1) != int(in.Buckets)*in.Hidden || len(in.B1) != in.Hidden {
		return nil, errors.Errorf("weights shape %d x %d does not match %d values", in.Buckets, in.Hidden, len(in.W1))
	}
	if len(in.Heads) == 0 || len(in.Heads) != len(in.Classes) {
		return nil, errors.Errorf("weights carry %d heads for %d tasks", len(in.Heads), len(in.Classes))
	}
	f := &FeedforwardNetwork{
		Header:  in.Header,
		buckets: in.Buckets,
		salt:    in.Salt,
		hidden:  in.Hidden,
		w1:      mat.NewDense(int(in.Buckets), in.Hidden, in.W1),
		b1:      mat.NewVecDense(in.Hidden, in.B1),
	}
	for t, h := range in.Heads {
		if h.Classes <= 0 || len(h.W) != h.Classes*in.Hidden || len(h.B) != h.Classes {
			return nil, errors.Errorf("head %d has a bad shape", t)
		}
		f.heads = append(f.heads, head{w: mat.NewDense(h.Classes, in.Hidden, h.W), b: mat.NewVecDense(h.Classes, h.B)})
	}
	if rate <= 0 {
		rate = 0.001
	}
	f.opt = newAdam(rate, f.params())
	return f, nil
}
