package feedforward

import "math"

// adam keeps the moment estimates of every parameter slice.
type adam struct {
	rate         float64
	beta1, beta2 float64
	eps          float64
	t            int

	w, g, m, v [][]float64
}

func newAdam(rate float64, params [][]float64) *adam {
	o := &adam{rate: rate, beta1: 0.9, beta2: 0.999, eps: 1e-8, w: params}
	for _, p := range params {
		o.g = append(o.g, make([]float64, len(p)))
		o.m = append(o.m, make([]float64, len(p)))
		o.v = append(o.v, make([]float64, len(p)))
	}
	return o
}

// zeroGrads clears and returns the gradient buffers, aligned with params.
func (o *adam) zeroGrads() [][]float64 {
	for _, g := range o.g {
		for i := range g {
			g[i] = 0
		}
	}
	return o.g
}

// step applies the accumulated gradients.
func (o *adam) step() {
	o.t++
	c1 := 1 - math.Pow(o.beta1, float64(o.t))
	c2 := 1 - math.Pow(o.beta2, float64(o.t))
	for p := range o.w {
		w, g, m, v := o.w[p], o.g[p], o.m[p], o.v[p]
		for i := range w {
			if g[i] == 0 && m[i] == 0 {
				continue
			}
			m[i] = o.beta1*m[i] + (1-o.beta1)*g[i]
			v[i] = o.beta2*v[i] + (1-o.beta2)*g[i]*g[i]
			w[i] -= o.rate * (m[i] / c1) / (math.Sqrt(v[i]/c2) + o.eps)
		}
	}
}
