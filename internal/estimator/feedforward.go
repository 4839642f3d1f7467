package estimator

import (
	"math"
	"math/rand"
)

// FeedForward is a fully connected net with one ReLU hidden layer of
// max(2, ceil(in/2)) units. The output layer's weight matrix is the primary
// weight.
type FeedForward struct {
	in, hid, out int
	w1           []float64 // hid*in
	b1           []float64 // hid
	w2           []float64 // out*hid
	b2           []float64 // out
}

func NewFeedForward(in, out int, rng *rand.Rand) *FeedForward {
	hid := int(math.Ceil(float64(in) / 2))
	if hid < 2 {
		hid = 2
	}
	f := &FeedForward{
		in:  in,
		hid: hid,
		out: out,
		w1:  make([]float64, hid*in),
		b1:  make([]float64, hid),
		w2:  make([]float64, out*hid),
		b2:  make([]float64, out),
	}
	f.ResetParameters(rng)
	return f
}

func (f *FeedForward) Forward(x [][]float64) ([][]float64, error) {
	if err := checkInput(x, f.in); err != nil {
		return nil, err
	}
	ys := make([][]float64, len(x))
	for r, row := range x {
		h := f.hidden(row)
		y := make([]float64, f.out)
		for o := 0; o < f.out; o++ {
			total := f.b2[o]
			w := f.w2[o*f.hid : (o+1)*f.hid]
			for j, v := range h {
				total += w[j] * v
			}
			y[o] = total
		}
		ys[r] = y
	}
	return ys, nil
}

func (f *FeedForward) hidden(row []float64) []float64 {
	h := make([]float64, f.hid)
	for j := 0; j < f.hid; j++ {
		total := f.b1[j]
		w := f.w1[j*f.in : (j+1)*f.in]
		for i, v := range row {
			total += w[i] * v
		}
		if total > 0 {
			h[j] = total
		}
	}
	return h
}

func (f *FeedForward) ResetParameters(rng *rand.Rand) {
	resetUniform(rng, f.w1, f.b1, f.in)
	resetUniform(rng, f.w2, f.b2, f.hid)
}

// resetUniform draws weights and biases from U(-1/sqrt(fanIn), 1/sqrt(fanIn)).
func resetUniform(rng *rand.Rand, weight, bias []float64, fanIn int) {
	bound := 1.0 / math.Sqrt(float64(fanIn))
	for i := range weight {
		weight[i] = (rng.Float64()*2 - 1) * bound
	}
	for i := range bias {
		bias[i] = (rng.Float64()*2 - 1) * bound
	}
}

func (f *FeedForward) Parameters() []Parameter {
	return []Parameter{
		{Name: "fc1.weight", Values: f.w1},
		{Name: "fc1.bias", Values: f.b1},
		{Name: "fc2.weight", Values: f.w2},
		{Name: "fc2.bias", Values: f.b2},
	}
}

func (f *FeedForward) PrimaryWeight() []float64 {
	return copyValues(f.w2)
}

func (f *FeedForward) SetPrimaryWeight(w []float64) error {
	if len(w) != len(f.w2) {
		return ErrWeightLength
	}
	copy(f.w2, w)
	return nil
}

func (f *FeedForward) InSize() int  { return f.in }
func (f *FeedForward) OutSize() int { return f.out }

func (f *FeedForward) Backward(x [][]float64, outGrad [][]float64) ([]Parameter, error) {
	if err := checkInput(x, f.in); err != nil {
		return nil, err
	}
	if err := checkGrad(outGrad, len(x), f.out); err != nil {
		return nil, err
	}
	gw1 := make([]float64, f.hid*f.in)
	gb1 := make([]float64, f.hid)
	gw2 := make([]float64, f.out*f.hid)
	gb2 := make([]float64, f.out)
	scale := 1.0 / float64(len(x))
	for r, row := range x {
		h := f.hidden(row)
		hGrad := make([]float64, f.hid)
		for o := 0; o < f.out; o++ {
			g := outGrad[r][o] * scale
			gb2[o] += g
			w := f.w2[o*f.hid : (o+1)*f.hid]
			for j, v := range h {
				gw2[o*f.hid+j] += g * v
				hGrad[j] += g * w[j]
			}
		}
		for j := 0; j < f.hid; j++ {
			if h[j] <= 0 { // ReLU gate
				continue
			}
			gb1[j] += hGrad[j]
			for i, v := range row {
				gw1[j*f.in+i] += hGrad[j] * v
			}
		}
	}
	return []Parameter{
		{Name: "fc1.weight", Values: gw1},
		{Name: "fc1.bias", Values: gb1},
		{Name: "fc2.weight", Values: gw2},
		{Name: "fc2.bias", Values: gb2},
	}, nil
}
