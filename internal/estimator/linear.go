package estimator

import "math/rand"

// Linear is a single affine layer. Reset draws every weight and bias from
// N(0, 0.1).
type Linear struct {
	in, out int
	weight  []float64 // out*in, row-major
	bias    []float64 // out
}

func NewLinear(in, out int, rng *rand.Rand) *Linear {
	l := &Linear{
		in:     in,
		out:    out,
		weight: make([]float64, out*in),
		bias:   make([]float64, out),
	}
	l.ResetParameters(rng)
	return l
}

func (l *Linear) Forward(x [][]float64) ([][]float64, error) {
	if err := checkInput(x, l.in); err != nil {
		return nil, err
	}
	ys := make([][]float64, len(x))
	for r, row := range x {
		y := make([]float64, l.out)
		for o := 0; o < l.out; o++ {
			total := l.bias[o]
			w := l.weight[o*l.in : (o+1)*l.in]
			for i, v := range row {
				total += w[i] * v
			}
			y[o] = total
		}
		ys[r] = y
	}
	return ys, nil
}

func (l *Linear) ResetParameters(rng *rand.Rand) {
	for i := range l.weight {
		l.weight[i] = rng.NormFloat64() * 0.1
	}
	for i := range l.bias {
		l.bias[i] = rng.NormFloat64() * 0.1
	}
}

func (l *Linear) Parameters() []Parameter {
	return []Parameter{
		{Name: "weight", Values: l.weight},
		{Name: "bias", Values: l.bias},
	}
}

func (l *Linear) PrimaryWeight() []float64 {
	return copyValues(l.weight)
}

func (l *Linear) SetPrimaryWeight(w []float64) error {
	if len(w) != len(l.weight) {
		return ErrWeightLength
	}
	copy(l.weight, w)
	return nil
}

func (l *Linear) InSize() int  { return l.in }
func (l *Linear) OutSize() int { return l.out }

// Backward returns batch-averaged gradients for a given output gradient.
func (l *Linear) Backward(x [][]float64, outGrad [][]float64) ([]Parameter, error) {
	if err := checkInput(x, l.in); err != nil {
		return nil, err
	}
	if err := checkGrad(outGrad, len(x), l.out); err != nil {
		return nil, err
	}
	gw := make([]float64, l.out*l.in)
	gb := make([]float64, l.out)
	scale := 1.0 / float64(len(x))
	for r, row := range x {
		for o := 0; o < l.out; o++ {
			g := outGrad[r][o] * scale
			gb[o] += g
			for i, v := range row {
				gw[o*l.in+i] += g * v
			}
		}
	}
	return []Parameter{
		{Name: "weight", Values: gw},
		{Name: "bias", Values: gb},
	}, nil
}

func checkGrad(outGrad [][]float64, rows, out int) error {
	if len(outGrad) != rows {
		return ErrGradientShape
	}
	for _, row := range outGrad {
		if len(row) != out {
			return ErrGradientShape
		}
	}
	return nil
}
