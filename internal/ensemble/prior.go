package ensemble

// gaussian is one member's prior distribution: an element-wise N(loc, scale)
// over the member's primary weight tensor. loc and scale never change after
// construction; the distribution is only ever read.
type gaussian struct {
	loc   []float64
	scale float64
}

// sample draws a fresh weight tensor using the supplied standard-normal
// source.
func (g gaussian) sample(norm func() float64) []float64 {
	out := make([]float64, len(g.loc))
	for i, loc := range g.loc {
		out[i] = loc + g.scale*norm()
	}
	return out
}
