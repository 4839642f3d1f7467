package trainer

import (
	"errors"
	"math"
	"math/rand"
)

// Predictor is the inference-mode surface of the ensemble.
type Predictor interface {
	Predict(x [][]float64) ([][]float64, error)
}

// VarPredictor additionally exposes the ensemble's uncertainty query.
type VarPredictor interface {
	Predictor
	Var(x [][]float64) ([][]float64, error)
}

// MemberForwarder is the training-mode surface of the ensemble.
type MemberForwarder interface {
	Forward(x [][]float64, mid int) ([][]float64, error)
	Len() int
}

// Greedy picks the argmax of the ensemble's combined estimate, optionally
// epsilon-dithered and optionally boosted by an exploration bonus
// proportional to the per-action predictive standard deviation.
type Greedy struct {
	Model      Predictor
	Epsilon    float64
	BonusScale float64
	Rand       *rand.Rand
}

func (p *Greedy) Act(state []float64) (int, error) {
	if p.Model == nil {
		return 0, errors.New("policy model is required")
	}
	x := [][]float64{state}
	q, err := p.Model.Predict(x)
	if err != nil {
		return 0, err
	}
	scores := q[0]

	if p.BonusScale > 0 {
		vp, ok := p.Model.(VarPredictor)
		if !ok {
			return 0, errors.New("bonus requires a model with a variance query")
		}
		vs, err := vp.Var(x)
		if err != nil {
			return 0, err
		}
		scores = append([]float64(nil), scores...)
		for a := range scores {
			scores[a] += p.BonusScale * math.Sqrt(vs[0][a])
		}
	}

	if p.Epsilon > 0 && p.Rand != nil && p.Rand.Float64() < p.Epsilon {
		return p.Rand.Intn(len(scores)), nil
	}
	return argmax(scores), nil
}

// Bootstrapped pins one randomly drawn member per episode and acts greedily
// on that member's estimate. NewEpisodeMember must be called at every episode
// boundary.
type Bootstrapped struct {
	Model MemberForwarder
	Rand  *rand.Rand
	mid   int
}

func (p *Bootstrapped) NewEpisodeMember() int {
	if p.Rand != nil && p.Model != nil && p.Model.Len() > 0 {
		p.mid = p.Rand.Intn(p.Model.Len())
	}
	return p.mid
}

// Member is the index the policy is currently acting with.
func (p *Bootstrapped) Member() int { return p.mid }

func (p *Bootstrapped) Act(state []float64) (int, error) {
	if p.Model == nil {
		return 0, errors.New("policy model is required")
	}
	q, err := p.Model.Forward([][]float64{state}, p.mid)
	if err != nil {
		return 0, err
	}
	return argmax(q[0]), nil
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
