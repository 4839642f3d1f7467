package trainer

import (
	"errors"

	"ennead/internal/estimator"
	"ennead/internal/optim"
)

// TD applies a TD(0) squared-error update to a single ensemble member. Value
// estimates are read through the model's training-mode forward, so with prior
// functions enabled the member is trained against its prior-augmented output
// and learns the residual. The update itself only ever touches the addressed
// member's parameter group; the prior term is additive and frozen, so the
// member's output gradient is unchanged by it.
type TD struct {
	Gamma float64
	Opt   optim.SGD
}

// Step bootstraps the target from the same member's estimate of the next
// state and applies one optimizer step. It returns the squared TD error.
func (t TD) Step(model MemberForwarder, member estimator.Backprop, state *optim.State, mid int, group []estimator.Parameter, tr Transition) (float64, error) {
	if model == nil {
		return 0, errors.New("training model is required")
	}
	if member == nil {
		return 0, errors.New("member does not support backprop")
	}
	x := [][]float64{tr.State}
	q, err := model.Forward(x, mid)
	if err != nil {
		return 0, err
	}
	if tr.Action < 0 || tr.Action >= len(q[0]) {
		return 0, errors.New("transition action out of range")
	}

	target := tr.Reward
	if !tr.Done {
		qNext, err := model.Forward([][]float64{tr.Next}, mid)
		if err != nil {
			return 0, err
		}
		target += t.Gamma * maxValue(qNext[0])
	}

	delta := q[0][tr.Action] - target
	outGrad := make([][]float64, 1)
	outGrad[0] = make([]float64, len(q[0]))
	outGrad[0][tr.Action] = delta

	grads, err := member.Backward(x, outGrad)
	if err != nil {
		return 0, err
	}
	if err := t.Opt.Step(state, mid, group, grads); err != nil {
		return 0, err
	}
	return delta * delta, nil
}

func maxValue(values []float64) float64 {
	best := values[0]
	for _, v := range values[1:] {
		if v > best {
			best = v
		}
	}
	return best
}
