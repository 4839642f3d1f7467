// Package optim implements the gradient-descent side of training. The
// optimizer works on the ensemble's parameter groups and keeps one velocity
// set per group, so per-member statistics never pool.
package optim

import (
	"errors"
	"fmt"

	"ennead/internal/estimator"
)

var (
	ErrGroupIndex = errors.New("parameter group index out of range")
	ErrGroupShape = errors.New("gradient does not match parameter group")
)

// SGD is stochastic gradient descent with classical momentum.
type SGD struct {
	LR       float64
	Momentum float64
}

// State holds per-group velocity buffers, shaped after the groups it was
// created from.
type State struct {
	velocity [][][]float64 // [group][param][index]
}

// NewState allocates zeroed velocity buffers for the given parameter groups.
func NewState(groups [][]estimator.Parameter) *State {
	velocity := make([][][]float64, len(groups))
	for g, group := range groups {
		velocity[g] = make([][]float64, len(group))
		for p, param := range group {
			velocity[g][p] = make([]float64, len(param.Values))
		}
	}
	return &State{velocity: velocity}
}

// Step applies one momentum-SGD update to a single group:
// v = momentum*v - lr*g; w += v. Only the addressed group's statistics and
// parameters are touched.
func (o SGD) Step(state *State, groupIdx int, group []estimator.Parameter, grads []estimator.Parameter) error {
	if state == nil {
		return errors.New("optimizer state is required")
	}
	if groupIdx < 0 || groupIdx >= len(state.velocity) {
		return fmt.Errorf("%w: %d", ErrGroupIndex, groupIdx)
	}
	if len(grads) != len(group) {
		return fmt.Errorf("%w: %d gradients for %d parameters", ErrGroupShape, len(grads), len(group))
	}
	vel := state.velocity[groupIdx]
	for p := range group {
		if len(grads[p].Values) != len(group[p].Values) || len(vel[p]) != len(group[p].Values) {
			return fmt.Errorf("%w: parameter %s", ErrGroupShape, group[p].Name)
		}
		for i := range group[p].Values {
			vel[p][i] = o.Momentum*vel[p][i] - o.LR*grads[p].Values[i]
			group[p].Values[i] += vel[p][i]
		}
	}
	return nil
}
