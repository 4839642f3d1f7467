// Package estimator defines the trainable function-approximator contract the
// ensemble is built from, plus the two built-in architectures.
package estimator

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	ErrUnknownKind   = errors.New("unknown estimator kind")
	ErrWeightLength  = errors.New("primary weight length mismatch")
	ErrInputWidth    = errors.New("input width mismatch")
	ErrGradientShape = errors.New("gradient shape mismatch")
)

// Parameter is a named, flat trainable tensor. Values aliases the estimator's
// live storage so an optimizer can update it in place.
type Parameter struct {
	Name   string
	Values []float64
}

// Estimator is the capability contract consumed by the ensemble.
type Estimator interface {
	// Forward computes one output row per input row. Deterministic given
	// fixed parameters and input.
	Forward(x [][]float64) ([][]float64, error)
	// ResetParameters reinitializes all parameters to a fresh random draw.
	ResetParameters(rng *rand.Rand)
	// Parameters returns the trainable parameters in stable order.
	Parameters() []Parameter
	// PrimaryWeight returns a copy of the prior-sampling anchor tensor.
	PrimaryWeight() []float64
	// SetPrimaryWeight overwrites the anchor tensor.
	SetPrimaryWeight(w []float64) error
	InSize() int
	OutSize() int
}

// Backprop is an optional capability: gradients of a squared-error style
// output gradient with respect to the trainable parameters, averaged over the
// batch, in Parameters() order.
type Backprop interface {
	Estimator
	Backward(x [][]float64, outGrad [][]float64) ([]Parameter, error)
}

const (
	KindLinear      = "linear"
	KindFeedForward = "feedforward"
)

// Spec describes an estimator architecture for the factory.
type Spec struct {
	Kind string
	In   int
	Out  int
}

// Build constructs a fresh estimator from spec and initializes it with rng.
func Build(spec Spec, rng *rand.Rand) (Estimator, error) {
	if spec.In <= 0 || spec.Out <= 0 {
		return nil, fmt.Errorf("estimator sizes must be > 0: in=%d out=%d", spec.In, spec.Out)
	}
	switch spec.Kind {
	case "", KindLinear:
		return NewLinear(spec.In, spec.Out, rng), nil
	case KindFeedForward:
		return NewFeedForward(spec.In, spec.Out, rng), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, spec.Kind)
	}
}

func checkInput(x [][]float64, in int) error {
	for i, row := range x {
		if len(row) != in {
			return fmt.Errorf("%w: row %d has %d values, want %d", ErrInputWidth, i, len(row), in)
		}
	}
	return nil
}

func copyValues(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
