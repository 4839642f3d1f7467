// Package ensemble implements a bootstrapped ensemble of estimators with
// optional randomized prior functions. B independently initialized members
// share the input data; training addresses one member at a time, inference
// aggregates all of them, and the spread across members is the uncertainty
// signal.
package ensemble

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"ennead/internal/estimator"
	"ennead/internal/parallel"
)

var (
	ErrEnsembleSize = errors.New("ensemble size must be >= 1")
	ErrMemberIndex  = errors.New("member index out of range")
	ErrNilFactory   = errors.New("estimator factory is required")
	ErrEmptyInput   = errors.New("input batch is empty")
	ErrActionIndex  = errors.New("action index out of range")
)

// Factory builds one fresh estimator instance of the prototype architecture.
// The ensemble never clones estimators; it asks the factory for new ones.
type Factory func() (estimator.Estimator, error)

type Config struct {
	// Size is B, fixed for the ensemble's lifetime.
	Size int
	// PriorScale is beta. Zero disables prior functions entirely; positive
	// values attach one frozen prior function per member whose primary weight
	// is redrawn from N(loc, 0.1*beta) before every use.
	PriorScale float64
	// Rand is the ensemble's random source. Nil gets a time-seeded one;
	// reproducible runs must pass their own.
	Rand *rand.Rand
	// Workers bounds the fan-out over members during multi-member calls.
	// Values < 2 keep the computation sequential.
	Workers int
	// Aggregation selects how Predict combines member outputs.
	Aggregation Aggregation
}

type Ensemble struct {
	members    []estimator.Estimator
	priorFns   []estimator.Estimator
	priors     []gaussian
	priorScale float64
	workers    int
	agg        Aggregation

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds B independent members via factory and re-randomizes each one, so
// members are independently initialized instances of the same architecture,
// not identical clones. With PriorScale > 0 it also builds one prior function
// per member, seeds it with that member's parameters, and snapshots the
// member's primary weight as the location of its prior distribution.
func New(factory Factory, cfg Config) (*Ensemble, error) {
	if cfg.Size < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrEnsembleSize, cfg.Size)
	}
	if factory == nil {
		return nil, ErrNilFactory
	}
	agg, err := normalizeAggregation(cfg.Aggregation)
	if err != nil {
		return nil, err
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	e := &Ensemble{
		members:    make([]estimator.Estimator, 0, cfg.Size),
		priorScale: cfg.PriorScale,
		workers:    workers,
		agg:        agg,
		rng:        rng,
	}

	for i := 0; i < cfg.Size; i++ {
		member, err := factory()
		if err != nil {
			return nil, fmt.Errorf("build member %d: %w", i, err)
		}
		member.ResetParameters(rng)
		e.members = append(e.members, member)
	}

	if cfg.PriorScale > 0 {
		scale := 0.1 * cfg.PriorScale
		e.priorFns = make([]estimator.Estimator, 0, cfg.Size)
		e.priors = make([]gaussian, 0, cfg.Size)
		for i, member := range e.members {
			priorFn, err := factory()
			if err != nil {
				return nil, fmt.Errorf("build prior function %d: %w", i, err)
			}
			if err := copyParameters(priorFn, member); err != nil {
				return nil, fmt.Errorf("seed prior function %d: %w", i, err)
			}
			e.priorFns = append(e.priorFns, priorFn)
			// The distribution is anchored at the member's freshly
			// initialized weight and never changes afterward.
			e.priors = append(e.priors, gaussian{loc: member.PrimaryWeight(), scale: scale})
		}
	}

	return e, nil
}

// Forward is the training-mode pass: the raw output of member mid, plus a
// freshly resampled prior function's output when priors are enabled. Updates
// derived from the result must only ever touch member mid's parameter group;
// the prior function's parameters stay frozen.
func (e *Ensemble) Forward(x [][]float64, mid int) ([][]float64, error) {
	if mid < 0 || mid >= len(e.members) {
		return nil, fmt.Errorf("%w: mid=%d size=%d", ErrMemberIndex, mid, len(e.members))
	}
	y, err := e.members[mid].Forward(x)
	if err != nil {
		return nil, err
	}
	if len(e.priorFns) > 0 {
		if err := e.resamplePrior(mid); err != nil {
			return nil, err
		}
		py, err := e.priorFns[mid].Forward(x)
		if err != nil {
			return nil, err
		}
		addInPlace(y, py)
	}
	return y, nil
}

// Predict is the inference-mode pass: every member's output (plus its
// resampled prior when enabled), combined by the configured aggregation.
func (e *Ensemble) Predict(x [][]float64) ([][]float64, error) {
	outs, err := e.memberOutputs(x, true)
	if err != nil {
		return nil, err
	}
	switch e.agg {
	case AggregationVote:
		return voteAcross(outs)
	default:
		return meanAcross(outs), nil
	}
}

// Var returns the per-batch, per-output sample variance across the members'
// raw predictions. Prior functions are never added here: uncertainty measures
// disagreement among the trained members alone.
func (e *Ensemble) Var(x [][]float64) ([][]float64, error) {
	outs, err := e.memberOutputs(x, false)
	if err != nil {
		return nil, err
	}
	return varAcross(outs), nil
}

// VarAt returns the variance of the first batch row's action-th output.
func (e *Ensemble) VarAt(x [][]float64, action int) (float64, error) {
	if len(x) == 0 {
		return 0, ErrEmptyInput
	}
	vs, err := e.Var(x)
	if err != nil {
		return 0, err
	}
	if action < 0 || action >= len(vs[0]) {
		return 0, fmt.Errorf("%w: action=%d outputs=%d", ErrActionIndex, action, len(vs[0]))
	}
	return vs[0][action], nil
}

// ParameterGroups exposes one group per member so an external optimizer can
// keep separate per-member statistics. Prior-function parameters are never
// included.
func (e *Ensemble) ParameterGroups() [][]estimator.Parameter {
	groups := make([][]estimator.Parameter, len(e.members))
	for i, member := range e.members {
		groups[i] = member.Parameters()
	}
	return groups
}

// Len reports B.
func (e *Ensemble) Len() int { return len(e.members) }

// Members returns the members in construction order. The slice is a copy;
// priors and distributions are not exposed.
func (e *Ensemble) Members() []estimator.Estimator {
	out := make([]estimator.Estimator, len(e.members))
	copy(out, e.members)
	return out
}

func (e *Ensemble) PriorScale() float64 { return e.priorScale }

func (e *Ensemble) String() string {
	return fmt.Sprintf("Ensemble(B=%d, priorScale=%g, agg=%s)", len(e.members), e.priorScale, e.agg)
}

// memberOutputs computes every member's prediction. Prior resampling draws
// happen up front under the RNG lock; the forward passes are independent and
// fan out across workers when configured.
func (e *Ensemble) memberOutputs(x [][]float64, withPriors bool) ([][][]float64, error) {
	usePriors := withPriors && len(e.priorFns) > 0
	if usePriors {
		for i := range e.priorFns {
			if err := e.resamplePrior(i); err != nil {
				return nil, err
			}
		}
	}

	outs := make([][][]float64, len(e.members))
	errs := make([]error, len(e.members))
	run := func(i int) {
		y, err := e.members[i].Forward(x)
		if err != nil {
			errs[i] = fmt.Errorf("member %d: %w", i, err)
			return
		}
		if usePriors {
			py, err := e.priorFns[i].Forward(x)
			if err != nil {
				errs[i] = fmt.Errorf("prior function %d: %w", i, err)
				return
			}
			addInPlace(y, py)
		}
		outs[i] = y
	}

	if e.workers > 1 {
		parallel.ForEach(len(e.members), e.workers, run)
	} else {
		for i := range e.members {
			run(i)
		}
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return outs, nil
}

func (e *Ensemble) resamplePrior(mid int) error {
	sample := e.priors[mid].sample(e.normFloat64)
	return e.priorFns[mid].SetPrimaryWeight(sample)
}

func (e *Ensemble) normFloat64() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.NormFloat64()
}

func copyParameters(dst, src estimator.Estimator) error {
	dstParams := dst.Parameters()
	srcParams := src.Parameters()
	if len(dstParams) != len(srcParams) {
		return fmt.Errorf("parameter count mismatch: %d vs %d", len(dstParams), len(srcParams))
	}
	for i := range srcParams {
		if len(dstParams[i].Values) != len(srcParams[i].Values) {
			return fmt.Errorf("parameter %s length mismatch: %d vs %d",
				srcParams[i].Name, len(dstParams[i].Values), len(srcParams[i].Values))
		}
		copy(dstParams[i].Values, srcParams[i].Values)
	}
	return nil
}

func addInPlace(dst, src [][]float64) {
	for r := range dst {
		for c := range dst[r] {
			dst[r][c] += src[r][c]
		}
	}
}
