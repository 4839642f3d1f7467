package trainer

import (
	"math"
	"math/rand"
	"testing"

	"ennead/internal/estimator"
	"ennead/internal/optim"
)

// singleMember adapts one estimator to the training-mode surface, optionally
// adding a frozen offset the way a prior function would.
type singleMember struct {
	member estimator.Estimator
	offset float64
}

func (m singleMember) Len() int { return 1 }

func (m singleMember) Forward(x [][]float64, _ int) ([][]float64, error) {
	y, err := m.member.Forward(x)
	if err != nil {
		return nil, err
	}
	for r := range y {
		for c := range y[r] {
			y[r][c] += m.offset
		}
	}
	return y, nil
}

func TestTDStepConvergesOnTerminalReward(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	member := estimator.NewLinear(1, 2, rng)
	group := member.Parameters()
	state := optim.NewState([][]estimator.Parameter{group})
	td := TD{Gamma: 0.9, Opt: optim.SGD{LR: 0.1}}
	model := singleMember{member: member}

	tr := Transition{
		State:  []float64{1},
		Action: 1,
		Reward: 1,
		Next:   []float64{1},
		Done:   true,
	}

	firstLoss, err := td.Step(model, member, state, 0, group, tr)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	var lastLoss float64
	for i := 0; i < 200; i++ {
		lastLoss, err = td.Step(model, member, state, 0, group, tr)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
	}

	if lastLoss >= firstLoss {
		t.Fatalf("loss did not shrink: first %f last %f", firstLoss, lastLoss)
	}
	q, err := member.Forward([][]float64{tr.State})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if math.Abs(q[0][1]-1) > 0.05 {
		t.Fatalf("q(state, action) = %f, want ~1", q[0][1])
	}
}

func TestTDStepTrainsAgainstAugmentedValues(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	member := estimator.NewLinear(1, 2, rng)
	for _, param := range member.Parameters() {
		for i := range param.Values {
			param.Values[i] = 0
		}
	}
	group := member.Parameters()
	state := optim.NewState([][]estimator.Parameter{group})
	td := TD{Gamma: 0.9, Opt: optim.SGD{LR: 0.1}}

	const offset = 0.5
	model := singleMember{member: member, offset: offset}
	tr := Transition{
		State:  []float64{1},
		Action: 1,
		Reward: 1,
		Next:   []float64{1},
		Done:   true,
	}

	loss, err := td.Step(model, member, state, 0, group, tr)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	// Zeroed member plus the frozen offset: delta = 0.5 - 1, loss 0.25.
	if math.Abs(loss-0.25) > 1e-12 {
		t.Fatalf("first loss %f, want 0.25", loss)
	}

	for i := 0; i < 300; i++ {
		if _, err := td.Step(model, member, state, 0, group, tr); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	// The member learns the residual: its raw estimate settles near
	// reward - offset so the augmented value matches the target.
	q, err := member.Forward([][]float64{tr.State})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if math.Abs(q[0][1]-(1-offset)) > 0.05 {
		t.Fatalf("member estimate %f, want ~%f", q[0][1], 1-offset)
	}
}

func TestTDStepBootstrapsFromNextState(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	member := estimator.NewLinear(1, 2, rng)
	group := member.Parameters()
	state := optim.NewState([][]estimator.Parameter{group})
	td := TD{Gamma: 0.5, Opt: optim.SGD{LR: 0.05}}
	model := singleMember{member: member}

	tr := Transition{
		State:  []float64{1},
		Action: 0,
		Reward: 0,
		Next:   []float64{1},
		Done:   false,
	}

	// Fixed point of q[a] = 0 + 0.5*max(q) with updates only on action 0
	// pushes q[0] toward 0.5*max(q); just confirm updates move the estimate
	// and stay finite.
	before, err := member.Forward([][]float64{tr.State})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	for i := 0; i < 50; i++ {
		if _, err := td.Step(model, member, state, 0, group, tr); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	after, err := member.Forward([][]float64{tr.State})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if math.IsNaN(after[0][0]) || math.IsInf(after[0][0], 0) {
		t.Fatalf("estimate diverged: %v", after[0])
	}
	if before[0][0] == after[0][0] {
		t.Fatal("bootstrapped update left the estimate unchanged")
	}
}

func TestTDStepValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	member := estimator.NewLinear(1, 2, rng)
	group := member.Parameters()
	state := optim.NewState([][]estimator.Parameter{group})
	td := TD{Gamma: 0.9, Opt: optim.SGD{LR: 0.1}}
	model := singleMember{member: member}

	if _, err := td.Step(nil, member, state, 0, group, Transition{}); err == nil {
		t.Fatal("expected nil-model error")
	}
	if _, err := td.Step(model, nil, state, 0, group, Transition{}); err == nil {
		t.Fatal("expected nil-member error")
	}
	bad := Transition{State: []float64{1}, Action: 9, Next: []float64{1}}
	if _, err := td.Step(model, member, state, 0, group, bad); err == nil {
		t.Fatal("expected action range error")
	}
}
