package ensemble

import (
	"errors"
	"math/rand"
	"testing"

	"ennead/internal/estimator"
)

// sequenceFactory hands out stubs with per-member preset outputs, in order.
func sequenceFactory(outputs [][]float64) Factory {
	i := 0
	return func() (estimator.Estimator, error) {
		s := newStub(outputs[i%len(outputs)])
		i++
		return s, nil
	}
}

func buildWithOutputs(t *testing.T, outputs [][]float64, agg Aggregation) *Ensemble {
	t.Helper()
	ens, err := New(sequenceFactory(outputs), Config{
		Size:        len(outputs),
		Rand:        rand.New(rand.NewSource(1)),
		Aggregation: agg,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return ens
}

func TestMeanAggregation(t *testing.T) {
	ens := buildWithOutputs(t, [][]float64{{2, 1}, {0, 3}}, AggregationMean)
	y, err := ens.Predict(input)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if y[0][0] != 1 || y[0][1] != 2 {
		t.Fatalf("mean: got %v, want [1 2]", y[0])
	}
}

func TestVoteMajorityWins(t *testing.T) {
	// Members 1 and 2 prefer option 1; that is a strict majority of 3.
	ens := buildWithOutputs(t, [][]float64{{2, 1}, {0, 3}, {0, 4}}, AggregationVote)
	y, err := ens.Predict(input)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if y[0][1] != 3.5 {
		t.Fatalf("winning slot: got %f, want 3.5", y[0][1])
	}
	if y[0][0] != 0 {
		t.Fatalf("losing slot: got %f, want 0", y[0][0])
	}
}

func TestVoteTieResolvesToOptionZero(t *testing.T) {
	// One vote each: no strict majority for option 1, so option 0 wins and
	// only the member that agrees with it contributes values.
	ens := buildWithOutputs(t, [][]float64{{2, 1}, {0, 3}}, AggregationVote)
	y, err := ens.Predict(input)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if y[0][0] != 2 || y[0][1] != 1 {
		t.Fatalf("tie: got %v, want [2 1]", y[0])
	}
}

func TestVoteUnanimous(t *testing.T) {
	ens := buildWithOutputs(t, [][]float64{{5, 1}, {3, 2}}, AggregationVote)
	y, err := ens.Predict(input)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if y[0][0] != 4 || y[0][1] != 1.5 {
		t.Fatalf("unanimous: got %v, want [4 1.5]", y[0])
	}
}

func TestVoteRequiresTwoWayOutputs(t *testing.T) {
	ens := buildWithOutputs(t, [][]float64{{1, 2, 3}, {3, 2, 1}}, AggregationVote)
	if _, err := ens.Predict(input); !errors.Is(err, ErrVoteOutputs) {
		t.Fatalf("expected ErrVoteOutputs, got %v", err)
	}
}

func TestVarAcrossKnownSpread(t *testing.T) {
	// Outputs 0 and 2 around mean 1: sample variance (1+1)/(2-1) = 2.
	ens := buildWithOutputs(t, [][]float64{{0, 0}, {2, 2}}, AggregationMean)
	vs, err := ens.Var(input)
	if err != nil {
		t.Fatalf("var: %v", err)
	}
	if vs[0][0] != 2 || vs[0][1] != 2 {
		t.Fatalf("var: got %v, want [2 2]", vs[0])
	}
}

func TestSingleMemberVarIsZero(t *testing.T) {
	ens := buildWithOutputs(t, [][]float64{{3, -1}}, AggregationMean)
	vs, err := ens.Var(input)
	if err != nil {
		t.Fatalf("var: %v", err)
	}
	if vs[0][0] != 0 || vs[0][1] != 0 {
		t.Fatalf("var: got %v, want [0 0]", vs[0])
	}
}
