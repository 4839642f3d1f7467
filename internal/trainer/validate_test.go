package trainer

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestValidateMeanReturn(t *testing.T) {
	e := &scriptEnv{rewards: []float64{1, 2}}
	mean, err := Validate(context.Background(), e, fixedPolicy{}, 6, zerolog.Nop())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	// Three full two-step episodes, each returning 3.
	if mean != 3 {
		t.Fatalf("mean return: got %f, want 3", mean)
	}
}

func TestValidateHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := &scriptEnv{rewards: []float64{1}}
	if _, err := Validate(ctx, e, fixedPolicy{}, 10, zerolog.Nop()); err == nil {
		t.Fatal("expected context error")
	}
}

func TestValidateZeroBudget(t *testing.T) {
	e := &scriptEnv{rewards: []float64{1}}
	mean, err := Validate(context.Background(), e, fixedPolicy{}, 0, zerolog.Nop())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if mean != 0 {
		t.Fatalf("mean return: got %f, want 0", mean)
	}
}
