package ennead

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), Options{
		StoreKind: "memory",
		Logger:    zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRunBanditEndToEnd(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	summary, err := client.Run(ctx, TrainRequest{
		Env:           "bandit",
		EnsembleSize:  3,
		Seed:          7,
		Steps:         60,
		RoundInterval: 20,
		LR:            0.2,
		Gamma:         0.9,
		ValidateSteps: 50,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.ID == "" {
		t.Fatal("run summary has no id")
	}
	if summary.Env != "bandit" || summary.EnsembleSize != 3 || summary.Seed != 7 {
		t.Fatalf("summary fields: %+v", summary)
	}
	if summary.Rounds != 3 {
		t.Fatalf("rounds: got %d, want 3", summary.Rounds)
	}
	// Both arms pay at least 0.6 minus noise; any policy clears 0.4.
	if summary.FinalMeanReturn < 0.4 {
		t.Fatalf("final mean return %f is implausibly low", summary.FinalMeanReturn)
	}

	runs, err := client.Runs(ctx)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != summary.ID {
		t.Fatalf("listed runs: %+v", runs)
	}

	diagnostics, err := client.Diagnostics(ctx, summary.ID)
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	if len(diagnostics) != 3 {
		t.Fatalf("got %d diagnostic rounds, want 3", len(diagnostics))
	}
	for i, diag := range diagnostics {
		if diag.Round != i || diag.Episodes <= 0 {
			t.Fatalf("round %d diagnostics: %+v", i, diag)
		}
		if diag.MeanVariance < 0 {
			t.Fatalf("round %d negative variance: %+v", i, diag)
		}
	}
}

func TestRunWithPriorsAndFeedForward(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	summary, err := client.Run(ctx, TrainRequest{
		Env:           "chain",
		Estimator:     "feedforward",
		EnsembleSize:  2,
		PriorScale:    0.5,
		Seed:          11,
		Steps:         40,
		RoundInterval: 20,
		Workers:       2,
		LR:            0.05,
		ValidateSteps: 30,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.PriorScale != 0.5 || summary.Estimator != "feedforward" {
		t.Fatalf("summary fields: %+v", summary)
	}
}

func TestRunRejectsBadRequests(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	if _, err := client.Run(ctx, TrainRequest{Env: "labyrinth", EnsembleSize: 2, Seed: 1}); err == nil {
		t.Fatal("expected unknown environment error")
	}
	if _, err := client.Run(ctx, TrainRequest{Env: "bandit", EnsembleSize: -1, Seed: 1}); err == nil {
		t.Fatal("expected ensemble size error")
	}
	if _, err := client.Run(ctx, TrainRequest{Env: "bandit", EnsembleSize: 2, Seed: 1, Aggregation: "median"}); err == nil {
		t.Fatal("expected aggregation error")
	}
}

func TestDiagnosticsUnknownRun(t *testing.T) {
	client := newTestClient(t)
	if _, err := client.Diagnostics(context.Background(), "nope"); err == nil {
		t.Fatal("expected missing diagnostics error")
	}
}
