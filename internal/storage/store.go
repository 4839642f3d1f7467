package storage

import (
	"context"

	"ennead/internal/model"
)

// Store persists run summaries and per-round diagnostics.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunSummary) error
	GetRun(ctx context.Context, id string) (model.RunSummary, bool, error)
	ListRuns(ctx context.Context) ([]model.RunSummary, error)
	SaveRoundDiagnostics(ctx context.Context, runID string, diagnostics []model.RoundDiagnostics) error
	GetRoundDiagnostics(ctx context.Context, runID string) ([]model.RoundDiagnostics, bool, error)
}
