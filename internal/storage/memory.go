package storage

import (
	"context"
	"sort"
	"sync"

	"ennead/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	runs        map[string]model.RunSummary
	diagnostics map[string][]model.RoundDiagnostics
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[string]model.RunSummary)
	s.diagnostics = make(map[string][]model.RoundDiagnostics)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunSummary, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedUnix != runs[j].CreatedUnix {
			return runs[i].CreatedUnix < runs[j].CreatedUnix
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}

func (s *MemoryStore) SaveRoundDiagnostics(_ context.Context, runID string, diagnostics []model.RoundDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.diagnostics[runID] = append([]model.RoundDiagnostics(nil), diagnostics...)
	return nil
}

func (s *MemoryStore) GetRoundDiagnostics(_ context.Context, runID string) ([]model.RoundDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diagnostics, ok := s.diagnostics[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.RoundDiagnostics(nil), diagnostics...), true, nil
}
