package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dvloznov/spendsense/internal/jobs"
)

// Store is an in-memory implementation of RunStore.
// History is lost on restart.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*jobs.JobRun
}

// NewStore creates a new in-memory run store.
func NewStore() *Store {
	return &Store{
		runs: make(map[string]*jobs.JobRun),
	}
}

// SaveRun implements the RunStore interface.
func (s *Store) SaveRun(ctx context.Context, run *jobs.JobRun) error {
	if run.RunID == "" {
		return fmt.Errorf("SaveRun: run ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	runCopy := *run
	s.runs[run.RunID] = &runCopy

	return nil
}

// GetRun implements the RunStore interface.
func (s *Store) GetRun(ctx context.Context, runID string) (*jobs.JobRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[runID]
	if !exists {
		return nil, fmt.Errorf("GetRun: %s: %w", runID, jobs.ErrJobNotFound)
	}

	runCopy := *run
	return &runCopy, nil
}

// ListRuns implements the RunStore interface.
func (s *Store) ListRuns(ctx context.Context, filter jobs.RunFilter) ([]*jobs.JobRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*jobs.JobRun{}
	for _, run := range s.runs {
		if filter.JobName != "" && run.JobName != filter.JobName {
			continue
		}
		if filter.Status != "" && run.Status != filter.Status {
			continue
		}

		runCopy := *run
		result = append(result, &runCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].RunID > result[j].RunID
		}
		return result[i].StartedAt.After(result[j].StartedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*jobs.JobRun{}, nil
		}
		result = result[filter.Offset:]
	}

	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

var _ jobs.RunStore = (*Store)(nil)
