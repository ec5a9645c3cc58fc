package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/colloc/pkg/colloc/internalerr"
	"github.com/cognicore/colloc/pkg/colloc/report"
	"github.com/cognicore/colloc/pkg/colloc/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu   sync.RWMutex
	runs map[string]store.Run
	now  func() time.Time
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs: make(map[string]store.Run),
		now:  time.Now,
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun stores a copy of the run.
func (s *Store) SaveRun(ctx context.Context, r store.Run) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r = store.Prepare(r, s.now())
	if _, ok := s.runs[r.ID]; ok {
		return "", fmt.Errorf("run %s already exists", r.ID)
	}
	s.runs[r.ID] = copyRun(r)
	return r.ID, nil
}

// GetRun returns a copy of a stored run.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return copyRun(r), nil
}

// ListRuns returns run headers, newest first.
func (s *Store) ListRuns(ctx context.Context, keyword string, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Run
	for _, r := range s.runs {
		if keyword != "" && r.Keyword != keyword {
			continue
		}
		r.Rows = nil
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteRun removes a run.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[id]; !ok {
		return fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	delete(s.runs, id)
	return nil
}

func copyRun(r store.Run) store.Run {
	rows := make([]report.Row, len(r.Rows))
	copy(rows, r.Rows)
	r.Rows = rows
	return r
}
