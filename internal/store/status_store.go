package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"mock-relayer-go/internal/model"
)

// StatusStore maps submission ids to their processing status
type StatusStore struct {
	mu       sync.RWMutex
	statuses map[uuid.UUID]model.ProcessingStatus
}

// NewStatusStore creates an empty status store
func NewStatusStore() *StatusStore {
	return &StatusStore{
		statuses: make(map[uuid.UUID]model.ProcessingStatus),
	}
}

// Put inserts or replaces the status stored under status.ID
func (s *StatusStore) Put(status model.ProcessingStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[status.ID] = status
}

// Get returns the status for id or ErrNotFound
func (s *StatusStore) Get(id uuid.UUID) (model.ProcessingStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, ok := s.statuses[id]
	if !ok {
		return model.ProcessingStatus{}, ErrNotFound
	}
	return status, nil
}

// Transition applies update to the status for id under the store lock.
// Terminal statuses are never modified.
func (s *StatusStore) Transition(id uuid.UUID, update func(*model.ProcessingStatus)) (model.ProcessingStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, ok := s.statuses[id]
	if !ok {
		return model.ProcessingStatus{}, ErrNotFound
	}
	if status.Status.IsTerminal() {
		return status, fmt.Errorf("%w: %s is %s", ErrTerminalState, id, status.Status)
	}

	update(&status)
	s.statuses[id] = status
	return status, nil
}

// Snapshot returns a copy of all statuses ordered by creation time
func (s *StatusStore) Snapshot() []model.ProcessingStatus {
	s.mu.RLock()
	out := make([]model.ProcessingStatus, 0, len(s.statuses))
	for _, status := range s.statuses {
		out = append(out, status)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of tracked submissions
func (s *StatusStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.statuses)
}
