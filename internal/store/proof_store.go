package store

import (
	"sort"
	"sync"

	"mock-relayer-go/internal/model"
)

// ProofStore maps email hashes to generated proofs
type ProofStore struct {
	mu     sync.RWMutex
	proofs map[string]model.EmailProof
}

// NewProofStore creates an empty proof store
func NewProofStore() *ProofStore {
	return &ProofStore{
		proofs: make(map[string]model.EmailProof),
	}
}

// Put stores proof under its email hash, replacing any previous entry
func (s *ProofStore) Put(proof model.EmailProof) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proofs[proof.EmailHash] = proof
}

// Get returns the proof for emailHash or ErrNotFound
func (s *ProofStore) Get(emailHash string) (model.EmailProof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	proof, ok := s.proofs[emailHash]
	if !ok {
		return model.EmailProof{}, ErrNotFound
	}
	return proof, nil
}

// Snapshot returns a copy of all proofs ordered by creation time
func (s *ProofStore) Snapshot() []model.EmailProof {
	s.mu.RLock()
	out := make([]model.EmailProof, 0, len(s.proofs))
	for _, proof := range s.proofs {
		out = append(out, proof)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of distinct email hashes stored
func (s *ProofStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.proofs)
}
