package storage

import (
	"encoding/json"
	"fmt"
	"sync"

	"tubedeck/internal/domain"
)

// StateKey is the fixed key the full State blob is persisted under.
const StateKey = "state"

// StateStore loads and saves the single State root. Every mutating
// operation goes through Update, which holds an exclusive lock across the
// whole load-mutate-store sequence so concurrent requests cannot silently
// discard each other's writes.
type StateStore struct {
	kv domain.KV
	mu sync.Mutex
}

func NewStateStore(kv domain.KV) *StateStore {
	return &StateStore{kv: kv}
}

// Load returns the current State, creating an empty one when nothing has
// been persisted yet.
func (s *StateStore) Load() (*domain.State, error) {
	data, ok, err := s.kv.Get(StateKey)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if !ok {
		return domain.EmptyState(), nil
	}
	var st domain.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	st.Init()
	return &st, nil
}

// Update runs fn against a freshly loaded State and persists the result as
// one write. An error from fn aborts the update with nothing written, so a
// failed operation never leaves the persisted state half-mutated.
func (s *StateStore) Update(fn func(st *domain.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.Load()
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	return s.save(st)
}

// Replace wholesale-overwrites the persisted root. Used by import: last
// import wins, no merge.
func (s *StateStore) Replace(st *domain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(st)
}

func (s *StateStore) save(st *domain.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.kv.Put(StateKey, data); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
