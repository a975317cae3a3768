package cases

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"casetrail/internal/domain"
	"casetrail/pkg/platform/sentinel"
)

// InMemoryStore serves cases loaded at startup. Backed by the cases JSON
// database file in deployments; seeded directly in tests.
type InMemoryStore struct {
	mu    sync.RWMutex
	cases map[string]domain.Case
	order []string
}

func NewInMemoryStore(seed ...domain.Case) *InMemoryStore {
	s := &InMemoryStore{cases: make(map[string]domain.Case, len(seed))}
	for _, c := range seed {
		s.put(c)
	}
	return s
}

// LoadFile builds a store from a JSON array of case objects.
func LoadFile(path string) (*InMemoryStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read case file %s: %w", path, err)
	}

	var loaded []domain.Case
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return nil, fmt.Errorf("parse case file %s: %w", path, err)
	}

	store := NewInMemoryStore()
	for _, c := range loaded {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("case file %s: %w", path, err)
		}
		priority, err := domain.ParsePriority(string(c.Priority))
		if err != nil {
			return nil, fmt.Errorf("case file %s: case %s: %w", path, c.ID, err)
		}
		c.Priority = priority
		store.put(c)
	}
	return store, nil
}

func (s *InMemoryStore) put(c domain.Case) {
	if _, exists := s.cases[c.ID]; !exists {
		s.order = append(s.order, c.ID)
	}
	s.cases[c.ID] = c
}

func (s *InMemoryStore) Get(_ context.Context, caseID string) (domain.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cases[caseID]
	if !ok {
		return domain.Case{}, fmt.Errorf("case %s: %w", caseID, sentinel.ErrNotFound)
	}
	return c, nil
}

// List returns cases in file order, the order operators expect in dropdowns.
func (s *InMemoryStore) List(_ context.Context) ([]domain.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Case, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.cases[id])
	}
	return out, nil
}
