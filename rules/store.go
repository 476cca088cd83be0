package rules

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// RuleSetStore manages rule set persistence and retrieval
type RuleSetStore interface {
	// Add a new rule set
	Add(set *RuleSet) error

	// Get a rule set by ID
	Get(id string) (*RuleSet, error)

	// List all active rule sets
	ListActive() ([]*RuleSet, error)

	// Update an existing rule set
	Update(set *RuleSet) error

	// Delete a rule set
	Delete(id string) error
}

// InMemoryRuleSetStore implements RuleSetStore using an in-memory map
type InMemoryRuleSetStore struct {
	sets map[string]*RuleSet
	mu   sync.RWMutex
}

// NewInMemoryRuleSetStore creates a new in-memory rule set store
func NewInMemoryRuleSetStore() *InMemoryRuleSetStore {
	return &InMemoryRuleSetStore{
		sets: make(map[string]*RuleSet),
	}
}

// Add adds a new rule set and stamps CreatedAt/UpdatedAt
func (s *InMemoryRuleSetStore) Add(set *RuleSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sets[set.ID]; exists {
		return fmt.Errorf("rule set %s: %w", set.ID, ErrRuleSetExists)
	}

	now := time.Now()
	set.CreatedAt = now
	set.UpdatedAt = now
	s.sets[set.ID] = set
	return nil
}

// Get retrieves a rule set by ID
func (s *InMemoryRuleSetStore) Get(id string) (*RuleSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, exists := s.sets[id]
	if !exists {
		return nil, fmt.Errorf("rule set %s: %w", id, ErrRuleSetNotFound)
	}
	return set, nil
}

// ListActive returns all active rule sets, oldest first
func (s *InMemoryRuleSetStore) ListActive() ([]*RuleSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []*RuleSet
	for _, set := range s.sets {
		if set.Active {
			active = append(active, set)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].CreatedAt.Equal(active[j].CreatedAt) {
			return active[i].ID < active[j].ID
		}
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	return active, nil
}

// Update replaces an existing rule set, preserving CreatedAt
func (s *InMemoryRuleSetStore) Update(set *RuleSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.sets[set.ID]
	if !exists {
		return fmt.Errorf("rule set %s: %w", set.ID, ErrRuleSetNotFound)
	}

	set.CreatedAt = existing.CreatedAt
	set.UpdatedAt = time.Now()
	s.sets[set.ID] = set
	return nil
}

// Delete removes a rule set from the store
func (s *InMemoryRuleSetStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sets[id]; !exists {
		return fmt.Errorf("rule set %s: %w", id, ErrRuleSetNotFound)
	}

	delete(s.sets, id)
	return nil
}

// Clear removes every rule set
func (s *InMemoryRuleSetStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sets = make(map[string]*RuleSet)
}
