package policy

import "sync"

// Store is the single live policy instance shared by every active
// negotiation session. Reads copy the current value; updates are
// validated against the merged result and applied all-or-nothing.
type Store struct {
	mu      sync.RWMutex
	current Policy
}

// NewStore creates a store seeded with the given policy.
// The seed is validated the same way updates are.
func NewStore(seed Policy) (*Store, error) {
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &Store{current: seed}, nil
}

// Get returns a snapshot of the current policy by value.
func (s *Store) Get() Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update merges the patch, validates the result, and swaps it in.
// On validation failure the prior policy is left unchanged and the
// INVALID_POLICY error names the offending field.
func (s *Store) Update(patch Patch) (Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := patch.apply(s.current)
	if err := next.Validate(); err != nil {
		return s.current, err
	}
	s.current = next
	return next, nil
}
