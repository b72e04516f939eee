package testutil

import "sync"

// IdentitySequence hands out backend-style identity values for tests.
//
// The first call to Next returns 1. Reset rewinds the sequence so the same
// scenario can run again with identical identities.
//
// Thread-safety: all methods are safe for concurrent use.
type IdentitySequence struct {
	mu   sync.Mutex
	last int64
}

// NewIdentitySequence creates a sequence whose next value is 1.
func NewIdentitySequence() *IdentitySequence {
	return &IdentitySequence{}
}

// Next increments and returns the next identity.
func (s *IdentitySequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.last
}

// Current returns the last identity handed out, or 0.
func (s *IdentitySequence) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Reset rewinds the sequence to 0.
func (s *IdentitySequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = 0
}
