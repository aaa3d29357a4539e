package page

import (
	"errors"
	"sync"
)

// ErrStoreDrained is returned when a drained Store is appended to or drained again.
var ErrStoreDrained = errors.New("page store already drained")

// Store is the ordered, append-only collection filled during the parse phase
// and consumed exactly once by the build phase.
type Store struct {
	mu      sync.Mutex
	pages   []*ParsedPage
	drained bool
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

// Append adds a page in arrival order.
func (s *Store) Append(p *ParsedPage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drained {
		return ErrStoreDrained
	}
	s.pages = append(s.pages, p)
	return nil
}

// Len reports the number of stored pages.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// Drain hands the pages over to the build phase. It succeeds once.
func (s *Store) Drain() ([]*ParsedPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drained {
		return nil, ErrStoreDrained
	}
	s.drained = true
	out := s.pages
	s.pages = nil
	return out, nil
}

// Reset empties the store for the next run.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = nil
	s.drained = false
}
