// Package wizard implements the multi-step event creation flow: a
// serialized configuration store, the ordered step sequences for the
// event and booking variants, and per-step validation gates.
package wizard

import (
	"sync"

	"github.com/amo-tech-ai/fashionos100-sub001/internal/pricing"
	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// Listener receives a snapshot of the configuration after every mutation.
type Listener func(cfg model.Configuration)

// Store holds a session's event configuration behind a single writer lock.
// Every read returns a deep copy, so callers never observe a partially
// applied update and cannot mutate shared state through a snapshot.
//
// The store does not validate. Invalid intermediate states are expected
// while the user types; validation gates live in the step checks.
type Store struct {
	mu        sync.Mutex
	cfg       model.Configuration
	calc      *pricing.Calculator
	listeners []Listener
}

// NewStore creates a store seeded with the default configuration.
func NewStore(calc *pricing.Calculator) *Store {
	return &Store{
		cfg:  model.DefaultConfiguration(),
		calc: calc,
	}
}

// Get returns a deep copy of the current configuration.
func (s *Store) Get() model.Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

// Update applies a partial patch. Fields absent from the patch are left
// untouched; explicitly present empty slices replace their targets.
func (s *Store) Update(patch model.ConfigurationPatch) model.Configuration {
	s.mu.Lock()
	patch.Apply(&s.cfg)
	snapshot := s.cfg.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
	return snapshot
}

// Replace swaps the whole configuration, used when restoring a draft.
func (s *Store) Replace(cfg model.Configuration) {
	s.mu.Lock()
	s.cfg = cfg.Clone()
	snapshot := s.cfg.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Apply runs fn against the current configuration under the lock and
// installs its result. It exists so a computed update, such as merging
// an AI suggestion, lands atomically even if edits raced the computation.
func (s *Store) Apply(fn func(model.Configuration) model.Configuration) model.Configuration {
	s.mu.Lock()
	s.cfg = fn(s.cfg.Clone())
	snapshot := s.cfg.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
	return snapshot
}

// Reset restores the default configuration.
func (s *Store) Reset() {
	s.mu.Lock()
	s.cfg = model.DefaultConfiguration()
	snapshot := s.cfg.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Breakdown prices the current configuration.
func (s *Store) Breakdown() model.Breakdown {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()
	return s.calc.Totals(cfg)
}

// Subscribe registers a listener called with a snapshot after each
// mutation. Listeners run outside the store lock.
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) notify(snapshot model.Configuration) {
	s.mu.Lock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}
