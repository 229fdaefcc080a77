package wizard

import (
	"sync"

	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// Sequencer tracks a session's position in a flow and enforces the
// forward-gate rule: leaving a step forward requires that step's check
// to pass against the configuration at the moment of the attempt.
// Backward navigation is never gated.
type Sequencer struct {
	mu      sync.Mutex
	flow    *Flow
	current int
}

// NewSequencer starts a sequencer at the flow's entry step.
func NewSequencer(flow *Flow) *Sequencer {
	return &Sequencer{flow: flow}
}

// Flow returns the step sequence this sequencer walks.
func (s *Sequencer) Flow() *Flow { return s.flow }

// Current returns the current step ordinal and its definition.
func (s *Sequencer) Current() (int, StepDef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.flow.Step(s.current)
}

// ValidationMessage runs the current step's check. An empty string means
// forward navigation is allowed.
func (s *Sequencer) ValidationMessage(cfg Snapshot) string {
	s.mu.Lock()
	step := s.flow.Step(s.current)
	s.mu.Unlock()

	if step.Check == nil {
		return ""
	}
	return step.Check(cfg.Get())
}

// Next advances one step if the current step's check passes. It returns
// the new ordinal and an empty message on success, or the unchanged
// ordinal and the check's message on refusal. At the terminal step it is
// a no-op.
func (s *Sequencer) Next(cfg Snapshot) (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current >= s.flow.Terminal() {
		return s.current, ""
	}

	step := s.flow.Step(s.current)
	if step.Check != nil {
		if msg := step.Check(cfg.Get()); msg != "" {
			return s.current, msg
		}
	}

	s.current++
	return s.current, ""
}

// Back moves one step backward without validation. At the entry step it
// returns false, signalling the caller should exit the wizard instead.
func (s *Sequencer) Back() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == 0 {
		return 0, false
	}
	s.current--
	return s.current, true
}

// GoTo jumps to an ordinal, clamped into the flow's range. Used for
// draft restoration; it performs no validation.
func (s *Sequencer) GoTo(step int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if step < 0 {
		step = 0
	}
	if step > s.flow.Terminal() {
		step = s.flow.Terminal()
	}
	s.current = step
	return s.current
}

// CanGoNext reports whether Next would advance: the current step's check
// passes and the terminal step has not been reached.
func (s *Sequencer) CanGoNext(cfg Snapshot) bool {
	s.mu.Lock()
	if s.current >= s.flow.Terminal() {
		s.mu.Unlock()
		return false
	}
	step := s.flow.Step(s.current)
	s.mu.Unlock()

	return step.Check == nil || step.Check(cfg.Get()) == ""
}

// CanGoBack reports whether Back would move rather than signal exit.
func (s *Sequencer) CanGoBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current > 0
}

// AtTerminal reports whether the session reached the confirmation step.
func (s *Sequencer) AtTerminal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current >= s.flow.Terminal()
}

// Snapshot provides the configuration a check runs against. *Store
// satisfies it; tests use literal snapshots.
type Snapshot interface {
	Get() model.Configuration
}
