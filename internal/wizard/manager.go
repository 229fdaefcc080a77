package wizard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/amo-tech-ai/fashionos100-sub001/internal/draft"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/pricing"
	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// Assistant generates and merges AI suggestions into a session's store.
// A nil Assistant on a session means assistance is disabled.
type Assistant interface {
	// Generate produces a suggestion and merges it atomically. The
	// returned configuration is the post-merge snapshot.
	Generate(ctx context.Context, req model.GenerationRequest) (model.Configuration, error)

	// Cancel aborts any in-flight generation.
	Cancel()
}

// AssistantFactory builds an assistant bound to one session's store.
type AssistantFactory func(store *Store) Assistant

// Session is one user's pass through a wizard flow.
type Session struct {
	ID        string
	Subject   string
	Variant   Variant
	Store     *Store
	Seq       *Sequencer
	Saver     *draft.DebouncedSaver
	Assistant Assistant

	// DraftRecovered is set when the session resumed a mid-flow draft,
	// so the client can tell the user their work was picked up. A
	// boundary-step draft restores the config silently and leaves this
	// unset.
	DraftRecovered bool

	draftKey string
}

// Manager owns session lifecycles: creation with draft restoration,
// lookup, submission and discard.
type Manager struct {
	calc       *pricing.Calculator
	drafts     draft.Store
	namespace  string
	debounce   time.Duration
	maxScenes  int
	assistants AssistantFactory
	logger     *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	Calculator *pricing.Calculator
	Drafts     draft.Store
	Namespace  string
	Debounce   time.Duration
	MaxScenes  int
	Assistants AssistantFactory
	Logger     *zap.Logger
}

// NewManager creates a session manager.
func NewManager(opts ManagerOptions) *Manager {
	return &Manager{
		calc:       opts.Calculator,
		drafts:     opts.Drafts,
		namespace:  opts.Namespace,
		debounce:   opts.Debounce,
		maxScenes:  opts.MaxScenes,
		assistants: opts.Assistants,
		logger:     opts.Logger,
		sessions:   make(map[string]*Session),
	}
}

// Create starts a session for a subject and variant, restoring any saved
// draft for that subject before the first step renders.
func (m *Manager) Create(ctx context.Context, subject string, variant Variant) (*Session, error) {
	if !variant.Valid() {
		return nil, model.NewBadRequestError(fmt.Sprintf("unknown wizard variant %q", variant))
	}

	flow := FlowFor(variant, m.maxScenes)
	store := NewStore(m.calc)
	seq := NewSequencer(flow)

	key := draftKey(m.namespace, subject, variant)
	var recovered bool
	if d, stepRecovered, ok := draft.Restore(ctx, m.drafts, key, flow.Terminal()); ok {
		store.Replace(d.State)
		if stepRecovered {
			seq.GoTo(d.Step)
		}
		recovered = stepRecovered
	}

	sess := &Session{
		ID:             uuid.New().String(),
		Subject:        subject,
		Variant:        variant,
		Store:          store,
		Seq:            seq,
		DraftRecovered: recovered,
		draftKey:       key,
	}

	sess.Saver = draft.NewDebouncedSaver(m.drafts, key, m.debounce, func(step int) bool {
		return step == 0 || step >= flow.Terminal()
	}, m.logger)

	// Every store mutation feeds the saver with the position current at
	// that moment.
	store.Subscribe(func(cfg model.Configuration) {
		step, _ := seq.Current()
		sess.Saver.Notify(step, cfg)
	})

	if m.assistants != nil {
		sess.Assistant = m.assistants(store)
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	return sess, nil
}

// Get returns a session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, model.NewSessionNotFoundError(id)
	}
	return sess, nil
}

// Submit completes a session from its review step. On success the saved
// draft is cleared and the session's configuration is returned as the
// published event, then the store resets to defaults.
func (m *Manager) Submit(ctx context.Context, id string) (model.Configuration, model.Breakdown, error) {
	sess, err := m.Get(id)
	if err != nil {
		return model.Configuration{}, model.Breakdown{}, err
	}

	if step, _ := sess.Seq.Current(); step != sess.Seq.Flow().Terminal()-1 {
		return model.Configuration{}, model.Breakdown{}, model.NewInvalidTransitionError(
			"submission is only allowed from the review step",
		)
	}
	if _, msg := sess.Seq.Next(sess.Store); msg != "" {
		return model.Configuration{}, model.Breakdown{}, model.NewInvalidTransitionError(msg)
	}

	published := sess.Store.Get()
	breakdown := sess.Store.Breakdown()

	if err := m.drafts.Clear(ctx, sess.draftKey); err != nil {
		m.logger.Warn("draft clear failed", zap.String("key", sess.draftKey), zap.Error(err))
	}
	sess.Store.Reset()

	return published, breakdown, nil
}

// Discard drops a session's saved draft and resets it to defaults.
func (m *Manager) Discard(ctx context.Context, id string) error {
	sess, err := m.Get(id)
	if err != nil {
		return err
	}

	if err := m.drafts.Clear(ctx, sess.draftKey); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	// The sequencer moves to the entry step before the store resets, so
	// the reset notification reaches the saver on a suppressed step and
	// drops any pending write instead of re-filling the cleared slot.
	sess.Seq.GoTo(0)
	sess.Store.Reset()
	return nil
}

// Close releases a session, flushing any pending draft write.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		if sess.Assistant != nil {
			sess.Assistant.Cancel()
		}
		sess.Saver.Close()
	}
}

func draftKey(namespace, subject string, variant Variant) string {
	return fmt.Sprintf("%s:%s:%s", namespace, subject, variant)
}
