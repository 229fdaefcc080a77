package draft

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// SuppressFunc reports whether a save should be skipped for the given
// step ordinal. Intro and terminal steps are typically suppressed so an
// untouched or already-submitted session never leaves a draft behind.
type SuppressFunc func(step int) bool

// DebouncedSaver coalesces rapid configuration edits into periodic writes
// to a Store. Persistence failures are logged and swallowed; the editing
// session must never notice a storage outage.
type DebouncedSaver struct {
	store    Store
	key      string
	debounce time.Duration
	suppress SuppressFunc
	logger   *zap.Logger

	mu      sync.Mutex
	pending *model.Draft
	timer   *time.Timer
	closed  bool
}

// NewDebouncedSaver creates a saver writing to store under key.
func NewDebouncedSaver(store Store, key string, debounce time.Duration, suppress SuppressFunc, logger *zap.Logger) *DebouncedSaver {
	return &DebouncedSaver{
		store:    store,
		key:      key,
		debounce: debounce,
		suppress: suppress,
		logger:   logger,
	}
}

// Notify records a new state to persist. Only the latest state within a
// debounce window is written. A notification on a suppressed step drops
// any pending write as well, so a session that navigated to the terminal
// step does not flush stale state afterwards.
func (s *DebouncedSaver) Notify(step int, cfg model.Configuration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if s.suppress != nil && s.suppress(step) {
		s.pending = nil
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		return
	}

	s.pending = &model.Draft{
		Step:      step,
		State:     cfg.Clone(),
		LastSaved: time.Now().UTC(),
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.flush)
	}
}

// Flush writes any pending draft immediately.
func (s *DebouncedSaver) Flush() {
	s.flush()
}

func (s *DebouncedSaver) flush() {
	s.mu.Lock()
	d := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if d == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.store.Save(ctx, s.key, *d); err != nil {
		s.logger.Warn("draft save failed",
			zap.String("key", s.key),
			zap.Int("step", d.Step),
			zap.Error(err),
		)
	}
}

// Close flushes any pending draft and stops the saver. Notifications
// after Close are ignored.
func (s *DebouncedSaver) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.flush()
}

// Restore loads the draft under key. A saved step strictly between the
// entry and terminal ordinals is recovered together with the config and
// reported as such, so the caller can tell the user a draft was picked
// up. A step at either boundary (or outside the flow entirely) restores
// the config silently: the step is reset to the entry ordinal and the
// recovery is not reported.
func Restore(ctx context.Context, store Store, key string, terminal int) (model.Draft, bool, bool) {
	d, ok, err := store.Load(ctx, key)
	if err != nil || !ok {
		return model.Draft{}, false, false
	}
	recovered := d.Step > 0 && d.Step < terminal
	if !recovered {
		d.Step = 0
	}
	return d, recovered, true
}
