package draft

import (
	"context"

	"github.com/amo-tech-ai/fashionos100-sub001/internal/observability"
	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// InstrumentedStore wraps a Store and records save and load outcomes.
type InstrumentedStore struct {
	inner   Store
	metrics *observability.Metrics
}

// Instrument wraps store with metric recording. A nil metrics set returns
// the store unwrapped.
func Instrument(store Store, metrics *observability.Metrics) Store {
	if metrics == nil {
		return store
	}
	return &InstrumentedStore{inner: store, metrics: metrics}
}

func (s *InstrumentedStore) Save(ctx context.Context, key string, d model.Draft) error {
	err := s.inner.Save(ctx, key, d)
	if err != nil {
		s.metrics.RecordDraftSave("error")
	} else {
		s.metrics.RecordDraftSave("ok")
	}
	return err
}

func (s *InstrumentedStore) Load(ctx context.Context, key string) (model.Draft, bool, error) {
	d, ok, err := s.inner.Load(ctx, key)
	switch {
	case err != nil:
		s.metrics.RecordDraftLoad("error")
	case !ok:
		s.metrics.RecordDraftLoad("miss")
	default:
		s.metrics.RecordDraftLoad("hit")
	}
	return d, ok, err
}

func (s *InstrumentedStore) Clear(ctx context.Context, key string) error {
	return s.inner.Clear(ctx, key)
}
