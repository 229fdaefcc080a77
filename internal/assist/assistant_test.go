package assist

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// memStore is a minimal ConfigStore for tests.
type memStore struct {
	mu  sync.Mutex
	cfg model.Configuration
}

func (s *memStore) Get() model.Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

func (s *memStore) Apply(fn func(model.Configuration) model.Configuration) model.Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = fn(s.cfg.Clone())
	return s.cfg.Clone()
}

func newTestAssistant(gen Generator) (*Assistant, *memStore) {
	store := &memStore{cfg: model.DefaultConfiguration()}
	a := New(Options{
		Store:     store,
		Generator: gen,
		Merger:    newTestMerger(),
		Timeout:   time.Second,
		Logger:    zap.NewNop(),
	})
	return a, store
}

func TestAssistant_mergesOnSuccess(t *testing.T) {
	gen := &FakeGenerator{Suggestion: model.Suggestion{Title: "Generated Show", Category: "runway"}}
	a, store := newTestAssistant(gen)

	got, err := a.Generate(context.Background(), model.GenerationRequest{Prompt: "a runway show"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got.Title != "Generated Show" || got.Category != model.CategoryRunway {
		t.Errorf("merged = %+v", got)
	}
	if store.Get().Title != "Generated Show" {
		t.Error("merge not installed in store")
	}
}

func TestAssistant_failureLeavesStoreUntouched(t *testing.T) {
	gen := &FakeGenerator{Err: errors.New("upstream 500")}
	a, store := newTestAssistant(gen)
	before := store.Get()

	_, err := a.Generate(context.Background(), model.GenerationRequest{Prompt: "x"})
	env, ok := err.(*model.ErrorEnvelope)
	if !ok || env.Code != model.ErrGenerationFailed {
		t.Fatalf("err = %v", err)
	}

	after := store.Get()
	if after.Title != before.Title || after.StartDate != nil {
		t.Errorf("store changed on failure: %+v", after)
	}
}

func TestAssistant_cancelDiscardsInFlightResult(t *testing.T) {
	gen := &FakeGenerator{
		Suggestion: model.Suggestion{Title: "Too Late"},
		Delay:      50 * time.Millisecond,
	}
	a, store := newTestAssistant(gen)

	done := make(chan error, 1)
	go func() {
		_, err := a.Generate(context.Background(), model.GenerationRequest{Prompt: "x"})
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	a.Cancel()

	err := <-done
	env, ok := err.(*model.ErrorEnvelope)
	if !ok || env.Code != model.ErrGenerationSuperseded {
		t.Fatalf("err = %v", err)
	}
	if store.Get().Title == "Too Late" {
		t.Error("cancelled generation reached the store")
	}
}

// cancelOnApplyStore cancels the assistant when Apply is entered, after
// Generate's staleness pre-check has already passed.
type cancelOnApplyStore struct {
	memStore
	assistant *Assistant
}

func (s *cancelOnApplyStore) Apply(fn func(model.Configuration) model.Configuration) model.Configuration {
	s.assistant.Cancel()
	return s.memStore.Apply(fn)
}

func TestAssistant_cancelDuringMergeDiscardsSuggestion(t *testing.T) {
	gen := &FakeGenerator{Suggestion: model.Suggestion{Title: "Too Late"}}
	store := &cancelOnApplyStore{memStore: memStore{cfg: model.DefaultConfiguration()}}
	a := New(Options{
		Store:     store,
		Generator: gen,
		Merger:    newTestMerger(),
		Timeout:   time.Second,
		Logger:    zap.NewNop(),
	})
	store.assistant = a

	_, err := a.Generate(context.Background(), model.GenerationRequest{Prompt: "x"})
	env, ok := err.(*model.ErrorEnvelope)
	if !ok || env.Code != model.ErrGenerationSuperseded {
		t.Fatalf("err = %v", err)
	}
	if store.Get().Title == "Too Late" {
		t.Error("superseded suggestion reached the store")
	}
}

// promptedGenerator answers with a title matching the brief, so the two
// racing generations produce distinguishable results.
type promptedGenerator struct {
	delays map[string]time.Duration
}

func (g *promptedGenerator) Generate(ctx context.Context, req model.GenerationRequest) (model.Suggestion, error) {
	if d := g.delays[req.Prompt]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return model.Suggestion{}, ctx.Err()
		}
	}
	return model.Suggestion{Title: req.Prompt}, nil
}

func TestAssistant_newGenerationSupersedesOld(t *testing.T) {
	gen := &promptedGenerator{delays: map[string]time.Duration{"old": 50 * time.Millisecond}}
	a, store := newTestAssistant(gen)

	oldDone := make(chan error, 1)
	go func() {
		_, err := a.Generate(context.Background(), model.GenerationRequest{Prompt: "old"})
		oldDone <- err
	}()

	time.Sleep(10 * time.Millisecond)

	if _, err := a.Generate(context.Background(), model.GenerationRequest{Prompt: "new"}); err != nil {
		t.Fatalf("second Generate: %v", err)
	}

	err := <-oldDone
	env, ok := err.(*model.ErrorEnvelope)
	if !ok || env.Code != model.ErrGenerationSuperseded {
		t.Fatalf("old generation err = %v", err)
	}
	if got := store.Get().Title; got != "new" {
		t.Errorf("Title = %q, stale result won", got)
	}
}

// scriptedScraper returns fixed blocks per URL.
type scriptedScraper struct {
	blocks map[string]string
}

func (s *scriptedScraper) Scrape(_ context.Context, url string) (string, error) {
	block, ok := s.blocks[url]
	if !ok {
		return "", errors.New("fetch failed")
	}
	return block, nil
}

// capturingGenerator records the request it received.
type capturingGenerator struct {
	req model.GenerationRequest
}

func (g *capturingGenerator) Generate(_ context.Context, req model.GenerationRequest) (model.Suggestion, error) {
	g.req = req
	return model.Suggestion{}, nil
}

func TestAssistant_scrapedContextEnrichesPrompt(t *testing.T) {
	gen := &capturingGenerator{}
	a, _ := newTestAssistant(gen)
	a.scraper = &scriptedScraper{blocks: map[string]string{
		"https://venue.example/loft": "Title: The Loft\nLocation: 12 Main St",
	}}

	_, err := a.Generate(context.Background(), model.GenerationRequest{
		Prompt: "brief",
		URLs:   []string{"https://venue.example/loft", "https://dead.example"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if got := gen.req.Prompt; !strings.Contains(got, "The Loft") {
		t.Errorf("prompt not enriched with scraped context: %q", got)
	}
}
