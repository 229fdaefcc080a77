package assist

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// ConfigStore is the slice of the wizard store the assistant needs: a
// snapshot read and an atomic read-modify-write.
type ConfigStore interface {
	Get() model.Configuration
	Apply(fn func(model.Configuration) model.Configuration) model.Configuration
}

// Scraper fetches context from URLs attached to a brief. Failures are
// tolerated; scraping only enriches the prompt.
type Scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

// Assistant runs generations against one session's store. At most one
// generation is live per assistant: starting a new one cancels the old,
// and a result arriving after its generation was superseded is discarded
// without touching the store.
type Assistant struct {
	store     ConfigStore
	generator Generator
	scraper   Scraper
	merger    *Merger
	timeout   time.Duration
	logger    *zap.Logger

	mu         sync.Mutex
	cancel     context.CancelFunc
	generation uint64
}

// Options configures an Assistant.
type Options struct {
	Store     ConfigStore
	Generator Generator
	Scraper   Scraper
	Merger    *Merger
	Timeout   time.Duration
	Logger    *zap.Logger
}

// New creates an assistant.
func New(opts Options) *Assistant {
	return &Assistant{
		store:     opts.Store,
		generator: opts.Generator,
		scraper:   opts.Scraper,
		merger:    opts.Merger,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
	}
}

// Generate runs one generation: scrape any URLs into the prompt, call
// the generator, and merge the suggestion into the store atomically. The
// merge is all-or-nothing; any failure leaves the configuration exactly
// as it was.
func (a *Assistant) Generate(ctx context.Context, req model.GenerationRequest) (model.Configuration, error) {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.generation++
	gen := a.generation
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	a.cancel = cancel
	a.mu.Unlock()

	defer cancel()

	req.Prompt = a.enrichPrompt(ctx, req)

	suggestion, err := a.generator.Generate(ctx, req)
	if err != nil {
		if a.stale(gen) {
			return model.Configuration{}, model.NewGenerationSupersededError()
		}
		a.logger.Warn("generation failed", zap.Error(err))
		return model.Configuration{}, model.NewGenerationFailedError(
			"Could not generate a suggestion. Continue filling in the details manually.",
		)
	}

	if a.stale(gen) {
		return model.Configuration{}, model.NewGenerationSupersededError()
	}

	// The staleness decision repeats inside the closure so it is made
	// under the store's lock: a cancel landing after the check above can
	// no longer slip a superseded suggestion over later manual edits.
	var superseded bool
	merged := a.store.Apply(func(cfg model.Configuration) model.Configuration {
		if a.stale(gen) {
			superseded = true
			return cfg
		}
		return a.merger.Merge(cfg, suggestion)
	})
	if superseded {
		return model.Configuration{}, model.NewGenerationSupersededError()
	}
	return merged, nil
}

// Cancel aborts any in-flight generation, typically on navigation away
// from the step that started it.
func (a *Assistant) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.generation++
}

// stale reports whether a newer generation or a cancel superseded gen.
func (a *Assistant) stale(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generation != gen
}

// enrichPrompt appends scraped page context for each attached URL. A URL
// that fails to scrape is skipped.
func (a *Assistant) enrichPrompt(ctx context.Context, req model.GenerationRequest) string {
	if a.scraper == nil || len(req.URLs) == 0 {
		return req.Prompt
	}

	var b strings.Builder
	b.WriteString(req.Prompt)
	for _, u := range req.URLs {
		block, err := a.scraper.Scrape(ctx, u)
		if err != nil {
			a.logger.Debug("scrape skipped", zap.String("url", u), zap.Error(err))
			continue
		}
		b.WriteString("\n\n[PAGE CONTEXT]\n")
		b.WriteString(block)
	}
	return b.String()
}
