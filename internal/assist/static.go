package assist

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// StaticGenerator returns a fixed, plausible suggestion regardless of
// the brief. It backs the "static" provider for local development and
// demo environments with no API key.
type StaticGenerator struct{}

// Generate returns the canned suggestion.
func (StaticGenerator) Generate(_ context.Context, req model.GenerationRequest) (model.Suggestion, error) {
	return model.Suggestion{
		Title:       "Studio Launch Showcase",
		Description: "An evening showcase introducing the new collection, brief: " + truncate(req.Prompt, 80),
		Category:    "fashion",
		Location:    "TBD",
		TicketTiers: []model.SuggestedTier{
			{Name: "General Admission", Price: 0, Quantity: 150},
			{Name: "VIP", Price: 120, Quantity: 30},
		},
		Schedule: []model.SuggestedSchedule{
			{Time: "18:00", Activity: "Doors open"},
			{Time: "19:00", Activity: "Showcase"},
		},
		MoodTags: []string{"minimal", "editorial", "warm light"},
	}, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// FakeGenerator is a scriptable Generator for tests.
type FakeGenerator struct {
	Suggestion model.Suggestion
	Err        error
	Delay      time.Duration

	Calls int
}

// Generate returns the scripted result after the configured delay,
// honoring context cancellation.
func (f *FakeGenerator) Generate(ctx context.Context, _ model.GenerationRequest) (model.Suggestion, error) {
	f.Calls++
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return model.Suggestion{}, ctx.Err()
		}
	}
	if f.Err != nil {
		return model.Suggestion{}, f.Err
	}
	return f.Suggestion, nil
}
