// Package assist turns a free-text brief into a structured suggestion
// and merges it into a wizard session. Suggestions never overwrite valid
// user input with garbage: each field is taken only when it passes
// validation, otherwise the current value stands.
package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	genai "google.golang.org/genai"

	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// Generator produces a structured suggestion from a brief.
type Generator interface {
	Generate(ctx context.Context, req model.GenerationRequest) (model.Suggestion, error)
}

const suggestionPrompt = `You are an event production planner for a fashion services marketplace.
From the brief below, produce a JSON object with any of these fields you can
infer (omit the rest): title, description, category (one of fashion, product,
editorial, runway, popup, conference, party), targetAudience, location, date
(ISO 8601), ticketTiers (name, price, quantity), schedule (time, activity),
service, style, retouching, scenes, shotCount, models (type, count),
titleSuggestions, moodTags.
Respond with JSON only.`

// GeminiGenerator calls the Gemini API with a JSON response contract.
type GeminiGenerator struct {
	cli   *genai.Client
	model string
}

// NewGeminiGenerator creates a generator using the given model. The API
// key is read by the client from GEMINI_API_KEY.
func NewGeminiGenerator(ctx context.Context, modelName string) (*GeminiGenerator, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiGenerator{cli: cli, model: modelName}, nil
}

// Generate sends the brief, any scraped page context and attached files
// to the model and decodes the JSON suggestion.
func (g *GeminiGenerator) Generate(ctx context.Context, req model.GenerationRequest) (model.Suggestion, error) {
	parts := []*genai.Part{{Text: suggestionPrompt + "\n\n[BRIEF]\n" + req.Prompt}}
	for _, f := range req.Files {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{Data: f.Data, MIMEType: f.MIMEType},
		})
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: parts}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return model.Suggestion{}, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return model.Suggestion{}, fmt.Errorf("empty model response")
	}

	text := stripCodeFence(resp.Candidates[0].Content.Parts[0].Text)

	var s model.Suggestion
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return model.Suggestion{}, fmt.Errorf("decode suggestion: %w", err)
	}
	return s, nil
}

// stripCodeFence removes a ```json fence the model sometimes wraps its
// output in despite the MIME type contract.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
