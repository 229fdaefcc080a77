// Package draft persists in-progress wizard sessions so an abandoned
// browser tab can resume where it left off. Drafts are advisory: every
// failure mode degrades to "start fresh" rather than an error the user
// sees.
package draft

import (
	"context"
	"encoding/json"
	"time"

	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// Store persists serialized drafts by key.
type Store interface {
	// Save upserts the draft under key.
	Save(ctx context.Context, key string, d model.Draft) error

	// Load retrieves the draft under key. The bool is false when no
	// draft exists; that is not an error.
	Load(ctx context.Context, key string) (model.Draft, bool, error)

	// Clear removes the draft under key. Clearing an absent key is a
	// no-op.
	Clear(ctx context.Context, key string) error
}

// envelope is the stored wire form. State is kept as raw JSON so Load
// can decode it field-by-field and survive schema drift.
type envelope struct {
	Step      int                        `json:"step"`
	State     map[string]json.RawMessage `json:"state"`
	LastSaved time.Time                  `json:"lastSaved"`
}

// Encode serializes a draft for storage.
func Encode(d model.Draft) ([]byte, error) {
	stateJSON, err := json.Marshal(d.State)
	if err != nil {
		return nil, err
	}
	var state map[string]json.RawMessage
	if err := json.Unmarshal(stateJSON, &state); err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Step: d.Step, State: state, LastSaved: d.LastSaved})
}

// Decode deserializes a stored draft. Unknown state fields are ignored
// and fields that no longer decode into the current schema are dropped
// individually, so a draft written by an older build still restores the
// fields that survived.
func Decode(data []byte) (model.Draft, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return model.Draft{}, err
	}

	d := model.Draft{
		Step:      env.Step,
		State:     model.DefaultConfiguration(),
		LastSaved: env.LastSaved,
	}
	decodeState(env.State, &d.State)
	return d, nil
}

func decodeState(state map[string]json.RawMessage, cfg *model.Configuration) {
	tryField(state, "title", &cfg.Title)
	tryField(state, "description", &cfg.Description)
	tryField(state, "category", &cfg.Category)
	tryField(state, "targetAudience", &cfg.TargetAudience)
	tryField(state, "location", &cfg.Location)
	tryField(state, "verified", &cfg.Verified)
	tryField(state, "venue", &cfg.Venue)
	tryField(state, "startDate", &cfg.StartDate)
	tryField(state, "endDate", &cfg.EndDate)
	tryField(state, "tickets", &cfg.Tickets)
	tryField(state, "schedule", &cfg.Schedule)
	tryField(state, "service", &cfg.Service)
	tryField(state, "style", &cfg.Style)
	tryField(state, "productSize", &cfg.ProductSize)
	tryField(state, "scenes", &cfg.Scenes)
	tryField(state, "shotType", &cfg.ShotType)
	tryField(state, "subCategory", &cfg.SubCategory)
	tryField(state, "shotCount", &cfg.ShotCount)
	tryField(state, "retouching", &cfg.Retouching)
	tryField(state, "models", &cfg.Models)
	tryField(state, "titleSuggestions", &cfg.TitleSuggestions)
	tryField(state, "moodTags", &cfg.MoodTags)
}

// tryField decodes one state field into dst, leaving dst untouched when
// the field is absent or no longer decodes.
func tryField[T any](state map[string]json.RawMessage, key string, dst *T) {
	raw, ok := state[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	*dst = v
}
