package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Suggestion is the loosely-typed payload returned by the generation
// boundary. It is deliberately distinct from Configuration: every field is
// optional, numbers may arrive as strings, and nothing here is trusted
// until the merge reconciles it field by field against the current
// document.
type Suggestion struct {
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
	Category       string `json:"category,omitempty"`
	TargetAudience string `json:"targetAudience,omitempty"`
	Location       string `json:"location,omitempty"`

	// Date is a free-form date string; the merge parses it or defaults.
	Date string `json:"date,omitempty"`

	TicketTiers []SuggestedTier     `json:"ticketTiers,omitempty"`
	Schedule    []SuggestedSchedule `json:"schedule,omitempty"`

	Service    string           `json:"service,omitempty"`
	Style      string           `json:"style,omitempty"`
	Scenes     []string         `json:"scenes,omitempty"`
	ShotCount  LooseInt         `json:"shotCount,omitempty"`
	Retouching string           `json:"retouching,omitempty"`
	Models     []SuggestedModel `json:"models,omitempty"`

	TitleSuggestions []string `json:"titleSuggestions,omitempty"`
	MoodTags         []string `json:"moodTags,omitempty"`
}

// SuggestedTier mirrors TicketTier with tolerant number decoding.
type SuggestedTier struct {
	Name     string     `json:"name"`
	Price    LooseFloat `json:"price"`
	Quantity LooseInt   `json:"quantity"`
}

// SuggestedSchedule mirrors ScheduleItem.
type SuggestedSchedule struct {
	Time     string `json:"time"`
	Activity string `json:"activity"`
}

// SuggestedModel mirrors TalentLine with tolerant number decoding.
type SuggestedModel struct {
	Type  string   `json:"type"`
	Count LooseInt `json:"count"`
}

// LooseFloat decodes from a JSON number or a numeric string. Generated
// payloads flip between the two; a value that is neither decodes to zero
// rather than failing the envelope.
type LooseFloat float64

// UnmarshalJSON implements tolerant decoding for LooseFloat.
func (f *LooseFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = 0
			return nil
		}
		s = strings.TrimSpace(strings.TrimPrefix(s, "$"))
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = LooseFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*f = 0
		return nil
	}
	*f = LooseFloat(v)
	return nil
}

// LooseInt decodes from a JSON number or a numeric string, truncating
// fractional values.
type LooseInt int

// UnmarshalJSON implements tolerant decoding for LooseInt.
func (i *LooseInt) UnmarshalJSON(data []byte) error {
	var f LooseFloat
	if err := f.UnmarshalJSON(data); err != nil {
		*i = 0
		return nil
	}
	*i = LooseInt(f)
	return nil
}

// GenerationFile is an attachment forwarded to the generation boundary.
type GenerationFile struct {
	Data     []byte `json:"data"`
	MIMEType string `json:"mimeType"`
}

// GenerationRequest is the input to the generation boundary: a freeform
// brief, optional venue/schedule URLs to scrape for context, and optional
// file attachments (a brand profile, a mood board).
type GenerationRequest struct {
	Prompt string           `json:"prompt"`
	URLs   []string         `json:"urls,omitempty"`
	Files  []GenerationFile `json:"files,omitempty"`
}
