package wizard

import (
	"fmt"

	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// Variant selects which step sequence a session runs.
type Variant string

const (
	VariantEvent   Variant = "event"
	VariantBooking Variant = "booking"
)

// Valid reports whether v names a known flow.
func (v Variant) Valid() bool {
	return v == VariantEvent || v == VariantBooking
}

// CheckFunc validates a configuration for one step. It returns an empty
// string when the step may be left, otherwise a message suitable for
// display to the user.
type CheckFunc func(cfg model.Configuration) string

// StepDef describes one step in a flow. Steps without a Check always
// allow forward navigation.
type StepDef struct {
	ID    string
	Name  string
	Check CheckFunc
}

// Flow is an ordered, immutable sequence of steps. Position 0 is the
// entry step and the last position is the terminal confirmation step.
type Flow struct {
	Variant Variant
	Steps   []StepDef
}

// Len returns the number of steps.
func (f *Flow) Len() int { return len(f.Steps) }

// Step returns the definition at ordinal i, clamped into range.
func (f *Flow) Step(i int) StepDef {
	if i < 0 {
		i = 0
	}
	if i >= len(f.Steps) {
		i = len(f.Steps) - 1
	}
	return f.Steps[i]
}

// Terminal returns the ordinal of the final confirmation step.
func (f *Flow) Terminal() int { return len(f.Steps) - 1 }

// FlowFor returns the step sequence for a variant. Unknown variants get
// the event flow.
func FlowFor(v Variant, maxScenes int) *Flow {
	if v == VariantBooking {
		return bookingFlow(maxScenes)
	}
	return eventFlow()
}

func eventFlow() *Flow {
	return &Flow{
		Variant: VariantEvent,
		Steps: []StepDef{
			{ID: "intro", Name: "Welcome"},
			{ID: "draft-preview", Name: "Resume draft"},
			{ID: "basics", Name: "Event basics", Check: checkBasics},
			{ID: "visuals", Name: "Visual direction"},
			{ID: "venue", Name: "Venue and dates", Check: checkVenue},
			{ID: "tickets", Name: "Tickets", Check: checkTickets},
			{ID: "schedule", Name: "Schedule", Check: checkSchedule},
			{ID: "review", Name: "Review", Check: checkReview},
			{ID: "success", Name: "Published"},
		},
	}
}

func bookingFlow(maxScenes int) *Flow {
	return &Flow{
		Variant: VariantBooking,
		Steps: []StepDef{
			{ID: "intro", Name: "Welcome"},
			{ID: "brief", Name: "Creative brief", Check: checkBasics},
			{ID: "service", Name: "Service"},
			{ID: "style", Name: "Style", Check: checkStyle},
			{ID: "scenes", Name: "Scenes", Check: checkScenes(maxScenes)},
			{ID: "shots", Name: "Shot count", Check: checkShots},
			{ID: "retouching", Name: "Retouching"},
			{ID: "talent", Name: "Talent"},
			{ID: "venue", Name: "Location and dates", Check: checkVenue},
			{ID: "schedule", Name: "Schedule", Check: checkSchedule},
			{ID: "review", Name: "Review", Check: checkReview},
			{ID: "success", Name: "Booked"},
		},
	}
}

// Descriptor summarizes a flow for clients rendering a progress rail.
type StepInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Describe lists the steps in order.
func (f *Flow) Describe() []StepInfo {
	out := make([]StepInfo, len(f.Steps))
	for i, s := range f.Steps {
		out[i] = StepInfo{ID: s.ID, Name: s.Name}
	}
	return out
}

// IndexOf returns the ordinal of the step with the given ID.
func (f *Flow) IndexOf(id string) (int, error) {
	for i, s := range f.Steps {
		if s.ID == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("step %q not in %s flow", id, f.Variant)
}
