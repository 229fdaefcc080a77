package assist

import (
	"strings"
	"time"

	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// Merger reconciles a suggestion into a configuration. The rule for
// every field is prefer-valid-else-current: a suggested value replaces
// the current one only when it passes that field's validation, and a
// suggestion that omits a field leaves the current value alone.
type Merger struct {
	// StartLead is how far ahead the fallback start date lands when no
	// usable date exists anywhere.
	StartLead time.Duration

	// EndOffset is the fixed event duration; the suggested end time is
	// never trusted.
	EndOffset time.Duration

	// MaxScenes caps the merged scene list.
	MaxScenes int

	// Now is the clock, injectable for tests. Nil means time.Now.
	Now func() time.Time
}

// Merge returns cfg with the suggestion's valid fields applied. The
// input is not mutated.
func (m *Merger) Merge(cfg model.Configuration, s model.Suggestion) model.Configuration {
	out := cfg.Clone()

	if v := strings.TrimSpace(s.Title); v != "" {
		out.Title = v
	}
	if v := strings.TrimSpace(s.Description); v != "" {
		out.Description = v
	}
	if v := strings.TrimSpace(s.TargetAudience); v != "" {
		out.TargetAudience = v
	}
	if v := strings.TrimSpace(s.Location); v != "" {
		out.Location = v
	}

	// Category is a closed set: a present but unknown value falls back
	// to the default rather than keeping free text out of the catalog.
	if s.Category != "" {
		if c := model.Category(strings.ToLower(strings.TrimSpace(s.Category))); c.Valid() {
			out.Category = c
		} else {
			out.Category = model.DefaultCategory
		}
	}

	m.mergeDates(&out, s)

	if len(s.TicketTiers) > 0 {
		tickets := make([]model.TicketTier, 0, len(s.TicketTiers))
		for _, t := range s.TicketTiers {
			if strings.TrimSpace(t.Name) == "" {
				continue
			}
			price := float64(t.Price)
			if price < 0 {
				price = 0
			}
			qty := int(t.Quantity)
			if qty < 0 {
				qty = 0
			}
			tickets = append(tickets, model.TicketTier{Name: t.Name, Price: price, Quantity: qty})
		}
		// A list replaces wholesale or not at all; a suggestion whose
		// every entry was unusable keeps the current tiers.
		if len(tickets) > 0 {
			out.Tickets = tickets
		}
	}

	if len(s.Schedule) > 0 {
		items := make([]model.ScheduleItem, 0, len(s.Schedule))
		for _, it := range s.Schedule {
			if strings.TrimSpace(it.Activity) == "" {
				continue
			}
			items = append(items, model.ScheduleItem{Time: it.Time, Activity: it.Activity})
		}
		if len(items) > 0 {
			out.Schedule = items
		}
	}

	if v := model.Service(strings.ToLower(strings.TrimSpace(s.Service))); v.Valid() {
		out.Service = v
	}
	if v := strings.TrimSpace(s.Style); v != "" {
		out.Style = strings.ToLower(v)
	}
	if v := model.Retouching(strings.ToLower(strings.TrimSpace(s.Retouching))); v.Valid() {
		out.Retouching = v
	}
	if len(s.Scenes) > 0 {
		scenes := s.Scenes
		if m.MaxScenes > 0 && len(scenes) > m.MaxScenes {
			scenes = scenes[:m.MaxScenes]
		}
		out.Scenes = append([]string(nil), scenes...)
	}
	if n := int(s.ShotCount); n >= 1 {
		out.ShotCount = n
	}
	if len(s.Models) > 0 {
		models := make([]model.TalentLine, 0, len(s.Models))
		for _, tm := range s.Models {
			if strings.TrimSpace(tm.Type) == "" {
				continue
			}
			count := int(tm.Count)
			if count < 1 {
				count = 1
			}
			models = append(models, model.TalentLine{Type: tm.Type, Count: count})
		}
		if len(models) > 0 {
			out.Models = models
		}
	}

	// Advisory fields carry over verbatim when present.
	if len(s.TitleSuggestions) > 0 {
		out.TitleSuggestions = append([]string(nil), s.TitleSuggestions...)
	}
	if len(s.MoodTags) > 0 {
		out.MoodTags = append([]string(nil), s.MoodTags...)
	}

	return out
}

// mergeDates settles the start and end. The suggested date is parsed
// against a few common layouts; when it is unusable the current start
// survives if set, otherwise a default start lands StartLead from now.
// The end is always derived as start plus EndOffset.
func (m *Merger) mergeDates(out *model.Configuration, s model.Suggestion) {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}

	var start time.Time
	switch {
	case s.Date != "":
		if parsed, ok := parseDate(s.Date); ok {
			start = parsed
		} else {
			start = now().Add(m.StartLead)
		}
	case out.StartDate != nil:
		start = *out.StartDate
	default:
		start = now().Add(m.StartLead)
	}

	end := start.Add(m.EndOffset)
	out.StartDate = &start
	out.EndDate = &end
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"02 Jan 2006",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
