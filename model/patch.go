package model

import "time"

// ConfigurationPatch is a partial update to a Configuration. Nil fields are
// left untouched; non-nil fields replace the current value wholesale
// (shallow merge). Slice fields use pointer-to-slice so that an explicit
// empty list can be distinguished from an absent one.
type ConfigurationPatch struct {
	Title          *string   `json:"title,omitempty"`
	Description    *string   `json:"description,omitempty"`
	Category       *Category `json:"category,omitempty"`
	TargetAudience *string   `json:"targetAudience,omitempty"`

	Location *string           `json:"location,omitempty"`
	Verified *VerifiedLocation `json:"verified,omitempty"`
	Venue    *VenueDetails     `json:"venue,omitempty"`

	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`

	Tickets  *[]TicketTier   `json:"tickets,omitempty"`
	Schedule *[]ScheduleItem `json:"schedule,omitempty"`

	Service     *Service     `json:"service,omitempty"`
	Style       *string      `json:"style,omitempty"`
	ProductSize *ProductSize `json:"productSize,omitempty"`
	Scenes      *[]string    `json:"scenes,omitempty"`
	ShotType    *string      `json:"shotType,omitempty"`
	SubCategory *string      `json:"subCategory,omitempty"`
	ShotCount   *int         `json:"shotCount,omitempty"`
	Retouching  *Retouching  `json:"retouching,omitempty"`
	Models      *[]TalentLine `json:"models,omitempty"`

	TitleSuggestions *[]string `json:"titleSuggestions,omitempty"`
	MoodTags         *[]string `json:"moodTags,omitempty"`
}

// Apply merges the patch into cfg field by field.
func (p ConfigurationPatch) Apply(cfg *Configuration) {
	if p.Title != nil {
		cfg.Title = *p.Title
	}
	if p.Description != nil {
		cfg.Description = *p.Description
	}
	if p.Category != nil {
		cfg.Category = *p.Category
	}
	if p.TargetAudience != nil {
		cfg.TargetAudience = *p.TargetAudience
	}
	if p.Location != nil {
		cfg.Location = *p.Location
	}
	if p.Verified != nil {
		v := *p.Verified
		cfg.Verified = &v
	}
	if p.Venue != nil {
		v := *p.Venue
		cfg.Venue = &v
	}
	if p.StartDate != nil {
		t := *p.StartDate
		cfg.StartDate = &t
	}
	if p.EndDate != nil {
		t := *p.EndDate
		cfg.EndDate = &t
	}
	if p.Tickets != nil {
		cfg.Tickets = append([]TicketTier(nil), *p.Tickets...)
	}
	if p.Schedule != nil {
		cfg.Schedule = append([]ScheduleItem(nil), *p.Schedule...)
	}
	if p.Service != nil {
		cfg.Service = *p.Service
	}
	if p.Style != nil {
		cfg.Style = *p.Style
	}
	if p.ProductSize != nil {
		cfg.ProductSize = *p.ProductSize
	}
	if p.Scenes != nil {
		cfg.Scenes = append([]string(nil), *p.Scenes...)
	}
	if p.ShotType != nil {
		cfg.ShotType = *p.ShotType
	}
	if p.SubCategory != nil {
		cfg.SubCategory = *p.SubCategory
	}
	if p.ShotCount != nil {
		cfg.ShotCount = *p.ShotCount
	}
	if p.Retouching != nil {
		cfg.Retouching = *p.Retouching
	}
	if p.Models != nil {
		cfg.Models = append([]TalentLine(nil), *p.Models...)
	}
	if p.TitleSuggestions != nil {
		cfg.TitleSuggestions = append([]string(nil), *p.TitleSuggestions...)
	}
	if p.MoodTags != nil {
		cfg.MoodTags = append([]string(nil), *p.MoodTags...)
	}
}

// IsZero reports whether the patch carries no changes at all.
func (p ConfigurationPatch) IsZero() bool {
	return p == (ConfigurationPatch{})
}
