// Package model contains the domain types shared across the wizard core:
// the Configuration working document, its partial-update patch, the derived
// pricing breakdown, the persisted draft envelope, and the loosely-typed
// suggestion payload returned by the generation boundary.
package model

import "time"

// Category classifies the production or event being configured. The set is
// closed: values outside it are never stored, they resolve to
// DefaultCategory instead.
type Category string

const (
	CategoryFashion    Category = "fashion"
	CategoryProduct    Category = "product"
	CategoryEditorial  Category = "editorial"
	CategoryRunway     Category = "runway"
	CategoryPopup      Category = "popup"
	CategoryConference Category = "conference"
	CategoryParty      Category = "party"
)

// DefaultCategory is the fallback for missing or unrecognized categories.
const DefaultCategory = CategoryFashion

// Categories returns the closed category set in display order.
func Categories() []Category {
	return []Category{
		CategoryFashion, CategoryProduct, CategoryEditorial, CategoryRunway,
		CategoryPopup, CategoryConference, CategoryParty,
	}
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryFashion, CategoryProduct, CategoryEditorial, CategoryRunway,
		CategoryPopup, CategoryConference, CategoryParty:
		return true
	}
	return false
}

// Service is the production service being booked.
type Service string

const (
	ServicePhotography Service = "photography"
	ServiceVideo       Service = "video"
	ServiceHybrid      Service = "hybrid"
)

// Valid reports whether s is a member of the closed service set.
func (s Service) Valid() bool {
	switch s {
	case ServicePhotography, ServiceVideo, ServiceHybrid:
		return true
	}
	return false
}

// Retouching is the post-production tier.
type Retouching string

const (
	RetouchingBasic   Retouching = "basic"
	RetouchingHighEnd Retouching = "high-end"
)

// Valid reports whether r is a member of the closed retouching set.
func (r Retouching) Valid() bool {
	return r == RetouchingBasic || r == RetouchingHighEnd
}

// ProductSize drives the per-shot handling surcharge.
type ProductSize string

const (
	ProductSizeStandard ProductSize = "standard"
	ProductSizeLarge    ProductSize = "large"
	ProductSizeOversize ProductSize = "oversized"
)

// TicketTier is one commercial tier of the event.
type TicketTier struct {
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gte=0"`
}

// ScheduleItem is one run-of-show line.
type ScheduleItem struct {
	Time     string `json:"time"`
	Activity string `json:"activity" validate:"required"`
}

// TalentLine is one talent requirement for a shoot.
type TalentLine struct {
	Type  string `json:"type"`
	Count int    `json:"count" validate:"gte=0"`
}

// VerifiedLocation carries provider-verified venue identity when the user
// picked a place from a lookup rather than typing free text.
type VerifiedLocation struct {
	PlaceID string   `json:"placeId"`
	MapsURI string   `json:"mapsUri,omitempty"`
	Sources []string `json:"sources,omitempty"`
}

// VenueDetails holds the optional extended venue fields.
type VenueDetails struct {
	Address      string `json:"address,omitempty"`
	Capacity     int    `json:"capacity,omitempty" validate:"gte=0"`
	ContactEmail string `json:"contactEmail,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`
}

// Configuration is the wizard's working document. It is mutated exclusively
// through the wizard store's update path; no component writes fields
// directly. Momentarily-invalid intermediate states (an empty title while
// the user is typing) are representable on purpose; step gates validate,
// the document does not.
type Configuration struct {
	// Identity.
	Title          string   `json:"title" validate:"required"`
	Description    string   `json:"description"`
	Category       Category `json:"category" validate:"required"`
	TargetAudience string   `json:"targetAudience"`

	// Venue.
	Location string            `json:"location"`
	Verified *VerifiedLocation `json:"verified,omitempty"`
	Venue    *VenueDetails     `json:"venue,omitempty"`

	// Time. Nullable until the user (or a merge) sets them.
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`

	// Commercial.
	Tickets  []TicketTier   `json:"tickets" validate:"dive"`
	Schedule []ScheduleItem `json:"schedule" validate:"dive"`

	// Production selections (booking variant).
	Service     Service      `json:"service"`
	Style       string       `json:"style"`
	ProductSize ProductSize  `json:"productSize"`
	Scenes      []string     `json:"scenes"`
	ShotType    string       `json:"shotType"`
	SubCategory string       `json:"subCategory"`
	ShotCount   int          `json:"shotCount" validate:"gte=1"`
	Retouching  Retouching   `json:"retouching"`
	Models      []TalentLine `json:"models" validate:"dive"`

	// Advisory AI hints. Never required for validity.
	TitleSuggestions []string `json:"titleSuggestions,omitempty"`
	MoodTags         []string `json:"moodTags,omitempty"`
}

// DefaultConfiguration returns the document a fresh wizard starts from:
// one ticket tier, one schedule item, default category, valid production
// selections.
func DefaultConfiguration() Configuration {
	return Configuration{
		Category:    DefaultCategory,
		Tickets:     []TicketTier{{Name: "General Admission", Price: 0, Quantity: 100}},
		Schedule:    []ScheduleItem{{Time: "18:00", Activity: "Doors open"}},
		Service:     ServicePhotography,
		Style:       "catalog",
		ProductSize: ProductSizeStandard,
		ShotCount:   1,
		Retouching:  RetouchingBasic,
	}
}

// Clone returns a deep copy so callers can hand out snapshots without
// aliasing the store's slices or pointers.
func (c Configuration) Clone() Configuration {
	out := c
	if c.Verified != nil {
		v := *c.Verified
		v.Sources = append([]string(nil), c.Verified.Sources...)
		out.Verified = &v
	}
	if c.Venue != nil {
		v := *c.Venue
		out.Venue = &v
	}
	if c.StartDate != nil {
		t := *c.StartDate
		out.StartDate = &t
	}
	if c.EndDate != nil {
		t := *c.EndDate
		out.EndDate = &t
	}
	out.Tickets = append([]TicketTier(nil), c.Tickets...)
	out.Schedule = append([]ScheduleItem(nil), c.Schedule...)
	out.Scenes = append([]string(nil), c.Scenes...)
	out.Models = append([]TalentLine(nil), c.Models...)
	out.TitleSuggestions = append([]string(nil), c.TitleSuggestions...)
	out.MoodTags = append([]string(nil), c.MoodTags...)
	return out
}
