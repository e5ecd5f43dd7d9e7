package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Gender of a child. Empty means unspecified/unisex.
type Gender string

const (
	GenderUnspecified Gender = ""
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
)

// Weekday as stored in profiles and sent to the catalog.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// AllWeekdays in canonical order.
func AllWeekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// WeekdayOrder returns the canonical position of d in the week, or -1.
func WeekdayOrder(d Weekday) int {
	for i, w := range AllWeekdays() {
		if w == d {
			return i
		}
	}
	return -1
}

// Environment where an activity takes place.
type Environment string

const (
	EnvironmentAll     Environment = "all"
	EnvironmentIndoor  Environment = "indoor"
	EnvironmentOutdoor Environment = "outdoor"
)

// TimeSlots holds per-slot acceptance flags.
type TimeSlots struct {
	Morning   bool `json:"morning" db:"slot_morning"`
	Afternoon bool `json:"afternoon" db:"slot_afternoon"`
	Evening   bool `json:"evening" db:"slot_evening"`
}

// PriceRange is a budget window. A nil Max means no upper bound.
type PriceRange struct {
	Min float64  `json:"min" db:"price_min"`
	Max *float64 `json:"max" db:"price_max"`
}

// Inverted reports whether the window is contradictory (min above max).
// An ALL-mode merge of disjoint budgets produces this; it means no jointly
// affordable band, not a malformed profile.
func (p PriceRange) Inverted() bool {
	return p.Max != nil && p.Min > *p.Max
}

// ChildProfile is one child's activity-search constraint profile.
//
// Two sentinel conventions matter everywhere this struct is consumed:
// an empty ActivityTypesAllowed set means "no restriction", and a
// DaysAvailable set that is empty or covers the full week means
// "any day". The merge engine relies on both.
type ChildProfile struct {
	ID                    uuid.UUID       `json:"id" db:"id"`
	GuardianID            uuid.UUID       `json:"guardian_id" db:"guardian_id"`
	Name                  string          `json:"name" db:"name"`
	Age                   int             `json:"age" db:"age"`
	Gender                Gender          `json:"gender" db:"gender"`
	ActivityTypesAllowed  []string        `json:"activity_types_allowed" db:"activity_types_allowed"`
	ActivityTypesExcluded []string        `json:"activity_types_excluded" db:"activity_types_excluded"`
	DaysAvailable         []Weekday       `json:"days_available" db:"days_available"`
	TimeSlots             TimeSlots       `json:"time_slots"`
	PriceRange            PriceRange      `json:"price_range"`
	DistanceRadiusKm      float64         `json:"distance_radius_km" db:"distance_radius_km"`
	HomeAddress           json.RawMessage `json:"home_address,omitempty" db:"home_address"`
	EnvironmentPreference Environment     `json:"environment_preference" db:"environment_preference"`
	CreatedAt             time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at" db:"updated_at"`
}

// HomeLocation resolves the stored raw address, which may be a structured
// object or a serialized string. Malformed data yields nil rather than an
// error; such a profile simply contributes no location to a merge.
func (c *ChildProfile) HomeLocation() *Location {
	return ResolveLocation(c.HomeAddress)
}
