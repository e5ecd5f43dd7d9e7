// Package query translates a merged constraint set into catalog search
// request parameters. The catalog's search and ranking stay on the other
// side of that wire contract.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/kidsactivitytracker/backend/internal/domain"
	"github.com/kidsactivitytracker/backend/internal/merge"
)

// Build converts a merged constraint set into catalog query parameters.
// Unrestricted dimensions are omitted entirely so the catalog applies no
// filter for them. ok is false when the set is contradictory (inverted age
// or price window); callers should skip the catalog call and report zero
// results instead of sending an impossible query.
func Build(set *merge.MergedConstraintSet) (url.Values, bool) {
	if !set.Feasible() {
		return nil, false
	}

	params := url.Values{}
	params.Set("min_age", strconv.Itoa(set.AgeRange.Min))
	params.Set("max_age", strconv.Itoa(set.AgeRange.Max))

	if len(set.ActivityTypesAllowed) > 0 {
		params.Set("activity_types", strings.Join(set.ActivityTypesAllowed, ","))
	}
	if len(set.ActivityTypesExcluded) > 0 {
		params.Set("exclude_types", strings.Join(set.ActivityTypesExcluded, ","))
	}

	if days := restrictedDays(set.DaysAvailable); len(days) > 0 {
		params.Set("days", strings.Join(days, ","))
	}

	if slots := enabledSlots(set.TimeSlots); len(slots) > 0 && len(slots) < 3 {
		params.Set("time_slots", strings.Join(slots, ","))
	}

	params.Set("price_min", formatAmount(set.PriceRange.Min))
	if set.PriceRange.Max != nil {
		params.Set("price_max", formatAmount(*set.PriceRange.Max))
	}

	// One near clause per resolved home location; the catalog fans out over
	// all of them with the shared radius.
	for _, loc := range set.Locations {
		params.Add("near", formatCoord(loc.Latitude)+","+formatCoord(loc.Longitude))
	}
	if len(set.Locations) > 0 {
		params.Set("radius_km", formatAmount(set.DistanceRadiusKm))
	}
	if len(set.Cities) > 0 {
		params.Set("cities", strings.Join(set.Cities, ","))
	}

	if set.EnvironmentPreference != domain.EnvironmentAll && set.EnvironmentPreference != "" {
		params.Set("environment", string(set.EnvironmentPreference))
	}

	if genders := genderFilter(set.GendersAllowed); len(genders) > 0 {
		params.Set("genders", strings.Join(genders, ","))
	}

	return params, true
}

// restrictedDays returns nil for the unrestricted conventions (empty set or
// full week), so no day filter is sent.
func restrictedDays(days []domain.Weekday) []string {
	if len(days) == 0 || len(days) >= len(domain.AllWeekdays()) {
		return nil
	}
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = string(d)
	}
	return out
}

func enabledSlots(slots domain.TimeSlots) []string {
	var out []string
	if slots.Morning {
		out = append(out, "morning")
	}
	if slots.Afternoon {
		out = append(out, "afternoon")
	}
	if slots.Evening {
		out = append(out, "evening")
	}
	return out
}

// genderFilter maps the merged gender set onto the catalog's filter values,
// with unisex spelled out for the unspecified member. An empty set means
// unrestricted and yields no filter.
func genderFilter(genders []domain.Gender) []string {
	out := make([]string, 0, len(genders))
	for _, g := range genders {
		if g == domain.GenderUnspecified {
			out = append(out, "unisex")
			continue
		}
		out = append(out, string(g))
	}
	return out
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
