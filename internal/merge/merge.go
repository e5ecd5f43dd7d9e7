package merge

import (
	"sort"

	"github.com/kidsactivitytracker/backend/internal/domain"
)

// Mode selects how profiles are combined.
type Mode string

const (
	// ModeAny: an activity is acceptable if it works for at least one child.
	ModeAny Mode = "any"
	// ModeAll: an activity is acceptable only if it works for every child
	// together.
	ModeAll Mode = "all"
)

// DefaultRadiusKm is the search radius used when no profile provides one.
const DefaultRadiusKm = 25

const (
	minAge = 0
	maxAge = 18
)

// AgeRange is an inclusive age window. A merge in ModeAll can produce an
// inverted window (Min > Max) when the children's ages are too far apart;
// that is surfaced, not clamped away.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Inverted reports whether the window is contradictory.
func (a AgeRange) Inverted() bool {
	return a.Min > a.Max
}

// MergedConstraintSet is the combined query constraint set handed to the
// catalog query adapter. Set-valued fields keep the stored-profile sentinel
// convention: an empty ActivityTypesAllowed or GendersAllowed means
// unrestricted, as does an empty or full-week DaysAvailable.
type MergedConstraintSet struct {
	AgeRange              AgeRange           `json:"age_range"`
	ActivityTypesAllowed  []string           `json:"activity_types_allowed"`
	ActivityTypesExcluded []string           `json:"activity_types_excluded"`
	DaysAvailable         []domain.Weekday   `json:"days_available"`
	TimeSlots             domain.TimeSlots   `json:"time_slots"`
	PriceRange            domain.PriceRange  `json:"price_range"`
	DistanceRadiusKm      float64            `json:"distance_radius_km"`
	Locations             []domain.Location  `json:"locations,omitempty"`
	PrimaryLocation       *domain.Location   `json:"primary_location,omitempty"`
	Cities                []string           `json:"cities,omitempty"`
	EnvironmentPreference domain.Environment `json:"environment_preference"`
	GendersAllowed        []domain.Gender    `json:"genders_allowed"`
}

// Feasible reports whether any activity could satisfy the set. ModeAll can
// produce contradictory age or price windows (disjoint ages or budgets);
// the caller should surface those as "no eligible items" rather than query
// the catalog.
func (s *MergedConstraintSet) Feasible() bool {
	return !s.AgeRange.Inverted() && !s.PriceRange.Inverted()
}

// Merge combines the given profiles under the given mode. It is a pure
// function: the same input always yields the same output, profiles are
// never mutated, and no error is possible. Callers are responsible for
// validating profiles before they get here.
//
// An empty profile list yields the unrestricted default a guardian with no
// configured children would expect: show everything.
func Merge(profiles []*domain.ChildProfile, mode Mode) MergedConstraintSet {
	if len(profiles) == 0 {
		return defaultSet()
	}
	if mode == ModeAll {
		return mergeAll(profiles)
	}
	return mergeAny(profiles)
}

func defaultSet() MergedConstraintSet {
	return MergedConstraintSet{
		AgeRange:              AgeRange{Min: minAge, Max: maxAge},
		DaysAvailable:         domain.AllWeekdays(),
		TimeSlots:             domain.TimeSlots{Morning: true, Afternoon: true, Evening: true},
		PriceRange:            domain.PriceRange{Min: 0, Max: nil},
		DistanceRadiusKm:      DefaultRadiusKm,
		EnvironmentPreference: domain.EnvironmentAll,
	}
}

// mergeAny combines so that satisfying any single profile suffices: every
// window widens, every set unions.
func mergeAny(profiles []*domain.ChildProfile) MergedConstraintSet {
	out := MergedConstraintSet{}

	youngest, oldest := ageSpread(profiles)
	// ±1 year tolerance absorbs age-category boundaries (a child turning
	// six mid-program).
	out.AgeRange = AgeRange{
		Min: clampAge(youngest - 1),
		Max: clampAge(oldest + 1),
	}

	allowed := allowedConstraint(profiles[0])
	excluded := Restricted(profiles[0].ActivityTypesExcluded...)
	for _, p := range profiles[1:] {
		allowed = allowed.Union(allowedConstraint(p))
		// A type is excluded only if every child excludes it; one child's
		// dislike must not hide it from a child who doesn't mind.
		excluded = excluded.Intersect(Restricted(p.ActivityTypesExcluded...))
	}
	out.ActivityTypesAllowed = sortedStrings(allowed.Members())
	out.ActivityTypesExcluded = sortedStrings(excluded.Members())
	out.DaysAvailable = dayMembers(unionDays(profiles))

	for _, p := range profiles {
		out.TimeSlots.Morning = out.TimeSlots.Morning || p.TimeSlots.Morning
		out.TimeSlots.Afternoon = out.TimeSlots.Afternoon || p.TimeSlots.Afternoon
		out.TimeSlots.Evening = out.TimeSlots.Evening || p.TimeSlots.Evening
	}

	// Widest window: any one profile being satisfied is enough.
	out.PriceRange = domain.PriceRange{Min: profiles[0].PriceRange.Min, Max: profiles[0].PriceRange.Max}
	out.DistanceRadiusKm = profiles[0].DistanceRadiusKm
	for _, p := range profiles[1:] {
		if p.PriceRange.Min < out.PriceRange.Min {
			out.PriceRange.Min = p.PriceRange.Min
		}
		out.PriceRange.Max = widerMax(out.PriceRange.Max, p.PriceRange.Max)
		if p.DistanceRadiusKm > out.DistanceRadiusKm {
			out.DistanceRadiusKm = p.DistanceRadiusKm
		}
	}

	out.PriceRange.Max = copyCap(out.PriceRange.Max)
	out.EnvironmentPreference = unanimousEnvironment(profiles)
	out.GendersAllowed = genderUnion(profiles)
	out.Locations, out.PrimaryLocation, out.Cities = collectLocations(profiles)
	return out
}

// mergeAll combines so that every profile must be satisfied at once: every
// window narrows, allow-sets intersect, vetoes union.
func mergeAll(profiles []*domain.ChildProfile) MergedConstraintSet {
	out := MergedConstraintSet{}

	youngest, oldest := ageSpread(profiles)
	// The activity must reach near the oldest child and down to near the
	// youngest. When the spread exceeds two years this inverts (Min > Max);
	// Feasible() reports it and the result means "nothing fits everyone".
	out.AgeRange = AgeRange{
		Min: clampAge(oldest - 1),
		Max: clampAge(youngest + 1),
	}

	allowed := allowedConstraint(profiles[0])
	excluded := Restricted(profiles[0].ActivityTypesExcluded...)
	days := dayConstraint(profiles[0])
	for _, p := range profiles[1:] {
		// An unrestricted allow-set is the identity element here, mirroring
		// its absorbing role in the ModeAny union. A literal intersection
		// would collapse it to "nothing allowed", inverting its meaning.
		allowed = allowed.Intersect(allowedConstraint(p))
		// Any single veto holds: the joint activity must suit everyone.
		excluded = excluded.Union(Restricted(p.ActivityTypesExcluded...))
		days = days.Intersect(dayConstraint(p))
	}
	out.ActivityTypesAllowed = sortedStrings(allowed.Members())
	out.ActivityTypesExcluded = sortedStrings(excluded.Members())
	out.DaysAvailable = dayMembers(days)

	out.TimeSlots = domain.TimeSlots{Morning: true, Afternoon: true, Evening: true}
	for _, p := range profiles {
		out.TimeSlots.Morning = out.TimeSlots.Morning && p.TimeSlots.Morning
		out.TimeSlots.Afternoon = out.TimeSlots.Afternoon && p.TimeSlots.Afternoon
		out.TimeSlots.Evening = out.TimeSlots.Evening && p.TimeSlots.Evening
	}

	// Narrowest common window; disjoint budgets invert the range, which is
	// surfaced via Feasible() as "no jointly affordable band".
	out.PriceRange = domain.PriceRange{Min: profiles[0].PriceRange.Min, Max: profiles[0].PriceRange.Max}
	out.DistanceRadiusKm = profiles[0].DistanceRadiusKm
	for _, p := range profiles[1:] {
		if p.PriceRange.Min > out.PriceRange.Min {
			out.PriceRange.Min = p.PriceRange.Min
		}
		out.PriceRange.Max = narrowerMax(out.PriceRange.Max, p.PriceRange.Max)
		if p.DistanceRadiusKm < out.DistanceRadiusKm {
			out.DistanceRadiusKm = p.DistanceRadiusKm
		}
	}

	out.PriceRange.Max = copyCap(out.PriceRange.Max)
	out.EnvironmentPreference = intersectEnvironment(profiles)
	out.GendersAllowed = genderIntersection(profiles)
	out.Locations, out.PrimaryLocation, out.Cities = collectLocations(profiles)
	return out
}

func ageSpread(profiles []*domain.ChildProfile) (youngest, oldest int) {
	youngest, oldest = profiles[0].Age, profiles[0].Age
	for _, p := range profiles[1:] {
		if p.Age < youngest {
			youngest = p.Age
		}
		if p.Age > oldest {
			oldest = p.Age
		}
	}
	return youngest, oldest
}

func clampAge(a int) int {
	if a < minAge {
		return minAge
	}
	if a > maxAge {
		return maxAge
	}
	return a
}

// allowedConstraint maps the stored empty-set sentinel to Unrestricted.
func allowedConstraint(p *domain.ChildProfile) Constraint[string] {
	if len(p.ActivityTypesAllowed) == 0 {
		return Unrestricted[string]()
	}
	return Restricted(p.ActivityTypesAllowed...)
}

// dayConstraint treats an empty day-set and a full week alike: no opinion,
// not a hard every-day requirement.
func dayConstraint(p *domain.ChildProfile) Constraint[domain.Weekday] {
	if len(p.DaysAvailable) == 0 {
		return Unrestricted[domain.Weekday]()
	}
	distinct := make(map[domain.Weekday]struct{}, len(p.DaysAvailable))
	for _, d := range p.DaysAvailable {
		distinct[d] = struct{}{}
	}
	if len(distinct) == len(domain.AllWeekdays()) {
		return Unrestricted[domain.Weekday]()
	}
	return Restricted(p.DaysAvailable...)
}

// unionDays combines only the specific day-sets. A full-week or empty set
// is "no opinion", not a vote for every day, so it must not absorb the
// other children's subsets the way an unrestricted allow-set absorbs a
// union. Only when no profile states a subset is the result unrestricted.
func unionDays(profiles []*domain.ChildProfile) Constraint[domain.Weekday] {
	out := Unrestricted[domain.Weekday]()
	for _, p := range profiles {
		c := dayConstraint(p)
		if c.IsUnrestricted() {
			continue
		}
		if out.IsUnrestricted() {
			out = c
			continue
		}
		out = out.Union(c)
	}
	return out
}

// dayMembers converts back to the output convention: unrestricted becomes
// the full week, a restricted set is emitted in canonical week order.
func dayMembers(c Constraint[domain.Weekday]) []domain.Weekday {
	if c.IsUnrestricted() {
		return domain.AllWeekdays()
	}
	days := c.Members()
	sort.Slice(days, func(i, j int) bool {
		return domain.WeekdayOrder(days[i]) < domain.WeekdayOrder(days[j])
	})
	return days
}

// widerMax picks the larger budget cap, where nil means uncapped and wins.
func widerMax(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	if *b > *a {
		return b
	}
	return a
}

// copyCap detaches the output cap from the input profile it came from, so
// the merged set owns all of its memory.
func copyCap(max *float64) *float64 {
	if max == nil {
		return nil
	}
	v := *max
	return &v
}

// narrowerMax picks the smaller budget cap, where nil is the identity.
func narrowerMax(a, b *float64) *float64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *b < *a {
		return b
	}
	return a
}

// unanimousEnvironment returns the shared non-"all" preference if every
// profile states the same one, otherwise "all".
func unanimousEnvironment(profiles []*domain.ChildProfile) domain.Environment {
	first := profiles[0].EnvironmentPreference
	if first == domain.EnvironmentAll {
		return domain.EnvironmentAll
	}
	for _, p := range profiles[1:] {
		if p.EnvironmentPreference != first {
			return domain.EnvironmentAll
		}
	}
	return first
}

// intersectEnvironment intersects preferences with "all" as the identity.
// An indoor/outdoor conflict still yields "all": a documented permissive
// fallback, so the catalog may return items that don't suit every child.
func intersectEnvironment(profiles []*domain.ChildProfile) domain.Environment {
	result := domain.EnvironmentAll
	for _, p := range profiles {
		pref := p.EnvironmentPreference
		if pref == domain.EnvironmentAll {
			continue
		}
		if result == domain.EnvironmentAll {
			result = pref
			continue
		}
		if result != pref {
			return domain.EnvironmentAll
		}
	}
	return result
}

// genderOrder fixes the output order of gender sets.
var genderOrder = map[domain.Gender]int{
	domain.GenderMale:        0,
	domain.GenderFemale:      1,
	domain.GenderUnspecified: 2,
}

func sortGenders(gs []domain.Gender) []domain.Gender {
	sort.Slice(gs, func(i, j int) bool { return genderOrder[gs[i]] < genderOrder[gs[j]] })
	return gs
}

// genderUnion deduplicates every profile's gender; unisex (unspecified) is
// included only when some profile actually is unisex.
func genderUnion(profiles []*domain.ChildProfile) []domain.Gender {
	seen := make(map[domain.Gender]struct{})
	var out []domain.Gender
	for _, p := range profiles {
		if _, ok := seen[p.Gender]; ok {
			continue
		}
		seen[p.Gender] = struct{}{}
		out = append(out, p.Gender)
	}
	return sortGenders(out)
}

// genderIntersection: with zero or one distinct stated gender the joint
// search allows that gender plus unisex items; once two genders appear only
// unisex items can work for everyone.
func genderIntersection(profiles []*domain.ChildProfile) []domain.Gender {
	distinct := make(map[domain.Gender]struct{})
	for _, p := range profiles {
		if p.Gender != domain.GenderUnspecified {
			distinct[p.Gender] = struct{}{}
		}
	}
	if len(distinct) >= 2 {
		return []domain.Gender{domain.GenderUnspecified}
	}
	out := make([]domain.Gender, 0, 2)
	for g := range distinct {
		out = append(out, g)
	}
	out = append(out, domain.GenderUnspecified)
	return sortGenders(out)
}

// collectLocations gathers every resolved home location in input order.
// The primary location is the first profile that resolves one; profiles
// with missing or malformed addresses are skipped, never a failure.
func collectLocations(profiles []*domain.ChildProfile) ([]domain.Location, *domain.Location, []string) {
	var locations []domain.Location
	var primary *domain.Location
	citySeen := make(map[string]struct{})
	var cities []string
	for _, p := range profiles {
		loc := p.HomeLocation()
		if loc == nil {
			continue
		}
		locations = append(locations, *loc)
		if primary == nil {
			primary = loc
		}
		if loc.City != "" {
			if _, ok := citySeen[loc.City]; !ok {
				citySeen[loc.City] = struct{}{}
				cities = append(cities, loc.City)
			}
		}
	}
	sort.Strings(cities)
	return locations, primary, cities
}

func sortedStrings(s []string) []string {
	sort.Strings(s)
	return s
}
