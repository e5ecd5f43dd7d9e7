package domain

import "encoding/json"

// Location is a resolved home location.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
	Province  string  `json:"province,omitempty"`
}

// ResolveLocation decodes a raw stored address into a Location.
//
// Older profiles store the address as a JSON string containing the
// serialized object; newer ones store the object directly. Both shapes are
// accepted. Anything else (empty, malformed, missing coordinates) degrades
// to nil rather than an error.
func ResolveLocation(raw json.RawMessage) *Location {
	if len(raw) == 0 {
		return nil
	}

	var loc Location
	if err := json.Unmarshal(raw, &loc); err == nil {
		if validCoordinates(loc) {
			return &loc
		}
		return nil
	}

	// Double-encoded legacy shape: a JSON string holding the object.
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(s), &loc); err != nil {
		return nil
	}
	if validCoordinates(loc) {
		return &loc
	}
	return nil
}

func validCoordinates(loc Location) bool {
	if loc.Latitude == 0 && loc.Longitude == 0 {
		return false
	}
	return loc.Latitude >= -90 && loc.Latitude <= 90 &&
		loc.Longitude >= -180 && loc.Longitude <= 180
}
