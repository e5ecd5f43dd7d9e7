package domain

import (
	"encoding/json"
	"testing"
)

func TestResolveLocation(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want *Location
	}{
		{
			name: "structured object",
			raw:  `{"latitude":-12.046,"longitude":-77.042,"city":"Lima","province":"Lima"}`,
			want: &Location{Latitude: -12.046, Longitude: -77.042, City: "Lima", Province: "Lima"},
		},
		{
			name: "double-encoded legacy string",
			raw:  `"{\"latitude\":-13.532,\"longitude\":-71.967,\"city\":\"Cusco\"}"`,
			want: &Location{Latitude: -13.532, Longitude: -71.967, City: "Cusco"},
		},
		{name: "empty", raw: ``, want: nil},
		{name: "malformed json", raw: `{broken`, want: nil},
		{name: "string that is not json", raw: `"somewhere in town"`, want: nil},
		{name: "missing coordinates", raw: `{"city":"Lima"}`, want: nil},
		{name: "latitude out of range", raw: `{"latitude":123.0,"longitude":-77.0}`, want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveLocation(json.RawMessage(tc.raw))
			if tc.want == nil {
				if got != nil {
					t.Errorf("resolved %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("resolved nil, want a location")
			}
			if *got != *tc.want {
				t.Errorf("resolved %+v, want %+v", *got, *tc.want)
			}
		})
	}
}
