package merge

import (
	"reflect"
	"sort"
	"testing"
)

func members(c Constraint[string]) []string {
	m := c.Members()
	sort.Strings(m)
	return m
}

func TestConstraintUnion(t *testing.T) {
	a := Restricted("swim", "judo")
	b := Restricted("judo", "dance")

	got := members(a.Union(b))
	if !reflect.DeepEqual(got, []string{"dance", "judo", "swim"}) {
		t.Errorf("union = %v", got)
	}

	if !a.Union(Unrestricted[string]()).IsUnrestricted() {
		t.Error("union with unrestricted must be unrestricted")
	}
	if !Unrestricted[string]().Union(a).IsUnrestricted() {
		t.Error("unrestricted union must absorb either way")
	}
}

func TestConstraintIntersect(t *testing.T) {
	a := Restricted("swim", "judo")
	b := Restricted("judo", "dance")

	got := members(a.Intersect(b))
	if !reflect.DeepEqual(got, []string{"judo"}) {
		t.Errorf("intersect = %v", got)
	}

	// Unrestricted is the identity, not an empty set.
	if got := members(a.Intersect(Unrestricted[string]())); !reflect.DeepEqual(got, []string{"judo", "swim"}) {
		t.Errorf("intersect with unrestricted = %v, want original members", got)
	}
	if got := members(Unrestricted[string]().Intersect(b)); !reflect.DeepEqual(got, []string{"dance", "judo"}) {
		t.Errorf("unrestricted intersect = %v, want other side's members", got)
	}
}

func TestConstraintEmptyRestrictedIsNotUnrestricted(t *testing.T) {
	empty := Restricted[string]()
	if empty.IsUnrestricted() {
		t.Error("Restricted() admits nothing, not everything")
	}
	if empty.Contains("swim") {
		t.Error("empty restricted constraint must not contain members")
	}
	if !Unrestricted[string]().Contains("swim") {
		t.Error("unrestricted constraint must contain everything")
	}
}
