// Package merge combines independent per-child constraint profiles into a
// single constraint set a catalog search can execute. Everything here is
// pure: no I/O, no shared state, inputs are never mutated.
package merge

// Constraint is a tagged set constraint: either Unrestricted ("no filtering
// on this dimension") or Restricted to an explicit member set. The stored
// profile model overloads an empty collection to mean "unrestricted";
// converting to this type at the boundary makes the identity-element rules
// for Union and Intersect a single place instead of scattered special cases.
type Constraint[T comparable] struct {
	restricted bool
	members    map[T]struct{}
}

// Unrestricted returns the constraint that admits everything.
func Unrestricted[T comparable]() Constraint[T] {
	return Constraint[T]{}
}

// Restricted returns a constraint admitting exactly the given members.
// Note Restricted() with no members admits nothing, which is distinct from
// Unrestricted.
func Restricted[T comparable](members ...T) Constraint[T] {
	m := make(map[T]struct{}, len(members))
	for _, v := range members {
		m[v] = struct{}{}
	}
	return Constraint[T]{restricted: true, members: m}
}

// IsUnrestricted reports whether the constraint admits everything.
func (c Constraint[T]) IsUnrestricted() bool {
	return !c.restricted
}

// Contains reports whether v is admitted.
func (c Constraint[T]) Contains(v T) bool {
	if !c.restricted {
		return true
	}
	_, ok := c.members[v]
	return ok
}

// Union combines two constraints so a value admitted by either is admitted.
// Unrestricted absorbs: union with "everything" is "everything".
func (c Constraint[T]) Union(o Constraint[T]) Constraint[T] {
	if !c.restricted || !o.restricted {
		return Unrestricted[T]()
	}
	m := make(map[T]struct{}, len(c.members)+len(o.members))
	for v := range c.members {
		m[v] = struct{}{}
	}
	for v := range o.members {
		m[v] = struct{}{}
	}
	return Constraint[T]{restricted: true, members: m}
}

// Intersect combines two constraints so only values admitted by both remain.
// Unrestricted is the identity element: it is skipped, not treated as an
// empty set.
func (c Constraint[T]) Intersect(o Constraint[T]) Constraint[T] {
	if !c.restricted {
		return o
	}
	if !o.restricted {
		return c
	}
	m := make(map[T]struct{})
	for v := range c.members {
		if _, ok := o.members[v]; ok {
			m[v] = struct{}{}
		}
	}
	return Constraint[T]{restricted: true, members: m}
}

// Members returns the admitted values in unspecified order, or nil when
// unrestricted. Callers sort before exposing the result.
func (c Constraint[T]) Members() []T {
	if !c.restricted {
		return nil
	}
	out := make([]T, 0, len(c.members))
	for v := range c.members {
		out = append(out, v)
	}
	return out
}
