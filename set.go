package serialx

import (
	"fmt"
	"reflect"
)

// Set is an unordered collection of unique elements. It exists because Go
// has no built-in set type, while the wire format needs one to round-trip
// the "set" tag. Elements must be comparable; Add rejects anything else so
// the underlying map never panics.
type Set map[any]struct{}

// NewSet builds a Set from the given elements. It panics if an element is
// not comparable; use Add when the elements come from untrusted input.
func NewSet(elems ...any) Set {
	s := make(Set, len(elems))
	for _, e := range elems {
		if err := s.Add(e); err != nil {
			panic(err)
		}
	}
	return s
}

// Add inserts an element. Inserting an element that is already present is a
// no-op. Returns an error if the element is not comparable.
func (s Set) Add(elem any) error {
	if elem != nil && !reflect.TypeOf(elem).Comparable() {
		return fmt.Errorf("set element of type %T is not comparable", elem)
	}
	s[elem] = struct{}{}
	return nil
}

// Remove deletes an element if present.
func (s Set) Remove(elem any) {
	delete(s, elem)
}

// Contains reports whether the element is in the set.
func (s Set) Contains(elem any) bool {
	if elem != nil && !reflect.TypeOf(elem).Comparable() {
		return false
	}
	_, ok := s[elem]
	return ok
}

// Len returns the number of elements.
func (s Set) Len() int {
	return len(s)
}

// Elements returns the elements in unspecified order.
func (s Set) Elements() []any {
	out := make([]any, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	return out
}

// Equal reports whether both sets contain exactly the same elements.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for e := range s {
		if _, ok := other[e]; !ok {
			return false
		}
	}
	return true
}
