// Package types provides the values exchanged across the catalog's
// operations boundary.
package types

import (
	"sort"
	"strings"
	"time"
)

// NameSet is a set of person names or tag texts. A nil NameSet on a MovieBag
// means the field is absent; a non-nil empty set is present and empty.
type NameSet map[string]struct{}

// NewNameSet builds a present set from names. Called with no names it
// returns an empty, non-nil set.
func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Add inserts name into the set.
func (s NameSet) Add(name string) {
	s[name] = struct{}{}
}

// Has reports membership.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in lexical order.
func (s NameSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Union returns a new set holding the members of s and other.
func (s NameSet) Union(other NameSet) NameSet {
	out := make(NameSet, len(s)+len(other))
	for n := range s {
		out[n] = struct{}{}
	}
	for n := range other {
		out[n] = struct{}{}
	}
	return out
}

// Difference returns the members of s that are not in other.
func (s NameSet) Difference(other NameSet) NameSet {
	out := make(NameSet)
	for n := range s {
		if !other.Has(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

func (s NameSet) String() string {
	return "{" + strings.Join(s.Sorted(), ", ") + "}"
}

// MovieBag is an open record of optional movie fields. Absent fields are nil;
// callers fill only what they know, and search criteria use the same type.
type MovieBag struct {
	ID      *uint
	Created *time.Time
	Updated *time.Time

	Title    *string
	Year     *RangeInt
	Duration *RangeInt
	Synopsis *string
	Notes    *string

	Stars     NameSet
	Directors NameSet
	MovieTags NameSet
}

// Key returns a bag holding only the title and year of b, which is what
// SelectMovie, EditMovie and DeleteMovie need to identify a row.
func (b MovieBag) Key() MovieBag {
	return MovieBag{Title: b.Title, Year: b.Year}
}

// IsEmpty reports whether no user-visible field is present. The internal
// ID, Created and Updated fields are ignored.
func (b MovieBag) IsEmpty() bool {
	return b.Title == nil && b.Year == nil && b.Duration == nil &&
		b.Synopsis == nil && b.Notes == nil &&
		b.Stars == nil && b.Directors == nil && b.MovieTags == nil
}

func (b MovieBag) String() string {
	title, year := "?", "?"
	if b.Title != nil {
		title = *b.Title
	}
	if b.Year != nil {
		year = b.Year.String()
	}
	return title + " (" + year + ")"
}

// Str returns a pointer to s, for building bags inline.
func Str(s string) *string {
	return &s
}

// Int returns a pointer to the scalar RangeInt n.
func Int(n int) *RangeInt {
	r := NewRangeInt(n)
	return &r
}

// Range returns a pointer to a parsed RangeInt, panicking on malformed input.
func Range(s string) *RangeInt {
	r := MustParseRangeInt(s)
	return &r
}
