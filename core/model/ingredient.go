package model

import (
	"sort"
	"strings"
)

// SlotCount is the number of bottle positions on the turret.
const SlotCount = 12

// Normalize canonicalizes an ingredient name: lower-cased and trimmed.
// Names that are empty after trimming normalize to "".
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SlotAssignment maps turret slot indices to ingredient names. An empty
// string marks an empty slot. Entries are stored normalized.
type SlotAssignment [SlotCount]string

// NewSlotAssignment builds a SlotAssignment from up to SlotCount names,
// normalizing each entry.
func NewSlotAssignment(names ...string) SlotAssignment {
	var s SlotAssignment
	for i, n := range names {
		if i >= SlotCount {
			break
		}
		s[i] = Normalize(n)
	}
	return s
}

// IndexOf returns the lowest slot index holding the given ingredient, or -1.
// When an ingredient is loaded into more than one slot the lowest index wins.
func (s SlotAssignment) IndexOf(ingredient string) int {
	ingredient = Normalize(ingredient)
	if ingredient == "" {
		return -1
	}
	for i, name := range s {
		if name == ingredient {
			return i
		}
	}
	return -1
}

// Duplicates reports ingredients loaded into more than one slot. Duplicates
// are legal (both slots stay addressable) but worth a warning.
func (s SlotAssignment) Duplicates() []string {
	seen := make(map[string]bool, SlotCount)
	var dups []string
	for _, name := range s {
		if name == "" {
			continue
		}
		if seen[name] {
			dups = append(dups, name)
			continue
		}
		seen[name] = true
	}
	return dups
}

// Pantry is the set of ingredients available off-turret. Stored normalized.
type Pantry map[string]bool

// NewPantry builds a Pantry from names, dropping entries that normalize to "".
func NewPantry(names ...string) Pantry {
	p := make(Pantry, len(names))
	for _, n := range names {
		if v := Normalize(n); v != "" {
			p[v] = true
		}
	}
	return p
}

// Has reports whether the pantry contains the ingredient.
func (p Pantry) Has(ingredient string) bool {
	return p[Normalize(ingredient)]
}

// Sorted returns the pantry contents in lexical order, for stable output.
func (p Pantry) Sorted() []string {
	out := make([]string, 0, len(p))
	for k := range p {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Substitutions maps a required ingredient name to a stand-in. Lookups never
// chain: a->b and b->c resolves a requirement for a to b only.
type Substitutions map[string]string

// Lookup returns the substitution target for the required name, if any.
func (s Substitutions) Lookup(required string) (string, bool) {
	v, ok := s[Normalize(required)]
	return v, ok
}

// Normalized returns a copy with all keys and values normalized, dropping
// pairs whose key or value normalizes to "".
func (s Substitutions) Normalized() Substitutions {
	out := make(Substitutions, len(s))
	for k, v := range s {
		nk, nv := Normalize(k), Normalize(v)
		if nk == "" || nv == "" {
			continue
		}
		out[nk] = nv
	}
	return out
}
