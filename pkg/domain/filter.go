package domain

import "strings"

// FilterKind selects how a Filter matches category names.
type FilterKind string

const (
	FilterNone      FilterKind = ""          // Everything matches
	FilterSubstring FilterKind = "substring" // Case-insensitive substring
	FilterPrefix    FilterKind = "prefix"    // Case-insensitive prefix (alphabet jump)
)

// Filter narrows the category list shown to the user.
type Filter struct {
	Kind FilterKind `json:"kind,omitempty"`
	Term string     `json:"term,omitempty"`
}

// SubstringFilter builds a free-text filter.
func SubstringFilter(term string) Filter {
	return Filter{Kind: FilterSubstring, Term: term}
}

// PrefixFilter builds a prefix-only filter, used by the alphabet row.
func PrefixFilter(letter string) Filter {
	return Filter{Kind: FilterPrefix, Term: letter}
}

// Active reports whether the filter restricts anything.
func (f Filter) Active() bool {
	return f.Kind != FilterNone && f.Term != ""
}

// Match reports whether name passes the filter.
func (f Filter) Match(name string) bool {
	if !f.Active() {
		return true
	}
	lname := strings.ToLower(name)
	term := strings.ToLower(f.Term)
	if f.Kind == FilterPrefix {
		return strings.HasPrefix(lname, term)
	}
	return strings.Contains(lname, term)
}

// Apply returns the names passing the filter, preserving order.
func (f Filter) Apply(names []string) []string {
	if !f.Active() {
		return names
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if f.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

// PhaseKind tells whether the next free-text message is a filter term.
type PhaseKind string

const (
	PhaseBrowsing       PhaseKind = "browsing"
	PhaseAwaitingFilter PhaseKind = "awaiting_filter"
)

// Phase is the tagged input state of a session. A filter only exists while browsing,
// so "awaiting a filter" and "stale filter" can never be combined.
type Phase struct {
	Kind   PhaseKind `json:"kind"`
	Filter Filter    `json:"filter,omitempty"`
}

// Browsing returns the browsing phase with the given filter.
func Browsing(f Filter) Phase {
	return Phase{Kind: PhaseBrowsing, Filter: f}
}

// AwaitingFilter returns the phase in which the next text message becomes the filter.
func AwaitingFilter() Phase {
	return Phase{Kind: PhaseAwaitingFilter}
}

// Awaiting reports whether the next text message is consumed as a filter term.
func (p Phase) Awaiting() bool {
	return p.Kind == PhaseAwaitingFilter
}

// ActiveFilter returns the filter in effect. While awaiting input there is none.
func (p Phase) ActiveFilter() Filter {
	if p.Kind != PhaseBrowsing {
		return Filter{}
	}
	return p.Filter
}
