package feed

import "strings"

// Filter narrows a candidate set before sorting. Every field is optional;
// the zero value matches all listings. Present fields combine with AND.
type Filter struct {
	Category  Category
	MinPrice  *float64
	MaxPrice  *float64
	Condition Condition
	// Search matches case-insensitively against title or description.
	// An empty string is treated as absent, not as match-nothing.
	Search string
}

// Apply returns the listings that satisfy the filter, preserving input
// order so a subsequent sort breaks ties deterministically. An empty filter
// returns a copy with every listing.
func Apply(listings []Listing, f Filter) []Listing {
	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if f.matches(l) {
			out = append(out, l)
		}
	}
	return out
}

func (f Filter) matches(l Listing) bool {
	if f.Category != "" && l.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && l.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.Price > *f.MaxPrice {
		return false
	}
	if f.Condition != "" && l.Condition != f.Condition {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(l.Title), q) &&
			!strings.Contains(strings.ToLower(l.Description), q) {
			return false
		}
	}
	return true
}
