package feed

import (
	"sort"
	"time"
)

// SortMode selects the feed ordering.
type SortMode string

const (
	SortPriority  SortMode = "priority"
	SortNewest    SortMode = "newest"
	SortPriceLow  SortMode = "price_low"
	SortPriceHigh SortMode = "price_high"
	SortPopular   SortMode = "popular"
)

// Sort returns a new slice of listings ordered by the given mode. The input
// is never mutated and the output is always a permutation of it. Unknown
// modes fall back to priority so the feed stays renderable. All sorts are
// stable: listings with equal keys keep their input order.
func Sort(listings []Listing, mode SortMode, now time.Time) []Listing {
	sorted := make([]Listing, len(listings))
	copy(sorted, listings)

	switch mode {
	case SortNewest:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		})
	case SortPriceLow:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price < sorted[j].Price
		})
	case SortPriceHigh:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price > sorted[j].Price
		})
	case SortPopular:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].ViewCount > sorted[j].ViewCount
		})
	default: // SortPriority and anything unrecognized
		sortByPriority(sorted, now)
	}

	return sorted
}

// sortByPriority orders listings by descending priority score. Each listing
// is scored once up front; scoring inside the comparator would recompute it
// O(n log n) times.
func sortByPriority(listings []Listing, now time.Time) {
	type scored struct {
		listing Listing
		score   float64
	}
	items := make([]scored, len(listings))
	for i, l := range listings {
		items[i] = scored{listing: l, score: Score(l, now)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})
	for i, it := range items {
		listings[i] = it.listing
	}
}
