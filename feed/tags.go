package feed

import (
	"math"
	"sort"
	"time"
)

// TagKind identifies a badge type.
type TagKind string

const (
	TagFresh     TagKind = "fresh"
	TagHot       TagKind = "hot"
	TagTrending  TagKind = "trending"
	TagPremium   TagKind = "premium"
	TagQuickSale TagKind = "quick_sale"
)

// Tag is a display badge attached to a listing. The color tokens are
// presentation metadata consumed by the rendering layer.
type Tag struct {
	Kind       TagKind `json:"kind"`
	Label      string  `json:"label"`
	Color      string  `json:"color"`
	Background string  `json:"background"`
}

// tagMeta maps each tag kind to its display metadata.
var tagMeta = map[TagKind]Tag{
	TagFresh:     {Kind: TagFresh, Label: "Fresh", Color: "#166534", Background: "#dcfce7"},
	TagHot:       {Kind: TagHot, Label: "Hot", Color: "#991b1b", Background: "#fee2e2"},
	TagTrending:  {Kind: TagTrending, Label: "Trending", Color: "#9a3412", Background: "#ffedd5"},
	TagPremium:   {Kind: TagPremium, Label: "Premium", Color: "#6b21a8", Background: "#f3e8ff"},
	TagQuickSale: {Kind: TagQuickSale, Label: "Quick Sale", Color: "#1e40af", Background: "#dbeafe"},
}

const (
	// maxTags caps how many badges a single listing shows.
	maxTags = 2
	// hotMinViews is the absolute floor a listing must clear before the
	// relative top-20% check even applies.
	hotMinViews = 100
	// hotFallbackViews applies when no comparison set is available.
	hotFallbackViews = 200
	// premiumPrice is category-independent.
	premiumPrice = 10000
	// quickSalePrice pairs with like_new condition.
	quickSalePrice = 1000
)

// TagStats carries thresholds precomputed over a feed's full candidate set,
// so per-listing tagging stays O(1) instead of re-sorting view counts for
// every item.
type TagStats struct {
	hotThreshold int
	hasThreshold bool
}

// NewTagStats computes relative thresholds over the visible candidate set.
// An empty set yields stats equivalent to having no comparison set at all.
func NewTagStats(listings []Listing) *TagStats {
	if len(listings) == 0 {
		return &TagStats{}
	}

	views := make([]int, len(listings))
	for i, l := range listings {
		views[i] = l.ViewCount
	}
	sort.Sort(sort.Reverse(sort.IntSlice(views)))

	// The hot threshold is the smallest view count inside the top 20%
	// (ceiling) of the set.
	top := int(math.Ceil(0.2 * float64(len(views))))
	return &TagStats{
		hotThreshold: views[top-1],
		hasThreshold: true,
	}
}

// DeriveTags returns up to two badges for a listing. Pass stats from
// NewTagStats over the full visible set for relative "hot" detection; a nil
// or empty-set stats value falls back to an absolute view threshold.
//
// Rules, in precedence order: fresh (under 24h), hot (high views, top of the
// set), trending (young and gaining views, only when not hot), premium
// (high absolute price), quick_sale (cheap and like-new). Anything past the
// first two qualifying tags is dropped.
func DeriveTags(l Listing, stats *TagStats, now time.Time) []Tag {
	hours := hoursSince(l.CreatedAt, now)

	tags := make([]Tag, 0, maxTags)
	add := func(k TagKind) {
		if len(tags) < maxTags {
			tags = append(tags, tagMeta[k])
		}
	}

	if hours <= 24 {
		add(TagFresh)
	}

	hot := isHot(l.ViewCount, stats)
	if hot {
		add(TagHot)
	}
	if !hot && hours <= 48 && l.ViewCount >= 50 {
		add(TagTrending)
	}

	if l.Price >= premiumPrice {
		add(TagPremium)
	}
	if l.Price <= quickSalePrice && l.Condition == ConditionLikeNew {
		add(TagQuickSale)
	}

	return tags
}

func isHot(views int, stats *TagStats) bool {
	if stats == nil || !stats.hasThreshold {
		return views >= hotFallbackViews
	}
	return views >= hotMinViews && views >= stats.hotThreshold
}
