// Package feed ranks, filters, and tags marketplace listings.
//
// Everything in this package is a pure function of its inputs plus an
// explicit "now" timestamp; nothing here touches storage or the clock.
package feed

import "time"

// Category identifies the product category of a listing.
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryFurniture   Category = "furniture"
	CategoryBooks       Category = "books"
	CategoryClothing    Category = "clothing"
	CategorySports      Category = "sports"
	CategoryKitchen     Category = "kitchen"
	CategoryDecor       Category = "decor"
	CategoryCycles      Category = "cycles"
	CategoryOther       Category = "other"
)

// Condition describes the wear state of a listing.
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like_new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
)

// Status is a listing's lifecycle state. Only active listings belong in the
// feed; the store filters status before the candidate set reaches this
// package, but nothing here assumes it did.
type Status string

const (
	StatusDraft          Status = "draft"
	StatusPendingPayment Status = "pending_payment"
	StatusActive         Status = "active"
	StatusSold           Status = "sold"
	StatusExpired        Status = "expired"
)

// Listing is the read-only view of a marketplace item that ranking operates
// on. It is owned and mutated by the product store, never by this package.
type Listing struct {
	ID          string
	Title       string
	Description string
	Price       float64
	Category    Category
	Condition   Condition
	Images      []string
	HasAvatar   bool
	HasHostel   bool
	CreatedAt   time.Time
	ViewCount   int
	Status      Status
}

// categoryAvgPrice maps each category to its reference average price, used
// only for price-attractiveness scoring.
var categoryAvgPrice = map[Category]float64{
	CategoryElectronics: 15000,
	CategoryFurniture:   3000,
	CategoryBooks:       500,
	CategoryClothing:    800,
	CategorySports:      2000,
	CategoryKitchen:     1500,
	CategoryDecor:       1000,
	CategoryCycles:      4000,
	CategoryOther:       1000,
}

// defaultReferencePrice is the fallback average for categories missing from
// the table, so an unknown category degrades the score instead of crashing
// the feed.
const defaultReferencePrice = 1000

// ReferencePrice returns the category's reference average price, or the
// default for unknown categories.
func ReferencePrice(c Category) float64 {
	if avg, ok := categoryAvgPrice[c]; ok {
		return avg
	}
	return defaultReferencePrice
}

// hoursSince returns the fractional hours elapsed from t to now, clamped at
// zero so listings stamped in the future count as brand new.
func hoursSince(t, now time.Time) float64 {
	h := now.Sub(t).Hours()
	if h < 0 {
		return 0
	}
	return h
}
