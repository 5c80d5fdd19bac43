package server

import (
	"time"

	"campusmarket/feed"
	"campusmarket/storage"
)

// toFeedListing projects a stored listing into the value the ranking core
// evaluates. Avatar and hostel presence collapse to booleans here; the core
// never sees seller identity.
func toFeedListing(l storage.Listing) feed.Listing {
	return feed.Listing{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Category:    feed.Category(l.Category),
		Condition:   feed.Condition(l.Condition),
		Images:      l.Images,
		HasAvatar:   l.SellerAvatarURL != "",
		HasHostel:   l.HostelName != "",
		CreatedAt:   l.CreatedAt,
		ViewCount:   l.ViewCount,
		Status:      feed.Status(l.Status),
	}
}

// listingResponse is the JSON shape shared by feed items and detail reads.
type listingResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition"`
	Images      []string  `json:"images"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	ViewCount   int       `json:"view_count"`
}

func toListingResponse(l feed.Listing) listingResponse {
	return listingResponse{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Category:    string(l.Category),
		Condition:   string(l.Condition),
		Images:      l.Images,
		Status:      string(l.Status),
		CreatedAt:   l.CreatedAt,
		ViewCount:   l.ViewCount,
	}
}

// storedListingResponse adds the seller fields only detail reads expose.
type storedListingResponse struct {
	listingResponse
	CollegeID       string `json:"college_id"`
	SellerName      string `json:"seller_name"`
	SellerAvatarURL string `json:"seller_avatar_url,omitempty"`
	HostelName      string `json:"hostel_name,omitempty"`
}

func toStoredResponse(l *storage.Listing) storedListingResponse {
	return storedListingResponse{
		listingResponse: toListingResponse(toFeedListing(*l)),
		CollegeID:       l.CollegeID,
		SellerName:      l.SellerName,
		SellerAvatarURL: l.SellerAvatarURL,
		HostelName:      l.HostelName,
	}
}
