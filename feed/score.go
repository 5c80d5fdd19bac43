package feed

import (
	"math"
	"time"
)

// Weights defines the relative importance of each scoring signal. The five
// fields must sum to 1.0 so the final score stays in [0, 100].
type Weights struct {
	Recency      float64
	Engagement   float64
	Price        float64
	Images       float64
	Completeness float64
}

// DefaultWeights returns the production weighting.
func DefaultWeights() Weights {
	return Weights{
		Recency:      0.35,
		Engagement:   0.20,
		Price:        0.15,
		Images:       0.15,
		Completeness: 0.15,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Recency + w.Engagement + w.Price + w.Images + w.Completeness
}

// Breakdown holds the per-signal sub-scores, each in [0, 100].
type Breakdown struct {
	Recency      float64
	Engagement   float64
	Price        float64
	Images       float64
	Completeness float64
}

// Score computes the priority score for a listing at the given time using
// the default weights. The result is in [0, 100], rounded to two decimals,
// and identical for identical inputs.
func Score(l Listing, now time.Time) float64 {
	return ScoreWith(l, now, DefaultWeights())
}

// ScoreWith computes the priority score with explicit weights.
func ScoreWith(l Listing, now time.Time, w Weights) float64 {
	b := ScoreBreakdown(l, now)
	total := b.Recency*w.Recency +
		b.Engagement*w.Engagement +
		b.Price*w.Price +
		b.Images*w.Images +
		b.Completeness*w.Completeness
	return math.Round(total*100) / 100
}

// ScoreBreakdown computes the five sub-scores for a listing.
func ScoreBreakdown(l Listing, now time.Time) Breakdown {
	return Breakdown{
		Recency:      recencyScore(l.CreatedAt, now),
		Engagement:   engagementScore(l.ViewCount),
		Price:        priceScore(l.Price, l.Category),
		Images:       imageScore(len(l.Images)),
		Completeness: completenessScore(l),
	}
}

// recencyScore rewards recently created listings. Future timestamps clamp
// into the freshest bucket.
func recencyScore(createdAt, now time.Time) float64 {
	hours := hoursSince(createdAt, now)
	switch {
	case hours <= 1:
		return 100
	case hours <= 6:
		return 95
	case hours <= 12:
		return 90
	case hours <= 24:
		return 85
	case hours <= 48:
		return 75
	case hours <= 72:
		return 65
	case hours <= 168:
		return 50
	case hours <= 336:
		return 35
	case hours <= 720:
		return 20
	default:
		return 10
	}
}

// engagementScore maps view counts to a score with diminishing returns.
// Zero views still scores 20 so brand-new listings aren't buried.
func engagementScore(views int) float64 {
	switch {
	case views >= 500:
		return 100
	case views >= 300:
		return 90
	case views >= 200:
		return 80
	case views >= 100:
		return 70
	case views >= 50:
		return 60
	case views >= 25:
		return 50
	case views >= 10:
		return 40
	case views >= 5:
		return 30
	default:
		return 20
	}
}

// priceScore rewards listings priced below their category's reference
// average.
func priceScore(price float64, category Category) float64 {
	ratio := price / ReferencePrice(category)
	switch {
	case ratio <= 0.3:
		return 100
	case ratio <= 0.5:
		return 90
	case ratio <= 0.7:
		return 80
	case ratio <= 0.9:
		return 70
	case ratio <= 1.1:
		return 60
	case ratio <= 1.3:
		return 50
	case ratio <= 1.5:
		return 40
	default:
		return 30
	}
}

func imageScore(count int) float64 {
	switch {
	case count >= 5:
		return 100
	case count >= 4:
		return 90
	case count >= 3:
		return 80
	case count >= 2:
		return 60
	case count >= 1:
		return 40
	default:
		return 10
	}
}

// completenessScore adds up profile-quality components. The maximum by
// construction is 40+20+20+20 = 100.
func completenessScore(l Listing) float64 {
	var score float64

	descLen := len(l.Description)
	switch {
	case descLen >= 200:
		score += 40
	case descLen >= 100:
		score += 30
	case descLen >= 50:
		score += 20
	default:
		score += 10
	}

	if l.HasAvatar {
		score += 20
	}
	if l.HasHostel {
		score += 20
	}

	titleLen := len(l.Title)
	switch {
	case titleLen >= 20 && titleLen <= 60:
		score += 20
	case titleLen >= 10:
		score += 10
	}

	return score
}
