package models

import (
	"time"

	"github.com/google/uuid"
)

// Business is a women-owned business profile. Latitude and Longitude are nil
// when the owner has not placed the business on the map.
type Business struct {
	ID           uuid.UUID `db:"id" json:"id"`
	OwnerID      uuid.UUID `db:"owner_id" json:"ownerId"`
	Name         string    `db:"name" json:"name"`
	Type         string    `db:"type" json:"type"`
	Description  string    `db:"description" json:"description"`
	Address      string    `db:"address" json:"address"`
	Phone        string    `db:"phone" json:"phone"`
	Latitude     *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude    *float64  `db:"longitude" json:"longitude,omitempty"`
	ProfileViews int64     `db:"profile_views" json:"profileViews"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// RatingSummary is computed from the reviews table on every read.
type RatingSummary struct {
	AverageRating float64 `db:"average_rating" json:"averageRating"`
	TotalReviews  int     `db:"total_reviews" json:"totalReviews"`
}

type BusinessProfile struct {
	Business
	RatingSummary
}

// NearbyBusiness is a proximity search hit. Distance is in kilometres.
type NearbyBusiness struct {
	Business
	Distance float64 `json:"distance"`
}
