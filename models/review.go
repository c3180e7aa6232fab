package models

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	BusinessID uuid.UUID  `db:"business_id" json:"businessId"`
	CustomerID uuid.UUID  `db:"customer_id" json:"customerId"`
	BookingID  *uuid.UUID `db:"booking_id" json:"bookingId,omitempty"`
	Rating     int        `db:"rating" json:"rating"`
	Comment    string     `db:"comment" json:"comment"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}
