package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotifBookingConfirmed NotificationType = "booking_confirmed"
	NotifBookingDeclined  NotificationType = "booking_declined"
	NotifBookingCompleted NotificationType = "booking_completed"
)

// Notification is an entry in a customer's feed. It is unrelated to the
// upcoming-bookings count shown on the business dashboard.
type Notification struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	UserID    uuid.UUID        `db:"user_id" json:"userId"`
	BookingID *uuid.UUID       `db:"booking_id" json:"bookingId,omitempty"`
	Type      NotificationType `db:"type" json:"type"`
	Message   string           `db:"message" json:"message"`
	IsRead    bool             `db:"is_read" json:"isRead"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}
