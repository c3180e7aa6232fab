package models

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingDeclined  BookingStatus = "declined"
)

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled, BookingDeclined:
		return true
	}
	return false
}

// IsTerminal reports whether no further status change is allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled || s == BookingDeclined
}

const BookingDateLayout = "2006-01-02"

type Booking struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	CustomerID     uuid.UUID     `db:"customer_id" json:"customerId"`
	BusinessID     uuid.UUID     `db:"business_id" json:"businessId"`
	Service        string        `db:"service" json:"service"`
	Date           string        `db:"booking_date" json:"date"`
	Time           string        `db:"booking_time" json:"time"`
	Price          *float64      `db:"price" json:"price,omitempty"`
	Notes          string        `db:"notes" json:"notes"`
	Status         BookingStatus `db:"status" json:"status"`
	DeclineReason  *string       `db:"decline_reason" json:"declineReason,omitempty"`
	AmountReceived *float64      `db:"amount_received" json:"amountReceived,omitempty"`
	CompletedAt    *time.Time    `db:"completed_at" json:"completedAt,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updatedAt"`
}

// CompletionTime is CompletedAt, or UpdatedAt for rows written before
// completed_at existed.
func (b *Booking) CompletionTime() time.Time {
	if b.CompletedAt != nil {
		return *b.CompletedAt
	}
	return b.UpdatedAt
}
