package dbhelper

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ray-remotestate/bazaar/database"
	"github.com/ray-remotestate/bazaar/models"
)

const bookingColumns = `id, customer_id, business_id, service, booking_date, booking_time, price, notes, status,
	decline_reason, amount_received, completed_at, created_at, updated_at`

// CreateBooking stores b as a new pending booking, filling in its ID and
// timestamps.
func CreateBooking(b *models.Booking) error {
	id, err := newID()
	if err != nil {
		return err
	}
	b.ID = id
	b.Status = models.BookingPending
	b.CreatedAt = now()
	b.UpdatedAt = b.CreatedAt

	query := `INSERT INTO bookings (id, customer_id, business_id, service, booking_date, booking_time, price, notes, status, created_at, updated_at)
		VALUES (:id, :customer_id, :business_id, :service, :booking_date, :booking_time, :price, :notes, :status, :created_at, :updated_at)`
	if _, err := database.Bazaar.NamedExec(query, b); err != nil {
		return fmt.Errorf("creating booking for %s: %w", b.CustomerID, err)
	}
	return nil
}

func GetBookingByID(id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	query := database.Bazaar.Rebind(`SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`)
	if err := database.Bazaar.Get(&b, query, id); err != nil {
		return nil, fmt.Errorf("getting booking %s: %w", id, err)
	}
	return &b, nil
}

func ListBookingsByCustomer(customerID uuid.UUID) ([]models.Booking, error) {
	bookings := []models.Booking{}
	query := database.Bazaar.Rebind(`SELECT ` + bookingColumns + ` FROM bookings
		WHERE customer_id = ? ORDER BY created_at DESC, id DESC`)
	if err := database.Bazaar.Select(&bookings, query, customerID); err != nil {
		return nil, fmt.Errorf("listing bookings of customer %s: %w", customerID, err)
	}
	return bookings, nil
}

func ListBookingsByBusiness(businessID uuid.UUID) ([]models.Booking, error) {
	bookings := []models.Booking{}
	query := database.Bazaar.Rebind(`SELECT ` + bookingColumns + ` FROM bookings
		WHERE business_id = ? ORDER BY created_at DESC, id DESC`)
	if err := database.Bazaar.Select(&bookings, query, businessID); err != nil {
		return nil, fmt.Errorf("listing bookings of business %s: %w", businessID, err)
	}
	return bookings, nil
}

func ListCompletedBookings(businessID uuid.UUID) ([]models.Booking, error) {
	bookings := []models.Booking{}
	query := database.Bazaar.Rebind(`SELECT ` + bookingColumns + ` FROM bookings
		WHERE business_id = ? AND status = ? ORDER BY created_at, id`)
	if err := database.Bazaar.Select(&bookings, query, businessID, models.BookingCompleted); err != nil {
		return nil, fmt.Errorf("listing completed bookings of business %s: %w", businessID, err)
	}
	return bookings, nil
}

// CountUpcomingBookings counts pending and confirmed bookings scheduled on or
// after today (YYYY-MM-DD).
func CountUpcomingBookings(businessID uuid.UUID, today string) (int, error) {
	var count int
	query := database.Bazaar.Rebind(`SELECT COUNT(*) FROM bookings
		WHERE business_id = ? AND status IN (?, ?) AND booking_date >= ?`)
	err := database.Bazaar.Get(&count, query, businessID, models.BookingPending, models.BookingConfirmed, today)
	if err != nil {
		return 0, fmt.Errorf("counting upcoming bookings of business %s: %w", businessID, err)
	}
	return count, nil
}

// StatusChange describes a guarded status update. Nil optional fields leave
// the stored column untouched.
type StatusChange struct {
	BookingID      uuid.UUID
	From           models.BookingStatus
	To             models.BookingStatus
	DeclineReason  *string
	AmountReceived *float64
	CompletedAt    *time.Time
	At             time.Time
}

// UpdateBookingStatus applies change only if the booking is still in
// change.From. It reports whether a row was updated.
func UpdateBookingStatus(exec SQLExecutor, change StatusChange) (bool, error) {
	at := change.At
	if at.IsZero() {
		at = now()
	}
	var completedAt *time.Time
	if change.CompletedAt != nil {
		t := change.CompletedAt.UTC()
		completedAt = &t
	}

	query := exec.Rebind(`UPDATE bookings
		SET status = ?,
		    decline_reason = COALESCE(?, decline_reason),
		    amount_received = COALESCE(?, amount_received),
		    completed_at = COALESCE(?, completed_at),
		    updated_at = ?
		WHERE id = ? AND status = ?`)
	result, err := exec.Exec(query, change.To, change.DeclineReason, change.AmountReceived, completedAt, at.UTC(),
		change.BookingID, change.From)
	if err != nil {
		return false, fmt.Errorf("moving booking %s to %s: %w", change.BookingID, change.To, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("fetching rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}
