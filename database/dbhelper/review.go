package dbhelper

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ray-remotestate/bazaar/database"
	"github.com/ray-remotestate/bazaar/models"
)

func CreateReview(r *models.Review) error {
	id, err := newID()
	if err != nil {
		return err
	}
	r.ID = id
	r.CreatedAt = now()

	query := `INSERT INTO reviews (id, business_id, customer_id, booking_id, rating, comment, created_at)
		VALUES (:id, :business_id, :customer_id, :booking_id, :rating, :comment, :created_at)`
	if _, err := database.Bazaar.NamedExec(query, r); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("creating review for business %s: %w", r.BusinessID, ErrDuplicate)
		}
		return fmt.Errorf("creating review for business %s: %w", r.BusinessID, err)
	}
	return nil
}

func ListReviews(businessID uuid.UUID) ([]models.Review, error) {
	reviews := []models.Review{}
	query := database.Bazaar.Rebind(`
		SELECT id, business_id, customer_id, booking_id, rating, comment, created_at FROM reviews
		WHERE business_id = ? ORDER BY created_at DESC, id DESC`)
	if err := database.Bazaar.Select(&reviews, query, businessID); err != nil {
		return nil, fmt.Errorf("listing reviews of %s: %w", businessID, err)
	}
	return reviews, nil
}

func ReviewExistsForBooking(bookingID uuid.UUID) (bool, error) {
	var count int
	query := database.Bazaar.Rebind(`SELECT COUNT(*) FROM reviews WHERE booking_id = ?`)
	if err := database.Bazaar.Get(&count, query, bookingID); err != nil {
		return false, fmt.Errorf("checking review of booking %s: %w", bookingID, err)
	}
	return count > 0, nil
}
