package dbhelper

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ray-remotestate/bazaar/database"
	"github.com/ray-remotestate/bazaar/models"
)

const businessColumns = `id, owner_id, name, type, description, address, phone, latitude, longitude, profile_views, created_at, updated_at`

func CreateBusiness(b *models.Business) error {
	id, err := newID()
	if err != nil {
		return err
	}
	b.ID = id
	b.CreatedAt = now()
	b.UpdatedAt = b.CreatedAt
	b.ProfileViews = 0

	query := `INSERT INTO businesses (` + businessColumns + `)
		VALUES (:id, :owner_id, :name, :type, :description, :address, :phone, :latitude, :longitude, :profile_views, :created_at, :updated_at)`
	if _, err := database.Bazaar.NamedExec(query, b); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("creating business %s: %w", b.Name, ErrDuplicate)
		}
		return fmt.Errorf("creating business %s: %w", b.Name, err)
	}
	return nil
}

// UpdateBusiness overwrites the editable fields of the business owned by
// b.OwnerID.
func UpdateBusiness(b *models.Business) error {
	b.UpdatedAt = now()
	query := `UPDATE businesses
		SET name = :name, type = :type, description = :description, address = :address,
		    phone = :phone, latitude = :latitude, longitude = :longitude, updated_at = :updated_at
		WHERE owner_id = :owner_id`
	result, err := database.Bazaar.NamedExec(query, b)
	if err != nil {
		return fmt.Errorf("updating business %s: %w", b.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("fetching rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no business owned by %s", b.OwnerID)
	}
	return nil
}

func GetBusinessByID(id uuid.UUID) (*models.Business, error) {
	var b models.Business
	query := database.Bazaar.Rebind(`SELECT ` + businessColumns + ` FROM businesses WHERE id = ?`)
	if err := database.Bazaar.Get(&b, query, id); err != nil {
		return nil, fmt.Errorf("getting business %s: %w", id, err)
	}
	return &b, nil
}

func GetBusinessByOwner(ownerID uuid.UUID) (*models.Business, error) {
	var b models.Business
	query := database.Bazaar.Rebind(`SELECT ` + businessColumns + ` FROM businesses WHERE owner_id = ?`)
	if err := database.Bazaar.Get(&b, query, ownerID); err != nil {
		return nil, fmt.Errorf("getting business of owner %s: %w", ownerID, err)
	}
	return &b, nil
}

// ListBusinesses returns all businesses, newest first, optionally filtered by
// type (case-insensitive).
func ListBusinesses(kind string) ([]models.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE 1=1`
	args := []interface{}{}
	if kind = strings.TrimSpace(kind); kind != "" {
		query += ` AND LOWER(type) = LOWER(?)`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	businesses := []models.Business{}
	if err := database.Bazaar.Select(&businesses, database.Bazaar.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing businesses: %w", err)
	}
	return businesses, nil
}

// ListLocatedBusinesses returns businesses that have both coordinates set, in
// insertion order.
func ListLocatedBusinesses(kind string) ([]models.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL`
	args := []interface{}{}
	if kind = strings.TrimSpace(kind); kind != "" {
		query += ` AND LOWER(type) = LOWER(?)`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at, id`

	businesses := []models.Business{}
	if err := database.Bazaar.Select(&businesses, database.Bazaar.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing located businesses: %w", err)
	}
	return businesses, nil
}

func IncrementProfileViews(id uuid.UUID) error {
	query := database.Bazaar.Rebind(`UPDATE businesses SET profile_views = profile_views + 1 WHERE id = ?`)
	if _, err := database.Bazaar.Exec(query, id); err != nil {
		return fmt.Errorf("incrementing profile views of %s: %w", id, err)
	}
	return nil
}

// GetRatingSummary aggregates the business's reviews in one query.
func GetRatingSummary(businessID uuid.UUID) (models.RatingSummary, error) {
	var summary models.RatingSummary
	query := database.Bazaar.Rebind(`
		SELECT COUNT(*) AS total_reviews, COALESCE(AVG(rating), 0) AS average_rating
		FROM reviews WHERE business_id = ?`)
	if err := database.Bazaar.Get(&summary, query, businessID); err != nil {
		return models.RatingSummary{}, fmt.Errorf("aggregating reviews of %s: %w", businessID, err)
	}
	return summary, nil
}
