package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/ray-remotestate/bazaar/apperror"
	"github.com/ray-remotestate/bazaar/database/dbhelper"
	"github.com/ray-remotestate/bazaar/models"
	"github.com/ray-remotestate/bazaar/utils"
)

func CreateReview(w http.ResponseWriter, r *http.Request) {
	type request struct {
		BusinessID string `json:"businessId" validate:"required"`
		BookingID  string `json:"bookingId"`
		Rating     int    `json:"rating" validate:"required,gte=1,lte=5"`
		Comment    string `json:"comment" validate:"max=2000"`
	}

	claims, err := currentUser(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	var req request
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, r, err)
		return
	}
	if err := utils.Validate(&req); err != nil {
		utils.RespondError(w, r, err)
		return
	}

	businessID, err := uuid.Parse(req.BusinessID)
	if err != nil {
		utils.RespondError(w, r, apperror.Validation("invalid businessId"))
		return
	}
	if _, err := dbhelper.GetBusinessByID(businessID); errors.Is(err, sql.ErrNoRows) {
		utils.RespondError(w, r, apperror.NotFound("business not found"))
		return
	} else if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to load business", err))
		return
	}

	review := &models.Review{
		BusinessID: businessID,
		CustomerID: claims.UserID,
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
	}

	if req.BookingID != "" {
		bookingID, err := uuid.Parse(req.BookingID)
		if err != nil {
			utils.RespondError(w, r, apperror.Validation("invalid bookingId"))
			return
		}
		if err := checkReviewableBooking(bookingID, businessID, claims.UserID); err != nil {
			utils.RespondError(w, r, err)
			return
		}
		review.BookingID = &bookingID
	}

	if err := dbhelper.CreateReview(review); errors.Is(err, dbhelper.ErrDuplicate) {
		utils.RespondError(w, r, apperror.Conflict("booking already reviewed"))
		return
	} else if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to save review", err))
		return
	}
	utils.RespondJSON(w, http.StatusCreated, review)
}

// checkReviewableBooking allows one review per completed booking, written by
// the customer who made it.
func checkReviewableBooking(bookingID, businessID, customerID uuid.UUID) error {
	booking, err := dbhelper.GetBookingByID(bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound("booking not found")
	}
	if err != nil {
		return apperror.Upstream("failed to load booking", err)
	}
	if booking.CustomerID != customerID {
		return apperror.Forbidden("booking belongs to another customer")
	}
	if booking.BusinessID != businessID {
		return apperror.Validation("booking is with a different business")
	}
	if booking.Status != models.BookingCompleted {
		return apperror.Validation("only completed bookings can be reviewed")
	}

	exists, err := dbhelper.ReviewExistsForBooking(bookingID)
	if err != nil {
		return apperror.Upstream("failed to check review", err)
	}
	if exists {
		return apperror.Conflict("booking already reviewed")
	}
	return nil
}
