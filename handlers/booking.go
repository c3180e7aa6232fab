package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ray-remotestate/bazaar/apperror"
	"github.com/ray-remotestate/bazaar/database"
	"github.com/ray-remotestate/bazaar/database/dbhelper"
	"github.com/ray-remotestate/bazaar/lifecycle"
	"github.com/ray-remotestate/bazaar/models"
	"github.com/ray-remotestate/bazaar/utils"
	"github.com/sirupsen/logrus"
)

var errStaleStatus = errors.New("booking status changed concurrently")

func CreateBooking(w http.ResponseWriter, r *http.Request) {
	type request struct {
		BusinessID string   `json:"businessId" validate:"required"`
		Service    string   `json:"service" validate:"required,max=200"`
		Date       string   `json:"date" validate:"required,datetime=2006-01-02"`
		Time       string   `json:"time" validate:"required,datetime=15:04"`
		Price      *float64 `json:"price" validate:"omitempty,gte=0"`
		Notes      string   `json:"notes" validate:"max=1000"`
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
	if strings.TrimSpace(req.Service) == "" {
		utils.RespondError(w, r, apperror.Validation("service must not be blank"))
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

	booking := &models.Booking{
		CustomerID: claims.UserID,
		BusinessID: businessID,
		Service:    req.Service,
		Date:       req.Date,
		Time:       req.Time,
		Price:      req.Price,
		Notes:      req.Notes,
	}
	if err := dbhelper.CreateBooking(booking); err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to create booking", err))
		return
	}
	logrus.WithFields(logrus.Fields{"bookingId": booking.ID, "businessId": businessID}).Info("booking requested")

	utils.RespondJSON(w, http.StatusCreated, booking)
}

// filterByStatus applies the optional ?status= query parameter.
func filterByStatus(r *http.Request, bookings []models.Booking) ([]models.Booking, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("status"))
	if raw == "" {
		return bookings, nil
	}
	status := models.BookingStatus(strings.ToLower(raw))
	if !status.IsValid() {
		return nil, apperror.Validation("unknown status %q", raw)
	}

	filtered := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status == status {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

func ListCustomerBookings(w http.ResponseWriter, r *http.Request) {
	claims, err := currentUser(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	bookings, err := dbhelper.ListBookingsByCustomer(claims.UserID)
	if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to list bookings", err))
		return
	}
	bookings, err = filterByStatus(r, bookings)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, bookings)
}

func ListBusinessBookings(w http.ResponseWriter, r *http.Request) {
	business, err := currentBusiness(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	bookings, err := dbhelper.ListBookingsByBusiness(business.ID)
	if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to list bookings", err))
		return
	}
	bookings, err = filterByStatus(r, bookings)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, bookings)
}

// transition describes one status change requested over HTTP.
type transition struct {
	action lifecycle.Action
	// authorize rejects callers who may not act on the booking.
	authorize func(b *models.Booking) error
	// prepare fills in the action-specific columns of change.
	prepare func(change *dbhelper.StatusChange)
	// notify builds the customer notification, or returns nil for none.
	notify func(b *models.Booking) *models.Notification
}

func loadBooking(r *http.Request) (*models.Booking, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return nil, err
	}
	booking, err := dbhelper.GetBookingByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("booking not found")
	}
	if err != nil {
		return nil, apperror.Upstream("failed to load booking", err)
	}
	return booking, nil
}

// applyTransition moves the booking named in the path through t. The update
// only succeeds if the booking is still in the status it was read in, so two
// racing actions cannot both win.
func applyTransition(r *http.Request, t transition) (*models.Booking, error) {
	claims, err := currentUser(r)
	if err != nil {
		return nil, err
	}
	if !claims.HasRole(lifecycle.Actor(t.action)) {
		return nil, apperror.Forbidden("only a %s can %s a booking", lifecycle.Actor(t.action), t.action)
	}

	booking, err := loadBooking(r)
	if err != nil {
		return nil, err
	}
	if err := t.authorize(booking); err != nil {
		return nil, err
	}

	next, err := lifecycle.Transition(booking.Status, t.action)
	if err != nil {
		return nil, err
	}

	change := dbhelper.StatusChange{
		BookingID: booking.ID,
		From:      booking.Status,
		To:        next,
		At:        now(),
	}
	if t.prepare != nil {
		t.prepare(&change)
	}

	err = database.Tx(func(tx *sqlx.Tx) error {
		updated, err := dbhelper.UpdateBookingStatus(tx, change)
		if err != nil {
			return err
		}
		if !updated {
			return errStaleStatus
		}
		if t.notify == nil {
			return nil
		}
		if n := t.notify(booking); n != nil {
			return dbhelper.InsertNotification(tx, n)
		}
		return nil
	})
	if errors.Is(err, errStaleStatus) {
		return nil, staleTransitionError(r, t.action)
	}
	if err != nil {
		return nil, apperror.Upstream(fmt.Sprintf("failed to %s booking", t.action), err)
	}

	logrus.WithFields(logrus.Fields{
		"bookingId": booking.ID,
		"from":      change.From,
		"to":        change.To,
	}).Info("booking status changed")

	updated, err := dbhelper.GetBookingByID(booking.ID)
	if err != nil {
		return nil, apperror.Upstream("failed to reload booking", err)
	}
	return updated, nil
}

// staleTransitionError re-reads a booking whose guarded update matched no row
// and explains why.
func staleTransitionError(r *http.Request, action lifecycle.Action) error {
	current, err := loadBooking(r)
	if err != nil {
		return err
	}
	if _, err := lifecycle.Transition(current.Status, action); err != nil {
		return err
	}
	return apperror.Validation("booking was modified concurrently, try again")
}

func ownedByBusiness(business *models.Business) func(b *models.Booking) error {
	return func(b *models.Booking) error {
		if b.BusinessID != business.ID {
			return apperror.Forbidden("booking belongs to another business")
		}
		return nil
	}
}

func bookingNotification(b *models.Booking, kind models.NotificationType, message string) *models.Notification {
	return &models.Notification{
		UserID:    b.CustomerID,
		BookingID: &b.ID,
		Type:      kind,
		Message:   message,
	}
}

func AcceptBooking(w http.ResponseWriter, r *http.Request) {
	business, err := currentBusiness(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	booking, err := applyTransition(r, transition{
		action:    lifecycle.ActionAccept,
		authorize: ownedByBusiness(business),
		notify: func(b *models.Booking) *models.Notification {
			return bookingNotification(b, models.NotifBookingConfirmed,
				fmt.Sprintf("%s confirmed your %s booking on %s at %s.", business.Name, b.Service, b.Date, b.Time))
		},
	})
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, booking)
}

func DeclineBooking(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Reason string `json:"reason"`
	}

	business, err := currentBusiness(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	var req request
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, r, err)
		return
	}
	reason, err := lifecycle.ValidateDeclineReason(req.Reason)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	booking, err := applyTransition(r, transition{
		action:    lifecycle.ActionDecline,
		authorize: ownedByBusiness(business),
		prepare: func(change *dbhelper.StatusChange) {
			change.DeclineReason = &reason
		},
		notify: func(b *models.Booking) *models.Notification {
			return bookingNotification(b, models.NotifBookingDeclined,
				fmt.Sprintf("%s declined your %s booking on %s: %s", business.Name, b.Service, b.Date, reason))
		},
	})
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, booking)
}

func CompleteBooking(w http.ResponseWriter, r *http.Request) {
	type request struct {
		AmountReceived *float64 `json:"amountReceived"`
	}

	business, err := currentBusiness(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	var req request
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, r, err)
		return
	}
	amount, err := lifecycle.ValidateAmountReceived(req.AmountReceived)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	booking, err := applyTransition(r, transition{
		action:    lifecycle.ActionComplete,
		authorize: ownedByBusiness(business),
		prepare: func(change *dbhelper.StatusChange) {
			completedAt := change.At
			change.AmountReceived = &amount
			change.CompletedAt = &completedAt
		},
		notify: func(b *models.Booking) *models.Notification {
			return bookingNotification(b, models.NotifBookingCompleted,
				fmt.Sprintf("Your %s booking with %s is complete. Leave a review!", b.Service, business.Name))
		},
	})
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, booking)
}

func CancelBooking(w http.ResponseWriter, r *http.Request) {
	claims, err := currentUser(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	booking, err := applyTransition(r, transition{
		action: lifecycle.ActionCancel,
		authorize: func(b *models.Booking) error {
			if b.CustomerID != claims.UserID {
				return apperror.Forbidden("booking belongs to another customer")
			}
			return nil
		},
	})
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, booking)
}
