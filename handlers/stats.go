package handlers

import (
	"net/http"

	"github.com/ray-remotestate/bazaar/apperror"
	"github.com/ray-remotestate/bazaar/database/dbhelper"
	"github.com/ray-remotestate/bazaar/lifecycle"
	"github.com/ray-remotestate/bazaar/models"
	"github.com/ray-remotestate/bazaar/utils"
)

func IncomeStats(w http.ResponseWriter, r *http.Request) {
	business, err := currentBusiness(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	completed, err := dbhelper.ListCompletedBookings(business.ID)
	if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to load income", err))
		return
	}
	utils.RespondJSON(w, http.StatusOK, lifecycle.Income(completed, now()))
}

func WeeklyBookingStats(w http.ResponseWriter, r *http.Request) {
	business, err := currentBusiness(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	bookings, err := dbhelper.ListBookingsByBusiness(business.ID)
	if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to load bookings", err))
		return
	}
	utils.RespondJSON(w, http.StatusOK, lifecycle.WeeklyBookings(bookings, now()))
}

func WeeklyIncomeStats(w http.ResponseWriter, r *http.Request) {
	business, err := currentBusiness(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	completed, err := dbhelper.ListCompletedBookings(business.ID)
	if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to load income", err))
		return
	}
	utils.RespondJSON(w, http.StatusOK, lifecycle.WeeklyIncome(completed, now()))
}

// UpcomingCount is the business dashboard badge: pending or confirmed
// bookings dated today or later.
func UpcomingCount(w http.ResponseWriter, r *http.Request) {
	business, err := currentBusiness(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	count, err := dbhelper.CountUpcomingBookings(business.ID, now().Format(models.BookingDateLayout))
	if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to count bookings", err))
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]int{"count": count})
}
