package handlers

import (
	"net/http"

	"github.com/ray-remotestate/bazaar/apperror"
	"github.com/ray-remotestate/bazaar/database/dbhelper"
	"github.com/ray-remotestate/bazaar/utils"
)

func ListNotifications(w http.ResponseWriter, r *http.Request) {
	claims, err := currentUser(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	notifications, err := dbhelper.ListNotifications(claims.UserID)
	if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to list notifications", err))
		return
	}
	utils.RespondJSON(w, http.StatusOK, notifications)
}

func MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	claims, err := currentUser(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	ok, err := dbhelper.MarkNotificationRead(id, claims.UserID)
	if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to update notification", err))
		return
	}
	if !ok {
		utils.RespondError(w, r, apperror.NotFound("notification not found"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "notification marked as read"})
}
