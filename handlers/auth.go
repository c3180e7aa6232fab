package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ray-remotestate/bazaar/apperror"
	"github.com/ray-remotestate/bazaar/database"
	"github.com/ray-remotestate/bazaar/database/dbhelper"
	"github.com/ray-remotestate/bazaar/models"
	"github.com/ray-remotestate/bazaar/utils"
	"github.com/sirupsen/logrus"
)

const refreshCookie = "refresh_token"

func setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    token,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  time.Now().Add(utils.RefreshTokenTTL),
	})
}

func Register(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Name     string `json:"name" validate:"required,min=2,max=100"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6,max=72"`
		Role     string `json:"role" validate:"required,oneof=customer business"`
	}

	var req request
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := utils.Validate(&req); err != nil {
		utils.RespondError(w, r, err)
		return
	}

	exists, err := dbhelper.IsUserExists(req.Email)
	if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to check user existence", err))
		return
	}
	if exists {
		utils.RespondError(w, r, apperror.Conflict("user already exists"))
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to hash password", err))
		return
	}

	role := models.Role(req.Role)
	var userID uuid.UUID
	var accToken, refToken string
	txErr := database.Tx(func(tx *sqlx.Tx) error {
		userID, err = dbhelper.CreateUser(tx, req.Name, req.Email, hashedPassword, role)
		if err != nil {
			return err
		}

		accToken, refToken, err = utils.GenerateTokens(userID, []string{string(role)})
		return err
	})
	if errors.Is(txErr, dbhelper.ErrDuplicate) {
		utils.RespondError(w, r, apperror.Conflict("user already exists"))
		return
	} else if txErr != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to register user", txErr))
		return
	}
	logrus.WithFields(logrus.Fields{"userId": userID, "role": role}).Info("user registered")

	setRefreshCookie(w, refToken)
	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"userId":      userID,
		"name":        req.Name,
		"email":       req.Email,
		"role":        role,
		"accessToken": accToken,
	})
}

func Login(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
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

	user, err := dbhelper.GetUserByPassword(req.Email, req.Password)
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, dbhelper.ErrIncorrectPassword) {
		utils.RespondError(w, r, apperror.Unauthorized("invalid credentials"))
		return
	}
	if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to log in", err))
		return
	}

	roles := []string{string(user.Role)}
	accessToken, refreshToken, err := utils.GenerateTokens(user.ID, roles)
	if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to generate tokens", err))
		return
	}

	setRefreshCookie(w, refreshToken)
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"userId":      user.ID,
		"name":        user.Name,
		"email":       user.Email,
		"role":        user.Role,
		"accessToken": accessToken,
		"message":     "Successfully logged in",
	})
}

func RefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookie)
	if err != nil {
		utils.RespondError(w, r, apperror.Unauthorized("refresh token missing"))
		return
	}

	claims, err := utils.ParseToken(cookie.Value, models.TokenRefresh)
	if err != nil {
		utils.RespondError(w, r, apperror.Unauthorized("invalid or expired refresh token"))
		return
	}

	newAccessToken, newRefreshToken, err := utils.GenerateTokens(claims.UserID, claims.Roles)
	if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to generate token", err))
		return
	}

	setRefreshCookie(w, newRefreshToken)
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"accessToken": newAccessToken,
	})
}

func Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "Successfully logged out",
	})
}
