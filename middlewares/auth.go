package middlewares

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/ray-remotestate/bazaar/apperror"
	"github.com/ray-remotestate/bazaar/database/dbhelper"
	"github.com/ray-remotestate/bazaar/models"
	"github.com/ray-remotestate/bazaar/utils"
)

type ContextKey string

const (
	userContextKey     ContextKey = "user"
	businessContextKey ContextKey = "business"
)

func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, err := extractBearerToken(r)
		if err != nil {
			utils.RespondError(w, r, apperror.Unauthorized("unauthorized: missing token"))
			return
		}

		claims, err := utils.ParseToken(tokenStr, models.TokenAccess)
		if err != nil {
			utils.RespondError(w, r, apperror.Unauthorized("unauthorized: invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetAuthenticatedUser(r *http.Request) (*models.Claims, error) {
	claims, ok := r.Context().Value(userContextKey).(*models.Claims)
	if !ok {
		return nil, errors.New("no user in context")
	}
	return claims, nil
}

func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("invalid authorization format")
	}
	return parts[1], nil
}

func RoleBasedMiddleware(allowedRoles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]bool)
	for _, role := range allowedRoles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := GetAuthenticatedUser(r)
			if err != nil {
				utils.RespondError(w, r, apperror.Unauthorized("unauthorized"))
				return
			}

			for _, userRole := range claims.Roles {
				if allowed[models.Role(strings.ToLower(userRole))] {
					next.ServeHTTP(w, r)
					return
				}
			}

			utils.RespondError(w, r, apperror.Forbidden("forbidden: insufficient role"))
		})
	}
}

// BusinessMiddleware loads the business owned by the authenticated user.
// Callers without a business profile get 403.
func BusinessMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := GetAuthenticatedUser(r)
		if err != nil {
			utils.RespondError(w, r, apperror.Unauthorized("unauthorized"))
			return
		}

		business, err := dbhelper.GetBusinessByOwner(claims.UserID)
		if errors.Is(err, sql.ErrNoRows) {
			utils.RespondError(w, r, apperror.Forbidden("create a business profile first"))
			return
		}
		if err != nil {
			utils.RespondError(w, r, apperror.Upstream("failed to load business", err))
			return
		}

		ctx := context.WithValue(r.Context(), businessContextKey, business)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetBusiness(r *http.Request) (*models.Business, error) {
	business, ok := r.Context().Value(businessContextKey).(*models.Business)
	if !ok {
		return nil, errors.New("no business in context")
	}
	return business, nil
}
