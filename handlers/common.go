package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/ray-remotestate/bazaar/apperror"
	"github.com/ray-remotestate/bazaar/config"
	"github.com/ray-remotestate/bazaar/middlewares"
	"github.com/ray-remotestate/bazaar/models"
)

// now is swapped out in tests.
var now = func() time.Time {
	return time.Now().In(config.Location)
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid %s", name)
	}
	return id, nil
}

func currentUser(r *http.Request) (*models.Claims, error) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		return nil, apperror.Unauthorized("unauthorized")
	}
	return claims, nil
}

func currentBusiness(r *http.Request) (*models.Business, error) {
	business, err := middlewares.GetBusiness(r)
	if err != nil {
		return nil, apperror.Forbidden("create a business profile first")
	}
	return business, nil
}
