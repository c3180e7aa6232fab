package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ray-remotestate/bazaar/apperror"
	"github.com/ray-remotestate/bazaar/database/dbhelper"
	"github.com/ray-remotestate/bazaar/models"
	"github.com/ray-remotestate/bazaar/proximity"
	"github.com/ray-remotestate/bazaar/translation"
	"github.com/ray-remotestate/bazaar/utils"
	"github.com/sirupsen/logrus"
)

type businessRequest struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Type        string   `json:"type" validate:"required,max=60"`
	Description string   `json:"description" validate:"max=4000"`
	Address     string   `json:"address" validate:"max=300"`
	Phone       string   `json:"phone" validate:"max=30"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

func decodeBusiness(r *http.Request) (*businessRequest, error) {
	var req businessRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Type = strings.TrimSpace(req.Type)
	if err := utils.Validate(&req); err != nil {
		return nil, err
	}

	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, apperror.Validation("latitude and longitude must be set together")
	}
	if req.Latitude != nil && !(proximity.Point{Lat: *req.Latitude, Lng: *req.Longitude}).Valid() {
		return nil, apperror.Validation("invalid coordinates")
	}
	return &req, nil
}

func (req *businessRequest) apply(b *models.Business) {
	b.Name = req.Name
	b.Type = req.Type
	b.Description = req.Description
	b.Address = req.Address
	b.Phone = req.Phone
	b.Latitude = req.Latitude
	b.Longitude = req.Longitude
}

func CreateBusiness(w http.ResponseWriter, r *http.Request) {
	claims, err := currentUser(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	req, err := decodeBusiness(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	_, err = dbhelper.GetBusinessByOwner(claims.UserID)
	if err == nil {
		utils.RespondError(w, r, apperror.Conflict("business profile already exists"))
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		utils.RespondError(w, r, apperror.Upstream("failed to check business", err))
		return
	}

	business := &models.Business{OwnerID: claims.UserID}
	req.apply(business)
	if err := dbhelper.CreateBusiness(business); errors.Is(err, dbhelper.ErrDuplicate) {
		utils.RespondError(w, r, apperror.Conflict("business profile already exists"))
		return
	} else if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to create business", err))
		return
	}
	logrus.WithFields(logrus.Fields{"businessId": business.ID, "ownerId": claims.UserID}).Info("business created")

	utils.RespondJSON(w, http.StatusCreated, business)
}

func GetMyBusiness(w http.ResponseWriter, r *http.Request) {
	business, err := currentBusiness(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	summary, err := dbhelper.GetRatingSummary(business.ID)
	if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to load rating", err))
		return
	}
	utils.RespondJSON(w, http.StatusOK, models.BusinessProfile{Business: *business, RatingSummary: summary})
}

func UpdateMyBusiness(w http.ResponseWriter, r *http.Request) {
	business, err := currentBusiness(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	req, err := decodeBusiness(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	req.apply(business)
	if err := dbhelper.UpdateBusiness(business); err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to update business", err))
		return
	}
	utils.RespondJSON(w, http.StatusOK, business)
}

func ListBusinesses(w http.ResponseWriter, r *http.Request) {
	businesses, err := dbhelper.ListBusinesses(r.URL.Query().Get("type"))
	if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to list businesses", err))
		return
	}
	utils.RespondJSON(w, http.StatusOK, businesses)
}

// loadBusiness maps a missing row onto NotFound.
func loadBusiness(r *http.Request) (*models.Business, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return nil, err
	}
	business, err := dbhelper.GetBusinessByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("business not found")
	}
	if err != nil {
		return nil, apperror.Upstream("failed to load business", err)
	}
	return business, nil
}

// GetBusiness is the public profile view; every successful read counts as a
// profile view.
func GetBusiness(w http.ResponseWriter, r *http.Request) {
	business, err := loadBusiness(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	if err := dbhelper.IncrementProfileViews(business.ID); err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to record profile view", err))
		return
	}
	business.ProfileViews++

	summary, err := dbhelper.GetRatingSummary(business.ID)
	if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to load rating", err))
		return
	}
	utils.RespondJSON(w, http.StatusOK, models.BusinessProfile{Business: *business, RatingSummary: summary})
}

func ListBusinessReviews(w http.ResponseWriter, r *http.Request) {
	business, err := loadBusiness(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	reviews, err := dbhelper.ListReviews(business.ID)
	if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to list reviews", err))
		return
	}
	utils.RespondJSON(w, http.StatusOK, reviews)
}

func parseCoordinate(r *http.Request, name string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, apperror.Validation("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperror.Validation("%s must be a number", name)
	}
	return v, nil
}

func NearbyBusinesses(w http.ResponseWriter, r *http.Request) {
	lat, err := parseCoordinate(r, "lat")
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	lng, err := parseCoordinate(r, "lng")
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	var radius float64
	if raw := strings.TrimSpace(r.URL.Query().Get("radius")); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			utils.RespondError(w, r, apperror.Validation("radius must be a number"))
			return
		}
	}

	query := proximity.Query{
		Origin:   proximity.Point{Lat: lat, Lng: lng},
		RadiusKm: radius,
		Type:     r.URL.Query().Get("type"),
	}
	if err := query.Validate(); err != nil {
		utils.RespondError(w, r, err)
		return
	}

	businesses, err := dbhelper.ListLocatedBusinesses(query.Type)
	if err != nil {
		utils.RespondError(w, r, apperror.Upstream("failed to load businesses", err))
		return
	}

	nearby, err := proximity.Nearby(businesses, query)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"radiusKm":   proximity.EffectiveRadius(radius),
		"businesses": nearby,
	})
}

// GetBusinessDescription serves the description translated to ?lang. Provider
// problems are not errors; the original text comes back untranslated.
func GetBusinessDescription(translator *translation.Translator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type request struct {
			Lang string `json:"lang" validate:"required,bcp47_language_tag"`
		}
		req := request{Lang: strings.TrimSpace(r.URL.Query().Get("lang"))}
		if err := utils.Validate(&req); err != nil {
			utils.RespondError(w, r, err)
			return
		}

		business, err := loadBusiness(r)
		if err != nil {
			utils.RespondError(w, r, err)
			return
		}

		result := translator.Translate(r.Context(), business.Description, req.Lang)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"businessId":  business.ID,
			"description": result.Text,
			"language":    result.Language,
			"translated":  result.Translated,
		})
	}
}
