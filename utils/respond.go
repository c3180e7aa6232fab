package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ray-remotestate/bazaar/apperror"
	"github.com/sirupsen/logrus"
)

func RespondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

// RespondError writes {"error": msg}. Anything that is not an *apperror.Error
// is treated as an upstream failure: logged in full, reported generically.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.Upstream("internal server error", err)
	}

	if appErr.Kind == apperror.KindUpstream {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error(appErr.Message)
	}

	RespondJSON(w, appErr.Status(), map[string]string{"error": appErr.Message})
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return apperror.Validation("invalid request body")
	}
	return nil
}
