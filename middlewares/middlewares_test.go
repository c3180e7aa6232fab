package middlewares

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/ray-remotestate/bazaar/config"
	"github.com/ray-remotestate/bazaar/database"
	"github.com/ray-remotestate/bazaar/database/dbhelper"
	"github.com/ray-remotestate/bazaar/models"
	"github.com/ray-remotestate/bazaar/utils"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "middlewares_test.db")
	if err := database.ConnectAndMigrate(database.DriverSQLite, path); err != nil {
		t.Fatalf("database.ConnectAndMigrate() failed: %v", err)
	}
	t.Cleanup(func() {
		database.ShutdownDatabase()
		database.Bazaar = nil
	})
}

func bearer(t *testing.T, userID uuid.UUID, role models.Role) string {
	t.Helper()
	token, err := utils.GenerateAccessToken(userID, []string{string(role)})
	if err != nil {
		t.Fatalf("GenerateAccessToken() failed: %v", err)
	}
	return "Bearer " + token
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestAuthMiddleware(t *testing.T) {
	config.SecretKey = []byte("test-secret")
	userID := uuid.New()

	var seen *models.Claims
	handler := AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := GetAuthenticatedUser(r)
		if err != nil {
			t.Fatalf("GetAuthenticatedUser() failed: %v", err)
		}
		seen = claims
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "should reject a missing header", header: "", want: http.StatusUnauthorized},
		{name: "should reject a malformed header", header: "Token abc", want: http.StatusUnauthorized},
		{name: "should reject a garbage token", header: "Bearer not-a-jwt", want: http.StatusUnauthorized},
		{name: "should accept a valid token", header: bearer(t, userID, models.RoleCustomer), want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("\nwanted:\n%d\ngot:\n%d", tt.want, rec.Code)
			}
		})
	}

	if seen == nil || seen.UserID != userID {
		t.Fatalf("\nwanted:\n%v\ngot:\n%v", userID, seen)
	}
}

func TestRoleBasedMiddleware(t *testing.T) {
	config.SecretKey = []byte("test-secret")
	handler := AuthMiddleware(RoleBasedMiddleware(models.RoleBusiness)(okHandler))

	t.Run("should let the allowed role through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/business", nil)
		req.Header.Set("Authorization", bearer(t, uuid.New(), models.RoleBusiness))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", http.StatusNoContent, rec.Code)
		}
	})

	t.Run("should forbid other roles", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/business", nil)
		req.Header.Set("Authorization", bearer(t, uuid.New(), models.RoleCustomer))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", http.StatusForbidden, rec.Code)
		}
	})
}

func TestBusinessMiddleware(t *testing.T) {
	config.SecretKey = []byte("test-secret")
	setupTestDB(t)

	ownerID, err := dbhelper.CreateUser(database.Bazaar, "Asha", "asha@example.com", "hash", models.RoleBusiness)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	business := &models.Business{OwnerID: ownerID, Name: "Asha's Tailoring", Type: "Tailoring"}
	if err := dbhelper.CreateBusiness(business); err != nil {
		t.Fatalf("CreateBusiness() failed: %v", err)
	}

	var seen *models.Business
	handler := AuthMiddleware(BusinessMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetBusiness(r)
		w.WriteHeader(http.StatusNoContent)
	})))

	t.Run("should resolve the caller's business", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/business", nil)
		req.Header.Set("Authorization", bearer(t, ownerID, models.RoleBusiness))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent || seen == nil || seen.ID != business.ID {
			t.Fatalf("\nwanted:\n%d %v\ngot:\n%d %v", http.StatusNoContent, business.ID, rec.Code, seen)
		}
	})

	t.Run("should forbid an owner without a business", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/business", nil)
		req.Header.Set("Authorization", bearer(t, uuid.New(), models.RoleBusiness))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", http.StatusForbidden, rec.Code)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	hook := logtest.NewGlobal()
	defer logrus.StandardLogger().ReplaceHooks(logrus.LevelHooks{})

	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatalf("\nwanted:\nlog entry\ngot:\nnil")
	}
	if entry.Data["status"] != http.StatusTeapot || entry.Data["path"] != "/health" {
		t.Fatalf("\nwanted:\n418 /health\ngot:\n%v %v", entry.Data["status"], entry.Data["path"])
	}
}
