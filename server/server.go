package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/ray-remotestate/bazaar/handlers"
	"github.com/ray-remotestate/bazaar/middlewares"
	"github.com/ray-remotestate/bazaar/models"
	"github.com/ray-remotestate/bazaar/translation"
)

type Server struct {
	Router *mux.Router
	server *http.Server
}

const (
	readTimeout       = 5 * time.Minute
	readHeaderTimeout = 30 * time.Second
	writeTimeout      = 5 * time.Minute
)

func SetupRoutes(translator *translation.Translator) *Server {
	router := mux.NewRouter()
	router.Use(middlewares.RequestLogger)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"alive": true}`)
	}).Methods("GET")
	router.HandleFunc("/register", handlers.Register).Methods("POST")
	router.HandleFunc("/refresh", handlers.RefreshToken).Methods("POST")
	router.HandleFunc("/login", handlers.Login).Methods("POST")

	// public catalogue
	router.HandleFunc("/businesses", handlers.ListBusinesses).Methods("GET")
	router.HandleFunc("/businesses/nearby", handlers.NearbyBusinesses).Methods("GET")
	router.HandleFunc("/businesses/{id}", handlers.GetBusiness).Methods("GET")
	router.HandleFunc("/businesses/{id}/reviews", handlers.ListBusinessReviews).Methods("GET")
	router.HandleFunc("/businesses/{id}/description", handlers.GetBusinessDescription(translator)).Methods("GET")

	authRoutes := router.PathPrefix("/api").Subrouter()
	authRoutes.Use(middlewares.AuthMiddleware)
	authRoutes.HandleFunc("/logout", handlers.Logout).Methods("POST")

	// customers
	customer := authRoutes.NewRoute().Subrouter()
	customer.Use(middlewares.RoleBasedMiddleware(models.RoleCustomer))

	customer.HandleFunc("/bookings", handlers.CreateBooking).Methods("POST")
	customer.HandleFunc("/bookings", handlers.ListCustomerBookings).Methods("GET")
	customer.HandleFunc("/bookings/{id}/cancel", handlers.CancelBooking).Methods("PUT")
	customer.HandleFunc("/reviews", handlers.CreateReview).Methods("POST")
	customer.HandleFunc("/notifications", handlers.ListNotifications).Methods("GET")
	customer.HandleFunc("/notifications/{id}/read", handlers.MarkNotificationRead).Methods("PUT")

	// business owners; everything except creating the profile needs one
	business := authRoutes.PathPrefix("/business").Subrouter()
	business.Use(middlewares.RoleBasedMiddleware(models.RoleBusiness))
	withProfile := func(h http.HandlerFunc) http.Handler {
		return middlewares.BusinessMiddleware(h)
	}

	business.HandleFunc("", handlers.CreateBusiness).Methods("POST")
	business.Handle("", withProfile(handlers.GetMyBusiness)).Methods("GET")
	business.Handle("", withProfile(handlers.UpdateMyBusiness)).Methods("PUT")
	business.Handle("/bookings", withProfile(handlers.ListBusinessBookings)).Methods("GET")
	business.Handle("/bookings/{id}/accept", withProfile(handlers.AcceptBooking)).Methods("PUT")
	business.Handle("/bookings/{id}/decline", withProfile(handlers.DeclineBooking)).Methods("PUT")
	business.Handle("/bookings/{id}/complete", withProfile(handlers.CompleteBooking)).Methods("PUT")
	business.Handle("/stats/income", withProfile(handlers.IncomeStats)).Methods("GET")
	business.Handle("/stats/weekly", withProfile(handlers.WeeklyBookingStats)).Methods("GET")
	business.Handle("/stats/weekly-income", withProfile(handlers.WeeklyIncomeStats)).Methods("GET")
	business.Handle("/notifications/count", withProfile(handlers.UpcomingCount)).Methods("GET")

	return &Server{
		Router: router,
	}
}

func (svr *Server) Run(port string) error {
	svr.server = &http.Server{
		Addr:              port,
		Handler:           svr.Router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	return svr.server.ListenAndServe()
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	if svr.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svr.server.Shutdown(ctx)
}
