// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/courtsidehq/courtside/internal/api"
	"github.com/courtsidehq/courtside/internal/api/availability"
	"github.com/courtsidehq/courtside/internal/api/blocks"
	"github.com/courtsidehq/courtside/internal/api/bookings"
	"github.com/courtsidehq/courtside/internal/api/courts"
	"github.com/courtsidehq/courtside/internal/api/teams"
	"github.com/courtsidehq/courtside/internal/api/venues"
	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/config"
	"github.com/courtsidehq/courtside/internal/db"
	"github.com/courtsidehq/courtside/internal/ratelimit"
)

func newServer(cfg *config.Config, database *db.DB, engine *booking.Engine, limiter *ratelimit.Limiter) *http.Server {
	availability.InitHandlers(engine)
	bookings.InitHandlers(engine, database, limiter)
	blocks.InitHandlers(engine)
	venues.InitHandlers(database)
	courts.InitHandlers(database)
	teams.InitHandlers(database)

	router := http.NewServeMux()
	registerRoutes(router)

	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithJSONContentType,
	)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Availability
	mux.HandleFunc("GET /api/v1/courts/{id}/availability", availability.HandleCourtAvailability)
	mux.HandleFunc("GET /api/v1/venues/{id}/calendar", availability.HandleVenueCalendar)

	// Reservations
	mux.HandleFunc("POST /api/v1/reservations", bookings.HandleBookingCreate)
	mux.HandleFunc("GET /api/v1/reservations/{id}", bookings.HandleBookingDetail)
	mux.HandleFunc("POST /api/v1/reservations/{id}/rival", bookings.HandleRivalJoin)
	mux.HandleFunc("POST /api/v1/reservations/{id}/cancel", bookings.HandleBookingCancel)

	// Admin blocks
	mux.HandleFunc("POST /api/v1/blocks", blocks.HandleBlockApply)
	mux.HandleFunc("POST /api/v1/blocks/remove", blocks.HandleBlockRemove)

	// Venues
	mux.HandleFunc("GET /api/v1/venues", venues.HandleVenueList)
	mux.HandleFunc("POST /api/v1/venues", venues.HandleVenueCreate)
	mux.HandleFunc("GET /api/v1/venues/{id}", venues.HandleVenueDetail)
	mux.HandleFunc("PUT /api/v1/venues/{id}", venues.HandleVenueUpdate)
	mux.HandleFunc("PUT /api/v1/venues/{id}/hours", venues.HandleOperatingHoursReplace)
	mux.HandleFunc("GET /api/v1/venues/{id}/closures", venues.HandleClosureList)
	mux.HandleFunc("POST /api/v1/venues/{id}/closures", venues.HandleClosureCreate)
	mux.HandleFunc("DELETE /api/v1/venues/{id}/closures/{closureId}", venues.HandleClosureDelete)

	// Courts
	mux.HandleFunc("POST /api/v1/courts", courts.HandleCourtCreate)
	mux.HandleFunc("GET /api/v1/venues/{id}/courts", courts.HandleCourtListByVenue)
	mux.HandleFunc("GET /api/v1/courts/{id}", courts.HandleCourtDetail)
	mux.HandleFunc("PUT /api/v1/courts/{id}", courts.HandleCourtUpdate)
	mux.HandleFunc("DELETE /api/v1/courts/{id}", courts.HandleCourtDelete)

	// Teams
	mux.HandleFunc("POST /api/v1/teams", teams.HandleTeamCreate)
	mux.HandleFunc("GET /api/v1/teams/{id}", teams.HandleTeamDetail)
	mux.HandleFunc("POST /api/v1/teams/{id}/players", teams.HandlePlayerAdd)
}
