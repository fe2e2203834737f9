// internal/api/bookings/handlers.go
package bookings

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/api/apiutil"
	"github.com/courtsidehq/courtside/internal/booking"
	appdb "github.com/courtsidehq/courtside/internal/db"
	"github.com/courtsidehq/courtside/internal/ratelimit"
)

const bookingQueryTimeout = 10 * time.Second

var (
	engine   *booking.Engine
	database *appdb.DB
	limiter  *ratelimit.Limiter
	initOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
// The limiter is optional.
func InitHandlers(e *booking.Engine, db *appdb.DB, l *ratelimit.Limiter) {
	if e == nil || db == nil {
		return
	}
	initOnce.Do(func() {
		engine = e
		database = db
		limiter = l
	})
}

type bookingRequest struct {
	TeamID  int64    `json:"teamId"`
	CourtID int64    `json:"courtId"`
	VenueID int64    `json:"venueId"`
	Date    string   `json:"date"`
	Hours   []string `json:"hours"`
}

// POST /api/v1/reservations
func HandleBookingCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if engine == nil {
		logger.Error().Msg("Booking engine not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req bookingRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.TeamID <= 0 || req.CourtID <= 0 || req.VenueID <= 0 {
		http.Error(w, "teamId, courtId and venueId are required", http.StatusBadRequest)
		return
	}

	if limiter != nil {
		ip := ratelimit.GetClientIP(r, false)
		if result := limiter.CheckBooking(req.TeamID, ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded(req.TeamID, ip, result.Reason)
			w.Header().Set("Retry-After", result.RetryAfter.Round(time.Second).String())
			http.Error(w, "Too many booking attempts", http.StatusTooManyRequests)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	reservation, err := engine.CreateBooking(ctx, booking.CreateBookingParams{
		TeamID:  req.TeamID,
		CourtID: req.CourtID,
		VenueID: req.VenueID,
		Date:    req.Date,
		Hours:   req.Hours,
	})
	if err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}

	if limiter != nil {
		limiter.RecordBooking(req.TeamID, ratelimit.GetClientIP(r, false))
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, map[string]any{
		"ok":            true,
		"reservationId": reservation.ID,
		"date":          reservation.Date,
		"hours":         booking.HourLabels(reservation.Hours),
	}); err != nil {
		logger.Error().Err(err).Int64("reservation_id", reservation.ID).Msg("Failed to write booking response")
	}
}

type rivalRequest struct {
	TeamID int64 `json:"teamId"`
}

// POST /api/v1/reservations/{id}/rival
func HandleRivalJoin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if engine == nil {
		logger.Error().Msg("Booking engine not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	reservationID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid reservation ID", http.StatusBadRequest)
		return
	}

	var req rivalRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.TeamID <= 0 {
		http.Error(w, "teamId is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	if err := engine.AttachRival(ctx, reservationID, req.TeamID); err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"reservationId": reservationID,
	}); err != nil {
		logger.Error().Err(err).Int64("reservation_id", reservationID).Msg("Failed to write rival response")
	}
}

// POST /api/v1/reservations/{id}/cancel
func HandleBookingCancel(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if engine == nil {
		logger.Error().Msg("Booking engine not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	reservationID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid reservation ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	if err := engine.Cancel(ctx, reservationID); err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"reservationId": reservationID,
	}); err != nil {
		logger.Error().Err(err).Int64("reservation_id", reservationID).Msg("Failed to write cancel response")
	}
}

// GET /api/v1/reservations/{id}
func HandleBookingDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if database == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	reservationID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid reservation ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	reservation, err := database.Store.GetReservationByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Reservation not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("reservation_id", reservationID).Msg("Failed to fetch reservation")
		http.Error(w, "Failed to fetch reservation", http.StatusInternalServerError)
		return
	}

	teams := make([]map[string]any, 0, len(reservation.Teams))
	for _, link := range reservation.Teams {
		teams = append(teams, map[string]any{
			"teamId":    link.TeamID,
			"isCreator": link.IsCreator,
		})
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"id":       reservation.ID,
		"courtId":  reservation.CourtID,
		"venueId":  reservation.VenueID,
		"date":     reservation.Date,
		"active":   reservation.IsActive,
		"hours":    booking.HourLabels(reservation.Hours),
		"kind":     reservation.Kind().String(),
		"teams":    teams,
		"isOpen":   reservation.Kind().String() == "team_booking" && len(reservation.Teams) == 1,
		"isClosed": len(reservation.Teams) == 2,
	}); err != nil {
		logger.Error().Err(err).Int64("reservation_id", reservationID).Msg("Failed to write reservation response")
	}
}
