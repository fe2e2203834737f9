// internal/api/courts/handlers.go
package courts

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
	"github.com/courtsidehq/courtside/internal/store"
)

const courtQueryTimeout = 10 * time.Second

var (
	database *appdb.DB
	initOnce sync.Once
)

func InitHandlers(db *appdb.DB) {
	if db == nil {
		return
	}
	initOnce.Do(func() {
		database = db
	})
}

type courtBody struct {
	VenueID    int64  `json:"venueId"`
	Name       string `json:"name"`
	Capacity   int64  `json:"capacity"`
	Roofed     bool   `json:"roofed"`
	PriceCents int64  `json:"priceCents"`
	ImageURL   string `json:"imageUrl"`
}

func (b courtBody) validate() error {
	if b.Name == "" {
		return booking.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if b.Capacity < 0 {
		return booking.ValidationError{Field: "capacity", Reason: "must not be negative"}
	}
	if b.PriceCents < 0 {
		return booking.ValidationError{Field: "priceCents", Reason: "must not be negative"}
	}
	return nil
}

func courtJSON(court store.Court) map[string]any {
	return map[string]any{
		"id":         court.ID,
		"venueId":    court.VenueID,
		"name":       court.Name,
		"capacity":   court.Capacity,
		"roofed":     court.Roofed,
		"priceCents": court.PriceCents,
		"imageUrl":   court.ImageURL.String,
	}
}

// POST /api/v1/courts
func HandleCourtCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if database == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var body courtBody
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.VenueID <= 0 {
		http.Error(w, "venueId is required", http.StatusBadRequest)
		return
	}
	if err := body.validate(); err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtQueryTimeout)
	defer cancel()

	if _, err := database.Store.GetVenueByID(ctx, body.VenueID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Venue not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("venue_id", body.VenueID).Msg("Failed to fetch venue")
		http.Error(w, "Failed to create court", http.StatusInternalServerError)
		return
	}

	court, err := database.Store.CreateCourt(ctx, store.CreateCourtParams{
		VenueID:    body.VenueID,
		Name:       body.Name,
		Capacity:   body.Capacity,
		Roofed:     body.Roofed,
		PriceCents: body.PriceCents,
		ImageURL:   sql.NullString{String: body.ImageURL, Valid: body.ImageURL != ""},
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create court")
		http.Error(w, "Failed to create court", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, courtJSON(court)); err != nil {
		logger.Error().Err(err).Int64("court_id", court.ID).Msg("Failed to write court response")
	}
}

// GET /api/v1/courts/{id}
func HandleCourtDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if database == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	courtID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid court ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtQueryTimeout)
	defer cancel()

	court, err := database.Store.GetCourtByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Court not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to fetch court")
		http.Error(w, "Failed to fetch court", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, courtJSON(court)); err != nil {
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to write court response")
	}
}

// GET /api/v1/venues/{id}/courts
func HandleCourtListByVenue(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if database == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	venueID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid venue ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtQueryTimeout)
	defer cancel()

	if _, err := database.Store.GetVenueByID(ctx, venueID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Venue not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to fetch venue")
		http.Error(w, "Failed to list courts", http.StatusInternalServerError)
		return
	}

	courtRows, err := database.Store.ListCourtsByVenue(ctx, venueID)
	if err != nil {
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to list courts")
		http.Error(w, "Failed to list courts", http.StatusInternalServerError)
		return
	}

	list := make([]map[string]any, 0, len(courtRows))
	for _, court := range courtRows {
		list = append(list, courtJSON(court))
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"venueId": venueID, "courts": list}); err != nil {
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to write court list response")
	}
}

// PUT /api/v1/courts/{id}
func HandleCourtUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if database == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	courtID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid court ID", http.StatusBadRequest)
		return
	}

	var body courtBody
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := body.validate(); err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtQueryTimeout)
	defer cancel()

	if _, err := database.Store.GetCourtByID(ctx, courtID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Court not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to fetch court")
		http.Error(w, "Failed to update court", http.StatusInternalServerError)
		return
	}

	court, err := database.Store.UpdateCourt(ctx, store.UpdateCourtParams{
		ID:         courtID,
		Name:       body.Name,
		Capacity:   body.Capacity,
		Roofed:     body.Roofed,
		PriceCents: body.PriceCents,
		ImageURL:   sql.NullString{String: body.ImageURL, Valid: body.ImageURL != ""},
	})
	if err != nil {
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to update court")
		http.Error(w, "Failed to update court", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, courtJSON(court)); err != nil {
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to write court response")
	}
}

// DELETE /api/v1/courts/{id}
func HandleCourtDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if database == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	courtID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid court ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtQueryTimeout)
	defer cancel()

	if err := database.Store.DeleteCourt(ctx, courtID); err != nil {
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to delete court")
		http.Error(w, "Failed to delete court", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true}); err != nil {
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to write court response")
	}
}
