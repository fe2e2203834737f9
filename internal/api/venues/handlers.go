// internal/api/venues/handlers.go
package venues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nyaruka/phonenumbers"
	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/api/apiutil"
	"github.com/courtsidehq/courtside/internal/booking"
	appdb "github.com/courtsidehq/courtside/internal/db"
	"github.com/courtsidehq/courtside/internal/store"
)

const venueQueryTimeout = 10 * time.Second

// Phone numbers without a country prefix are assumed Peruvian.
const defaultPhoneRegion = "PE"

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

type venueBody struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	TaxID       string  `json:"taxId"`
	Description string  `json:"description"`
	Phone       string  `json:"phone"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone"`
}

func (b *venueBody) validate() error {
	if b.Name == "" {
		return booking.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if b.Phone != "" {
		parsed, err := phonenumbers.Parse(b.Phone, defaultPhoneRegion)
		if err != nil || !phonenumbers.IsValidNumber(parsed) {
			return booking.ValidationError{Field: "phone", Reason: "not a valid phone number"}
		}
		b.Phone = phonenumbers.Format(parsed, phonenumbers.E164)
	}
	if b.Timezone != "" {
		if _, err := time.LoadLocation(b.Timezone); err != nil {
			return booking.ValidationError{Field: "timezone", Reason: "unknown IANA timezone"}
		}
	}
	return nil
}

func venueJSON(venue store.Venue) map[string]any {
	return map[string]any{
		"id":          venue.ID,
		"name":        venue.Name,
		"address":     venue.Address,
		"city":        venue.City,
		"taxId":       venue.TaxID,
		"description": venue.Description,
		"phone":       venue.Phone,
		"latitude":    venue.Latitude,
		"longitude":   venue.Longitude,
		"timezone":    venue.Timezone,
	}
}

// GET /api/v1/venues
func HandleVenueList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if database == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), venueQueryTimeout)
	defer cancel()

	venues, err := database.Store.ListVenues(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list venues")
		http.Error(w, "Failed to list venues", http.StatusInternalServerError)
		return
	}

	out := make([]map[string]any, 0, len(venues))
	for _, venue := range venues {
		out = append(out, venueJSON(venue))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "venues": out}); err != nil {
		logger.Error().Err(err).Msg("Failed to write venue list")
	}
}

// POST /api/v1/venues
func HandleVenueCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if database == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var body venueBody
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := body.validate(); err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), venueQueryTimeout)
	defer cancel()

	venue, err := database.Store.CreateVenue(ctx, store.CreateVenueParams{
		Name:        body.Name,
		Address:     body.Address,
		City:        body.City,
		TaxID:       body.TaxID,
		Description: body.Description,
		Phone:       body.Phone,
		Latitude:    body.Latitude,
		Longitude:   body.Longitude,
		Timezone:    body.Timezone,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create venue")
		http.Error(w, "Failed to create venue", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, venueJSON(venue)); err != nil {
		logger.Error().Err(err).Int64("venue_id", venue.ID).Msg("Failed to write venue response")
	}
}

// GET /api/v1/venues/{id}
func HandleVenueDetail(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), venueQueryTimeout)
	defer cancel()

	venue, err := database.Store.GetVenueByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Venue not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to fetch venue")
		http.Error(w, "Failed to fetch venue", http.StatusInternalServerError)
		return
	}

	courts, err := database.Store.ListCourtsByVenue(ctx, venueID)
	if err != nil {
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to list courts")
		http.Error(w, "Failed to fetch venue", http.StatusInternalServerError)
		return
	}
	hours, err := database.Store.GetOperatingHours(ctx, venueID)
	if err != nil {
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to list operating hours")
		http.Error(w, "Failed to fetch venue", http.StatusInternalServerError)
		return
	}

	courtsOut := make([]map[string]any, 0, len(courts))
	for _, court := range courts {
		courtsOut = append(courtsOut, map[string]any{
			"id":         court.ID,
			"name":       court.Name,
			"capacity":   court.Capacity,
			"roofed":     court.Roofed,
			"priceCents": court.PriceCents,
		})
	}
	hoursOut := make([]map[string]any, 0, len(hours))
	for _, row := range hours {
		hoursOut = append(hoursOut, map[string]any{
			"dayOfWeek": row.DayOfWeek,
			"open":      booking.FormatHour(row.OpenHour),
			"close":     booking.FormatHour(row.CloseHour),
		})
	}

	resp := venueJSON(venue)
	resp["courts"] = courtsOut
	resp["operatingHours"] = hoursOut
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to write venue response")
	}
}

// PUT /api/v1/venues/{id}
func HandleVenueUpdate(w http.ResponseWriter, r *http.Request) {
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

	var body venueBody
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := body.validate(); err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), venueQueryTimeout)
	defer cancel()

	if _, err := database.Store.GetVenueByID(ctx, venueID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Venue not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to fetch venue")
		http.Error(w, "Failed to update venue", http.StatusInternalServerError)
		return
	}

	venue, err := database.Store.UpdateVenue(ctx, store.UpdateVenueParams{
		ID:          venueID,
		Name:        body.Name,
		Address:     body.Address,
		City:        body.City,
		TaxID:       body.TaxID,
		Description: body.Description,
		Phone:       body.Phone,
		Latitude:    body.Latitude,
		Longitude:   body.Longitude,
		Timezone:    body.Timezone,
	})
	if err != nil {
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to update venue")
		http.Error(w, "Failed to update venue", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, venueJSON(venue)); err != nil {
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to write venue response")
	}
}

type hoursBody struct {
	Hours []dayHoursBody `json:"hours"`
}

type dayHoursBody struct {
	DayOfWeek int    `json:"dayOfWeek"`
	Open      string `json:"open"`
	Close     string `json:"close"`
}

// PUT /api/v1/venues/{id}/hours replaces the weekly schedule wholesale.
// Days absent from the payload become closed days.
func HandleOperatingHoursReplace(w http.ResponseWriter, r *http.Request) {
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

	var body hoursBody
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rows := make([]store.OperatingHours, 0, len(body.Hours))
	seen := make(map[int]bool)
	for _, day := range body.Hours {
		if day.DayOfWeek < 0 || day.DayOfWeek > 6 {
			apiutil.WriteEngineError(w, r, booking.ValidationError{
				Field: "hours", Reason: fmt.Sprintf("dayOfWeek %d out of range", day.DayOfWeek)})
			return
		}
		if seen[day.DayOfWeek] {
			apiutil.WriteEngineError(w, r, booking.ValidationError{
				Field: "hours", Reason: fmt.Sprintf("dayOfWeek %d listed twice", day.DayOfWeek)})
			return
		}
		seen[day.DayOfWeek] = true
		open, err := booking.ParseClockTime(day.Open)
		if err != nil {
			apiutil.WriteEngineError(w, r, booking.ValidationError{Field: "hours", Reason: err.Error()})
			return
		}
		closeHour, err := booking.ParseClockTime(day.Close)
		if err != nil {
			apiutil.WriteEngineError(w, r, booking.ValidationError{Field: "hours", Reason: err.Error()})
			return
		}
		if closeHour <= open {
			apiutil.WriteEngineError(w, r, booking.ValidationError{
				Field: "hours", Reason: "close must be after open"})
			return
		}
		rows = append(rows, store.OperatingHours{
			VenueID:   venueID,
			DayOfWeek: day.DayOfWeek,
			OpenHour:  open,
			CloseHour: closeHour,
		})
	}

	ctx, cancel := context.WithTimeout(r.Context(), venueQueryTimeout)
	defer cancel()

	if _, err := database.Store.GetVenueByID(ctx, venueID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Venue not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to fetch venue")
		http.Error(w, "Failed to update hours", http.StatusInternalServerError)
		return
	}

	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		return txdb.Store.ReplaceOperatingHours(ctx, venueID, rows)
	})
	if err != nil {
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to replace operating hours")
		http.Error(w, "Failed to update hours", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"days": len(rows),
	}); err != nil {
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to write hours response")
	}
}

type closureBody struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

// GET /api/v1/venues/{id}/closures
func HandleClosureList(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), venueQueryTimeout)
	defer cancel()

	closures, err := database.Store.ListClosuresByVenue(ctx, venueID)
	if err != nil {
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to list closures")
		http.Error(w, "Failed to list closures", http.StatusInternalServerError)
		return
	}

	out := make([]map[string]any, 0, len(closures))
	for _, closure := range closures {
		out = append(out, map[string]any{
			"id":        closure.ID,
			"startDate": closure.StartDate,
			"endDate":   closure.EndDate,
			"reason":    closure.Reason,
		})
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "closures": out}); err != nil {
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to write closure list")
	}
}

// POST /api/v1/venues/{id}/closures
func HandleClosureCreate(w http.ResponseWriter, r *http.Request) {
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

	var body closureBody
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	start, err := booking.ParseDate(body.StartDate)
	if err != nil {
		apiutil.WriteEngineError(w, r, booking.ValidationError{Field: "startDate", Reason: err.Error()})
		return
	}
	end, err := booking.ParseDate(body.EndDate)
	if err != nil {
		apiutil.WriteEngineError(w, r, booking.ValidationError{Field: "endDate", Reason: err.Error()})
		return
	}
	if end.Before(start) {
		apiutil.WriteEngineError(w, r, booking.ValidationError{Field: "endDate", Reason: "must not precede startDate"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), venueQueryTimeout)
	defer cancel()

	if _, err := database.Store.GetVenueByID(ctx, venueID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Venue not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to fetch venue")
		http.Error(w, "Failed to create closure", http.StatusInternalServerError)
		return
	}

	closure, err := database.Store.CreateClosure(ctx, store.CreateClosureParams{
		VenueID:   venueID,
		StartDate: booking.FormatDate(start),
		EndDate:   booking.FormatDate(end),
		Reason:    body.Reason,
	})
	if err != nil {
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to create closure")
		http.Error(w, "Failed to create closure", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, map[string]any{
		"ok":        true,
		"id":        closure.ID,
		"startDate": closure.StartDate,
		"endDate":   closure.EndDate,
	}); err != nil {
		logger.Error().Err(err).Int64("closure_id", closure.ID).Msg("Failed to write closure response")
	}
}

// DELETE /api/v1/venues/{id}/closures/{closureId}
func HandleClosureDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if database == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	closureID, err := apiutil.IDFromPath(r, "closureId")
	if err != nil {
		http.Error(w, "Invalid closure ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), venueQueryTimeout)
	defer cancel()

	if err := database.Store.DeleteClosure(ctx, closureID); err != nil {
		logger.Error().Err(err).Int64("closure_id", closureID).Msg("Failed to delete closure")
		http.Error(w, "Failed to delete closure", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true}); err != nil {
		logger.Error().Err(err).Int64("closure_id", closureID).Msg("Failed to write closure response")
	}
}
