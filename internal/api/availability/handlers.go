// internal/api/availability/handlers.go
package availability

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/api/apiutil"
	"github.com/courtsidehq/courtside/internal/booking"
)

const (
	availabilityQueryTimeout = 5 * time.Second
	defaultCalendarDays      = 30
	maxCalendarDays          = 90
)

var (
	engine     *booking.Engine
	engineOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(e *booking.Engine) {
	if e == nil {
		return
	}
	engineOnce.Do(func() {
		engine = e
	})
}

func loadEngine() *booking.Engine {
	return engine
}

// GET /api/v1/courts/{id}/availability?date=YYYY-MM-DD
func HandleCourtAvailability(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	e := loadEngine()
	if e == nil {
		logger.Error().Msg("Booking engine not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	courtID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	date, err := apiutil.DateFromQuery(r, "date")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), availabilityQueryTimeout)
	defer cancel()

	hours, err := e.AvailableHours(ctx, courtID, date)
	if err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"courtId": courtID,
		"date":    date,
		"hours":   hours,
	}); err != nil {
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to write availability response")
	}
}

// GET /api/v1/venues/{id}/calendar?days=30
func HandleVenueCalendar(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	e := loadEngine()
	if e == nil {
		logger.Error().Msg("Booking engine not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	venueID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	days := defaultCalendarDays
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxCalendarDays {
			http.Error(w, "days must be between 1 and 90", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), availabilityQueryTimeout)
	defer cancel()

	calendar, err := e.Calendar(ctx, venueID, time.Now(), days)
	if err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}

	closedDays := make([]booking.CalendarDay, 0)
	for _, day := range calendar {
		if !day.Operates {
			closedDays = append(closedDays, day)
		}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"venueId":  venueID,
		"calendar": calendar,
		"closed":   closedDays,
	}); err != nil {
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to write calendar response")
	}
}
