package apiutil

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/booking"
)

// WriteEngineError maps engine errors onto HTTP responses. Validation and
// not-found errors carry their message to the caller; storage errors are
// logged server-side and surfaced as a generic failure.
func WriteEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr booking.ValidationError
	var notFoundErr booking.NotFoundError
	var conflictErr booking.SlotConflictError

	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
	case errors.As(err, &notFoundErr):
		http.Error(w, notFoundErr.Error(), http.StatusNotFound)
	case errors.As(err, &conflictErr):
		_ = WriteJSON(w, http.StatusConflict, map[string]any{
			"ok":        false,
			"error":     "requested hours are already occupied",
			"conflicts": conflictErr.Hours,
		})
	case errors.Is(err, booking.ErrAlreadyClosed):
		http.Error(w, "reservation already has a rival team", http.StatusConflict)
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("Unexpected engine error")
		http.Error(w, "Unexpected error", http.StatusInternalServerError)
	}
}
