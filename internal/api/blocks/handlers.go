// internal/api/blocks/handlers.go
package blocks

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/api/apiutil"
	"github.com/courtsidehq/courtside/internal/booking"
)

// Block batches touch every (court, date) pair in the range, so they get a
// longer budget than single-row writes.
const blockQueryTimeout = 30 * time.Second

var (
	engine   *booking.Engine
	initOnce sync.Once
)

func InitHandlers(e *booking.Engine) {
	if e == nil {
		return
	}
	initOnce.Do(func() {
		engine = e
	})
}

// blockBody accepts both courtIds and the legacy canchaIds key used by
// older admin clients.
type blockBody struct {
	CourtIDs       []int64 `json:"courtIds"`
	CanchaIDs      []int64 `json:"canchaIds"`
	DateFrom       string  `json:"dateFrom"`
	DateTo         string  `json:"dateTo"`
	TimeStart      string  `json:"timeStart"`
	TimeEnd        string  `json:"timeEnd"`
	DaysOfWeek     []int   `json:"daysOfWeek"`
	AllowConflicts bool    `json:"allowConflicts"`
}

func (b blockBody) toRequest() booking.BlockRequest {
	courtIDs := b.CourtIDs
	if len(courtIDs) == 0 {
		courtIDs = b.CanchaIDs
	}
	return booking.BlockRequest{
		CourtIDs:       courtIDs,
		DateFrom:       b.DateFrom,
		DateTo:         b.DateTo,
		TimeStart:      b.TimeStart,
		TimeEnd:        b.TimeEnd,
		DaysOfWeek:     b.DaysOfWeek,
		AllowConflicts: b.AllowConflicts,
	}
}

// POST /api/v1/blocks
func HandleBlockApply(w http.ResponseWriter, r *http.Request) {
	handleBlockBatch(w, r, engineApply)
}

// POST /api/v1/blocks/remove
func HandleBlockRemove(w http.ResponseWriter, r *http.Request) {
	handleBlockBatch(w, r, engineRemove)
}

type batchFunc func(ctx context.Context, req booking.BlockRequest) ([]booking.BlockResult, error)

func engineApply(ctx context.Context, req booking.BlockRequest) ([]booking.BlockResult, error) {
	return engine.ApplyBlock(ctx, req)
}

func engineRemove(ctx context.Context, req booking.BlockRequest) ([]booking.BlockResult, error) {
	return engine.RemoveBlock(ctx, req)
}

func handleBlockBatch(w http.ResponseWriter, r *http.Request, run batchFunc) {
	logger := log.Ctx(r.Context())

	if engine == nil {
		logger.Error().Msg("Booking engine not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var body blockBody
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), blockQueryTimeout)
	defer cancel()

	results, err := run(ctx, body.toRequest())
	if err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}

	failed := 0
	for _, result := range results {
		if result.Error != "" {
			failed++
		}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":      failed == 0,
		"results": results,
		"failed":  failed,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write block response")
	}
}
