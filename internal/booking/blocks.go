package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	appdb "github.com/courtsidehq/courtside/internal/db"
	"github.com/courtsidehq/courtside/internal/email"
	"github.com/courtsidehq/courtside/internal/notify"
	"github.com/courtsidehq/courtside/internal/store"
)

// BlockRequest describes a bulk block or unblock over the cartesian product
// of courts × matching dates × the half-open hour range [TimeStart, TimeEnd).
type BlockRequest struct {
	CourtIDs       []int64
	DateFrom       string
	DateTo         string
	TimeStart      string
	TimeEnd        string
	DaysOfWeek     []int
	AllowConflicts bool
}

// BlockResult reports the outcome for one (court, date) pair. Created counts
// hours written into a new block row, Merged counts hours added to an
// existing one, Conflicts lists requested hours skipped (or overridden) due
// to team bookings, and Removed counts hours taken out of a block row.
// A pair that failed carries Error and was skipped, not rolled into a batch
// failure: bulk operations apply best-effort.
type BlockResult struct {
	CourtID   int64    `json:"courtId"`
	Date      string   `json:"date"`
	Created   int      `json:"created"`
	Merged    int      `json:"merged"`
	Conflicts []string `json:"conflicts"`
	Removed   int      `json:"removed,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type blockPlan struct {
	courtIDs []int64
	dates    []time.Time
	hours    []int
}

// validateBlockRequest fails closed: any malformed range rejects the whole
// request before a single row is touched.
func validateBlockRequest(req BlockRequest) (blockPlan, error) {
	var plan blockPlan

	if len(req.CourtIDs) == 0 {
		return plan, ValidationError{Field: "courtIds", Reason: "must not be empty"}
	}
	if len(req.DaysOfWeek) == 0 {
		return plan, ValidationError{Field: "daysOfWeek", Reason: "must not be empty"}
	}
	daySet := make(map[int]struct{}, len(req.DaysOfWeek))
	for _, day := range req.DaysOfWeek {
		if day < 0 || day > 6 {
			return plan, ValidationError{Field: "daysOfWeek", Reason: fmt.Sprintf("day %d is outside 0-6", day)}
		}
		daySet[day] = struct{}{}
	}

	start, err := ParseClockTime(req.TimeStart)
	if err != nil {
		return plan, ValidationError{Field: "timeStart", Reason: err.Error()}
	}
	end, err := ParseClockTime(req.TimeEnd)
	if err != nil {
		return plan, ValidationError{Field: "timeEnd", Reason: err.Error()}
	}
	if end <= start {
		return plan, ValidationError{Field: "timeEnd", Reason: "must be after timeStart"}
	}

	from, err := ParseDate(req.DateFrom)
	if err != nil {
		return plan, ValidationError{Field: "dateFrom", Reason: err.Error()}
	}
	to, err := ParseDate(req.DateTo)
	if err != nil {
		return plan, ValidationError{Field: "dateTo", Reason: err.Error()}
	}
	if to.Before(from) {
		return plan, ValidationError{Field: "dateTo", Reason: "must not be before dateFrom"}
	}

	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		if _, ok := daySet[int(date.Weekday())]; ok {
			plan.dates = append(plan.dates, date)
		}
	}

	plan.courtIDs = req.CourtIDs
	plan.hours = HourRange(start, end)
	return plan, nil
}

// ApplyBlock records admin blocks across the requested pairs. Hours already
// taken by team bookings are reported as conflicts and skipped unless
// AllowConflicts is set, in which case the full range is blocked anyway and
// every overridden team is notified. Failures are isolated per pair.
func (e *Engine) ApplyBlock(ctx context.Context, req BlockRequest) ([]BlockResult, error) {
	plan, err := validateBlockRequest(req)
	if err != nil {
		return nil, err
	}

	logger := log.Ctx(ctx)
	results := make([]BlockResult, 0, len(plan.courtIDs)*len(plan.dates))
	for _, date := range plan.dates {
		dateValue := FormatDate(date)
		for _, courtID := range plan.courtIDs {
			result, overridden := e.applyBlockPair(ctx, courtID, dateValue, plan.hours, req.AllowConflicts)
			if result.Error != "" {
				logger.Error().
					Int64("court_id", courtID).
					Str("date", dateValue).
					Str("error", result.Error).
					Msg("Block apply failed for pair, skipping")
			}
			results = append(results, result)
			for _, hit := range overridden {
				e.notifyBlockOverride(ctx, hit)
			}
		}
	}
	return results, nil
}

// overriddenBooking captures a team reservation whose hours an admin block
// was forced over.
type overriddenBooking struct {
	reservation store.Reservation
	hours       []int
}

func (e *Engine) applyBlockPair(ctx context.Context, courtID int64, date string, requested []int, allowConflicts bool) (BlockResult, []overriddenBooking) {
	result := BlockResult{CourtID: courtID, Date: date, Conflicts: []string{}}
	var overridden []overriddenBooking

	err := e.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		reservations, err := txdb.Store.ListActiveReservations(ctx, courtID, date)
		if err != nil {
			return fmt.Errorf("load reservations: %w", err)
		}

		var blockRow *store.Reservation
		teamTaken := make(map[int]struct{})
		for i := range reservations {
			reservation := &reservations[i]
			if reservation.Kind() == store.KindAdminBlock {
				// At most one block row exists per (court, date); blocks
				// accumulate into it.
				blockRow = reservation
				continue
			}
			for _, hour := range reservation.Hours {
				teamTaken[hour] = struct{}{}
			}
		}

		conflicts := intersectHours(requested, teamTaken)
		result.Conflicts = HourLabels(conflicts)

		toBlock := requested
		if !allowConflicts {
			toBlock = subtractHours(requested, teamTaken)
		} else if len(conflicts) > 0 {
			requestedSet := hourSet(requested)
			for i := range reservations {
				reservation := &reservations[i]
				if reservation.Kind() != store.KindTeamBooking {
					continue
				}
				if hit := intersectHours(reservation.Hours, requestedSet); len(hit) > 0 {
					overridden = append(overridden, overriddenBooking{reservation: *reservation, hours: hit})
				}
			}
		}
		if len(toBlock) == 0 {
			return nil
		}

		if blockRow == nil {
			venueID, err := venueIDForCourt(ctx, txdb.Store, courtID, reservations)
			if err != nil {
				return err
			}
			if _, err := txdb.Store.InsertReservation(ctx, store.InsertReservationParams{
				CourtID: courtID,
				VenueID: venueID,
				Date:    date,
				Hours:   toBlock,
			}); err != nil {
				return fmt.Errorf("insert block row: %w", err)
			}
			result.Created = len(toBlock)
			return nil
		}

		added := subtractHours(toBlock, blockRow.HourSet())
		if len(added) == 0 {
			return nil
		}
		if err := txdb.Store.SetReservationHours(ctx, blockRow.ID, unionHours(blockRow.Hours, added)); err != nil {
			return fmt.Errorf("merge block row: %w", err)
		}
		result.Merged = len(added)
		return nil
	})
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}
	return result, overridden
}

// RemoveBlock shrinks or deletes admin block rows across the requested
// pairs. Team reservations are never touched; removal only ever affects the
// admin-only row, so no conflict computation is needed.
func (e *Engine) RemoveBlock(ctx context.Context, req BlockRequest) ([]BlockResult, error) {
	plan, err := validateBlockRequest(req)
	if err != nil {
		return nil, err
	}

	logger := log.Ctx(ctx)
	requestedSet := hourSet(plan.hours)
	results := make([]BlockResult, 0, len(plan.courtIDs)*len(plan.dates))
	for _, date := range plan.dates {
		dateValue := FormatDate(date)
		for _, courtID := range plan.courtIDs {
			result := BlockResult{CourtID: courtID, Date: dateValue, Conflicts: []string{}}
			err := e.db.RunInTx(ctx, func(txdb *appdb.DB) error {
				reservations, err := txdb.Store.ListActiveReservations(ctx, courtID, dateValue)
				if err != nil {
					return fmt.Errorf("load reservations: %w", err)
				}
				var blockRow *store.Reservation
				for i := range reservations {
					if reservations[i].Kind() == store.KindAdminBlock {
						blockRow = &reservations[i]
						break
					}
				}
				if blockRow == nil {
					return nil
				}

				toRemove := intersectHours(blockRow.Hours, requestedSet)
				if len(toRemove) == 0 {
					return nil
				}
				remaining := subtractHours(blockRow.Hours, hourSet(toRemove))
				if len(remaining) == 0 {
					// An empty hour-set must delete the row, never leave it.
					if err := txdb.Store.DeleteReservation(ctx, blockRow.ID); err != nil {
						return fmt.Errorf("delete emptied block row: %w", err)
					}
				} else {
					if err := txdb.Store.SetReservationHours(ctx, blockRow.ID, remaining); err != nil {
						return fmt.Errorf("shrink block row: %w", err)
					}
				}
				result.Removed = len(toRemove)
				return nil
			})
			if err != nil {
				result.Error = err.Error()
				logger.Error().
					Int64("court_id", courtID).
					Str("date", dateValue).
					Str("error", result.Error).
					Msg("Block remove failed for pair, skipping")
			}
			results = append(results, result)
		}
	}
	return results, nil
}

// venueIDForCourt resolves the venue for a new block row, reusing already
// fetched reservations when possible.
func venueIDForCourt(ctx context.Context, s *store.Store, courtID int64, reservations []store.Reservation) (int64, error) {
	for _, reservation := range reservations {
		return reservation.VenueID, nil
	}
	court, err := s.GetCourtByID(ctx, courtID)
	if err != nil {
		return 0, fmt.Errorf("load court %d: %w", courtID, err)
	}
	return court.VenueID, nil
}

func (e *Engine) notifyBlockOverride(ctx context.Context, hit overriddenBooking) {
	logger := log.Ctx(ctx)

	team, err := e.db.Store.GetTeamByID(ctx, hit.reservation.CreatorTeamID())
	if err != nil {
		logger.Warn().Err(err).Int64("reservation_id", hit.reservation.ID).Msg("Failed to load team for block override notice")
		return
	}
	court, err := e.db.Store.GetCourtByID(ctx, hit.reservation.CourtID)
	if err != nil {
		logger.Warn().Err(err).Int64("court_id", hit.reservation.CourtID).Msg("Failed to load court for block override notice")
		return
	}
	venue, err := e.db.Store.GetVenueByID(ctx, hit.reservation.VenueID)
	if err != nil {
		logger.Warn().Err(err).Int64("venue_id", hit.reservation.VenueID).Msg("Failed to load venue for block override notice")
		return
	}

	labels := HourLabels(hit.hours)
	details := email.BookingDetails{
		VenueName: venue.Name,
		CourtName: court.Name,
		Date:      hit.reservation.Date,
		Hours:     HourLabels(hit.reservation.Hours),
		TeamName:  team.Name,
	}
	email.SendAsync(ctx, e.mailer, team.ContactEmail, email.BuildBlockOverride(details, labels), logger)
	e.publish(ctx, notify.Notification{
		Title:     "Admin block overlaps your booking",
		Message:   fmt.Sprintf("Hours %v on %s at %s were blocked by the venue", labels, hit.reservation.Date, venue.Name),
		TargetURL: fmt.Sprintf("/reservations/%d", hit.reservation.ID),
		Recipients: []notify.Recipient{
			{ID: team.ID, Kind: notify.RecipientTeam},
		},
	})
}
