package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	appdb "github.com/courtsidehq/courtside/internal/db"
	"github.com/courtsidehq/courtside/internal/email"
	"github.com/courtsidehq/courtside/internal/notify"
	"github.com/courtsidehq/courtside/internal/store"
)

type CreateBookingParams struct {
	TeamID  int64
	CourtID int64
	VenueID int64
	Date    string
	Hours   []string
}

// CreateBooking reserves the requested hours for a team. The conflict check
// runs inside the same transaction as the insert, so a stale availability
// read can never produce a double booking. On conflict nothing is written and
// the offending hours are reported.
func (e *Engine) CreateBooking(ctx context.Context, params CreateBookingParams) (store.Reservation, error) {
	if len(params.Hours) == 0 {
		return store.Reservation{}, ValidationError{Field: "hours", Reason: "must not be empty"}
	}
	date, err := ParseDate(params.Date)
	if err != nil {
		return store.Reservation{}, ValidationError{Field: "date", Reason: err.Error()}
	}
	hours, err := parseHourLabels(params.Hours)
	if err != nil {
		return store.Reservation{}, ValidationError{Field: "hours", Reason: err.Error()}
	}

	team, err := e.db.Store.GetTeamByID(ctx, params.TeamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Reservation{}, NotFoundError{Resource: "team", ID: params.TeamID}
		}
		return store.Reservation{}, fmt.Errorf("load team %d: %w", params.TeamID, err)
	}

	court, err := e.db.Store.GetCourtByID(ctx, params.CourtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Reservation{}, NotFoundError{Resource: "court", ID: params.CourtID}
		}
		return store.Reservation{}, fmt.Errorf("load court %d: %w", params.CourtID, err)
	}
	if court.VenueID != params.VenueID {
		return store.Reservation{}, ValidationError{Field: "courtId", Reason: "does not belong to the given venue"}
	}

	venue, err := e.db.Store.GetVenueByID(ctx, params.VenueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Reservation{}, NotFoundError{Resource: "venue", ID: params.VenueID}
		}
		return store.Reservation{}, fmt.Errorf("load venue %d: %w", params.VenueID, err)
	}

	// Past slots are unbookable even if nominally free.
	if cutoff := sameDayCutoff(venue, date, e.clock.Now()); cutoff >= 0 && hours[0] <= cutoff {
		return store.Reservation{}, ValidationError{Field: "hours", Reason: "includes hours that already started"}
	}

	dateValue := FormatDate(date)
	var reservation store.Reservation
	err = e.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		resolution, err := resolveDay(ctx, txdb.Store, venue.ID, date)
		if err != nil {
			return err
		}
		if !resolution.Operates {
			return ValidationError{Field: "date", Reason: fmt.Sprintf("venue is not operating: %s", resolution.Reason)}
		}
		for _, hour := range hours {
			if hour < resolution.OpenHour || hour >= resolution.CloseHour {
				return ValidationError{
					Field:  "hours",
					Reason: fmt.Sprintf("%s is outside the operating window %02d:00-%02d:00", FormatHour(hour), resolution.OpenHour, resolution.CloseHour),
				}
			}
		}

		occupied, err := occupiedHours(ctx, txdb.Store, params.CourtID, dateValue)
		if err != nil {
			return err
		}
		if conflicts := intersectHours(hours, occupied); len(conflicts) > 0 {
			return SlotConflictError{
				CourtID: params.CourtID,
				Date:    dateValue,
				Hours:   HourLabels(conflicts),
			}
		}

		reservation, err = txdb.Store.InsertReservation(ctx, store.InsertReservationParams{
			CourtID: params.CourtID,
			VenueID: params.VenueID,
			Date:    dateValue,
			Hours:   hours,
		})
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		if err := txdb.Store.AddReservationTeam(ctx, reservation.ID, params.TeamID, true); err != nil {
			return fmt.Errorf("link creator team: %w", err)
		}
		reservation.Teams = []store.TeamLink{{ReservationID: reservation.ID, TeamID: params.TeamID, IsCreator: true}}
		return nil
	})
	if err != nil {
		return store.Reservation{}, err
	}

	logger := log.Ctx(ctx)
	details := email.BookingDetails{
		VenueName: venue.Name,
		CourtName: court.Name,
		Date:      dateValue,
		Hours:     HourLabels(hours),
		TeamName:  team.Name,
	}
	email.SendAsync(ctx, e.mailer, team.ContactEmail, email.BuildBookingConfirmation(details), logger)
	e.publish(ctx, notify.Notification{
		Title:     "Booking confirmed",
		Message:   fmt.Sprintf("%s booked %s on %s (%v)", team.Name, court.Name, dateValue, details.Hours),
		TargetURL: fmt.Sprintf("/reservations/%d", reservation.ID),
		Recipients: []notify.Recipient{
			{ID: team.ID, Kind: notify.RecipientTeam},
			{ID: venue.ID, Kind: notify.RecipientAdmin},
		},
	})

	return reservation, nil
}

// AttachRival adds a second team to an open reservation. The reservation's
// hour-set is untouched: rival matching is co-occupancy of the already-held
// slots, not a new booking.
func (e *Engine) AttachRival(ctx context.Context, reservationID, rivalTeamID int64) error {
	rival, err := e.db.Store.GetTeamByID(ctx, rivalTeamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NotFoundError{Resource: "team", ID: rivalTeamID}
		}
		return fmt.Errorf("load team %d: %w", rivalTeamID, err)
	}

	var reservation store.Reservation
	err = e.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		reservation, err = txdb.Store.GetReservationByID(ctx, reservationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return NotFoundError{Resource: "reservation", ID: reservationID}
			}
			return fmt.Errorf("load reservation %d: %w", reservationID, err)
		}
		if !reservation.IsActive {
			return NotFoundError{Resource: "reservation", ID: reservationID}
		}
		switch len(reservation.Teams) {
		case 1:
			// Open: rival can join.
		case 0:
			return ValidationError{Field: "reservationId", Reason: "admin blocks cannot receive a rival team"}
		default:
			return ErrAlreadyClosed
		}
		if reservation.Teams[0].TeamID == rivalTeamID {
			return ValidationError{Field: "teamId", Reason: "team already holds this reservation"}
		}
		if err := txdb.Store.AddReservationTeam(ctx, reservationID, rivalTeamID, false); err != nil {
			return fmt.Errorf("link rival team: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.notifyRivalJoined(ctx, reservation, rival)
	return nil
}

func (e *Engine) notifyRivalJoined(ctx context.Context, reservation store.Reservation, rival store.Team) {
	logger := log.Ctx(ctx)

	creator, err := e.db.Store.GetTeamByID(ctx, reservation.CreatorTeamID())
	if err != nil {
		logger.Warn().Err(err).Int64("reservation_id", reservation.ID).Msg("Failed to load creator team for rival notification")
		return
	}
	court, err := e.db.Store.GetCourtByID(ctx, reservation.CourtID)
	if err != nil {
		logger.Warn().Err(err).Int64("court_id", reservation.CourtID).Msg("Failed to load court for rival notification")
		return
	}
	venue, err := e.db.Store.GetVenueByID(ctx, reservation.VenueID)
	if err != nil {
		logger.Warn().Err(err).Int64("venue_id", reservation.VenueID).Msg("Failed to load venue for rival notification")
		return
	}

	details := email.BookingDetails{
		VenueName: venue.Name,
		CourtName: court.Name,
		Date:      reservation.Date,
		Hours:     HourLabels(reservation.Hours),
		TeamName:  creator.Name,
	}
	email.SendAsync(ctx, e.mailer, creator.ContactEmail, email.BuildRivalJoined(details, rival.Name), logger)
	e.publish(ctx, notify.Notification{
		Title:     "Rival team joined",
		Message:   fmt.Sprintf("%s joined the match against %s on %s", rival.Name, creator.Name, reservation.Date),
		TargetURL: fmt.Sprintf("/reservations/%d", reservation.ID),
		Recipients: []notify.Recipient{
			{ID: creator.ID, Kind: notify.RecipientTeam},
		},
	})
}

// Cancel deactivates a reservation, freeing its hours while preserving the
// row and its team links for history. Cancelling twice is a no-op.
func (e *Engine) Cancel(ctx context.Context, reservationID int64) error {
	return e.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		reservation, err := txdb.Store.GetReservationByID(ctx, reservationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return NotFoundError{Resource: "reservation", ID: reservationID}
			}
			return fmt.Errorf("load reservation %d: %w", reservationID, err)
		}
		if !reservation.IsActive {
			return nil
		}
		if err := txdb.Store.CancelReservation(ctx, reservationID); err != nil {
			return fmt.Errorf("cancel reservation %d: %w", reservationID, err)
		}
		return nil
	})
}

// publish sends an in-app notification, swallowing failures.
func (e *Engine) publish(ctx context.Context, notification notify.Notification) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Publish(ctx, notification); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("title", notification.Title).Msg("Failed to publish notification")
	}
}

func parseHourLabels(labels []string) ([]int, error) {
	seen := make(map[int]struct{}, len(labels))
	hours := make([]int, 0, len(labels))
	for _, label := range labels {
		hour, err := ParseHourLabel(label)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[hour]; dup {
			continue
		}
		seen[hour] = struct{}{}
		hours = append(hours, hour)
	}
	sort.Ints(hours)
	return hours, nil
}
