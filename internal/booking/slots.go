package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/store"
)

// AvailableHours computes the bookable "HH" slot labels for a court and date:
// the venue's operating window minus hours held by any active reservation,
// team booking or admin block alike. When the date is today in the venue's
// timezone, hours at or before the current hour are excluded.
func (e *Engine) AvailableHours(ctx context.Context, courtID int64, dateValue string) ([]string, error) {
	date, err := ParseDate(dateValue)
	if err != nil {
		return nil, ValidationError{Field: "date", Reason: err.Error()}
	}

	court, err := e.db.Store.GetCourtByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFoundError{Resource: "court", ID: courtID}
		}
		return nil, fmt.Errorf("load court %d: %w", courtID, err)
	}

	venue, err := e.db.Store.GetVenueByID(ctx, court.VenueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFoundError{Resource: "venue", ID: court.VenueID}
		}
		return nil, fmt.Errorf("load venue %d: %w", court.VenueID, err)
	}

	resolution, err := e.ResolveDay(ctx, venue.ID, date)
	if err != nil {
		return nil, err
	}
	if !resolution.Operates {
		return []string{}, nil
	}

	occupied, err := occupiedHours(ctx, e.db.Store, courtID, FormatDate(date))
	if err != nil {
		return nil, err
	}

	cutoff := sameDayCutoff(venue, date, e.clock.Now())

	labels := make([]string, 0, resolution.CloseHour-resolution.OpenHour)
	for hour := resolution.OpenHour; hour < resolution.CloseHour; hour++ {
		if _, taken := occupied[hour]; taken {
			continue
		}
		if cutoff >= 0 && hour <= cutoff {
			continue
		}
		labels = append(labels, FormatHour(hour))
	}
	return labels, nil
}

// occupiedHours flattens every active reservation's hour-set for a court and
// date into one membership set. No distinction is made between team bookings
// and admin blocks: occupied is occupied.
func occupiedHours(ctx context.Context, s *store.Store, courtID int64, date string) (map[int]struct{}, error) {
	reservations, err := s.ListActiveReservations(ctx, courtID, date)
	if err != nil {
		return nil, fmt.Errorf("load reservations for court %d on %s: %w", courtID, date, err)
	}
	occupied := make(map[int]struct{})
	for _, reservation := range reservations {
		for _, hour := range reservation.Hours {
			occupied[hour] = struct{}{}
		}
	}
	return occupied, nil
}

// sameDayCutoff returns the latest unselectable hour when date is today in
// the venue's timezone, or -1 when the date is not today. A slot whose start
// hour has already been reached cannot be booked.
func sameDayCutoff(venue store.Venue, date time.Time, now time.Time) int {
	location, err := time.LoadLocation(venue.Timezone)
	if err != nil {
		log.Warn().
			Str("timezone", venue.Timezone).
			Int64("venue_id", venue.ID).
			Msg("Invalid venue timezone, falling back to UTC")
		location = time.UTC
	}
	localNow := now.In(location)
	if FormatDate(localNow) != FormatDate(date) {
		return -1
	}
	return localNow.Hour()
}
