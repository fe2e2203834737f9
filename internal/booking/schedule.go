package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/courtsidehq/courtside/internal/store"
)

const (
	// ReasonClosed is the default reason for a closure without one.
	ReasonClosed = "venue closed"
	// ReasonNoSchedule marks weekdays with no operating-hours row.
	ReasonNoSchedule = "no schedule for this day"
)

// DayResolution is the outcome of resolving a venue's schedule for one date.
// OpenHour/CloseHour bound the half-open operating window [open, close).
type DayResolution struct {
	Operates  bool
	OpenHour  int
	CloseHour int
	Reason    string
}

// ResolveDay determines whether a venue operates on a date. A closure
// covering the date wins over the weekly schedule; a weekday with no
// operating-hours row means the venue is closed that day.
func (e *Engine) ResolveDay(ctx context.Context, venueID int64, date time.Time) (DayResolution, error) {
	return resolveDay(ctx, e.db.Store, venueID, date)
}

func resolveDay(ctx context.Context, s *store.Store, venueID int64, date time.Time) (DayResolution, error) {
	dateValue := FormatDate(date)

	closure, err := s.GetClosureForDate(ctx, venueID, dateValue)
	switch {
	case err == nil:
		reason := closure.Reason
		if reason == "" {
			reason = ReasonClosed
		}
		return DayResolution{Operates: false, Reason: reason}, nil
	case errors.Is(err, sql.ErrNoRows):
		// No closure; fall through to the weekly schedule.
	default:
		return DayResolution{}, fmt.Errorf("look up closures for venue %d: %w", venueID, err)
	}

	hours, err := s.GetOperatingHoursForDay(ctx, venueID, int(date.Weekday()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DayResolution{Operates: false, Reason: ReasonNoSchedule}, nil
		}
		return DayResolution{}, fmt.Errorf("look up operating hours for venue %d: %w", venueID, err)
	}

	return DayResolution{
		Operates:  true,
		OpenHour:  hours.OpenHour,
		CloseHour: hours.CloseHour,
	}, nil
}

// CalendarDay is one date in a lookahead calendar.
type CalendarDay struct {
	Date      string `json:"date"`
	Operates  bool   `json:"operates"`
	OpenHour  int    `json:"openHour,omitempty"`
	CloseHour int    `json:"closeHour,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Calendar resolves each of the next `days` calendar dates starting at from.
// Returns NotFoundError when the venue does not exist.
func (e *Engine) Calendar(ctx context.Context, venueID int64, from time.Time, days int) ([]CalendarDay, error) {
	if days <= 0 {
		return nil, ValidationError{Field: "days", Reason: "must be greater than 0"}
	}

	if _, err := e.db.Store.GetVenueByID(ctx, venueID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFoundError{Resource: "venue", ID: venueID}
		}
		return nil, fmt.Errorf("load venue %d: %w", venueID, err)
	}

	calendar := make([]CalendarDay, 0, days)
	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i)
		resolution, err := e.ResolveDay(ctx, venueID, date)
		if err != nil {
			return nil, err
		}
		calendar = append(calendar, CalendarDay{
			Date:      FormatDate(date),
			Operates:  resolution.Operates,
			OpenHour:  resolution.OpenHour,
			CloseHour: resolution.CloseHour,
			Reason:    resolution.Reason,
		})
	}
	return calendar, nil
}
