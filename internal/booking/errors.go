package booking

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadyClosed is returned by AttachRival when a reservation already has
// its rival team.
var ErrAlreadyClosed = errors.New("reservation already has a rival team")

// ValidationError rejects a request before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// NotFoundError identifies a missing venue, court, team, or reservation.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// SlotConflictError reports the requested hours that were already occupied
// at write time. The booking is rejected outright; nothing is partially booked.
type SlotConflictError struct {
	CourtID int64
	Date    string
	Hours   []string
}

func (e SlotConflictError) Error() string {
	return fmt.Sprintf("hours already occupied on court %d for %s: %s",
		e.CourtID, e.Date, strings.Join(e.Hours, ", "))
}
