package booking

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/courtsidehq/courtside/internal/store"
)

func TestCreateBooking(t *testing.T) {
	engine, database := newTestEngine(t)
	venue, court := seedVenue(t, database)
	team := seedTeam(t, database, "Las Aguilas")
	ctx := context.Background()

	reservation, err := engine.CreateBooking(ctx, CreateBookingParams{
		TeamID:  team.ID,
		CourtID: court.ID,
		VenueID: venue.ID,
		Date:    mondayDate,
		Hours:   []string{"10", "11"},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if !reflect.DeepEqual(reservation.Hours, []int{10, 11}) {
		t.Errorf("hours = %v, want [10 11]", reservation.Hours)
	}
	if reservation.Kind() != store.KindTeamBooking {
		t.Errorf("kind = %v, want team booking", reservation.Kind())
	}
	if reservation.CreatorTeamID() != team.ID {
		t.Errorf("creator = %d, want %d", reservation.CreatorTeamID(), team.ID)
	}

	stored, err := database.Store.GetReservationByID(ctx, reservation.ID)
	if err != nil {
		t.Fatalf("reload reservation: %v", err)
	}
	if !stored.IsActive {
		t.Error("stored reservation should be active")
	}
	if !reflect.DeepEqual(stored.Hours, []int{10, 11}) {
		t.Errorf("stored hours = %v, want [10 11]", stored.Hours)
	}
}

func TestCreateBookingConflictWritesNothing(t *testing.T) {
	engine, database := newTestEngine(t)
	venue, court := seedVenue(t, database)
	first := seedTeam(t, database, "Las Aguilas")
	second := seedTeam(t, database, "Los Tigres")
	ctx := context.Background()

	if _, err := engine.CreateBooking(ctx, CreateBookingParams{
		TeamID:  first.ID,
		CourtID: court.ID,
		VenueID: venue.ID,
		Date:    mondayDate,
		Hours:   []string{"10", "11"},
	}); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := engine.CreateBooking(ctx, CreateBookingParams{
		TeamID:  second.ID,
		CourtID: court.ID,
		VenueID: venue.ID,
		Date:    mondayDate,
		Hours:   []string{"11", "12"},
	})
	var conflict SlotConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected SlotConflictError, got %v", err)
	}
	if !reflect.DeepEqual(conflict.Hours, []string{"11"}) {
		t.Errorf("conflict hours = %v, want [11]", conflict.Hours)
	}

	// The rejected request must not have booked its free hour either.
	reservations, err := database.Store.ListActiveReservations(ctx, court.ID, mondayDate)
	if err != nil {
		t.Fatalf("list reservations: %v", err)
	}
	if len(reservations) != 1 {
		t.Fatalf("got %d reservations, want 1", len(reservations))
	}
}

func TestCreateBookingOutsideOperatingWindow(t *testing.T) {
	engine, database := newTestEngine(t)
	venue, court := seedVenue(t, database)
	team := seedTeam(t, database, "Las Aguilas")

	_, err := engine.CreateBooking(context.Background(), CreateBookingParams{
		TeamID:  team.ID,
		CourtID: court.ID,
		VenueID: venue.ID,
		Date:    mondayDate,
		Hours:   []string{"06", "07"},
	})
	var validation ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateBookingClosedDay(t *testing.T) {
	engine, database := newTestEngine(t)
	venue, court := seedVenue(t, database)
	team := seedTeam(t, database, "Las Aguilas")
	ctx := context.Background()

	if _, err := database.Store.CreateClosure(ctx, store.CreateClosureParams{
		VenueID:   venue.ID,
		StartDate: mondayDate,
		EndDate:   mondayDate,
		Reason:    "holiday",
	}); err != nil {
		t.Fatalf("create closure: %v", err)
	}

	_, err := engine.CreateBooking(ctx, CreateBookingParams{
		TeamID:  team.ID,
		CourtID: court.ID,
		VenueID: venue.ID,
		Date:    mondayDate,
		Hours:   []string{"10"},
	})
	var validation ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateBookingPastHoursSameDay(t *testing.T) {
	engine, database := newTestEngine(t)
	venue, court := seedVenue(t, database)
	team := seedTeam(t, database, "Las Aguilas")

	engine.clock = fixedClock{now: time.Date(2024, 6, 3, 14, 37, 0, 0, time.UTC)}

	_, err := engine.CreateBooking(context.Background(), CreateBookingParams{
		TeamID:  team.ID,
		CourtID: court.ID,
		VenueID: venue.ID,
		Date:    mondayDate,
		Hours:   []string{"14", "15"},
	})
	var validation ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for started hour, got %v", err)
	}
}

func TestCreateBookingCourtVenueMismatch(t *testing.T) {
	engine, database := newTestEngine(t)
	_, court := seedVenue(t, database)
	other, _ := seedVenue(t, database)
	team := seedTeam(t, database, "Las Aguilas")

	_, err := engine.CreateBooking(context.Background(), CreateBookingParams{
		TeamID:  team.ID,
		CourtID: court.ID,
		VenueID: other.ID,
		Date:    mondayDate,
		Hours:   []string{"10"},
	})
	var validation ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCancelFreesHours(t *testing.T) {
	engine, database := newTestEngine(t)
	venue, court := seedVenue(t, database)
	first := seedTeam(t, database, "Las Aguilas")
	second := seedTeam(t, database, "Los Tigres")
	ctx := context.Background()

	reservation, err := engine.CreateBooking(ctx, CreateBookingParams{
		TeamID:  first.ID,
		CourtID: court.ID,
		VenueID: venue.ID,
		Date:    mondayDate,
		Hours:   []string{"10", "11"},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if err := engine.Cancel(ctx, reservation.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	// The same hours are immediately bookable by another team.
	if _, err := engine.CreateBooking(ctx, CreateBookingParams{
		TeamID:  second.ID,
		CourtID: court.ID,
		VenueID: venue.ID,
		Date:    mondayDate,
		Hours:   []string{"10", "11"},
	}); err != nil {
		t.Fatalf("rebooking freed hours: %v", err)
	}

	// The cancelled row keeps its hour-set and team links for history.
	stored, err := database.Store.GetReservationByID(ctx, reservation.ID)
	if err != nil {
		t.Fatalf("reload cancelled reservation: %v", err)
	}
	if stored.IsActive {
		t.Error("cancelled reservation should be inactive")
	}
	if len(stored.Hours) != 2 || len(stored.Teams) != 1 {
		t.Errorf("cancelled row lost history: hours=%v teams=%v", stored.Hours, stored.Teams)
	}
}

func TestCancelTwiceIsNoOp(t *testing.T) {
	engine, database := newTestEngine(t)
	venue, court := seedVenue(t, database)
	team := seedTeam(t, database, "Las Aguilas")
	ctx := context.Background()

	reservation, err := engine.CreateBooking(ctx, CreateBookingParams{
		TeamID:  team.ID,
		CourtID: court.ID,
		VenueID: venue.ID,
		Date:    mondayDate,
		Hours:   []string{"10"},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if err := engine.Cancel(ctx, reservation.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if err := engine.Cancel(ctx, reservation.ID); err != nil {
		t.Fatalf("second cancel should be a no-op, got %v", err)
	}
}

func TestCancelUnknownReservation(t *testing.T) {
	engine, _ := newTestEngine(t)

	err := engine.Cancel(context.Background(), 404)
	var notFound NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestAttachRival(t *testing.T) {
	engine, database := newTestEngine(t)
	venue, court := seedVenue(t, database)
	creator := seedTeam(t, database, "Las Aguilas")
	rival := seedTeam(t, database, "Los Tigres")
	third := seedTeam(t, database, "Atletico Surco")
	ctx := context.Background()

	reservation, err := engine.CreateBooking(ctx, CreateBookingParams{
		TeamID:  creator.ID,
		CourtID: court.ID,
		VenueID: venue.ID,
		Date:    mondayDate,
		Hours:   []string{"18", "19"},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if err := engine.AttachRival(ctx, reservation.ID, rival.ID); err != nil {
		t.Fatalf("AttachRival: %v", err)
	}

	stored, err := database.Store.GetReservationByID(ctx, reservation.ID)
	if err != nil {
		t.Fatalf("reload reservation: %v", err)
	}
	if len(stored.Teams) != 2 {
		t.Fatalf("got %d team links, want 2", len(stored.Teams))
	}
	// Rival matching holds the same hours; it books nothing new.
	if !reflect.DeepEqual(stored.Hours, []int{18, 19}) {
		t.Errorf("hours changed on rival join: %v", stored.Hours)
	}

	// A closed reservation rejects further rivals.
	if err := engine.AttachRival(ctx, reservation.ID, third.ID); !errors.Is(err, ErrAlreadyClosed) {
		t.Fatalf("expected ErrAlreadyClosed, got %v", err)
	}
}

func TestAttachRivalSameTeam(t *testing.T) {
	engine, database := newTestEngine(t)
	venue, court := seedVenue(t, database)
	creator := seedTeam(t, database, "Las Aguilas")
	ctx := context.Background()

	reservation, err := engine.CreateBooking(ctx, CreateBookingParams{
		TeamID:  creator.ID,
		CourtID: court.ID,
		VenueID: venue.ID,
		Date:    mondayDate,
		Hours:   []string{"18"},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	err = engine.AttachRival(ctx, reservation.ID, creator.ID)
	var validation ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAttachRivalToAdminBlock(t *testing.T) {
	engine, database := newTestEngine(t)
	_, court := seedVenue(t, database)
	rival := seedTeam(t, database, "Los Tigres")
	ctx := context.Background()

	if _, err := engine.ApplyBlock(ctx, BlockRequest{
		CourtIDs:   []int64{court.ID},
		DateFrom:   mondayDate,
		DateTo:     mondayDate,
		TimeStart:  "10:00",
		TimeEnd:    "12:00",
		DaysOfWeek: []int{1},
	}); err != nil {
		t.Fatalf("ApplyBlock: %v", err)
	}

	reservations, err := database.Store.ListActiveReservations(ctx, court.ID, mondayDate)
	if err != nil || len(reservations) != 1 {
		t.Fatalf("expected one block row, got %d (%v)", len(reservations), err)
	}

	err = engine.AttachRival(ctx, reservations[0].ID, rival.ID)
	var validation ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for admin block, got %v", err)
	}
}

func TestAttachRivalCancelledReservation(t *testing.T) {
	engine, database := newTestEngine(t)
	venue, court := seedVenue(t, database)
	creator := seedTeam(t, database, "Las Aguilas")
	rival := seedTeam(t, database, "Los Tigres")
	ctx := context.Background()

	reservation, err := engine.CreateBooking(ctx, CreateBookingParams{
		TeamID:  creator.ID,
		CourtID: court.ID,
		VenueID: venue.ID,
		Date:    mondayDate,
		Hours:   []string{"18"},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if err := engine.Cancel(ctx, reservation.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	err = engine.AttachRival(ctx, reservation.ID, rival.ID)
	var notFound NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for cancelled reservation, got %v", err)
	}
}
