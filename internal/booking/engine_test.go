package booking

import (
	"context"
	"testing"
	"time"

	appdb "github.com/courtsidehq/courtside/internal/db"
	"github.com/courtsidehq/courtside/internal/store"
	"github.com/courtsidehq/courtside/internal/testutil"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// testNow is a Saturday; the scenario dates below fall on the following
// Monday so same-day cutoff never interferes unless a test wants it to.
var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

const mondayDate = "2024-06-03"

func newTestEngine(t *testing.T) (*Engine, *appdb.DB) {
	t.Helper()
	database := testutil.NewTestDB(t)
	engine, err := NewEngine(database, nil, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	engine.clock = fixedClock{now: testNow}
	return engine, database
}

// seedVenue creates a UTC venue with one court operating 08:00-22:00 every
// day of the week.
func seedVenue(t *testing.T, database *appdb.DB) (store.Venue, store.Court) {
	t.Helper()
	ctx := context.Background()

	venue, err := database.Store.CreateVenue(ctx, store.CreateVenueParams{
		Name:     "Los Olivos Sports Center",
		City:     "Lima",
		Timezone: "UTC",
	})
	if err != nil {
		t.Fatalf("create venue: %v", err)
	}

	court, err := database.Store.CreateCourt(ctx, store.CreateCourtParams{
		VenueID:    venue.ID,
		Name:       "Cancha 1",
		Capacity:   14,
		PriceCents: 6000,
	})
	if err != nil {
		t.Fatalf("create court: %v", err)
	}

	var week []store.OperatingHours
	for day := 0; day <= 6; day++ {
		week = append(week, store.OperatingHours{
			VenueID:   venue.ID,
			DayOfWeek: day,
			OpenHour:  8,
			CloseHour: 22,
		})
	}
	if err := database.Store.ReplaceOperatingHours(ctx, venue.ID, week); err != nil {
		t.Fatalf("seed operating hours: %v", err)
	}

	return venue, court
}

func seedTeam(t *testing.T, database *appdb.DB, name string) store.Team {
	t.Helper()
	team, err := database.Store.CreateTeam(context.Background(), store.CreateTeamParams{
		Name:         name,
		ContactEmail: name + "@example.com",
		MaxSize:      12,
	})
	if err != nil {
		t.Fatalf("create team %s: %v", name, err)
	}
	return team
}
