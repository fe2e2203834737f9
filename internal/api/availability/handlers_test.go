package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/store"
	"github.com/courtsidehq/courtside/internal/testutil"
)

const futureMonday = "2030-01-07"

func setup(t *testing.T) (store.Venue, store.Court) {
	t.Helper()
	ctx := context.Background()

	db := testutil.NewTestDB(t)
	e, err := booking.NewEngine(db, nil, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	engine = e
	t.Cleanup(func() { engine = nil })

	venue, err := db.Store.CreateVenue(ctx, store.CreateVenueParams{Name: "Centro Deportivo", Timezone: "UTC"})
	if err != nil {
		t.Fatalf("create venue: %v", err)
	}
	court, err := db.Store.CreateCourt(ctx, store.CreateCourtParams{VenueID: venue.ID, Name: "Cancha 1"})
	if err != nil {
		t.Fatalf("create court: %v", err)
	}
	var week []store.OperatingHours
	for day := 0; day <= 6; day++ {
		week = append(week, store.OperatingHours{VenueID: venue.ID, DayOfWeek: day, OpenHour: 9, CloseHour: 21})
	}
	if err := db.Store.ReplaceOperatingHours(ctx, venue.ID, week); err != nil {
		t.Fatalf("seed operating hours: %v", err)
	}
	return venue, court
}

func newMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/courts/{id}/availability", HandleCourtAvailability)
	mux.HandleFunc("GET /api/v1/venues/{id}/calendar", HandleVenueCalendar)
	return mux
}

func get(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleCourtAvailability(t *testing.T) {
	_, court := setup(t)
	mux := newMux()

	rec := get(mux, fmt.Sprintf("/api/v1/courts/%d/availability?date=%s", court.ID, futureMonday))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		OK    bool     `json:"ok"`
		Date  string   `json:"date"`
		Hours []string `json:"hours"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.OK || resp.Date != futureMonday {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Hours) != 12 {
		t.Errorf("got %d hours, want 12: %v", len(resp.Hours), resp.Hours)
	}
	if resp.Hours[0] != "09" || resp.Hours[len(resp.Hours)-1] != "20" {
		t.Errorf("window = %v, want 09..20", resp.Hours)
	}
}

func TestHandleCourtAvailabilityMissingDate(t *testing.T) {
	_, court := setup(t)
	mux := newMux()

	rec := get(mux, fmt.Sprintf("/api/v1/courts/%d/availability", court.ID))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleCourtAvailabilityUnknownCourt(t *testing.T) {
	setup(t)
	mux := newMux()

	rec := get(mux, "/api/v1/courts/404/availability?date="+futureMonday)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleVenueCalendar(t *testing.T) {
	venue, _ := setup(t)
	mux := newMux()

	rec := get(mux, fmt.Sprintf("/api/v1/venues/%d/calendar?days=7", venue.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		OK       bool                  `json:"ok"`
		Calendar []booking.CalendarDay `json:"calendar"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.OK || len(resp.Calendar) != 7 {
		t.Errorf("got %d calendar days, want 7", len(resp.Calendar))
	}
}

func TestHandleVenueCalendarBadDays(t *testing.T) {
	venue, _ := setup(t)
	mux := newMux()

	for _, days := range []string{"0", "-1", "91", "abc"} {
		rec := get(mux, fmt.Sprintf("/api/v1/venues/%d/calendar?days=%s", venue.ID, days))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("days=%s: status = %d, want 400", days, rec.Code)
		}
	}
}
