package bookings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/courtsidehq/courtside/internal/booking"
	appdb "github.com/courtsidehq/courtside/internal/db"
	"github.com/courtsidehq/courtside/internal/store"
	"github.com/courtsidehq/courtside/internal/testutil"
)

// futureMonday is far enough out that the same-day cutoff never applies.
const futureMonday = "2030-01-07"

type fixture struct {
	db    *appdb.DB
	venue store.Venue
	court store.Court
	team  store.Team
	rival store.Team
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	db := testutil.NewTestDB(t)
	e, err := booking.NewEngine(db, nil, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	engine = e
	database = db
	limiter = nil
	t.Cleanup(func() {
		engine = nil
		database = nil
	})

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
		week = append(week, store.OperatingHours{VenueID: venue.ID, DayOfWeek: day, OpenHour: 8, CloseHour: 22})
	}
	if err := db.Store.ReplaceOperatingHours(ctx, venue.ID, week); err != nil {
		t.Fatalf("seed operating hours: %v", err)
	}
	team, err := db.Store.CreateTeam(ctx, store.CreateTeamParams{Name: "Las Aguilas", MaxSize: 12})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	rival, err := db.Store.CreateTeam(ctx, store.CreateTeamParams{Name: "Los Tigres", MaxSize: 12})
	if err != nil {
		t.Fatalf("create rival: %v", err)
	}

	return fixture{db: db, venue: venue, court: court, team: team, rival: rival}
}

func newMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/reservations", HandleBookingCreate)
	mux.HandleFunc("GET /api/v1/reservations/{id}", HandleBookingDetail)
	mux.HandleFunc("POST /api/v1/reservations/{id}/rival", HandleRivalJoin)
	mux.HandleFunc("POST /api/v1/reservations/{id}/cancel", HandleBookingCancel)
	return mux
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleBookingCreate(t *testing.T) {
	fix := setup(t)
	mux := newMux()

	rec := postJSON(t, mux, "/api/v1/reservations", map[string]any{
		"teamId":  fix.team.ID,
		"courtId": fix.court.ID,
		"venueId": fix.venue.ID,
		"date":    futureMonday,
		"hours":   []string{"10", "11"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		OK            bool     `json:"ok"`
		ReservationID int64    `json:"reservationId"`
		Hours         []string `json:"hours"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.OK || resp.ReservationID == 0 {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Hours) != 2 {
		t.Errorf("hours = %v, want 2 labels", resp.Hours)
	}
}

func TestHandleBookingCreateConflict(t *testing.T) {
	fix := setup(t)
	mux := newMux()

	body := map[string]any{
		"teamId":  fix.team.ID,
		"courtId": fix.court.ID,
		"venueId": fix.venue.ID,
		"date":    futureMonday,
		"hours":   []string{"10"},
	}
	if rec := postJSON(t, mux, "/api/v1/reservations", body); rec.Code != http.StatusCreated {
		t.Fatalf("first booking: status = %d", rec.Code)
	}

	body["teamId"] = fix.rival.ID
	rec := postJSON(t, mux, "/api/v1/reservations", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		OK        bool     `json:"ok"`
		Conflicts []string `json:"conflicts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.OK || len(resp.Conflicts) != 1 || resp.Conflicts[0] != "10" {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandleBookingCreateBadRequest(t *testing.T) {
	fix := setup(t)
	mux := newMux()

	cases := []map[string]any{
		{"courtId": fix.court.ID, "venueId": fix.venue.ID, "date": futureMonday, "hours": []string{"10"}},
		{"teamId": fix.team.ID, "courtId": fix.court.ID, "venueId": fix.venue.ID, "date": futureMonday, "hours": []string{}},
		{"teamId": fix.team.ID, "courtId": fix.court.ID, "venueId": fix.venue.ID, "date": "bad", "hours": []string{"10"}},
		{"teamId": fix.team.ID, "courtId": fix.court.ID, "venueId": fix.venue.ID, "date": futureMonday, "hours": []string{"25"}},
	}
	for i, body := range cases {
		if rec := postJSON(t, mux, "/api/v1/reservations", body); rec.Code != http.StatusBadRequest {
			t.Errorf("case %d: status = %d, want 400; body %s", i, rec.Code, rec.Body.String())
		}
	}
}

func TestHandleRivalJoinAndCancel(t *testing.T) {
	fix := setup(t)
	mux := newMux()

	rec := postJSON(t, mux, "/api/v1/reservations", map[string]any{
		"teamId":  fix.team.ID,
		"courtId": fix.court.ID,
		"venueId": fix.venue.ID,
		"date":    futureMonday,
		"hours":   []string{"18"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("booking: status = %d", rec.Code)
	}
	var created struct {
		ReservationID int64 `json:"reservationId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	rivalPath := fmt.Sprintf("/api/v1/reservations/%d/rival", created.ReservationID)
	if rec := postJSON(t, mux, rivalPath, map[string]any{"teamId": fix.rival.ID}); rec.Code != http.StatusOK {
		t.Fatalf("rival join: status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Second rival join is rejected: the reservation is closed.
	third, err := fix.db.Store.CreateTeam(context.Background(), store.CreateTeamParams{Name: "Atletico Surco", MaxSize: 12})
	if err != nil {
		t.Fatalf("create third team: %v", err)
	}
	if rec := postJSON(t, mux, rivalPath, map[string]any{"teamId": third.ID}); rec.Code != http.StatusConflict {
		t.Fatalf("second rival join: status = %d, want 409", rec.Code)
	}

	cancelPath := fmt.Sprintf("/api/v1/reservations/%d/cancel", created.ReservationID)
	if rec := postJSON(t, mux, cancelPath, map[string]any{}); rec.Code != http.StatusOK {
		t.Fatalf("cancel: status = %d", rec.Code)
	}

	detailPath := fmt.Sprintf("/api/v1/reservations/%d", created.ReservationID)
	req := httptest.NewRequest(http.MethodGet, detailPath, nil)
	detailRec := httptest.NewRecorder()
	mux.ServeHTTP(detailRec, req)
	if detailRec.Code != http.StatusOK {
		t.Fatalf("detail: status = %d", detailRec.Code)
	}
	var detail struct {
		Active bool   `json:"active"`
		Kind   string `json:"kind"`
	}
	if err := json.Unmarshal(detailRec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.Active {
		t.Error("reservation still active after cancel")
	}
	if detail.Kind != "team_booking" {
		t.Errorf("kind = %q", detail.Kind)
	}
}

func TestHandleBookingDetailNotFound(t *testing.T) {
	setup(t)
	mux := newMux()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/404", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
