package blocks

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/store"
	"github.com/courtsidehq/courtside/internal/testutil"
)

func setup(t *testing.T) store.Court {
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
		week = append(week, store.OperatingHours{VenueID: venue.ID, DayOfWeek: day, OpenHour: 8, CloseHour: 22})
	}
	if err := db.Store.ReplaceOperatingHours(ctx, venue.ID, week); err != nil {
		t.Fatalf("seed operating hours: %v", err)
	}
	return court
}

func post(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/blocks", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

type blockResponse struct {
	OK      bool                  `json:"ok"`
	Results []booking.BlockResult `json:"results"`
	Failed  int                   `json:"failed"`
}

func TestHandleBlockApplyAndRemove(t *testing.T) {
	court := setup(t)

	body := map[string]any{
		"courtIds":   []int64{court.ID},
		"dateFrom":   "2030-01-07",
		"dateTo":     "2030-01-07",
		"timeStart":  "10:00",
		"timeEnd":    "12:00",
		"daysOfWeek": []int{1},
	}
	rec := post(t, HandleBlockApply, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("apply: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp blockResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.OK || resp.Failed != 0 || len(resp.Results) != 1 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Results[0].Created != 2 {
		t.Errorf("created = %d, want 2", resp.Results[0].Created)
	}

	rec = post(t, HandleBlockRemove, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove: status = %d", rec.Code)
	}
	resp = blockResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Results[0].Removed != 2 {
		t.Errorf("removed = %d, want 2", resp.Results[0].Removed)
	}
}

func TestHandleBlockApplyLegacyCourtKey(t *testing.T) {
	court := setup(t)

	rec := post(t, HandleBlockApply, map[string]any{
		"canchaIds":  []int64{court.ID},
		"dateFrom":   "2030-01-07",
		"dateTo":     "2030-01-07",
		"timeStart":  "10:00",
		"timeEnd":    "11:00",
		"daysOfWeek": []int{1},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestHandleBlockApplyValidation(t *testing.T) {
	court := setup(t)

	rec := post(t, HandleBlockApply, map[string]any{
		"courtIds":   []int64{court.ID},
		"dateFrom":   "2030-01-07",
		"dateTo":     "2030-01-07",
		"timeStart":  "10:30",
		"timeEnd":    "12:00",
		"daysOfWeek": []int{1},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
	}
}
