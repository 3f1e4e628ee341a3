package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/availability"
	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/model"
)

type fakeScheduleStore struct {
	sched     model.WeeklySchedule
	found     bool
	loadErr   error
	saveErr   error
	saved     model.WeeklySchedule
	saveCalls int
}

func (f *fakeScheduleStore) LoadSchedule(_ context.Context, _ string) (model.WeeklySchedule, bool, error) {
	return f.sched, f.found, f.loadErr
}

func (f *fakeScheduleStore) SaveSchedule(_ context.Context, _ string, sched model.WeeklySchedule) error {
	f.saveCalls++
	f.saved = sched
	return f.saveErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func doJSON(t *testing.T, h http.HandlerFunc, method, target, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestScheduleSave_ReplacesWholesale(t *testing.T) {
	store := &fakeScheduleStore{}
	h := NewScheduleHandler(store, discardLogger())

	body := `{
		"timezone": "America/New_York",
		"availabilities": [
			{"dayOfWeek": "monday", "startTime": "09:00", "endTime": "12:00"},
			{"dayOfWeek": "monday", "startTime": "13:00", "endTime": "17:00"}
		]
	}`
	rec := doJSON(t, h.Save, http.MethodPut, "/api/v1/schedule", "u1", body)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if store.saveCalls != 1 {
		t.Fatalf("expected 1 save, got %d", store.saveCalls)
	}
	if store.saved.Timezone != "America/New_York" || len(store.saved.Windows) != 2 {
		t.Fatalf("unexpected saved schedule: %+v", store.saved)
	}
	if store.saved.Windows[1].StartTime != "13:00" {
		t.Fatalf("window order not preserved: %+v", store.saved.Windows)
	}
}

func TestScheduleSave_OverlapFlagsBothWindows(t *testing.T) {
	store := &fakeScheduleStore{}
	h := NewScheduleHandler(store, discardLogger())

	body := `{
		"timezone": "UTC",
		"availabilities": [
			{"dayOfWeek": "tuesday", "startTime": "09:00", "endTime": "11:00"},
			{"dayOfWeek": "tuesday", "startTime": "10:00", "endTime": "12:00"}
		]
	}`
	rec := doJSON(t, h.Save, http.MethodPut, "/api/v1/schedule", "u1", body)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if store.saveCalls != 0 {
		t.Fatal("invalid schedule must not be saved")
	}

	var resp struct {
		Errors []availability.FieldError `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	flagged := map[int]bool{}
	for _, fe := range resp.Errors {
		if fe.Field == "startTime" {
			flagged[fe.Index] = true
		}
	}
	if !flagged[0] || !flagged[1] {
		t.Fatalf("both overlapping windows must be flagged on startTime, got %+v", resp.Errors)
	}
}

func TestScheduleSave_EndBeforeStartMessage(t *testing.T) {
	h := NewScheduleHandler(&fakeScheduleStore{}, discardLogger())

	body := `{
		"timezone": "UTC",
		"availabilities": [
			{"dayOfWeek": "friday", "startTime": "17:00", "endTime": "09:00"}
		]
	}`
	rec := doJSON(t, h.Save, http.MethodPut, "/api/v1/schedule", "u1", body)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Errors []availability.FieldError `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Errors) != 1 {
		t.Fatalf("expected one error, got %+v", resp.Errors)
	}
	fe := resp.Errors[0]
	if fe.Index != 0 || fe.Field != "endTime" || fe.Message != "end time must be after start time" {
		t.Fatalf("unexpected error: %+v", fe)
	}
}

func TestScheduleSave_UnknownDayRejected(t *testing.T) {
	h := NewScheduleHandler(&fakeScheduleStore{}, discardLogger())

	body := `{
		"timezone": "UTC",
		"availabilities": [
			{"dayOfWeek": "someday", "startTime": "09:00", "endTime": "10:00"}
		]
	}`
	rec := doJSON(t, h.Save, http.MethodPut, "/api/v1/schedule", "u1", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestScheduleSave_RequiresUser(t *testing.T) {
	h := NewScheduleHandler(&fakeScheduleStore{}, discardLogger())

	rec := doJSON(t, h.Save, http.MethodPut, "/api/v1/schedule", "", `{"timezone":"UTC"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestScheduleSave_StoreFailure(t *testing.T) {
	store := &fakeScheduleStore{saveErr: errors.New("db down")}
	h := NewScheduleHandler(store, discardLogger())

	body := `{"timezone": "UTC", "availabilities": []}`
	rec := doJSON(t, h.Save, http.MethodPut, "/api/v1/schedule", "u1", body)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestScheduleGet_Found(t *testing.T) {
	store := &fakeScheduleStore{
		found: true,
		sched: model.WeeklySchedule{
			Timezone: "Europe/Berlin",
			Windows: []model.AvailabilityWindow{
				{DayOfWeek: model.Wednesday, StartTime: "08:30", EndTime: "16:00"},
			},
		},
	}
	h := NewScheduleHandler(store, discardLogger())

	rec := doJSON(t, h.Get, http.MethodGet, "/api/v1/schedule", "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp scheduleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Timezone != "Europe/Berlin" || len(resp.Availabilities) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Availabilities[0].DayOfWeek != "wednesday" || resp.Availabilities[0].StartTime != "08:30" {
		t.Fatalf("unexpected window: %+v", resp.Availabilities[0])
	}
}

func TestScheduleGet_NotFound(t *testing.T) {
	h := NewScheduleHandler(&fakeScheduleStore{found: false}, discardLogger())

	rec := doJSON(t, h.Get, http.MethodGet, "/api/v1/schedule", "u1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
