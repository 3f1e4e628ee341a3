package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/availability"
	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/model"
)

// ScheduleStore is the persistence capability the schedule handler
// needs. Satisfied by storage.ScheduleRepository; tests use an in-memory
// fake.
type ScheduleStore interface {
	LoadSchedule(ctx context.Context, userID string) (model.WeeklySchedule, bool, error)
	SaveSchedule(ctx context.Context, userID string, sched model.WeeklySchedule) error
}

type ScheduleHandler struct {
	store  ScheduleStore
	logger *slog.Logger
}

func NewScheduleHandler(store ScheduleStore, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{store: store, logger: logger}
}

// The schedule payload keeps the field names of the schedule form, so
// validation errors can address fields by the names the client knows.
type availabilityItem struct {
	DayOfWeek string `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type scheduleRequest struct {
	Timezone       string             `json:"timezone"`
	Availabilities []availabilityItem `json:"availabilities"`
}

type scheduleResponse struct {
	Timezone       string             `json:"timezone"`
	Availabilities []availabilityItem `json:"availabilities"`
}

func userIDFromHeader(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := userIDFromHeader(r)
	if userID == "" {
		http.Error(w, "missing X-User-Id", http.StatusUnauthorized)
		return
	}

	sched, found, err := h.store.LoadSchedule(r.Context(), userID)
	if err != nil {
		h.logger.Error("schedule load failed", "err", err, "user_id", userID)
		http.Error(w, "failed to load schedule", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "no schedule saved", http.StatusNotFound)
		return
	}

	resp := scheduleResponse{Timezone: sched.Timezone, Availabilities: []availabilityItem{}}
	for _, win := range sched.Windows {
		resp.Availabilities = append(resp.Availabilities, availabilityItem{
			DayOfWeek: string(win.DayOfWeek),
			StartTime: win.StartTime,
			EndTime:   win.EndTime,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Save validates and replaces the caller's weekly schedule. Validation
// failures come back as structured per-field errors with status 422 so
// the form can render them inline; they are never logged as faults.
func (h *ScheduleHandler) Save(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := userIDFromHeader(r)
	if userID == "" {
		http.Error(w, "missing X-User-Id", http.StatusUnauthorized)
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Timezone = strings.TrimSpace(req.Timezone)

	windows := make([]model.AvailabilityWindow, 0, len(req.Availabilities))
	for i, item := range req.Availabilities {
		day := model.Weekday(strings.ToLower(strings.TrimSpace(item.DayOfWeek)))
		if !day.Valid() {
			writeFieldErrors(w, []availability.FieldError{{Index: i, Field: "dayOfWeek", Message: "unknown day of week"}})
			return
		}
		windows = append(windows, model.AvailabilityWindow{
			DayOfWeek: day,
			StartTime: strings.TrimSpace(item.StartTime),
			EndTime:   strings.TrimSpace(item.EndTime),
		})
	}

	if errs := availability.ValidateSchedule(req.Timezone, windows); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	sched := model.WeeklySchedule{Timezone: req.Timezone, Windows: windows}
	if err := h.store.SaveSchedule(r.Context(), userID, sched); err != nil {
		h.logger.Error("schedule save failed", "err", err, "user_id", userID)
		http.Error(w, "failed to save schedule", http.StatusInternalServerError)
		return
	}

	h.logger.Info("schedule replaced", "user_id", userID, "windows", len(windows))
	w.WriteHeader(http.StatusNoContent)
}

func writeFieldErrors(w http.ResponseWriter, errs []availability.FieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	_ = json.NewEncoder(w).Encode(map[string]any{"errors": errs})
}
