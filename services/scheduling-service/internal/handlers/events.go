package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/model"
)

// EventStore is the persistence capability for event definitions.
type EventStore interface {
	Create(ctx context.Context, ev model.EventDefinition) (string, error)
	Update(ctx context.Context, ev model.EventDefinition) (bool, error)
	Delete(ctx context.Context, userID, eventID string) (bool, error)
	GetByID(ctx context.Context, userID, eventID string) (model.EventDefinition, bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.EventDefinition, error)
}

type EventHandler struct {
	store  EventStore
	logger *slog.Logger
}

func NewEventHandler(store EventStore, logger *slog.Logger) *EventHandler {
	return &EventHandler{store: store, logger: logger}
}

type eventRequest struct {
	EventID         string `json:"event_id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
	IsActive        *bool  `json:"is_active"`
}

type eventItem struct {
	EventID         string `json:"event_id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
	IsActive        bool   `json:"is_active"`
	CreatedAt       string `json:"created_at"`
}

func toEventItem(ev model.EventDefinition) eventItem {
	return eventItem{
		EventID:         ev.ID,
		Name:            ev.Name,
		Description:     ev.Description,
		DurationMinutes: ev.DurationMinutes,
		IsActive:        ev.IsActive,
		CreatedAt:       ev.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// validateEventRequest enforces the duration contract here, before any
// slot resolution can see the event: the engine treats a non-positive
// duration as a precondition violation, not user input.
func validateEventRequest(req *eventRequest) string {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" {
		return "name is required"
	}
	if req.DurationMinutes <= 0 {
		return "duration_minutes must be greater than 0"
	}
	if req.DurationMinutes > model.MaxEventDurationMinutes {
		return "duration_minutes must be at most 720 (12 hours)"
	}
	return ""
}

func (h *EventHandler) CreateOrList(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *EventHandler) create(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromHeader(r)
	if userID == "" {
		http.Error(w, "missing X-User-Id", http.StatusUnauthorized)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if msg := validateEventRequest(&req); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	id, err := h.store.Create(r.Context(), model.EventDefinition{
		UserID:          userID,
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		IsActive:        isActive,
	})
	if err != nil {
		h.logger.Error("event create failed", "err", err, "user_id", userID)
		http.Error(w, "failed to create event", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"event_id": id})
}

func (h *EventHandler) list(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromHeader(r)
	if userID == "" {
		http.Error(w, "missing X-User-Id", http.StatusUnauthorized)
		return
	}

	events, err := h.store.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("event list failed", "err", err, "user_id", userID)
		http.Error(w, "failed to list events", http.StatusInternalServerError)
		return
	}

	items := make([]eventItem, 0, len(events))
	for _, ev := range events {
		items = append(items, toEventItem(ev))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(items)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := userIDFromHeader(r)
	if userID == "" {
		http.Error(w, "missing X-User-Id", http.StatusUnauthorized)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.EventID = strings.TrimSpace(req.EventID)
	if req.EventID == "" {
		http.Error(w, "event_id required", http.StatusBadRequest)
		return
	}
	if msg := validateEventRequest(&req); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	current, found, err := h.store.GetByID(r.Context(), userID, req.EventID)
	if err != nil {
		h.logger.Error("event load failed", "err", err, "event_id", req.EventID)
		http.Error(w, "failed to load event", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}

	isActive := current.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	ok, err := h.store.Update(r.Context(), model.EventDefinition{
		ID:              req.EventID,
		UserID:          userID,
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		IsActive:        isActive,
	})
	if err != nil {
		h.logger.Error("event update failed", "err", err, "event_id", req.EventID)
		http.Error(w, "failed to update event", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := userIDFromHeader(r)
	if userID == "" {
		http.Error(w, "missing X-User-Id", http.StatusUnauthorized)
		return
	}

	var req struct {
		EventID string `json:"event_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.EventID = strings.TrimSpace(req.EventID)
	if req.EventID == "" {
		http.Error(w, "event_id required", http.StatusBadRequest)
		return
	}

	ok, err := h.store.Delete(r.Context(), userID, req.EventID)
	if err != nil {
		h.logger.Error("event delete failed", "err", err, "event_id", req.EventID)
		http.Error(w, "failed to delete event", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
