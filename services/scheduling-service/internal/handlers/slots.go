package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/model"
	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/resolver"
)

// maxPublicRange caps how far a single public slot query may span.
const maxPublicRange = 60 * 24 * time.Hour

const defaultStepMinutes = 15

// SlotResolver resolves candidate instants to bookable ones.
type SlotResolver interface {
	ResolveValidSlots(ctx context.Context, candidates []time.Time, ev resolver.Event) ([]time.Time, error)
}

// PublicEventStore looks up events visible on public booking pages.
type PublicEventStore interface {
	GetActive(ctx context.Context, userID, eventID string) (model.EventDefinition, bool, error)
}

type SlotHandler struct {
	resolver SlotResolver
	events   PublicEventStore
	logger   *slog.Logger
	now      func() time.Time
}

func NewSlotHandler(res SlotResolver, events PublicEventStore, logger *slog.Logger) *SlotHandler {
	return &SlotHandler{resolver: res, events: events, logger: logger, now: time.Now}
}

type resolveRequest struct {
	UserID          string   `json:"user_id"`
	DurationMinutes int      `json:"duration_minutes"`
	Candidates      []string `json:"candidates"`
}

type slotItem struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Resolve filters an explicit candidate list. The response is a
// subsequence of the request's candidates in their original order.
func (h *SlotHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}
	if req.DurationMinutes <= 0 || req.DurationMinutes > model.MaxEventDurationMinutes {
		http.Error(w, "duration_minutes must be between 1 and 720", http.StatusBadRequest)
		return
	}

	candidates := make([]time.Time, 0, len(req.Candidates))
	for _, raw := range req.Candidates {
		c, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "candidates must be RFC3339 timestamps", http.StatusBadRequest)
			return
		}
		candidates = append(candidates, c)
	}

	valid, err := h.resolver.ResolveValidSlots(r.Context(), candidates, resolver.Event{
		UserID:          req.UserID,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		// A collaborator failure must not read as "no times available".
		h.logger.Error("slot resolution failed", "err", err, "user_id", req.UserID)
		http.Error(w, "failed to resolve slots", http.StatusBadGateway)
		return
	}

	out := make([]string, 0, len(valid))
	for _, v := range valid {
		out = append(out, v.UTC().Format(time.RFC3339))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"valid_times": out})
}

// PublicSlots serves booking pages: it generates a candidate grid over
// the requested range for an active event and resolves it.
func (h *SlotHandler) PublicSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	userID := strings.TrimSpace(q.Get("user_id"))
	eventID := strings.TrimSpace(q.Get("event_id"))
	if userID == "" || eventID == "" {
		http.Error(w, "user_id and event_id are required", http.StatusBadRequest)
		return
	}

	rangeStart, err := time.Parse(time.RFC3339, strings.TrimSpace(q.Get("start")))
	if err != nil {
		http.Error(w, "invalid start", http.StatusBadRequest)
		return
	}
	rangeEnd, err := time.Parse(time.RFC3339, strings.TrimSpace(q.Get("end")))
	if err != nil {
		http.Error(w, "invalid end", http.StatusBadRequest)
		return
	}
	if !rangeEnd.After(rangeStart) {
		http.Error(w, "end must be after start", http.StatusBadRequest)
		return
	}
	if rangeEnd.Sub(rangeStart) > maxPublicRange {
		http.Error(w, "range too large", http.StatusBadRequest)
		return
	}

	step := time.Duration(defaultStepMinutes) * time.Minute
	if raw := strings.TrimSpace(q.Get("step_minutes")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 120 {
			http.Error(w, "invalid step_minutes", http.StatusBadRequest)
			return
		}
		step = time.Duration(n) * time.Minute
	}

	ev, found, err := h.events.GetActive(r.Context(), userID, eventID)
	if err != nil {
		h.logger.Error("event lookup failed", "err", err, "event_id", eventID)
		http.Error(w, "failed to load event", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}

	candidates := candidateGrid(rangeStart, rangeEnd, step, ev.Duration(), h.now())

	valid, err := h.resolver.ResolveValidSlots(r.Context(), candidates, resolver.Event{
		UserID:          userID,
		DurationMinutes: ev.DurationMinutes,
	})
	if err != nil {
		h.logger.Error("slot resolution failed", "err", err, "user_id", userID, "event_id", eventID)
		http.Error(w, "failed to resolve slots", http.StatusBadGateway)
		return
	}

	items := make([]slotItem, 0, len(valid))
	for _, v := range valid {
		items = append(items, slotItem{
			StartTime: v.UTC().Format(time.RFC3339),
			EndTime:   v.Add(ev.Duration()).UTC().Format(time.RFC3339),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(items)
}

// candidateGrid produces start instants on a fixed step whose full
// occupied interval fits inside [start, end). Past instants are skipped;
// nobody can book a meeting that has already begun.
func candidateGrid(start, end time.Time, step, duration time.Duration, now time.Time) []time.Time {
	var out []time.Time
	for c := start; !c.Add(duration).After(end); c = c.Add(step) {
		if c.Before(now) {
			continue
		}
		out = append(out, c)
	}
	return out
}
