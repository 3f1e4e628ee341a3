package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/availability"
	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/calendar"
	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/model"
)

// ScheduleStore loads a user's saved weekly schedule. The found flag is
// false when the user has none; that is "nothing bookable", not a fault.
type ScheduleStore interface {
	LoadSchedule(ctx context.Context, userID string) (model.WeeklySchedule, bool, error)
}

// Event identifies whose availability is being queried and how long the
// prospective booking runs.
type Event struct {
	UserID          string
	DurationMinutes int
}

// Service resolves candidate start instants against a user's schedule
// and external calendar. Stateless; safe for concurrent use.
type Service struct {
	store    ScheduleStore
	calendar calendar.Provider
	logger   *slog.Logger
}

func New(store ScheduleStore, provider calendar.Provider, logger *slog.Logger) *Service {
	return &Service{store: store, calendar: provider, logger: logger}
}

// ResolveValidSlots returns the subsequence of candidates that are fully
// bookable for the event. Busy intervals are fetched from the calendar
// provider exactly once, spanning all candidates; if that fetch or the
// schedule load fails the whole call fails, because a silently empty
// busy set would offer slots that are already taken.
func (s *Service) ResolveValidSlots(ctx context.Context, candidates []time.Time, ev Event) ([]time.Time, error) {
	if ev.DurationMinutes <= 0 {
		return nil, fmt.Errorf("event duration must be positive, got %d", ev.DurationMinutes)
	}
	if len(candidates) == 0 {
		return []time.Time{}, nil
	}
	duration := time.Duration(ev.DurationMinutes) * time.Minute

	sched, found, err := s.store.LoadSchedule(ctx, ev.UserID)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	if !found {
		s.logger.Debug("no schedule saved, nothing bookable", "user_id", ev.UserID)
		return []time.Time{}, nil
	}

	rangeStart := candidates[0]
	rangeEnd := candidates[len(candidates)-1].Add(duration)
	busy, err := s.calendar.BusyIntervals(ctx, ev.UserID, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("fetch busy intervals: %w", err)
	}

	valid, err := availability.ValidTimes(candidates, sched, duration, busy)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("resolved slots",
		"user_id", ev.UserID,
		"candidates", len(candidates),
		"valid", len(valid),
		"busy", len(busy),
	)
	return valid, nil
}
