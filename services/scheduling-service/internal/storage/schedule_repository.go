package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/slotsmith/slotsmith/libs/db"
	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/model"
	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/outbox"
)

type ScheduleRepository struct {
	pool       *db.Pool
	outboxRepo *outbox.Repository
}

func NewScheduleRepository(pool *db.Pool, outboxRepo *outbox.Repository) *ScheduleRepository {
	return &ScheduleRepository{pool: pool, outboxRepo: outboxRepo}
}

// LoadSchedule returns the user's weekly schedule. The second return is
// false when the user has never saved one; that is a normal condition,
// not an error.
func (r *ScheduleRepository) LoadSchedule(ctx context.Context, userID string) (model.WeeklySchedule, bool, error) {
	var scheduleID, timezone string
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, timezone
		FROM schedules
		WHERE user_id = $1
	`, userID).Scan(&scheduleID, &timezone)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.WeeklySchedule{}, false, nil
	}
	if err != nil {
		return model.WeeklySchedule{}, false, fmt.Errorf("load schedule for user %s: %w", userID, err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT day_of_week, start_time, end_time
		FROM schedule_availabilities
		WHERE schedule_id = $1
		ORDER BY id
	`, scheduleID)
	if err != nil {
		return model.WeeklySchedule{}, false, fmt.Errorf("load availabilities for user %s: %w", userID, err)
	}
	defer rows.Close()

	sched := model.WeeklySchedule{Timezone: timezone}
	for rows.Next() {
		var w model.AvailabilityWindow
		var day string
		if err := rows.Scan(&day, &w.StartTime, &w.EndTime); err != nil {
			return model.WeeklySchedule{}, false, err
		}
		w.DayOfWeek = model.Weekday(day)
		sched.Windows = append(sched.Windows, w)
	}
	if rows.Err() != nil {
		return model.WeeklySchedule{}, false, rows.Err()
	}
	return sched, true, nil
}

// SaveSchedule replaces the user's schedule wholesale: the schedule row
// is upserted, then every availability row is deleted and the submitted
// set inserted, all in one transaction together with the outbox event.
// Callers must have validated the schedule first; storage itself does
// not reject overlapping windows.
func (r *ScheduleRepository) SaveSchedule(ctx context.Context, userID string, sched model.WeeklySchedule) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var scheduleID string
	err = tx.QueryRow(ctx, `
		INSERT INTO schedules (user_id, timezone)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET timezone = EXCLUDED.timezone,
			updated_at = now()
		RETURNING id::text
	`, userID, sched.Timezone).Scan(&scheduleID)
	if err != nil {
		return fmt.Errorf("upsert schedule for user %s: %w", userID, err)
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM schedule_availabilities
		WHERE schedule_id = $1
	`, scheduleID); err != nil {
		return fmt.Errorf("clear availabilities for user %s: %w", userID, err)
	}

	for _, w := range sched.Windows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO schedule_availabilities (schedule_id, day_of_week, start_time, end_time)
			VALUES ($1, $2, $3, $4)
		`, scheduleID, string(w.DayOfWeek), w.StartTime, w.EndTime); err != nil {
			return fmt.Errorf("insert availability for user %s: %w", userID, err)
		}
	}

	payload, err := json.Marshal(map[string]any{
		"user_id":      userID,
		"timezone":     sched.Timezone,
		"window_count": len(sched.Windows),
		"replaced_at":  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	if err := r.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "schedule",
		AggregateID:   userID,
		EventType:     outbox.TypeScheduleReplaced,
		Payload:       payload,
	}); err != nil {
		return fmt.Errorf("enqueue schedule event for user %s: %w", userID, err)
	}

	return tx.Commit(ctx)
}
