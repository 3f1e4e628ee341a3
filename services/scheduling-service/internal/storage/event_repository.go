package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/slotsmith/slotsmith/libs/db"
	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/model"
	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/outbox"
)

type EventRepository struct {
	pool       *db.Pool
	outboxRepo *outbox.Repository
}

func NewEventRepository(pool *db.Pool, outboxRepo *outbox.Repository) *EventRepository {
	return &EventRepository{pool: pool, outboxRepo: outboxRepo}
}

func (r *EventRepository) Create(ctx context.Context, ev model.EventDefinition) (string, error) {
	id := uuid.NewString()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO events (id, user_id, name, description, duration_minutes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, ev.UserID, ev.Name, ev.Description, ev.DurationMinutes, ev.IsActive)
	if err != nil {
		return "", fmt.Errorf("insert event for user %s: %w", ev.UserID, err)
	}

	if err := r.insertOutbox(ctx, tx, outbox.TypeEventCreated, id, ev); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (r *EventRepository) Update(ctx context.Context, ev model.EventDefinition) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE events
		SET name = $3,
			description = $4,
			duration_minutes = $5,
			is_active = $6,
			updated_at = now()
		WHERE id = $1 AND user_id = $2
	`, ev.ID, ev.UserID, ev.Name, ev.Description, ev.DurationMinutes, ev.IsActive)
	if err != nil {
		return false, fmt.Errorf("update event %s: %w", ev.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if err := r.insertOutbox(ctx, tx, outbox.TypeEventUpdated, ev.ID, ev); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (r *EventRepository) Delete(ctx context.Context, userID, eventID string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		DELETE FROM events
		WHERE id = $1 AND user_id = $2
	`, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("delete event %s: %w", eventID, err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	payload, err := json.Marshal(map[string]any{"event_id": eventID, "user_id": userID})
	if err != nil {
		return false, err
	}
	if err := r.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "event",
		AggregateID:   eventID,
		EventType:     outbox.TypeEventDeleted,
		Payload:       payload,
	}); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (r *EventRepository) GetByID(ctx context.Context, userID, eventID string) (model.EventDefinition, bool, error) {
	var ev model.EventDefinition
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, user_id, name, description, duration_minutes, is_active, created_at
		FROM events
		WHERE id = $1 AND user_id = $2
	`, eventID, userID).Scan(&ev.ID, &ev.UserID, &ev.Name, &ev.Description, &ev.DurationMinutes, &ev.IsActive, &ev.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.EventDefinition{}, false, nil
	}
	if err != nil {
		return model.EventDefinition{}, false, fmt.Errorf("load event %s: %w", eventID, err)
	}
	return ev, true, nil
}

// GetActive is the public booking page lookup: inactive events are
// invisible there regardless of ownership.
func (r *EventRepository) GetActive(ctx context.Context, userID, eventID string) (model.EventDefinition, bool, error) {
	ev, found, err := r.GetByID(ctx, userID, eventID)
	if err != nil || !found {
		return model.EventDefinition{}, false, err
	}
	if !ev.IsActive {
		return model.EventDefinition{}, false, nil
	}
	return ev, true, nil
}

func (r *EventRepository) ListByUser(ctx context.Context, userID string) ([]model.EventDefinition, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, user_id, name, description, duration_minutes, is_active, created_at
		FROM events
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list events for user %s: %w", userID, err)
	}
	defer rows.Close()

	var out []model.EventDefinition
	for rows.Next() {
		var ev model.EventDefinition
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.Name, &ev.Description, &ev.DurationMinutes, &ev.IsActive, &ev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *EventRepository) insertOutbox(ctx context.Context, tx pgx.Tx, eventType, eventID string, ev model.EventDefinition) error {
	payload, err := json.Marshal(map[string]any{
		"event_id":         eventID,
		"user_id":          ev.UserID,
		"name":             ev.Name,
		"duration_minutes": ev.DurationMinutes,
		"is_active":        ev.IsActive,
	})
	if err != nil {
		return err
	}
	return r.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "event",
		AggregateID:   eventID,
		EventType:     eventType,
		Payload:       payload,
	})
}
