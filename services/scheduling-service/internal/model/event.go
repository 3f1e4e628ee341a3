package model

import "time"

// MaxEventDurationMinutes caps event length at 12 hours.
const MaxEventDurationMinutes = 12 * 60

// EventDefinition is a bookable event type a user offers (e.g. "30 minute
// intro call"). Only active events are visible on public booking pages.
type EventDefinition struct {
	ID              string
	UserID          string
	Name            string
	Description     string
	DurationMinutes int
	IsActive        bool
	CreatedAt       time.Time
}

// Duration returns the event length as a time.Duration.
func (e EventDefinition) Duration() time.Duration {
	return time.Duration(e.DurationMinutes) * time.Minute
}
