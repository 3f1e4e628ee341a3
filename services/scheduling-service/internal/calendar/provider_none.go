package calendar

import (
	"context"
	"time"

	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/model"
)

// NoneProvider is used when no calendar integration is configured. A
// user without a connected calendar simply has no busy intervals; this
// is distinct from a configured provider failing, which must error.
type NoneProvider struct{}

func (NoneProvider) BusyIntervals(_ context.Context, _ string, _, _ time.Time) ([]model.Interval, error) {
	return []model.Interval{}, nil
}
