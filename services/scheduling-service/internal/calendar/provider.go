package calendar

import (
	"context"
	"time"

	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/model"
)

// Provider supplies the busy intervals already committed on a user's
// external calendar. A provider failure must propagate to the caller:
// treating it as "no busy intervals" would offer slots that are in fact
// taken.
type Provider interface {
	BusyIntervals(ctx context.Context, userID string, start, end time.Time) ([]model.Interval, error)
}
