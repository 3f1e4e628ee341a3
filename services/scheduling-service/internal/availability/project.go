package availability

import (
	"fmt"
	"time"

	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/model"
)

// InstantAt converts a wall-clock time on the local calendar date of ref
// into an absolute instant. The offset in effect in loc on that specific
// date applies, so "09:00" in America/New_York is 14:00Z in winter and
// 13:00Z in summer.
func InstantAt(ref time.Time, clock model.Clock, loc *time.Location) time.Time {
	y, m, d := ref.In(loc).Date()
	return time.Date(y, m, d, clock.Hour, clock.Minute, 0, 0, loc)
}

// ProjectWindow materializes one availability window onto the local
// calendar date of ref. Window times must already be validated; a
// malformed time here is a programming error.
func ProjectWindow(w model.AvailabilityWindow, ref time.Time, loc *time.Location) (model.Interval, error) {
	start, err := model.ParseClock(w.StartTime)
	if err != nil {
		return model.Interval{}, fmt.Errorf("window start time: %w", err)
	}
	end, err := model.ParseClock(w.EndTime)
	if err != nil {
		return model.Interval{}, fmt.Errorf("window end time: %w", err)
	}
	return model.Interval{
		Start: InstantAt(ref, start, loc),
		End:   InstantAt(ref, end, loc),
	}, nil
}
