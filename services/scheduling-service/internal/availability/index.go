package availability

import (
	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/model"
)

// Index groups a schedule's windows by weekday so each candidate only
// touches its own day's windows. Build it once per resolution call.
type Index map[model.Weekday][]model.AvailabilityWindow

func BuildIndex(windows []model.AvailabilityWindow) Index {
	idx := make(Index, len(model.WeekdaysInOrder))
	for _, w := range windows {
		idx[w.DayOfWeek] = append(idx[w.DayOfWeek], w)
	}
	return idx
}

// ForDay returns the windows on one weekday, nil if the day has none.
func (idx Index) ForDay(d model.Weekday) []model.AvailabilityWindow {
	return idx[d]
}
