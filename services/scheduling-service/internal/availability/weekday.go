package availability

import (
	"time"

	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/model"
)

// WeekdayAt returns the weekday of an instant as seen on the wall clock
// in loc. The local calendar date decides the weekday, not the UTC date:
// 01:00Z on a Tuesday is still Monday evening in New York.
func WeekdayAt(t time.Time, loc *time.Location) model.Weekday {
	return model.WeekdayOf(t.In(loc).Weekday())
}
