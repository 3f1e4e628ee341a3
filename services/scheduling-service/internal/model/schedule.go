package model

import (
	"fmt"
	"regexp"
	"time"
)

// Weekday is the closed set of day-of-week labels a recurring
// availability window can be attached to. Values match what the API and
// the schedule_availabilities table store.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// WeekdaysInOrder lists all weekdays starting from Monday, the order the
// schedule editor presents them in.
var WeekdaysInOrder = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (d Weekday) Valid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

// WeekdayOf maps a stdlib weekday to its label.
func WeekdayOf(d time.Weekday) Weekday {
	switch d {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// clockPattern accepts H:MM and HH:MM with hour 0-23 and minute 0-59.
var clockPattern = regexp.MustCompile(`^([0-9]|0[0-9]|1[0-9]|2[0-3]):([0-5][0-9])$`)

// Clock is a local wall-clock time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses an "HH:MM" string. A single-digit hour is accepted.
func ParseClock(s string) (Clock, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return Clock{}, fmt.Errorf("invalid clock time %q", s)
	}
	var c Clock
	for _, ch := range m[1] {
		c.Hour = c.Hour*10 + int(ch-'0')
	}
	for _, ch := range m[2] {
		c.Minute = c.Minute*10 + int(ch-'0')
	}
	return c, nil
}

// Minutes returns the minute-of-day, used for window ordering and
// overlap comparisons.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// AvailabilityWindow is one recurring local time range on one weekday.
// StartTime and EndTime keep the submitted "HH:MM" strings; they are
// parsed where minute arithmetic is needed.
type AvailabilityWindow struct {
	DayOfWeek Weekday
	StartTime string
	EndTime   string
}

// WeeklySchedule is a user's full recurring availability. It is replaced
// wholesale on every save; windows are never patched individually.
type WeeklySchedule struct {
	Timezone string
	Windows  []AvailabilityWindow
}

// Interval is a half-open absolute time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect. Touching
// at a boundary is not an overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return other.Start.Before(iv.End) && other.End.After(iv.Start)
}

// Contains reports whether other lies fully inside iv.
func (iv Interval) Contains(other Interval) bool {
	return !other.Start.Before(iv.Start) && !other.End.After(iv.End)
}
