package availability

import (
	"time"

	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/model"
)

// Validation messages surfaced inline next to the offending form field.
const (
	msgBadClockFormat = "time must be in the format HH:MM"
	msgEndBeforeStart = "end time must be after start time"
	msgWindowOverlap  = "availability overlaps with another"
	msgBadTimezone    = "unknown timezone"
)

// FieldError points at one field of one submitted availability window.
// Index is the window's position in the submitted list; a timezone error
// uses Index -1 and Field "timezone".
type FieldError struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateSchedule checks a proposed weekly schedule for internal
// consistency before it is persisted. It is the only place overlap rules
// are enforced; storage accepts whatever rows it is given.
//
// An empty result means the schedule is acceptable. Errors are reported
// per window so the caller can render them inline without deduplicating:
// a true overlap between windows i and j produces an error on both.
func ValidateSchedule(timezone string, windows []model.AvailabilityWindow) []FieldError {
	var errs []FieldError

	if timezone == "" {
		errs = append(errs, FieldError{Index: -1, Field: "timezone", Message: "timezone is required"})
	} else if _, err := time.LoadLocation(timezone); err != nil {
		errs = append(errs, FieldError{Index: -1, Field: "timezone", Message: msgBadTimezone})
	}

	// Parse every window up front; windows with malformed times are
	// excluded from the range and overlap checks below.
	type parsed struct {
		ok         bool
		start, end int
	}
	ps := make([]parsed, len(windows))
	for i, w := range windows {
		var p parsed
		p.ok = true
		if start, err := model.ParseClock(w.StartTime); err != nil {
			errs = append(errs, FieldError{Index: i, Field: "startTime", Message: msgBadClockFormat})
			p.ok = false
		} else {
			p.start = start.Minutes()
		}
		if end, err := model.ParseClock(w.EndTime); err != nil {
			errs = append(errs, FieldError{Index: i, Field: "endTime", Message: msgBadClockFormat})
			p.ok = false
		} else {
			p.end = end.Minutes()
		}
		ps[i] = p
	}

	for i, w := range windows {
		if !ps[i].ok {
			continue
		}
		if ps[i].start >= ps[i].end {
			errs = append(errs, FieldError{Index: i, Field: "endTime", Message: msgEndBeforeStart})
		}

		for j, other := range windows {
			if j == i || !ps[j].ok || other.DayOfWeek != w.DayOfWeek {
				continue
			}
			// Half-open intersection on minutes-of-day.
			if ps[j].start < ps[i].end && ps[j].end > ps[i].start {
				errs = append(errs, FieldError{Index: i, Field: "startTime", Message: msgWindowOverlap})
				break
			}
		}
	}

	return errs
}
