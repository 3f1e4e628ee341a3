package availability

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/model"
)

var errNonPositiveDuration = errors.New("duration must be positive")

// Candidate sets at least this large are evaluated across workers.
// Evaluation is pure per candidate, so only the output order matters.
const parallelThreshold = 64

// ValidTimes filters candidate start instants against a weekly schedule
// and a set of busy intervals. A candidate is kept iff its occupied
// interval [c, c+duration) fits fully inside at least one availability
// window projected onto the candidate's local calendar date, and
// overlaps none of the busy intervals.
//
// The result is a subsequence of candidates in input order, never
// reordered or deduplicated. An empty candidate list yields an empty
// result; schedule absence is the caller's case to handle before calling.
func ValidTimes(candidates []time.Time, sched model.WeeklySchedule, duration time.Duration, busy []model.Interval) ([]time.Time, error) {
	if duration <= 0 {
		return nil, errNonPositiveDuration
	}
	if len(candidates) == 0 {
		return []time.Time{}, nil
	}

	loc, err := time.LoadLocation(sched.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load schedule timezone %q: %w", sched.Timezone, err)
	}

	idx := BuildIndex(sched.Windows)

	keep := make([]bool, len(candidates))
	if len(candidates) >= parallelThreshold {
		evalParallel(candidates, keep, idx, loc, duration, busy)
	} else {
		for i, c := range candidates {
			keep[i] = bookable(c, idx, loc, duration, busy)
		}
	}

	valid := make([]time.Time, 0, len(candidates))
	for i, c := range candidates {
		if keep[i] {
			valid = append(valid, c)
		}
	}
	return valid, nil
}

func evalParallel(candidates []time.Time, keep []bool, idx Index, loc *time.Location, duration time.Duration, busy []model.Interval) {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(candidates) {
		workers = len(candidates)
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indices {
				keep[i] = bookable(candidates[i], idx, loc, duration, busy)
			}
		}()
	}
	for i := range candidates {
		indices <- i
	}
	close(indices)
	wg.Wait()
}

// bookable evaluates one candidate. The weekday of the candidate's own
// start instant picks the windows; occupied intervals that straddle
// local midnight can never fit, because windows do not span midnight.
func bookable(c time.Time, idx Index, loc *time.Location, duration time.Duration, busy []model.Interval) bool {
	occupied := model.Interval{Start: c, End: c.Add(duration)}

	windows := idx.ForDay(WeekdayAt(c, loc))
	if len(windows) == 0 {
		return false
	}

	contained := false
	for _, w := range windows {
		projected, err := ProjectWindow(w, c, loc)
		if err != nil {
			continue
		}
		if projected.Contains(occupied) {
			contained = true
			break
		}
	}
	if !contained {
		return false
	}

	for _, b := range busy {
		if b.Overlaps(occupied) {
			return false
		}
	}
	return true
}
