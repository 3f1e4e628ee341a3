package availability

import (
	"testing"
	"time"

	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/model"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func TestInstantAt_DSTOffsets(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	clock := model.Clock{Hour: 9, Minute: 0}

	// Standard time (EST, UTC-5): 09:00 local is 14:00Z.
	winter := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	got := InstantAt(winter, clock, ny)
	if want := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("winter projection = %s, want %s", got.UTC(), want)
	}

	// Daylight time (EDT, UTC-4): the same wall clock is 13:00Z.
	summer := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	got = InstantAt(summer, clock, ny)
	if want := time.Date(2024, 6, 3, 13, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("summer projection = %s, want %s", got.UTC(), want)
	}
}

func TestInstantAt_RoundTrip(t *testing.T) {
	zones := []string{"America/New_York", "Europe/Berlin", "Asia/Kolkata", "Pacific/Auckland", "UTC"}
	dates := []time.Time{
		time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), // US spring-forward day
		time.Date(2024, 11, 3, 12, 0, 0, 0, time.UTC), // US fall-back day
		time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC),
	}
	clocks := []model.Clock{{Hour: 0, Minute: 0}, {Hour: 9, Minute: 30}, {Hour: 17, Minute: 0}, {Hour: 23, Minute: 59}}

	for _, zone := range zones {
		loc := mustLoad(t, zone)
		for _, date := range dates {
			for _, clock := range clocks {
				instant := InstantAt(date, clock, loc)
				local := instant.In(loc)
				if local.Hour() != clock.Hour || local.Minute() != clock.Minute {
					t.Fatalf("%s %s in %s read back as %02d:%02d", date.Format("2006-01-02"), clock, zone, local.Hour(), local.Minute())
				}
			}
		}
	}
}

func TestProjectWindow(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	ref := time.Date(2024, 6, 3, 13, 0, 0, 0, time.UTC) // Monday morning in NY

	iv, err := ProjectWindow(window(model.Monday, "09:00", "17:00"), ref, ny)
	if err != nil {
		t.Fatalf("ProjectWindow failed: %v", err)
	}
	if !iv.Start.Equal(time.Date(2024, 6, 3, 13, 0, 0, 0, time.UTC)) {
		t.Fatalf("projected start = %s", iv.Start.UTC())
	}
	if !iv.End.Equal(time.Date(2024, 6, 3, 21, 0, 0, 0, time.UTC)) {
		t.Fatalf("projected end = %s", iv.End.UTC())
	}
	if !iv.Start.Before(iv.End) {
		t.Fatal("projected interval must keep start < end")
	}

	if _, err := ProjectWindow(window(model.Monday, "bogus", "17:00"), ref, ny); err == nil {
		t.Fatal("malformed start time should fail projection")
	}
}

func TestWeekdayAt_LocalDateDecides(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	// 01:00Z Tuesday is Monday 21:00 in New York.
	late := time.Date(2024, 6, 4, 1, 0, 0, 0, time.UTC)
	if d := WeekdayAt(late, ny); d != model.Monday {
		t.Fatalf("expected monday, got %s", d)
	}
	if d := WeekdayAt(late, time.UTC); d != model.Tuesday {
		t.Fatalf("expected tuesday in UTC, got %s", d)
	}

	// The weekday must stay correct on a DST transition day.
	springForward := time.Date(2024, 3, 10, 7, 30, 0, 0, time.UTC) // Sunday 03:30 EDT
	if d := WeekdayAt(springForward, ny); d != model.Sunday {
		t.Fatalf("expected sunday on transition day, got %s", d)
	}
}

func TestBuildIndex(t *testing.T) {
	idx := BuildIndex([]model.AvailabilityWindow{
		window(model.Monday, "09:00", "12:00"),
		window(model.Monday, "13:00", "17:00"),
		window(model.Friday, "10:00", "16:00"),
	})
	if got := len(idx.ForDay(model.Monday)); got != 2 {
		t.Fatalf("expected 2 monday windows, got %d", got)
	}
	if got := len(idx.ForDay(model.Friday)); got != 1 {
		t.Fatalf("expected 1 friday window, got %d", got)
	}
	if idx.ForDay(model.Sunday) != nil {
		t.Fatal("expected nil for a day without windows")
	}
}
