package model

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		mins    int
		wantErr bool
	}{
		{"09:00", 540, false},
		{"9:05", 545, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"1200", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
		{"9:5", 0, true},
	}
	for _, tc := range cases {
		c, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseClock(%q) should fail", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseClock(%q) failed: %v", tc.in, err)
		}
		if c.Minutes() != tc.mins {
			t.Fatalf("ParseClock(%q) = %d minutes, want %d", tc.in, c.Minutes(), tc.mins)
		}
	}
}

func TestWeekdayOf(t *testing.T) {
	if WeekdayOf(time.Monday) != Monday {
		t.Fatal("time.Monday should map to monday")
	}
	if WeekdayOf(time.Sunday) != Sunday {
		t.Fatal("time.Sunday should map to sunday")
	}
	if len(WeekdaysInOrder) != 7 {
		t.Fatalf("expected 7 weekdays, got %d", len(WeekdaysInOrder))
	}
	for _, d := range WeekdaysInOrder {
		if !d.Valid() {
			t.Fatalf("weekday %q should be valid", d)
		}
	}
	if Weekday("funday").Valid() {
		t.Fatal("funday should not be a valid weekday")
	}
}

func TestIntervalOverlapsAndContains(t *testing.T) {
	base := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)
	iv := Interval{Start: base, End: base.Add(time.Hour)}

	if !iv.Overlaps(Interval{Start: base.Add(30 * time.Minute), End: base.Add(90 * time.Minute)}) {
		t.Fatal("partially intersecting intervals should overlap")
	}
	// Touching at a boundary is not an overlap (half-open semantics).
	if iv.Overlaps(Interval{Start: base.Add(time.Hour), End: base.Add(2 * time.Hour)}) {
		t.Fatal("boundary touch should not count as overlap")
	}
	if iv.Overlaps(Interval{Start: base.Add(-time.Hour), End: base}) {
		t.Fatal("boundary touch on the left should not count as overlap")
	}

	if !iv.Contains(Interval{Start: base, End: base.Add(time.Hour)}) {
		t.Fatal("interval should contain itself")
	}
	if iv.Contains(Interval{Start: base, End: base.Add(61 * time.Minute)}) {
		t.Fatal("interval should not contain a longer one")
	}
}
