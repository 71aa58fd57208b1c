package period

import (
	"errors"
	"testing"
	"time"
)

var tokyo = mustLoadLocation("Asia/Tokyo")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func TestMonthBoundsInclusiveEnd(t *testing.T) {
	bounds, err := MonthBounds(tokyo, 2024, 2)
	if err != nil {
		t.Fatalf("MonthBounds: %v", err)
	}

	wantStart := time.Date(2024, 2, 1, 0, 0, 0, 0, tokyo)
	wantEnd := time.Date(2024, 2, 29, 23, 59, 59, 0, tokyo)
	if !bounds.Start.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", bounds.Start, wantStart)
	}
	if !bounds.End.Equal(wantEnd) {
		t.Fatalf("end = %v, want %v (leap february)", bounds.End, wantEnd)
	}

	if !bounds.Contains(wantEnd) {
		t.Fatal("end of month must be inclusive")
	}
	if bounds.Contains(wantEnd.Add(time.Second)) {
		t.Fatal("first instant of next month must be excluded")
	}
}

func TestMonthBoundsLocalNotUTC(t *testing.T) {
	// 2024-03-01 23:30 local is 2024-02-29 in UTC terms somewhere west of
	// Tokyo; the bucket decision must follow the local calendar.
	bounds, err := MonthBounds(tokyo, 2024, 3)
	if err != nil {
		t.Fatalf("MonthBounds: %v", err)
	}
	lateNight := time.Date(2024, 3, 1, 0, 30, 0, 0, tokyo)
	if !bounds.Contains(lateNight) {
		t.Fatal("just-after-midnight local timestamp must belong to the month")
	}
	if bounds.Contains(lateNight.Add(-time.Hour)) {
		t.Fatal("pre-midnight local timestamp belongs to the previous month")
	}
}

func TestPrevMonthBoundsYearRollover(t *testing.T) {
	bounds, err := PrevMonthBounds(tokyo, 2024, 1)
	if err != nil {
		t.Fatalf("PrevMonthBounds: %v", err)
	}
	if bounds.Start.Year() != 2023 || bounds.Start.Month() != time.December {
		t.Fatalf("expected December 2023, got %v", bounds.Start)
	}
	if bounds.End.Day() != 31 {
		t.Fatalf("expected December to end on the 31st, got %d", bounds.End.Day())
	}
}

func TestInvalidPeriod(t *testing.T) {
	for _, month := range []int{0, 13, -4} {
		if _, err := MonthBounds(tokyo, 2024, month); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("month %d: expected ErrInvalidPeriod, got %v", month, err)
		}
		if _, err := WeekBuckets(tokyo, 2024, month); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("month %d: WeekBuckets should reject invalid month", month)
		}
	}
}

// Every month of 2024 begins on a different set of weekdays covering all
// seven, so iterating the year checks clipping for each alignment.
func TestWeekBucketsTileEveryMonth(t *testing.T) {
	for month := 1; month <= 12; month++ {
		bounds, err := MonthBounds(tokyo, 2024, month)
		if err != nil {
			t.Fatalf("MonthBounds(%d): %v", month, err)
		}
		buckets, err := WeekBuckets(tokyo, 2024, month)
		if err != nil {
			t.Fatalf("WeekBuckets(%d): %v", month, err)
		}
		if len(buckets) < 4 || len(buckets) > 6 {
			t.Fatalf("month %d: expected 4-6 buckets, got %d", month, len(buckets))
		}

		if !buckets[0].Start.Equal(bounds.Start) {
			t.Fatalf("month %d: first bucket start %v, want %v", month, buckets[0].Start, bounds.Start)
		}
		if !buckets[len(buckets)-1].End.Equal(bounds.End) {
			t.Fatalf("month %d: last bucket end %v, want %v", month, buckets[len(buckets)-1].End, bounds.End)
		}

		// No gaps, no overlaps: each bucket resumes the morning after the
		// previous bucket's inclusive end.
		for i := 1; i < len(buckets); i++ {
			wantStart := buckets[i-1].End.Add(time.Second)
			if !buckets[i].Start.Equal(wantStart) {
				t.Fatalf("month %d bucket %d: start %v, want %v", month, i, buckets[i].Start, wantStart)
			}
		}

		// Interior bucket starts are Mondays.
		for i := 1; i < len(buckets); i++ {
			if buckets[i].Start.Weekday() != time.Monday {
				t.Fatalf("month %d bucket %d: start %v is not a Monday", month, i, buckets[i].Start)
			}
		}
	}
}

func TestWeekBucketLabelsUseClippedStart(t *testing.T) {
	// September 2024 begins on a Sunday, so the first Monday-start window is
	// clipped hard to the 1st.
	buckets, err := WeekBuckets(tokyo, 2024, 9)
	if err != nil {
		t.Fatalf("WeekBuckets: %v", err)
	}
	if buckets[0].Label != "9/1" {
		t.Fatalf("expected first label 9/1, got %q", buckets[0].Label)
	}
	if buckets[1].Label != "9/2" {
		t.Fatalf("expected second label 9/2, got %q", buckets[1].Label)
	}
}

func TestDayBuckets(t *testing.T) {
	buckets, err := DayBuckets(tokyo, 2024, 2)
	if err != nil {
		t.Fatalf("DayBuckets: %v", err)
	}
	if len(buckets) != 29 {
		t.Fatalf("expected 29 day buckets for leap February, got %d", len(buckets))
	}
	for i := 1; i < len(buckets); i++ {
		if !buckets[i].Start.After(buckets[i-1].Start) {
			t.Fatalf("day buckets not ascending at index %d", i)
		}
	}
	if buckets[0].Label != "2/1" || buckets[28].Label != "2/29" {
		t.Fatalf("unexpected labels %q, %q", buckets[0].Label, buckets[28].Label)
	}
}
