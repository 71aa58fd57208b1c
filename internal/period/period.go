package period

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPeriod signals a year/month pair outside the calendar range.
// Callers must not silently wrap around or return empty results instead.
var ErrInvalidPeriod = errors.New("invalid period: month must be between 1 and 12")

// Bounds is an inclusive calendar window. End is the last instant considered
// part of the window (23:59:59 local on the closing day); membership checks
// compare with date <= End, never date < End.
type Bounds struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, end-inclusive.
func (b Bounds) Contains(t time.Time) bool {
	return !t.Before(b.Start) && !t.After(b.End)
}

// WeekBucket is a Monday-start week window clipped to its month. Label is
// rendered from the clipped display start as "M/D".
type WeekBucket struct {
	Bounds
	Label string
}

// DayBucket is a single calendar day window.
type DayBucket struct {
	Bounds
	Label string
}

// MonthBounds computes the inclusive bounds of a calendar month in loc.
// Boundaries are local calendar time; computing them in UTC shifts
// transactions recorded near midnight into the wrong month.
func MonthBounds(loc *time.Location, year, month int) (Bounds, error) {
	if err := validate(loc, year, month); err != nil {
		return Bounds{}, err
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	lastDay := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, loc).AddDate(0, 0, -1)
	end := endOfDay(lastDay, loc)
	return Bounds{Start: start, End: end}, nil
}

// PrevMonthBounds computes the bounds of the month preceding (year, month),
// rolling January back to December of the prior year.
func PrevMonthBounds(loc *time.Location, year, month int) (Bounds, error) {
	if err := validate(loc, year, month); err != nil {
		return Bounds{}, err
	}
	if month == 1 {
		return MonthBounds(loc, year-1, 12)
	}
	return MonthBounds(loc, year, month-1)
}

// WeekBuckets returns the Monday-start week windows overlapping the month.
// The first bucket's display start is clipped to the 1st and the last bucket
// is clipped to the month end, so the buckets tile the month exactly.
// Depending on alignment a month yields between 4 and 6 buckets.
func WeekBuckets(loc *time.Location, year, month int) ([]WeekBucket, error) {
	bounds, err := MonthBounds(loc, year, month)
	if err != nil {
		return nil, err
	}

	// Monday on or before the 1st.
	back := (int(bounds.Start.Weekday()) + 6) % 7
	cursor := bounds.Start.AddDate(0, 0, -back)

	var buckets []WeekBucket
	for !cursor.After(bounds.End) {
		start := cursor
		if start.Before(bounds.Start) {
			start = bounds.Start
		}
		end := endOfDay(cursor.AddDate(0, 0, 6), loc)
		if end.After(bounds.End) {
			end = bounds.End
		}
		buckets = append(buckets, WeekBucket{
			Bounds: Bounds{Start: start, End: end},
			Label:  fmt.Sprintf("%d/%d", int(start.Month()), start.Day()),
		})
		cursor = cursor.AddDate(0, 0, 7)
	}
	return buckets, nil
}

// DayBuckets returns one window per calendar day of the month, ascending.
func DayBuckets(loc *time.Location, year, month int) ([]DayBucket, error) {
	bounds, err := MonthBounds(loc, year, month)
	if err != nil {
		return nil, err
	}

	var buckets []DayBucket
	for cursor := bounds.Start; !cursor.After(bounds.End); cursor = cursor.AddDate(0, 0, 1) {
		buckets = append(buckets, DayBucket{
			Bounds: Bounds{Start: cursor, End: endOfDay(cursor, loc)},
			Label:  fmt.Sprintf("%d/%d", int(cursor.Month()), cursor.Day()),
		})
	}
	return buckets, nil
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, loc)
}

func validate(loc *time.Location, year, month int) error {
	if loc == nil {
		return errors.New("location is required")
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: got %d", ErrInvalidPeriod, month)
	}
	if year < 1 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	return nil
}
