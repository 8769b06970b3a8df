// Package calendar buckets dated items into the weeks of a month.
package calendar

import (
	"fmt"
	"time"
)

// Week is a run of whole days [Start, End] in one location. Start and End
// are both midnight of their day.
type Week struct {
	Label string
	Start time.Time
	End   time.Time
}

// WeeksOfMonth returns the week buckets of a month in loc.
//
// When the 1st is not a Sunday, the first bucket runs from the 1st to the
// Saturday before the first Sunday. Every following bucket starts on a Sunday
// and spans seven days; buckets are produced while their start falls inside
// the month, so the last one may end in the following month.
func WeeksOfMonth(year int, month time.Month, loc *time.Location) []Week {
	if loc == nil {
		loc = time.UTC
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (7 - int(first.Weekday())) % 7
	sunday := first.AddDate(0, 0, offset)

	weeks := make([]Week, 0, 6)
	if offset > 0 {
		weeks = append(weeks, newWeek(first, sunday.AddDate(0, 0, -1)))
	}

	for start := sunday; start.Month() == month; start = start.AddDate(0, 0, 7) {
		weeks = append(weeks, newWeek(start, start.AddDate(0, 0, 6)))
	}

	return weeks
}

// MonthRange returns the half-open interval [first of month, first of next
// month) in loc.
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

func newWeek(start, end time.Time) Week {
	return Week{
		Label: label(start, end),
		Start: start,
		End:   end,
	}
}

// label renders "Oct 5-11", or "Oct 26-Nov 1" when the week crosses a month.
func label(start, end time.Time) string {
	if start.Equal(end) {
		return fmt.Sprintf("%s %d", start.Format("Jan"), start.Day())
	}
	if start.Month() == end.Month() {
		return fmt.Sprintf("%s %d-%d", start.Format("Jan"), start.Day(), end.Day())
	}
	return fmt.Sprintf("%s %d-%s %d", start.Format("Jan"), start.Day(), end.Format("Jan"), end.Day())
}

// Contains reports whether t falls on one of the week's days. Time of day is
// ignored; t is read in the week's location.
func (w Week) Contains(t time.Time) bool {
	t = t.In(w.Start.Location())
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, w.Start.Location())
	return !day.Before(w.Start) && !day.After(w.End)
}

// GroupByWeek distributes items over weeks. The result has one slice per
// week, in the same order; each item goes into the first week containing it
// and items outside every week are dropped. Input order is kept within a
// bucket.
func GroupByWeek[T any](weeks []Week, items []T, at func(T) time.Time) [][]T {
	groups := make([][]T, len(weeks))
	for i := range groups {
		groups[i] = make([]T, 0)
	}

	for _, item := range items {
		when := at(item)
		for i, w := range weeks {
			if w.Contains(when) {
				groups[i] = append(groups[i], item)
				break
			}
		}
	}

	return groups
}
