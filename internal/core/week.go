package core

import "time"

// WeekDuration is the fixed width of a feed page.
const WeekDuration = 7 * 24 * time.Hour

// WeekInterval is a half-open [Start, End) window of exactly seven days,
// with Start aligned to the first moment of a calendar week.
type WeekInterval struct {
	Start time.Time
	End   time.Time
}

// NewWeekInterval builds the interval beginning at start.
func NewWeekInterval(start time.Time) WeekInterval {
	return WeekInterval{Start: start, End: start.Add(WeekDuration)}
}

// WeekIntervalContaining returns the week interval that contains ref,
// anchored on the Monday of ref's ISO week at midnight in ref's location.
func WeekIntervalContaining(ref time.Time) (WeekInterval, error) {
	if ref.IsZero() {
		return WeekInterval{}, ErrWeekResolution
	}
	return NewWeekInterval(StartOfWeek(ref)), nil
}

// StartOfWeek returns midnight on the Monday of t's week, in t's location.
func StartOfWeek(t time.Time) time.Time {
	year, month, day := t.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	weekday := int(midnight.Weekday())
	// time.Weekday counts Sunday as 0; shift so Monday is the week start.
	offset := (weekday + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}

// Next returns the interval shifted forward by exactly seven days. Shifts
// are taken from the current start, not from the wall clock, so repeated
// navigation is idempotent.
func (w WeekInterval) Next() WeekInterval {
	return NewWeekInterval(w.Start.Add(WeekDuration))
}

// Previous returns the interval shifted back by exactly seven days.
func (w WeekInterval) Previous() WeekInterval {
	return NewWeekInterval(w.Start.Add(-WeekDuration))
}

// Equal reports whether both endpoints match exactly.
func (w WeekInterval) Equal(other WeekInterval) bool {
	return w.Start.Equal(other.Start) && w.End.Equal(other.End)
}

// Format renders the interval for display, e.g. "05 Aug 2024 - 12 Aug 2024".
func (w WeekInterval) Format() string {
	const layout = "02 Jan 2006"
	return w.Start.Format(layout) + " - " + w.End.Format(layout)
}
