package schedule

import (
	"fmt"
	"regexp"
	"time"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect:
// a.Start < b.End && b.Start < a.End.
func (a Interval) Overlaps(b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Contains reports whether b lies fully inside a.
func (a Interval) Contains(b Interval) bool {
	return !b.Start.Before(a.Start) && !b.End.After(a.End)
}

func OverlapsAny(candidate Interval, busy []Interval) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}

// DayBounds returns midnight and 23:59:59 of t's calendar day in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	loc := t.Location()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, loc)
	return start, end
}

// TruncateToDate returns the date with zero time in the given location.
func TruncateToDate(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

var hhmmRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidHHMM reports whether s is a strict "HH:mm" clock time.
func ValidHHMM(s string) bool {
	return hhmmRe.MatchString(s)
}

// CombineDateTime places an "HH:mm" clock time onto a calendar date.
func CombineDateTime(date time.Time, hhmm string) (time.Time, error) {
	clock, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0,
		date.Location(),
	), nil
}

// ClampStep bounds the slot step to [5, 60] minutes; non-positive values
// fall back to the default of 15.
func ClampStep(stepMinutes int) int {
	if stepMinutes <= 0 {
		return 15
	}
	if stepMinutes < 5 {
		return 5
	}
	if stepMinutes > 60 {
		return 60
	}
	return stepMinutes
}
