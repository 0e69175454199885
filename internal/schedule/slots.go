package schedule

import (
	"sort"
	"time"
)

// SlotQuery carries everything slot generation needs for one (staff, service,
// date) triple. All absolute times are expected in the same location.
type SlotQuery struct {
	// Salon opening window for the requested date. Both zero when the salon
	// is closed that day (no slots, not an error).
	SalonOpen  time.Time
	SalonClose time.Time

	// Staff work rows overlapping the salon window. Empty means the staff
	// member has no explicit schedule and is assumed available during the
	// whole salon window (default-open policy).
	WorkWindows []Interval

	// Breaks, absences and existing bookings with their resolved durations.
	Busy []Interval

	Duration    time.Duration
	StepMinutes int

	Now      time.Time
	LeadTime time.Duration
	Horizon  time.Duration
}

// GenerateSlots returns the valid booking start times for the query, in
// chronological order. A pure function of its inputs, bounded by one day's
// opening window.
func GenerateSlots(q SlotQuery) []time.Time {
	if q.Duration <= 0 {
		return nil
	}
	if !q.SalonClose.After(q.SalonOpen) {
		return nil
	}

	step := time.Duration(ClampStep(q.StepMinutes)) * time.Minute
	salon := Interval{Start: q.SalonOpen, End: q.SalonClose}

	windows := clipWindows(q.WorkWindows, salon)
	if len(q.WorkWindows) == 0 {
		windows = []Interval{salon}
	}

	cutoff := q.Now.Add(q.LeadTime)
	var horizonEnd time.Time
	if q.Horizon > 0 {
		horizonEnd = q.Now.Add(q.Horizon)
	}

	var slots []time.Time
	for _, w := range windows {
		start := w.Start
		if start.Before(q.SalonOpen) {
			start = q.SalonOpen
		}

		for cur := start; !cur.Add(q.Duration).After(w.End); cur = cur.Add(step) {
			if cur.Before(cutoff) {
				continue
			}
			if !horizonEnd.IsZero() && cur.After(horizonEnd) {
				break
			}
			if OverlapsAny(Interval{Start: cur, End: cur.Add(q.Duration)}, q.Busy) {
				continue
			}
			slots = append(slots, cur)
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })

	return slots
}

// clipWindows trims windows to the bound, drops the ones left empty and
// returns them sorted by start.
func clipWindows(windows []Interval, bound Interval) []Interval {
	clipped := make([]Interval, 0, len(windows))
	for _, w := range windows {
		if w.Start.Before(bound.Start) {
			w.Start = bound.Start
		}
		if w.End.After(bound.End) {
			w.End = bound.End
		}
		if w.End.After(w.Start) {
			clipped = append(clipped, w)
		}
	}

	sort.Slice(clipped, func(i, j int) bool { return clipped[i].Start.Before(clipped[j].Start) })

	return clipped
}
