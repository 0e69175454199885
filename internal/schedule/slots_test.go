package schedule

import (
	"testing"
	"time"
)

// monday is a fixed future-looking reference day; Now in the queries is set
// the evening before so lead time never interferes unless a test wants it to.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return monday.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func baseQuery() SlotQuery {
	return SlotQuery{
		SalonOpen:   at(9, 0),
		SalonClose:  at(18, 0),
		Duration:    30 * time.Minute,
		StepMinutes: 15,
		Now:         monday.Add(-12 * time.Hour),
		LeadTime:    time.Hour,
		Horizon:     90 * 24 * time.Hour,
	}
}

// Salon open Mon 09:00-18:00, one work row 09:00-17:00, 30-minute service:
// starts run 09:00..16:30, never 16:45.
func TestGenerateSlots_WorkWindowBoundsLastStart(t *testing.T) {
	q := baseQuery()
	q.WorkWindows = []Interval{{Start: at(9, 0), End: at(17, 0)}}

	slots := GenerateSlots(q)

	if len(slots) != 31 {
		t.Fatalf("expected 31 slots (09:00..16:30 every 15m), got %d", len(slots))
	}
	if !slots[0].Equal(at(9, 0)) {
		t.Errorf("first slot = %s, want 09:00", slots[0].Format("15:04"))
	}
	last := slots[len(slots)-1]
	if !last.Equal(at(16, 30)) {
		t.Errorf("last slot = %s, want 16:30", last.Format("15:04"))
	}
	for _, s := range slots {
		if s.Equal(at(16, 45)) {
			t.Error("16:45 must not be offered: it would end past the work window")
		}
	}
}

func TestGenerateSlots_ClosedDay(t *testing.T) {
	q := baseQuery()
	q.SalonOpen = time.Time{}
	q.SalonClose = time.Time{}
	q.WorkWindows = []Interval{{Start: at(9, 0), End: at(17, 0)}}

	if slots := GenerateSlots(q); len(slots) != 0 {
		t.Fatalf("closed day must yield no slots, got %d", len(slots))
	}
}

// A staff member with no explicit work rows is available during the whole
// salon window.
func TestGenerateSlots_DefaultOpenFallback(t *testing.T) {
	q := baseQuery()

	slots := GenerateSlots(q)

	if len(slots) == 0 {
		t.Fatal("expected slots from the default-open fallback")
	}
	if !slots[0].Equal(at(9, 0)) {
		t.Errorf("first slot = %s, want salon open 09:00", slots[0].Format("15:04"))
	}
	last := slots[len(slots)-1]
	if !last.Equal(at(17, 30)) {
		t.Errorf("last slot = %s, want 17:30", last.Format("15:04"))
	}
}

// A full-day absence removes every slot even though the salon is open and a
// work row exists.
func TestGenerateSlots_FullDayAbsenceWins(t *testing.T) {
	q := baseQuery()
	q.WorkWindows = []Interval{{Start: at(9, 0), End: at(17, 0)}}
	dayStart, dayEnd := DayBounds(monday)
	q.Busy = []Interval{{Start: dayStart, End: dayEnd}}

	if slots := GenerateSlots(q); len(slots) != 0 {
		t.Fatalf("full-day absence must yield no slots, got %d", len(slots))
	}
}

func TestGenerateSlots_BusyIntervalsExcluded(t *testing.T) {
	q := baseQuery()
	q.WorkWindows = []Interval{{Start: at(9, 0), End: at(12, 0)}}
	q.Busy = []Interval{{Start: at(10, 0), End: at(10, 30)}}

	slots := GenerateSlots(q)

	for _, s := range slots {
		cand := Interval{Start: s, End: s.Add(q.Duration)}
		if cand.Overlaps(q.Busy[0]) {
			t.Errorf("slot %s overlaps the busy interval", s.Format("15:04"))
		}
	}
	// 09:45 would end 10:15, inside the booking; 10:30 is the first start after.
	for _, s := range slots {
		if s.Equal(at(9, 45)) || s.Equal(at(10, 0)) || s.Equal(at(10, 15)) {
			t.Errorf("slot %s must be excluded", s.Format("15:04"))
		}
	}
}

func TestGenerateSlots_LeadTimeCutoff(t *testing.T) {
	q := baseQuery()
	q.WorkWindows = []Interval{{Start: at(9, 0), End: at(12, 0)}}
	q.Now = at(9, 10)
	q.LeadTime = time.Hour

	slots := GenerateSlots(q)

	if len(slots) == 0 {
		t.Fatal("expected slots after the lead-time cutoff")
	}
	// Cutoff is 10:10, so 10:15 is the first allowed start.
	if !slots[0].Equal(at(10, 15)) {
		t.Errorf("first slot = %s, want 10:15", slots[0].Format("15:04"))
	}
}

func TestGenerateSlots_HorizonCutoff(t *testing.T) {
	q := baseQuery()
	q.WorkWindows = []Interval{{Start: at(9, 0), End: at(17, 0)}}
	q.Now = monday.Add(-100 * 24 * time.Hour)
	q.Horizon = 90 * 24 * time.Hour

	if slots := GenerateSlots(q); len(slots) != 0 {
		t.Fatalf("slots beyond the booking horizon must be excluded, got %d", len(slots))
	}
}

func TestGenerateSlots_MultipleWorkWindowsSorted(t *testing.T) {
	q := baseQuery()
	q.StepMinutes = 30
	q.WorkWindows = []Interval{
		{Start: at(14, 0), End: at(16, 0)},
		{Start: at(9, 0), End: at(11, 0)},
	}

	slots := GenerateSlots(q)

	for i := 1; i < len(slots); i++ {
		if !slots[i].After(slots[i-1]) {
			t.Fatalf("slots out of order at %d: %s then %s", i,
				slots[i-1].Format("15:04"), slots[i].Format("15:04"))
		}
	}
	if !slots[0].Equal(at(9, 0)) {
		t.Errorf("first slot = %s, want 09:00", slots[0].Format("15:04"))
	}
}

func TestGenerateSlots_WorkWindowClippedToSalonHours(t *testing.T) {
	q := baseQuery()
	// Work row starts before salon open and runs past close.
	q.WorkWindows = []Interval{{Start: at(7, 0), End: at(20, 0)}}

	slots := GenerateSlots(q)

	if len(slots) == 0 {
		t.Fatal("expected slots")
	}
	if !slots[0].Equal(at(9, 0)) {
		t.Errorf("first slot = %s, want salon open 09:00", slots[0].Format("15:04"))
	}
	last := slots[len(slots)-1]
	if last.Add(q.Duration).After(at(18, 0)) {
		t.Errorf("last slot %s runs past salon close", last.Format("15:04"))
	}
}

func TestGenerateSlots_ZeroDuration(t *testing.T) {
	q := baseQuery()
	q.Duration = 0

	if slots := GenerateSlots(q); slots != nil {
		t.Fatalf("zero duration must yield nil, got %v", slots)
	}
}
