package schedule

import (
	"fmt"
	"time"

	"salon-service/internal/models"
)

// Rule identifies the scheduling rule a candidate booking violated.
type Rule string

const (
	RuleSalonClosed    Rule = "salon_closed"
	RuleBookingOverlap Rule = "booking_overlap"
	RuleBlocked        Rule = "blocked"
	RuleOutsideWork    Rule = "outside_work_window"
	RulePolicyWindow   Rule = "policy_window"
)

// Violation names the first rule a candidate failed, with a message meant
// for the API caller.
type Violation struct {
	Rule   Rule
	Reason string
}

// ExistingBooking is a neighbor booking with its duration already resolved
// through the salon override.
type ExistingBooking struct {
	ID       string
	Interval Interval
}

// TypedBlock is a break or absence row as an interval.
type TypedBlock struct {
	Type     models.AvailabilityType
	Interval Interval
}

// CheckInput carries everything conflict validation needs for one candidate.
type CheckInput struct {
	Candidate Interval

	// Salon opening window for the candidate's day; both zero = closed.
	SalonOpen  time.Time
	SalonClose time.Time

	// Neighbor bookings for the staff member around the candidate.
	// ExcludeBookingID skips the booking being rescheduled so it cannot
	// block its own move.
	Bookings         []ExistingBooking
	ExcludeBookingID string

	Blocks []TypedBlock

	// Work rows for the candidate's day. Empty skips the containment check
	// (default-open policy, same as slot generation).
	WorkWindows []Interval

	Now      time.Time
	LeadTime time.Duration
	Horizon  time.Duration
}

// CheckConflict runs the full rule set against the candidate and returns the
// first violation, or nil when the booking is acceptable. Every create and
// every reschedule goes through here; there is no trusted mutation path.
func CheckConflict(in CheckInput) *Violation {
	if !in.SalonClose.After(in.SalonOpen) {
		return &Violation{
			Rule:   RuleSalonClosed,
			Reason: "salon is closed on this day",
		}
	}

	for _, b := range in.Bookings {
		if in.ExcludeBookingID != "" && b.ID == in.ExcludeBookingID {
			continue
		}
		if in.Candidate.Overlaps(b.Interval) {
			return &Violation{
				Rule: RuleBookingOverlap,
				Reason: fmt.Sprintf("overlaps an existing booking from %s to %s",
					b.Interval.Start.Format("15:04"), b.Interval.End.Format("15:04")),
			}
		}
	}

	for _, bl := range in.Blocks {
		if in.Candidate.Overlaps(bl.Interval) {
			if bl.Type == models.AvailabilityAbsence {
				return &Violation{
					Rule:   RuleBlocked,
					Reason: "staff member is absent during the requested time",
				}
			}
			return &Violation{
				Rule:   RuleBlocked,
				Reason: "requested time falls into a break",
			}
		}
	}

	// Opening hours bound every booking, even when a work row spills past
	// them; work rows can only narrow the salon window, never widen it.
	salon := Interval{Start: in.SalonOpen, End: in.SalonClose}
	if !salon.Contains(in.Candidate) {
		return &Violation{
			Rule:   RuleOutsideWork,
			Reason: "requested time is outside the salon's opening hours",
		}
	}

	if len(in.WorkWindows) > 0 {
		contained := false
		for _, w := range in.WorkWindows {
			if w.Contains(in.Candidate) {
				contained = true
				break
			}
		}
		if !contained {
			return &Violation{
				Rule:   RuleOutsideWork,
				Reason: "requested time is outside the staff member's working hours",
			}
		}
	}

	if in.Candidate.Start.Before(in.Now.Add(in.LeadTime)) {
		return &Violation{
			Rule: RulePolicyWindow,
			Reason: fmt.Sprintf("bookings require at least %d minutes lead time",
				int(in.LeadTime.Minutes())),
		}
	}
	if in.Horizon > 0 && in.Candidate.Start.After(in.Now.Add(in.Horizon)) {
		return &Violation{
			Rule: RulePolicyWindow,
			Reason: fmt.Sprintf("bookings can be made at most %d days in advance",
				int(in.Horizon.Hours()/24)),
		}
	}

	return nil
}
