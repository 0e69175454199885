package models

import "time"

type AvailabilityType string

const (
	AvailabilityWork    AvailabilityType = "work"
	AvailabilityBreak   AvailabilityType = "break"
	AvailabilityAbsence AvailabilityType = "absence"
)

// Availability is one contiguous time range for one staff member.
// work = bookable (subject to breaks/absences), break/absence = blocked.
// Absence rows are snapped to day boundaries at creation.
type Availability struct {
	ID      string           `db:"availability_id"`
	StaffID string           `db:"staff_id"`
	SalonID string           `db:"salon_id"`
	Type    AvailabilityType `db:"block_type"`
	Start   time.Time        `db:"start_at"`
	End     time.Time        `db:"end_at"`
	Note    string           `db:"note"`
}

type SegmentType string

const (
	SegmentWork  SegmentType = "work"
	SegmentBreak SegmentType = "break"
)

// TemplateSegment is a date-agnostic slice of a weekday, "HH:mm" times.
type TemplateSegment struct {
	Start string      `db:"start_time"`
	End   string      `db:"end_time"`
	Type  SegmentType `db:"segment_type"`
}

// AvailabilityTemplate holds a reusable weekly pattern for one staff member.
// Days is indexed 0=Sunday..6=Saturday. Segments within a day are ordered but
// not checked for overlap; the conflict validator owns actual bookability.
type AvailabilityTemplate struct {
	ID      string `db:"template_id"`
	Name    string `db:"template_name"`
	StaffID string `db:"staff_id"`
	SalonID string `db:"salon_id"`
	Days    [7][]TemplateSegment
}

type OpeningHours struct {
	Weekday int    `db:"weekday"`
	IsOpen  bool   `db:"is_open"`
	Open    string `db:"open_time"`
	Close   string `db:"close_time"`
}

type BookingRules struct {
	CancellationDeadlineHours int  `db:"cancellation_deadline_hours"`
	BookingLeadTimeMinutes    int  `db:"booking_lead_time_minutes"`
	BookingHorizonDays        int  `db:"booking_horizon_days"`
	SendReminderEmails        bool `db:"send_reminder_emails"`
}

func DefaultBookingRules() BookingRules {
	return BookingRules{
		CancellationDeadlineHours: 24,
		BookingLeadTimeMinutes:    60,
		BookingHorizonDays:        90,
		SendReminderEmails:        true,
	}
}

type Salon struct {
	ID           string `db:"salon_id"`
	Name         string `db:"salon_name"`
	OpeningHours [7]OpeningHours
	BookingRules BookingRules
}

// HoursFor returns the opening-hours rule for a weekday, or nil when no rule
// was ever configured (treated the same as a closed day).
func (s *Salon) HoursFor(weekday time.Weekday) *OpeningHours {
	if weekday < 0 || weekday > 6 {
		return nil
	}
	oh := s.OpeningHours[int(weekday)]
	if oh.Open == "" && oh.Close == "" {
		return nil
	}
	return &oh
}

type Role string

const (
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

type Staff struct {
	ID      string   `db:"staff_id"`
	SalonID string   `db:"salon_id"`
	Name    string   `db:"staff_name"`
	Role    Role     `db:"role"`
	Email   string   `db:"email"`
	Skills  []string `db:"skills"`
	Active  bool     `db:"is_active"`
}

func (st *Staff) HasSkill(serviceID string) bool {
	for _, s := range st.Skills {
		if s == serviceID {
			return true
		}
	}
	return false
}

type User struct {
	ID    string `db:"user_id"`
	Name  string `db:"user_name"`
	Email string `db:"email"`
}

type Service struct {
	ID              string  `db:"service_id"`
	Name            string  `db:"service_name"`
	DurationMinutes int     `db:"duration_minutes"`
	Price           float64 `db:"price"`
}

// ServiceSalon is a per-salon override of a service's duration and/or price.
type ServiceSalon struct {
	ServiceID       string   `db:"service_id"`
	SalonID         string   `db:"salon_id"`
	DurationMinutes *int     `db:"duration_override"`
	Price           *float64 `db:"price_override"`
}

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingPaid      BookingStatus = "paid"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

type HistoryAction string

const (
	HistoryCreated     HistoryAction = "created"
	HistoryRescheduled HistoryAction = "rescheduled"
	HistoryAssigned    HistoryAction = "assigned"
	HistoryCancelled   HistoryAction = "cancelled"
)

type HistoryEntry struct {
	Action     HistoryAction `db:"action"`
	ExecutedBy string        `db:"executed_by"`
	Timestamp  time.Time     `db:"executed_at"`
	Details    string        `db:"details"`
}

// Booking stores the start instant only. The effective end is recomputed
// from the service's resolved duration at query time, so a later duration
// change shifts the computed end of existing bookings without touching
// their rows.
type Booking struct {
	ID        string        `db:"booking_id"`
	UserID    string        `db:"user_id"`
	ServiceID string        `db:"service_id"`
	StaffID   string        `db:"staff_id"`
	SalonID   string        `db:"salon_id"`
	DateTime  time.Time     `db:"starts_at"`
	Status    BookingStatus `db:"status"`
	History   []HistoryEntry
}
