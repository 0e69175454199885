package api

import "time"

// Actor is the authenticated caller, resolved once per request from the
// X-Actor-ID / X-Actor-Role headers and passed down explicitly.
type Actor struct {
	ID   string
	Role string
}

// Timeslots

type TimeslotsResponse struct {
	Slots           []string `json:"slots"`
	DurationMinutes int      `json:"duration_minutes"`
}

// Bookings

type BookingRequest struct {
	StaffID    string `json:"staff_id"`
	ServiceID  string `json:"service_id"`
	SalonID    string `json:"salon_id"`
	DateTime   string `json:"date_time"`
	CustomerID string `json:"customer_id,omitempty"`
}

// BookingUpdateRequest is a partial reschedule/reassign; nil fields keep the
// booking's current values.
type BookingUpdateRequest struct {
	DateTime  *string `json:"date_time,omitempty"`
	ServiceID *string `json:"service_id,omitempty"`
	StaffID   *string `json:"staff_id,omitempty"`
}

type HistoryEntryResponse struct {
	Action     string    `json:"action"`
	ExecutedBy string    `json:"executed_by"`
	Timestamp  time.Time `json:"timestamp"`
	Details    string    `json:"details"`
}

type BookingResponse struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"user_id"`
	ServiceID       string                 `json:"service_id"`
	StaffID         string                 `json:"staff_id"`
	SalonID         string                 `json:"salon_id"`
	DateTime        time.Time              `json:"date_time"`
	EndTime         time.Time              `json:"end_time"`
	DurationMinutes int                    `json:"duration_minutes"`
	Status          string                 `json:"status"`
	History         []HistoryEntryResponse `json:"history,omitempty"`
}

// Availability

type AvailabilityRequest struct {
	StaffID string `json:"staff_id"`
	SalonID string `json:"salon_id"`
	Type    string `json:"type"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Note    string `json:"note,omitempty"`
}

type AvailabilityResponse struct {
	ID      string    `json:"id"`
	StaffID string    `json:"staff_id"`
	SalonID string    `json:"salon_id"`
	Type    string    `json:"type"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Note    string    `json:"note,omitempty"`
}

// Availability Templates

type TemplateSegment struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Type  string `json:"type"`
}

type TemplateDay struct {
	Weekday  int               `json:"weekday"`
	Segments []TemplateSegment `json:"segments"`
}

type TemplateRequest struct {
	Name    string        `json:"name"`
	StaffID string        `json:"staff_id"`
	SalonID string        `json:"salon_id"`
	Days    []TemplateDay `json:"days"`
}

type TemplateResponse struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	StaffID string        `json:"staff_id"`
	SalonID string        `json:"salon_id"`
	Days    []TemplateDay `json:"days"`
}

type TemplateApplyRequest struct {
	WeekStart string `json:"week_start"`
	Weeks     int    `json:"weeks,omitempty"`
	Replace   *bool  `json:"replace,omitempty"`
}

type TemplateApplyResponse struct {
	Created  int `json:"created"`
	Replaced int `json:"replaced"`
}
