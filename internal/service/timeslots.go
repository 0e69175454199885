package service

import (
	"context"
	"fmt"
	"time"

	"salon-service/api"
	"salon-service/internal/models"
	"salon-service/internal/schedule"
	"salon-service/pkg/response"
)

// GetTimeslots returns the bookable start times for a (staff, service, date)
// triple. A closed day yields an empty slot list, not an error.
func (s *Service) GetTimeslots(ctx context.Context, staffID, serviceID, salonID, date string, stepMinutes int) (*api.TimeslotsResponse, error) {
	const op = "service.GetTimeslots"

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, badRequest(op, "invalid date, want YYYY-MM-DD")
	}

	salon, err := s.store.GetSalon(ctx, salonID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.store.GetStaff(ctx, staffID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	duration, err := s.ResolveDuration(ctx, serviceID, salonID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	open, closeAt, err := salonWindow(salon, day)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if open.IsZero() {
		return &api.TimeslotsResponse{Slots: []string{}, DurationMinutes: duration}, nil
	}

	work, busy, err := s.staffDaySchedule(ctx, staffID, salonID, day)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rules := salon.BookingRules
	slots := schedule.GenerateSlots(schedule.SlotQuery{
		SalonOpen:   open,
		SalonClose:  closeAt,
		WorkWindows: work,
		Busy:        busy,
		Duration:    time.Duration(duration) * time.Minute,
		StepMinutes: stepMinutes,
		Now:         s.now(),
		LeadTime:    time.Duration(rules.BookingLeadTimeMinutes) * time.Minute,
		Horizon:     time.Duration(rules.BookingHorizonDays) * 24 * time.Hour,
	})

	out := make([]string, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slot.Format(time.RFC3339))
	}

	return &api.TimeslotsResponse{Slots: out, DurationMinutes: duration}, nil
}

// staffDaySchedule loads one staff member's work windows and the combined
// exclusion set (breaks, absences, existing bookings with resolved
// durations) for a calendar day.
func (s *Service) staffDaySchedule(ctx context.Context, staffID, salonID string, day time.Time) ([]schedule.Interval, []schedule.Interval, error) {
	dayStart, dayEnd := schedule.DayBounds(day)

	rows, err := s.store.ListAvailability(ctx, staffID, dayStart, dayEnd, nil)
	if err != nil {
		return nil, nil, err
	}

	var work, busy []schedule.Interval
	for _, row := range rows {
		iv := schedule.Interval{Start: row.Start, End: row.End}
		if row.Type == models.AvailabilityWork {
			work = append(work, iv)
		} else {
			busy = append(busy, iv)
		}
	}

	bookingBusy, err := s.bookingIntervals(ctx, staffID, dayStart, dayEnd, "")
	if err != nil {
		return nil, nil, err
	}
	busy = append(busy, bookingBusy...)

	return work, busy, nil
}

// bookingIntervals returns the effective intervals of active bookings in
// [from, to], each end recomputed through the booking's own salon override.
func (s *Service) bookingIntervals(ctx context.Context, staffID string, from, to time.Time, excludeID string) ([]schedule.Interval, error) {
	bookings, err := s.store.ListBookingsForStaff(ctx, staffID, from, to)
	if err != nil {
		return nil, err
	}

	durations := map[string]int{}
	var out []schedule.Interval
	for _, b := range bookings {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if b.Status == models.BookingCancelled {
			continue
		}

		key := b.ServiceID + "|" + b.SalonID
		dur, ok := durations[key]
		if !ok {
			dur, err = s.ResolveDuration(ctx, b.ServiceID, b.SalonID)
			if err != nil {
				return nil, err
			}
			durations[key] = dur
		}

		out = append(out, schedule.Interval{
			Start: b.DateTime,
			End:   b.DateTime.Add(time.Duration(dur) * time.Minute),
		})
	}

	return out, nil
}

// checkConflict assembles and runs the full conflict rule set for a
// candidate booking. excludeBookingID skips the booking being rescheduled.
func (s *Service) checkConflict(ctx context.Context, staffID string, start time.Time, serviceID, salonID, excludeBookingID string) error {
	const op = "service.checkConflict"

	salon, err := s.store.GetSalon(ctx, salonID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	duration, err := s.ResolveDuration(ctx, serviceID, salonID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	candidate := schedule.Interval{
		Start: start,
		End:   start.Add(time.Duration(duration) * time.Minute),
	}

	open, closeAt, err := salonWindow(salon, start)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Neighbor fetch window: at least 4h each side, wider for long services.
	reach := minConflictWindow
	if d := 2 * time.Duration(duration) * time.Minute; d > reach {
		reach = d
	}

	neighbors, err := s.store.ListBookingsForStaff(ctx, staffID, start.Add(-reach), candidate.End.Add(reach))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	durations := map[string]int{}
	var existing []schedule.ExistingBooking
	for _, b := range neighbors {
		if b.Status == models.BookingCancelled {
			continue
		}
		key := b.ServiceID + "|" + b.SalonID
		dur, ok := durations[key]
		if !ok {
			dur, err = s.ResolveDuration(ctx, b.ServiceID, b.SalonID)
			if err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			durations[key] = dur
		}
		existing = append(existing, schedule.ExistingBooking{
			ID: b.ID,
			Interval: schedule.Interval{
				Start: b.DateTime,
				End:   b.DateTime.Add(time.Duration(dur) * time.Minute),
			},
		})
	}

	dayStart, dayEnd := schedule.DayBounds(start)
	rows, err := s.store.ListAvailability(ctx, staffID, dayStart, dayEnd, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var work []schedule.Interval
	var blocks []schedule.TypedBlock
	for _, row := range rows {
		iv := schedule.Interval{Start: row.Start, End: row.End}
		if row.Type == models.AvailabilityWork {
			work = append(work, iv)
		} else {
			blocks = append(blocks, schedule.TypedBlock{Type: row.Type, Interval: iv})
		}
	}

	rules := salon.BookingRules
	violation := schedule.CheckConflict(schedule.CheckInput{
		Candidate:        candidate,
		SalonOpen:        open,
		SalonClose:       closeAt,
		Bookings:         existing,
		ExcludeBookingID: excludeBookingID,
		Blocks:           blocks,
		WorkWindows:      work,
		Now:              s.now(),
		LeadTime:         time.Duration(rules.BookingLeadTimeMinutes) * time.Minute,
		Horizon:          time.Duration(rules.BookingHorizonDays) * 24 * time.Hour,
	})
	if violation != nil {
		return fmt.Errorf("%s: %w", op, response.Conflict(violation.Reason))
	}

	return nil
}
