package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salon-service/api"
	"salon-service/internal/lock"
	"salon-service/internal/models"
	"salon-service/pkg/response"
)

const lockTTL = 10 * time.Second

// CreateBooking validates the request, serializes writers for the staff-day,
// runs the full conflict check and persists the booking with a created
// history entry. The confirmation notification is best-effort.
func (s *Service) CreateBooking(ctx context.Context, req *api.BookingRequest, actor api.Actor) (*api.BookingResponse, error) {
	const op = "service.CreateBooking"

	if req.StaffID == "" || req.ServiceID == "" || req.SalonID == "" || req.DateTime == "" {
		return nil, badRequest(op, "staff_id, service_id, salon_id and date_time are required")
	}

	start, err := time.Parse(time.RFC3339, req.DateTime)
	if err != nil {
		return nil, badRequest(op, "invalid date_time, want RFC3339")
	}

	staff, err := s.store.GetStaff(ctx, req.StaffID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if staff.SalonID != req.SalonID || !staff.Active {
		return nil, forbidden(op, "staff member is not active at this salon")
	}
	if err := s.ensureServiceOffered(ctx, req.ServiceID, req.SalonID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !staff.HasSkill(req.ServiceID) {
		return nil, forbidden(op, "staff member does not provide this service")
	}

	customerID, err := resolveCustomer(actor, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lockKey := lock.StaffDayKey(req.StaffID, start)
	locked, err := s.locker.Lock(ctx, lockKey, lockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, lockKey)
	}()

	if err := s.checkConflict(ctx, req.StaffID, start, req.ServiceID, req.SalonID, ""); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		UserID:    customerID,
		ServiceID: req.ServiceID,
		StaffID:   req.StaffID,
		SalonID:   req.SalonID,
		DateTime:  start,
		Status:    models.BookingConfirmed,
		History: []models.HistoryEntry{{
			Action:     models.HistoryCreated,
			ExecutedBy: actor.ID,
			Timestamp:  s.now(),
			Details:    fmt.Sprintf("booked for %s", start.Format(time.RFC3339)),
		}},
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	bookingID, err := s.store.CreateBookingTx(ctx, tx, booking)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("%s: create booking: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	s.sendConfirmation(ctx, customerID, start)

	return s.GetBooking(ctx, bookingID)
}

// resolveCustomer maps the actor to the booked customer: users book for
// themselves, staff and admins book on behalf of an explicit customer.
func resolveCustomer(actor api.Actor, customerID string) (string, error) {
	const op = "service.resolveCustomer"

	switch models.Role(actor.Role) {
	case models.RoleUser:
		if customerID != "" && customerID != actor.ID {
			return "", forbidden(op, "users can only book for themselves")
		}
		return actor.ID, nil
	case models.RoleStaff, models.RoleAdmin:
		if customerID == "" {
			return "", badRequest(op, "customer_id is required for staff bookings")
		}
		return customerID, nil
	default:
		return "", forbidden(op, "unknown actor role")
	}
}

func (s *Service) ensureServiceOffered(ctx context.Context, serviceID, salonID string) error {
	const op = "service.ensureServiceOffered"

	if _, err := s.store.GetService(ctx, serviceID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err := s.store.GetServiceSalon(ctx, serviceID, salonID)
	if errors.Is(err, response.ErrNotFound) {
		return forbidden(op, "service is not offered by this salon")
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) sendConfirmation(ctx context.Context, customerID string, start time.Time) {
	user, err := s.store.GetUser(ctx, customerID)
	if err != nil || user.Email == "" {
		return
	}

	// Best-effort: the sender logs its own failures.
	_ = s.notifier.SendConfirmation(ctx, user.Email,
		"Your appointment is confirmed",
		fmt.Sprintf("Your appointment on %s is confirmed.", start.Format("Mon, 2 Jan 2006 15:04")),
	)
}

func (s *Service) GetBooking(ctx context.Context, id string) (*api.BookingResponse, error) {
	const op = "service.GetBooking"

	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	duration, err := s.ResolveDuration(ctx, booking.ServiceID, booking.SalonID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookingResponse(booking, duration), nil
}

func bookingResponse(b *models.Booking, durationMinutes int) *api.BookingResponse {
	history := make([]api.HistoryEntryResponse, 0, len(b.History))
	for _, h := range b.History {
		history = append(history, api.HistoryEntryResponse{
			Action:     string(h.Action),
			ExecutedBy: h.ExecutedBy,
			Timestamp:  h.Timestamp,
			Details:    h.Details,
		})
	}

	return &api.BookingResponse{
		ID:              b.ID,
		UserID:          b.UserID,
		ServiceID:       b.ServiceID,
		StaffID:         b.StaffID,
		SalonID:         b.SalonID,
		DateTime:        b.DateTime,
		EndTime:         b.DateTime.Add(time.Duration(durationMinutes) * time.Minute),
		DurationMinutes: durationMinutes,
		Status:          string(b.Status),
		History:         history,
	}
}

// UpdateBooking reschedules and/or reassigns a booking. Fields left nil keep
// their current values; the conflict check excludes the booking itself so a
// reschedule is never blocked by its own slot.
func (s *Service) UpdateBooking(ctx context.Context, bookingID string, req *api.BookingUpdateRequest, actor api.Actor) (*api.BookingResponse, error) {
	const op = "service.UpdateBooking"

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if models.Role(actor.Role) == models.RoleUser && booking.UserID != actor.ID {
		return nil, forbidden(op, "users can only modify their own bookings")
	}

	newStart := booking.DateTime
	if req.DateTime != nil {
		newStart, err = time.Parse(time.RFC3339, *req.DateTime)
		if err != nil {
			return nil, badRequest(op, "invalid date_time, want RFC3339")
		}
	}
	newStaffID := booking.StaffID
	if req.StaffID != nil {
		newStaffID = *req.StaffID
	}
	newServiceID := booking.ServiceID
	if req.ServiceID != nil {
		newServiceID = *req.ServiceID
	}

	staff, err := s.store.GetStaff(ctx, newStaffID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if staff.SalonID != booking.SalonID || !staff.Active {
		return nil, forbidden(op, "staff member is not active at this salon")
	}
	if err := s.ensureServiceOffered(ctx, newServiceID, booking.SalonID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !staff.HasSkill(newServiceID) {
		return nil, forbidden(op, "staff member does not provide this service")
	}

	lockKey := lock.StaffDayKey(newStaffID, newStart)
	locked, err := s.locker.Lock(ctx, lockKey, lockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, lockKey)
	}()

	if err := s.checkConflict(ctx, newStaffID, newStart, newServiceID, booking.SalonID, bookingID); err != nil {
		return nil, err
	}

	entry := diffHistoryEntry(booking, newStaffID, newServiceID, newStart, actor, s.now())

	booking.StaffID = newStaffID
	booking.ServiceID = newServiceID
	booking.DateTime = newStart
	if entry != nil {
		booking.History = append(booking.History, *entry)
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := s.store.UpdateBookingTx(ctx, tx, booking); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return s.GetBooking(ctx, bookingID)
}

// diffHistoryEntry builds a human-readable change record; a staff change is
// logged as an assignment, everything else as a reschedule. Returns nil when
// nothing changed.
func diffHistoryEntry(old *models.Booking, staffID, serviceID string, start time.Time, actor api.Actor, now time.Time) *models.HistoryEntry {
	var details []string
	action := models.HistoryRescheduled

	if !start.Equal(old.DateTime) {
		details = append(details, fmt.Sprintf("moved from %s to %s",
			old.DateTime.Format(time.RFC3339), start.Format(time.RFC3339)))
	}
	if serviceID != old.ServiceID {
		details = append(details, fmt.Sprintf("service changed from %s to %s", old.ServiceID, serviceID))
	}
	if staffID != old.StaffID {
		action = models.HistoryAssigned
		details = append(details, fmt.Sprintf("reassigned from %s to %s", old.StaffID, staffID))
	}

	if len(details) == 0 {
		return nil
	}

	detail := details[0]
	for _, d := range details[1:] {
		detail += "; " + d
	}

	return &models.HistoryEntry{
		Action:     action,
		ExecutedBy: actor.ID,
		Timestamp:  now,
		Details:    detail,
	}
}

// CancelBooking cancels a booking. A user may only cancel their own booking
// and only before the salon's cancellation deadline; staff and admins cancel
// any booking at any time.
func (s *Service) CancelBooking(ctx context.Context, bookingID string, actor api.Actor) (*api.BookingResponse, error) {
	const op = "service.CancelBooking"

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if models.Role(actor.Role) == models.RoleUser {
		if booking.UserID != actor.ID {
			return nil, forbidden(op, "users can only cancel their own bookings")
		}

		salon, err := s.store.GetSalon(ctx, booking.SalonID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		deadline := time.Duration(salon.BookingRules.CancellationDeadlineHours) * time.Hour
		if booking.DateTime.Sub(s.now()) < deadline {
			return nil, forbidden(op, fmt.Sprintf(
				"bookings must be cancelled at least %d hours in advance",
				salon.BookingRules.CancellationDeadlineHours))
		}
	}

	if err := s.store.UpdateBookingStatus(ctx, bookingID, models.BookingCancelled); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entry := models.HistoryEntry{
		Action:     models.HistoryCancelled,
		ExecutedBy: actor.ID,
		Timestamp:  s.now(),
		Details:    "booking cancelled",
	}
	if err := s.store.AppendBookingHistory(ctx, bookingID, entry); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetBooking(ctx, bookingID)
}

// DeleteBooking removes a booking row entirely. Admin only; cancellation is
// the regular path.
func (s *Service) DeleteBooking(ctx context.Context, bookingID string, actor api.Actor) error {
	const op = "service.DeleteBooking"

	if models.Role(actor.Role) != models.RoleAdmin {
		return forbidden(op, "only admins can delete bookings")
	}

	if _, err := s.store.GetBooking(ctx, bookingID); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.DeleteBooking(ctx, bookingID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
