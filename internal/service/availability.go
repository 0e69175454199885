package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salon-service/api"
	"salon-service/internal/models"
	"salon-service/internal/schedule"
	"salon-service/pkg/response"
)

// CreateAvailability adds a work/break/absence row for a staff member.
// Absence rows are snapped to day boundaries; staff may only edit their own
// schedule, admins anyone's.
func (s *Service) CreateAvailability(ctx context.Context, req *api.AvailabilityRequest, actor api.Actor) (*api.AvailabilityResponse, error) {
	const op = "service.CreateAvailability"

	row, err := s.availabilityFromRequest(op, req)
	if err != nil {
		return nil, err
	}
	if err := checkScheduleOwnership(op, req.StaffID, actor); err != nil {
		return nil, err
	}
	if _, err := s.store.GetStaff(ctx, req.StaffID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.store.CreateAvailability(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAvailabilityByID(ctx, id)
}

func (s *Service) availabilityFromRequest(op string, req *api.AvailabilityRequest) (*models.Availability, error) {
	if req.StaffID == "" || req.SalonID == "" {
		return nil, badRequest(op, "staff_id and salon_id are required")
	}

	rowType := models.AvailabilityType(req.Type)
	if rowType != models.AvailabilityWork && rowType != models.AvailabilityBreak && rowType != models.AvailabilityAbsence {
		return nil, badRequest(op, "type must be work, break or absence")
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		return nil, badRequest(op, "invalid start, want RFC3339")
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		return nil, badRequest(op, "invalid end, want RFC3339")
	}

	if rowType == models.AvailabilityAbsence {
		start, _ = schedule.DayBounds(start)
		_, end = schedule.DayBounds(end)
	}

	if !end.After(start) {
		return nil, badRequest(op, "end must be after start")
	}

	return &models.Availability{
		StaffID: req.StaffID,
		SalonID: req.SalonID,
		Type:    rowType,
		Start:   start,
		End:     end,
		Note:    req.Note,
	}, nil
}

func checkScheduleOwnership(op, staffID string, actor api.Actor) error {
	switch models.Role(actor.Role) {
	case models.RoleAdmin:
		return nil
	case models.RoleStaff:
		if actor.ID != staffID {
			return forbidden(op, "staff can only edit their own schedule")
		}
		return nil
	default:
		return forbidden(op, "only staff or admins can edit schedules")
	}
}

func (s *Service) GetAvailabilityByID(ctx context.Context, id string) (*api.AvailabilityResponse, error) {
	const op = "service.GetAvailabilityByID"

	row, err := s.store.GetAvailability(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return availabilityResponse(row), nil
}

func availabilityResponse(row *models.Availability) *api.AvailabilityResponse {
	return &api.AvailabilityResponse{
		ID:      row.ID,
		StaffID: row.StaffID,
		SalonID: row.SalonID,
		Type:    string(row.Type),
		Start:   row.Start,
		End:     row.End,
		Note:    row.Note,
	}
}

func (s *Service) ListAvailability(ctx context.Context, staffID string, from, to time.Time) ([]*api.AvailabilityResponse, error) {
	const op = "service.ListAvailability"

	if staffID == "" {
		return nil, badRequest(op, "staff_id is required")
	}

	rows, err := s.store.ListAvailability(ctx, staffID, from, to, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.AvailabilityResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, availabilityResponse(row))
	}

	return result, nil
}

func (s *Service) UpdateAvailability(ctx context.Context, id string, req *api.AvailabilityRequest, actor api.Actor) (*api.AvailabilityResponse, error) {
	const op = "service.UpdateAvailability"

	existing, err := s.store.GetAvailability(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := checkScheduleOwnership(op, existing.StaffID, actor); err != nil {
		return nil, err
	}
	// Reassigning a row to another staff member would plant it in that
	// person's schedule, so the target owner is checked too.
	if req.StaffID != existing.StaffID {
		if err := checkScheduleOwnership(op, req.StaffID, actor); err != nil {
			return nil, err
		}
		if _, err := s.store.GetStaff(ctx, req.StaffID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	row, err := s.availabilityFromRequest(op, req)
	if err != nil {
		return nil, err
	}
	row.ID = id

	if err := s.store.UpdateAvailability(ctx, row); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAvailabilityByID(ctx, id)
}

func (s *Service) DeleteAvailability(ctx context.Context, id string, actor api.Actor) error {
	const op = "service.DeleteAvailability"

	existing, err := s.store.GetAvailability(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := checkScheduleOwnership(op, existing.StaffID, actor); err != nil {
		return err
	}

	if err := s.store.DeleteAvailability(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
