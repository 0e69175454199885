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

// maxApplyWeeks bounds one apply call; long horizons are applied in chunks.
const maxApplyWeeks = 52

func (s *Service) CreateTemplate(ctx context.Context, req *api.TemplateRequest, actor api.Actor) (*api.TemplateResponse, error) {
	const op = "service.CreateTemplate"

	tpl, err := templateFromRequest(op, req)
	if err != nil {
		return nil, err
	}
	if err := checkScheduleOwnership(op, req.StaffID, actor); err != nil {
		return nil, err
	}
	if _, err := s.store.GetStaff(ctx, req.StaffID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.store.CreateTemplate(ctx, tpl)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetTemplate(ctx, id)
}

func templateFromRequest(op string, req *api.TemplateRequest) (*models.AvailabilityTemplate, error) {
	if req.Name == "" || req.StaffID == "" || req.SalonID == "" {
		return nil, badRequest(op, "name, staff_id and salon_id are required")
	}

	tpl := &models.AvailabilityTemplate{
		Name:    req.Name,
		StaffID: req.StaffID,
		SalonID: req.SalonID,
	}

	for _, day := range req.Days {
		if day.Weekday < 0 || day.Weekday > 6 {
			return nil, badRequest(op, fmt.Sprintf("weekday %d out of range [0,6]", day.Weekday))
		}
		for _, seg := range day.Segments {
			tpl.Days[day.Weekday] = append(tpl.Days[day.Weekday], models.TemplateSegment{
				Start: seg.Start,
				End:   seg.End,
				Type:  models.SegmentType(seg.Type),
			})
		}
	}

	if err := schedule.ValidateTemplateDays(tpl.Days); err != nil {
		return nil, badRequest(op, err.Error())
	}

	return tpl, nil
}

func (s *Service) GetTemplate(ctx context.Context, id string) (*api.TemplateResponse, error) {
	const op = "service.GetTemplate"

	tpl, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return templateResponse(tpl), nil
}

func templateResponse(tpl *models.AvailabilityTemplate) *api.TemplateResponse {
	resp := &api.TemplateResponse{
		ID:      tpl.ID,
		Name:    tpl.Name,
		StaffID: tpl.StaffID,
		SalonID: tpl.SalonID,
	}

	for weekday, segments := range tpl.Days {
		if len(segments) == 0 {
			continue
		}
		day := api.TemplateDay{Weekday: weekday}
		for _, seg := range segments {
			day.Segments = append(day.Segments, api.TemplateSegment{
				Start: seg.Start,
				End:   seg.End,
				Type:  string(seg.Type),
			})
		}
		resp.Days = append(resp.Days, day)
	}

	return resp
}

func (s *Service) UpdateTemplate(ctx context.Context, id string, req *api.TemplateRequest, actor api.Actor) (*api.TemplateResponse, error) {
	const op = "service.UpdateTemplate"

	existing, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := checkScheduleOwnership(op, existing.StaffID, actor); err != nil {
		return nil, err
	}

	tpl, err := templateFromRequest(op, req)
	if err != nil {
		return nil, err
	}
	tpl.ID = id

	if err := s.store.UpdateTemplate(ctx, tpl); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetTemplate(ctx, id)
}

func (s *Service) DeleteTemplate(ctx context.Context, id string, actor api.Actor) error {
	const op = "service.DeleteTemplate"

	existing, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := checkScheduleOwnership(op, existing.StaffID, actor); err != nil {
		return err
	}

	if err := s.store.DeleteTemplate(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ApplyTemplate materializes a template into concrete availability rows over
// the given weeks in a single transaction. With replace set, prior work and
// break rows on each affected day are removed first; absence rows are never
// touched, so planned time off survives any re-application.
func (s *Service) ApplyTemplate(ctx context.Context, templateID string, req *api.TemplateApplyRequest, actor api.Actor) (*api.TemplateApplyResponse, error) {
	const op = "service.ApplyTemplate"

	tpl, err := s.store.GetTemplate(ctx, templateID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := checkScheduleOwnership(op, tpl.StaffID, actor); err != nil {
		return nil, err
	}

	weekStart, err := time.Parse("2006-01-02", req.WeekStart)
	if err != nil {
		return nil, badRequest(op, "invalid week_start, want YYYY-MM-DD")
	}

	weeks := req.Weeks
	if weeks < 1 {
		weeks = 1
	}
	if weeks > maxApplyWeeks {
		return nil, badRequest(op, fmt.Sprintf("weeks must be at most %d", maxApplyWeeks))
	}

	replace := true
	if req.Replace != nil {
		replace = *req.Replace
	}

	plans, err := schedule.ExpandTemplate(tpl, weekStart, weeks)
	if err != nil {
		return nil, badRequest(op, err.Error())
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	note := fmt.Sprintf("Template: %s", tpl.Name)

	created, replaced := 0, 0
	for _, plan := range plans {
		dayStart, dayEnd := schedule.DayBounds(plan.Date)

		if replace {
			n, err := s.store.DeleteAvailabilityRangeTx(ctx, tx, tpl.StaffID, dayStart, dayEnd,
				[]models.AvailabilityType{models.AvailabilityWork, models.AvailabilityBreak})
			if err != nil {
				return nil, fmt.Errorf("%s: replace day %s: %w", op, plan.Date.Format("2006-01-02"), err)
			}
			replaced += n
		}

		for _, row := range plan.Rows {
			_, err := s.store.CreateAvailabilityTx(ctx, tx, &models.Availability{
				StaffID: tpl.StaffID,
				SalonID: tpl.SalonID,
				Type:    row.Type,
				Start:   row.Start,
				End:     row.End,
				Note:    note,
			})
			if err != nil {
				return nil, fmt.Errorf("%s: create row: %w", op, err)
			}
			created++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return &api.TemplateApplyResponse{Created: created, Replaced: replaced}, nil
}
