package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"salon-service/internal/models"
	"salon-service/pkg/response"

	"github.com/google/uuid"
)

func (s *Storage) CreateTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) (string, error) {
	const op = "storage.postgres.CreateTemplate"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	id := uuid.NewString()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO availability_templates (template_id, template_name, staff_id, salon_id)
		VALUES ($1, $2, $3, $4)`,
		id, tpl.Name, tpl.StaffID, tpl.SalonID,
	)
	if err != nil {
		return "", mapPQError(op, err)
	}

	if err := insertSegments(ctx, tx, id, tpl.Days); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func insertSegments(ctx context.Context, tx *sql.Tx, templateID string, days [7][]models.TemplateSegment) error {
	for weekday, segments := range days {
		for position, seg := range segments {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO template_segments
				(template_id, weekday, position, start_time, end_time, segment_type)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				templateID, weekday, position, seg.Start, seg.End, string(seg.Type),
			)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Storage) GetTemplate(ctx context.Context, id string) (*models.AvailabilityTemplate, error) {
	const op = "storage.postgres.GetTemplate"

	tpl := &models.AvailabilityTemplate{ID: id}

	err := s.db.QueryRowContext(ctx,
		`SELECT template_name, staff_id, salon_id
		FROM availability_templates WHERE template_id=$1`, id).
		Scan(&tpl.Name, &tpl.StaffID, &tpl.SalonID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT weekday, start_time, end_time, segment_type
		FROM template_segments WHERE template_id=$1
		ORDER BY weekday, position`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	for rows.Next() {
		var weekday int
		var seg models.TemplateSegment
		if err := rows.Scan(&weekday, &seg.Start, &seg.End, &seg.Type); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if weekday >= 0 && weekday <= 6 {
			tpl.Days[weekday] = append(tpl.Days[weekday], seg)
		}
	}

	return tpl, nil
}

func (s *Storage) UpdateTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) error {
	const op = "storage.postgres.UpdateTemplate"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE availability_templates
		SET template_name=$1, staff_id=$2, salon_id=$3
		WHERE template_id=$4`,
		tpl.Name, tpl.StaffID, tpl.SalonID, tpl.ID,
	)
	if err != nil {
		return mapPQError(op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	// Segments are replaced wholesale; the pattern has no identity beyond
	// its template.
	_, err = tx.ExecContext(ctx,
		`DELETE FROM template_segments WHERE template_id=$1`, tpl.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := insertSegments(ctx, tx, tpl.ID, tpl.Days); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteTemplate(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteTemplate"

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM availability_templates WHERE template_id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}
