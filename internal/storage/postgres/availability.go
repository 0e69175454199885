package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"salon-service/internal/models"
	"salon-service/internal/storage"
	"salon-service/pkg/response"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

func (s *Storage) CreateAvailability(ctx context.Context, row *models.Availability) (string, error) {
	const op = "storage.postgres.CreateAvailability"

	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO availability
		(availability_id, staff_id, salon_id, block_type, start_at, end_at, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, row.StaffID, row.SalonID, string(row.Type), row.Start, row.End, row.Note,
	)
	if err != nil {
		return "", mapPQError(op, err)
	}

	return id, nil
}

func (s *Storage) CreateAvailabilityTx(ctx context.Context, tx storage.Tx, row *models.Availability) (string, error) {
	const op = "storage.postgres.CreateAvailabilityTx"

	sqlTx, err := asSQLTx(tx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id := uuid.NewString()

	_, err = sqlTx.ExecContext(ctx,
		`INSERT INTO availability
		(availability_id, staff_id, salon_id, block_type, start_at, end_at, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, row.StaffID, row.SalonID, string(row.Type), row.Start, row.End, row.Note,
	)
	if err != nil {
		return "", mapPQError(op, err)
	}

	return id, nil
}

func (s *Storage) GetAvailability(ctx context.Context, id string) (*models.Availability, error) {
	const op = "storage.postgres.GetAvailability"

	row := &models.Availability{ID: id}

	err := s.db.QueryRowContext(ctx,
		`SELECT staff_id, salon_id, block_type, start_at, end_at, note
		FROM availability WHERE availability_id=$1`, id).
		Scan(&row.StaffID, &row.SalonID, &row.Type, &row.Start, &row.End, &row.Note)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return row, nil
}

// ListAvailability returns rows overlapping [from, to], optionally filtered
// by type, ordered by start.
func (s *Storage) ListAvailability(ctx context.Context, staffID string, from, to time.Time, types []models.AvailabilityType) ([]*models.Availability, error) {
	const op = "storage.postgres.ListAvailability"

	query := `SELECT availability_id, staff_id, salon_id, block_type, start_at, end_at, note
		FROM availability
		WHERE staff_id=$1 AND start_at < $3 AND end_at > $2`
	args := []any{staffID, from, to}

	if len(types) > 0 {
		typeNames := make([]string, 0, len(types))
		for _, t := range types {
			typeNames = append(typeNames, string(t))
		}
		query += ` AND block_type = ANY($4)`
		args = append(args, pq.Array(typeNames))
	}

	query += ` ORDER BY start_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var result []*models.Availability
	for rows.Next() {
		row := &models.Availability{}
		err := rows.Scan(&row.ID, &row.StaffID, &row.SalonID, &row.Type, &row.Start, &row.End, &row.Note)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		result = append(result, row)
	}

	return result, nil
}

func (s *Storage) UpdateAvailability(ctx context.Context, row *models.Availability) error {
	const op = "storage.postgres.UpdateAvailability"

	res, err := s.db.ExecContext(ctx,
		`UPDATE availability
		SET staff_id=$1, salon_id=$2, block_type=$3, start_at=$4, end_at=$5, note=$6
		WHERE availability_id=$7`,
		row.StaffID, row.SalonID, string(row.Type), row.Start, row.End, row.Note, row.ID,
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

	return nil
}

func (s *Storage) DeleteAvailability(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteAvailability"

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM availability WHERE availability_id=$1`, id)
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

// DeleteAvailabilityRangeTx removes rows of the given types fully inside
// [from, to] for one staff member and reports how many went away. Template
// replacement passes work and break only, which keeps absence rows safe.
func (s *Storage) DeleteAvailabilityRangeTx(ctx context.Context, tx storage.Tx, staffID string, from, to time.Time, types []models.AvailabilityType) (int, error) {
	const op = "storage.postgres.DeleteAvailabilityRangeTx"

	sqlTx, err := asSQLTx(tx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	typeNames := make([]string, 0, len(types))
	for _, t := range types {
		typeNames = append(typeNames, string(t))
	}

	res, err := sqlTx.ExecContext(ctx,
		`DELETE FROM availability
		WHERE staff_id=$1 AND start_at >= $2 AND end_at <= $3 AND block_type = ANY($4)`,
		staffID, from, to, pq.Array(typeNames),
	)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return int(n), nil
}
