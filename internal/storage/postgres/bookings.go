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
)

func (s *Storage) CreateBookingTx(ctx context.Context, tx storage.Tx, booking *models.Booking) (string, error) {
	const op = "storage.postgres.CreateBookingTx"

	sqlTx, err := asSQLTx(tx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id := uuid.NewString()

	_, err = sqlTx.ExecContext(ctx,
		`INSERT INTO bookings
		(booking_id, user_id, service_id, staff_id, salon_id, starts_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, booking.UserID, booking.ServiceID, booking.StaffID, booking.SalonID,
		booking.DateTime, string(booking.Status),
	)
	if err != nil {
		return "", mapPQError(op, err)
	}

	for _, h := range booking.History {
		if err := insertHistory(ctx, sqlTx, id, h); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	return id, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertHistory(ctx context.Context, db execer, bookingID string, h models.HistoryEntry) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO booking_history (booking_id, action, executed_by, executed_at, details)
		VALUES ($1, $2, $3, $4, $5)`,
		bookingID, string(h.Action), h.ExecutedBy, h.Timestamp, h.Details,
	)

	return err
}

func (s *Storage) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	const op = "storage.postgres.GetBooking"

	booking := &models.Booking{ID: id}

	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, service_id, staff_id, salon_id, starts_at, status
		FROM bookings WHERE booking_id=$1`, id).
		Scan(&booking.UserID, &booking.ServiceID, &booking.StaffID,
			&booking.SalonID, &booking.DateTime, &booking.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT action, executed_by, executed_at, details
		FROM booking_history WHERE booking_id=$1 ORDER BY executed_at`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	for rows.Next() {
		var h models.HistoryEntry
		if err := rows.Scan(&h.Action, &h.ExecutedBy, &h.Timestamp, &h.Details); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		booking.History = append(booking.History, h)
	}

	return booking, nil
}

// ListBookingsForStaff returns non-cancelled bookings starting in [from, to],
// without history (conflict checks and slot queries don't need it).
func (s *Storage) ListBookingsForStaff(ctx context.Context, staffID string, from, to time.Time) ([]*models.Booking, error) {
	const op = "storage.postgres.ListBookingsForStaff"

	rows, err := s.db.QueryContext(ctx,
		`SELECT booking_id, user_id, service_id, staff_id, salon_id, starts_at, status
		FROM bookings
		WHERE staff_id=$1 AND starts_at >= $2 AND starts_at <= $3 AND status != $4
		ORDER BY starts_at`,
		staffID, from, to, string(models.BookingCancelled),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var result []*models.Booking
	for rows.Next() {
		booking := &models.Booking{}
		err := rows.Scan(&booking.ID, &booking.UserID, &booking.ServiceID,
			&booking.StaffID, &booking.SalonID, &booking.DateTime, &booking.Status)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		result = append(result, booking)
	}

	return result, nil
}

func (s *Storage) UpdateBookingTx(ctx context.Context, tx storage.Tx, booking *models.Booking) error {
	const op = "storage.postgres.UpdateBookingTx"

	sqlTx, err := asSQLTx(tx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := sqlTx.ExecContext(ctx,
		`UPDATE bookings
		SET user_id=$1, service_id=$2, staff_id=$3, starts_at=$4, status=$5
		WHERE booking_id=$6`,
		booking.UserID, booking.ServiceID, booking.StaffID,
		booking.DateTime, string(booking.Status), booking.ID,
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

	// History is append-only; rewrite only the entries not yet stored.
	var stored int
	err = sqlTx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM booking_history WHERE booking_id=$1`, booking.ID).
		Scan(&stored)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for i := stored; i < len(booking.History); i++ {
		if err := insertHistory(ctx, sqlTx, booking.ID, booking.History[i]); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

func (s *Storage) UpdateBookingStatus(ctx context.Context, bookingID string, status models.BookingStatus) error {
	const op = "storage.postgres.UpdateBookingStatus"

	res, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET status=$1 WHERE booking_id=$2`,
		string(status), bookingID,
	)
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

func (s *Storage) AppendBookingHistory(ctx context.Context, bookingID string, entry models.HistoryEntry) error {
	const op = "storage.postgres.AppendBookingHistory"

	if err := insertHistory(ctx, s.db, bookingID, entry); err != nil {
		return mapPQError(op, err)
	}

	return nil
}

func (s *Storage) DeleteBooking(ctx context.Context, bookingID string) error {
	const op = "storage.postgres.DeleteBooking"

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM bookings WHERE booking_id=$1`, bookingID)
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
