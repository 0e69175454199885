package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"salon-service/internal/models"
	"salon-service/internal/storage"
	"salon-service/pkg/response"

	"github.com/lib/pq"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *Storage) BeginTx(ctx context.Context) (storage.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// asSQLTx unwraps the transaction handed back by BeginTx.
func asSQLTx(tx storage.Tx) (*sql.Tx, error) {
	sqlTx, ok := tx.(*sql.Tx)
	if !ok {
		return nil, fmt.Errorf("unexpected transaction type %T", tx)
	}
	return sqlTx, nil
}

// #### directory ####

func (s *Storage) GetSalon(ctx context.Context, id string) (*models.Salon, error) {
	const op = "storage.postgres.GetSalon"

	salon := &models.Salon{ID: id}

	err := s.db.QueryRowContext(ctx,
		`SELECT salon_name, cancellation_deadline_hours, booking_lead_time_minutes,
			booking_horizon_days, send_reminder_emails
		FROM salons WHERE salon_id=$1`, id).
		Scan(
			&salon.Name,
			&salon.BookingRules.CancellationDeadlineHours,
			&salon.BookingRules.BookingLeadTimeMinutes,
			&salon.BookingRules.BookingHorizonDays,
			&salon.BookingRules.SendReminderEmails,
		)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT weekday, is_open, open_time, close_time
		FROM salon_opening_hours WHERE salon_id=$1`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	for rows.Next() {
		var oh models.OpeningHours
		if err := rows.Scan(&oh.Weekday, &oh.IsOpen, &oh.Open, &oh.Close); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if oh.Weekday >= 0 && oh.Weekday <= 6 {
			salon.OpeningHours[oh.Weekday] = oh
		}
	}

	return salon, nil
}

func (s *Storage) GetStaff(ctx context.Context, id string) (*models.Staff, error) {
	const op = "storage.postgres.GetStaff"

	staff := &models.Staff{ID: id}

	err := s.db.QueryRowContext(ctx,
		`SELECT salon_id, staff_name, role, email, is_active
		FROM staff WHERE staff_id=$1`, id).
		Scan(&staff.SalonID, &staff.Name, &staff.Role, &staff.Email, &staff.Active)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT service_id FROM staff_skills WHERE staff_id=$1`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	for rows.Next() {
		var serviceID string
		if err := rows.Scan(&serviceID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		staff.Skills = append(staff.Skills, serviceID)
	}

	return staff, nil
}

func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.postgres.GetUser"

	user := &models.User{ID: id}

	err := s.db.QueryRowContext(ctx,
		`SELECT user_name, email FROM users WHERE user_id=$1`, id).
		Scan(&user.Name, &user.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) GetService(ctx context.Context, id string) (*models.Service, error) {
	const op = "storage.postgres.GetService"

	svc := &models.Service{ID: id}

	err := s.db.QueryRowContext(ctx,
		`SELECT service_name, duration_minutes, price FROM services WHERE service_id=$1`, id).
		Scan(&svc.Name, &svc.DurationMinutes, &svc.Price)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return svc, nil
}

func (s *Storage) GetServiceSalon(ctx context.Context, serviceID, salonID string) (*models.ServiceSalon, error) {
	const op = "storage.postgres.GetServiceSalon"

	assignment := &models.ServiceSalon{ServiceID: serviceID, SalonID: salonID}

	err := s.db.QueryRowContext(ctx,
		`SELECT duration_override, price_override
		FROM service_salons WHERE service_id=$1 AND salon_id=$2`, serviceID, salonID).
		Scan(&assignment.DurationMinutes, &assignment.Price)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return assignment, nil
}

// mapPQError translates constraint violations into sentinel errors.
func mapPQError(op string, err error) error {
	sqlErr, ok := err.(*pq.Error)
	if ok && sqlErr.Code == "23505" {
		return fmt.Errorf("%s: %w", op, response.ErrConflict)
	}
	if ok && sqlErr.Code == "23503" {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return fmt.Errorf("%s: %w", op, err)
}
