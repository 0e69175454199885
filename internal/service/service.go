package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salon-service/internal/lock"
	"salon-service/internal/models"
	"salon-service/internal/notify"
	"salon-service/internal/storage"
	"salon-service/pkg/response"
)

// defaultDurationMinutes is the fallback when a service cannot be found, so
// slot generation degrades instead of failing.
const defaultDurationMinutes = 30

// minConflictWindow floors the neighbor-booking fetch window around a
// candidate; the actual window is never smaller than twice the candidate's
// own duration.
const minConflictWindow = 4 * time.Hour

type Service struct {
	store    Store
	locker   lock.Locker
	notifier notify.Sender

	now func() time.Time
}

func NewService(store Store, locker lock.Locker, notifier notify.Sender) *Service {
	return &Service{
		store:    store,
		locker:   locker,
		notifier: notifier,
		now:      time.Now,
	}
}

type Store interface {
	BeginTx(ctx context.Context) (storage.Tx, error)

	// Directory
	GetSalon(ctx context.Context, id string) (*models.Salon, error)
	GetStaff(ctx context.Context, id string) (*models.Staff, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetService(ctx context.Context, id string) (*models.Service, error)
	GetServiceSalon(ctx context.Context, serviceID, salonID string) (*models.ServiceSalon, error)

	// Availability
	CreateAvailability(ctx context.Context, row *models.Availability) (string, error)
	CreateAvailabilityTx(ctx context.Context, tx storage.Tx, row *models.Availability) (string, error)
	GetAvailability(ctx context.Context, id string) (*models.Availability, error)
	ListAvailability(ctx context.Context, staffID string, from, to time.Time, types []models.AvailabilityType) ([]*models.Availability, error)
	UpdateAvailability(ctx context.Context, row *models.Availability) error
	DeleteAvailability(ctx context.Context, id string) error
	DeleteAvailabilityRangeTx(ctx context.Context, tx storage.Tx, staffID string, from, to time.Time, types []models.AvailabilityType) (int, error)

	// Availability Templates
	CreateTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) (string, error)
	GetTemplate(ctx context.Context, id string) (*models.AvailabilityTemplate, error)
	UpdateTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) error
	DeleteTemplate(ctx context.Context, id string) error

	// Bookings
	CreateBookingTx(ctx context.Context, tx storage.Tx, booking *models.Booking) (string, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookingsForStaff(ctx context.Context, staffID string, from, to time.Time) ([]*models.Booking, error)
	UpdateBookingTx(ctx context.Context, tx storage.Tx, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, bookingID string, status models.BookingStatus) error
	AppendBookingHistory(ctx context.Context, bookingID string, entry models.HistoryEntry) error
	DeleteBooking(ctx context.Context, bookingID string) error
}

// ResolveDuration returns the effective duration in minutes for a service at
// a salon: the salon override wins, then the global duration, then the
// defensive default for a missing service.
func (s *Service) ResolveDuration(ctx context.Context, serviceID, salonID string) (int, error) {
	const op = "service.ResolveDuration"

	assignment, err := s.store.GetServiceSalon(ctx, serviceID, salonID)
	if err == nil && assignment.DurationMinutes != nil {
		return *assignment.DurationMinutes, nil
	}
	if err != nil && !errors.Is(err, response.ErrNotFound) {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	svc, err := s.store.GetService(ctx, serviceID)
	if errors.Is(err, response.ErrNotFound) {
		return defaultDurationMinutes, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return svc.DurationMinutes, nil
}

// salonWindow computes the absolute opening window for a salon on a calendar
// day. Both zero times mean the salon is closed that day.
func salonWindow(salon *models.Salon, date time.Time) (time.Time, time.Time, error) {
	hours := salon.HoursFor(date.Weekday())
	if hours == nil || !hours.IsOpen {
		return time.Time{}, time.Time{}, nil
	}

	open, err := combine(date, hours.Open)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("open time: %w", err)
	}
	closeAt, err := combine(date, hours.Close)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("close time: %w", err)
	}

	return open, closeAt, nil
}

func combine(date time.Time, hhmm string) (time.Time, error) {
	clock, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, date.Location()), nil
}

func badRequest(op, msg string) error {
	return fmt.Errorf("%s: %w", op, response.BadRequest(msg))
}

func forbidden(op, msg string) error {
	return fmt.Errorf("%s: %s: %w", op, msg, response.ErrForbidden)
}
