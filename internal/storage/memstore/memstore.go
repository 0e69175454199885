package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"salon-service/internal/models"
	"salon-service/internal/storage"
	"salon-service/pkg/response"

	"github.com/google/uuid"
)

// Storage is an in-memory Store used by tests. Writes under a transaction
// apply immediately; Commit and Rollback are no-ops, which is fine for the
// single-writer paths the tests exercise.
type Storage struct {
	mu sync.Mutex

	Salons        map[string]*models.Salon
	Staff         map[string]*models.Staff
	Users         map[string]*models.User
	Services      map[string]*models.Service
	ServiceSalons map[string]*models.ServiceSalon
	Availability  map[string]*models.Availability
	Templates     map[string]*models.AvailabilityTemplate
	Bookings      map[string]*models.Booking
}

func New() *Storage {
	return &Storage{
		Salons:        map[string]*models.Salon{},
		Staff:         map[string]*models.Staff{},
		Users:         map[string]*models.User{},
		Services:      map[string]*models.Service{},
		ServiceSalons: map[string]*models.ServiceSalon{},
		Availability:  map[string]*models.Availability{},
		Templates:     map[string]*models.AvailabilityTemplate{},
		Bookings:      map[string]*models.Booking{},
	}
}

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

func (s *Storage) BeginTx(ctx context.Context) (storage.Tx, error) {
	return noopTx{}, nil
}

func serviceSalonKey(serviceID, salonID string) string {
	return serviceID + "|" + salonID
}

// #### directory ####

func (s *Storage) GetSalon(_ context.Context, id string) (*models.Salon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	salon, ok := s.Salons[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *salon
	return &cp, nil
}

func (s *Storage) GetStaff(_ context.Context, id string) (*models.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	staff, ok := s.Staff[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *staff
	return &cp, nil
}

func (s *Storage) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.Users[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *Storage) GetService(_ context.Context, id string) (*models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.Services[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *svc
	return &cp, nil
}

func (s *Storage) GetServiceSalon(_ context.Context, serviceID, salonID string) (*models.ServiceSalon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	assignment, ok := s.ServiceSalons[serviceSalonKey(serviceID, salonID)]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *assignment
	return &cp, nil
}

// #### availability ####

func (s *Storage) CreateAvailability(_ context.Context, row *models.Availability) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createAvailabilityLocked(row), nil
}

func (s *Storage) CreateAvailabilityTx(_ context.Context, _ storage.Tx, row *models.Availability) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createAvailabilityLocked(row), nil
}

func (s *Storage) createAvailabilityLocked(row *models.Availability) string {
	cp := *row
	cp.ID = uuid.NewString()
	s.Availability[cp.ID] = &cp
	return cp.ID
}

func (s *Storage) GetAvailability(_ context.Context, id string) (*models.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.Availability[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (s *Storage) ListAvailability(_ context.Context, staffID string, from, to time.Time, types []models.AvailabilityType) ([]*models.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Availability
	for _, row := range s.Availability {
		if row.StaffID != staffID {
			continue
		}
		if !row.Start.Before(to) || !row.End.After(from) {
			continue
		}
		if len(types) > 0 && !containsType(types, row.Type) {
			continue
		}
		cp := *row
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })

	return result, nil
}

func containsType(types []models.AvailabilityType, t models.AvailabilityType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

func (s *Storage) UpdateAvailability(_ context.Context, row *models.Availability) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Availability[row.ID]; !ok {
		return response.ErrNotFound
	}
	cp := *row
	s.Availability[row.ID] = &cp
	return nil
}

func (s *Storage) DeleteAvailability(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Availability[id]; !ok {
		return response.ErrNotFound
	}
	delete(s.Availability, id)
	return nil
}

func (s *Storage) DeleteAvailabilityRangeTx(_ context.Context, _ storage.Tx, staffID string, from, to time.Time, types []models.AvailabilityType) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, row := range s.Availability {
		if row.StaffID != staffID {
			continue
		}
		if row.Start.Before(from) || row.End.After(to) {
			continue
		}
		if !containsType(types, row.Type) {
			continue
		}
		delete(s.Availability, id)
		n++
	}

	return n, nil
}

// #### templates ####

func (s *Storage) CreateTemplate(_ context.Context, tpl *models.AvailabilityTemplate) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *tpl
	cp.ID = uuid.NewString()
	s.Templates[cp.ID] = &cp
	return cp.ID, nil
}

func (s *Storage) GetTemplate(_ context.Context, id string) (*models.AvailabilityTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tpl, ok := s.Templates[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *tpl
	return &cp, nil
}

func (s *Storage) UpdateTemplate(_ context.Context, tpl *models.AvailabilityTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Templates[tpl.ID]; !ok {
		return response.ErrNotFound
	}
	cp := *tpl
	s.Templates[tpl.ID] = &cp
	return nil
}

func (s *Storage) DeleteTemplate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Templates[id]; !ok {
		return response.ErrNotFound
	}
	delete(s.Templates, id)
	return nil
}

// #### bookings ####

func (s *Storage) CreateBookingTx(_ context.Context, _ storage.Tx, booking *models.Booking) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *booking
	cp.ID = uuid.NewString()
	cp.History = append([]models.HistoryEntry(nil), booking.History...)
	s.Bookings[cp.ID] = &cp
	return cp.ID, nil
}

func (s *Storage) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.Bookings[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *booking
	cp.History = append([]models.HistoryEntry(nil), booking.History...)
	return &cp, nil
}

func (s *Storage) ListBookingsForStaff(_ context.Context, staffID string, from, to time.Time) ([]*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Booking
	for _, booking := range s.Bookings {
		if booking.StaffID != staffID || booking.Status == models.BookingCancelled {
			continue
		}
		if booking.DateTime.Before(from) || booking.DateTime.After(to) {
			continue
		}
		cp := *booking
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].DateTime.Before(result[j].DateTime) })

	return result, nil
}

func (s *Storage) UpdateBookingTx(_ context.Context, _ storage.Tx, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Bookings[booking.ID]; !ok {
		return response.ErrNotFound
	}
	cp := *booking
	cp.History = append([]models.HistoryEntry(nil), booking.History...)
	s.Bookings[booking.ID] = &cp
	return nil
}

func (s *Storage) UpdateBookingStatus(_ context.Context, bookingID string, status models.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.Bookings[bookingID]
	if !ok {
		return response.ErrNotFound
	}
	booking.Status = status
	return nil
}

func (s *Storage) AppendBookingHistory(_ context.Context, bookingID string, entry models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.Bookings[bookingID]
	if !ok {
		return response.ErrNotFound
	}
	booking.History = append(booking.History, entry)
	return nil
}

func (s *Storage) DeleteBooking(_ context.Context, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Bookings[bookingID]; !ok {
		return response.ErrNotFound
	}
	delete(s.Bookings, bookingID)
	return nil
}

// AddSalon seeds a salon open every day with the given hours; helper for tests.
func (s *Storage) AddSalon(id, open, close string, rules models.BookingRules) *models.Salon {
	salon := &models.Salon{ID: id, Name: fmt.Sprintf("Salon %s", id), BookingRules: rules}
	for wd := 0; wd < 7; wd++ {
		salon.OpeningHours[wd] = models.OpeningHours{
			Weekday: wd, IsOpen: true, Open: open, Close: close,
		}
	}
	s.Salons[id] = salon
	return salon
}
