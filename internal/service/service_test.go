package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"salon-service/api"
	"salon-service/internal/models"
	"salon-service/internal/storage/memstore"
	"salon-service/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocker struct {
	deny bool
}

func (f *fakeLocker) Lock(_ context.Context, _ string, _ time.Duration) (bool, error) {
	return !f.deny, nil
}

func (f *fakeLocker) Unlock(_ context.Context, _ string) error { return nil }

type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) SendConfirmation(_ context.Context, email, _, _ string) error {
	f.sent = append(f.sent, email)
	return nil
}

// monday is the fixture's reference day; "now" is noon two days before, so
// the default lead time and horizon never interfere unless a test moves now.
var (
	monday   = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	fixedNow = monday.Add(-36 * time.Hour)
)

func at(h, m int) time.Time {
	return monday.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

type fixture struct {
	svc      *Service
	store    *memstore.Storage
	locker   *fakeLocker
	notifier *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	store.AddSalon("salon-1", "09:00", "18:00", models.DefaultBookingRules())

	store.Staff["staff-1"] = &models.Staff{
		ID: "staff-1", SalonID: "salon-1", Name: "Dana", Role: models.RoleStaff,
		Skills: []string{"svc-cut", "svc-color"}, Active: true,
	}
	store.Staff["staff-2"] = &models.Staff{
		ID: "staff-2", SalonID: "salon-1", Name: "Robin", Role: models.RoleStaff,
		Skills: []string{"svc-cut"}, Active: true,
	}
	store.Users["user-1"] = &models.User{ID: "user-1", Name: "Alex", Email: "alex@example.com"}

	store.Services["svc-cut"] = &models.Service{ID: "svc-cut", Name: "Haircut", DurationMinutes: 30}
	store.Services["svc-color"] = &models.Service{ID: "svc-color", Name: "Coloring", DurationMinutes: 90}
	store.ServiceSalons["svc-cut|salon-1"] = &models.ServiceSalon{ServiceID: "svc-cut", SalonID: "salon-1"}
	store.ServiceSalons["svc-color|salon-1"] = &models.ServiceSalon{ServiceID: "svc-color", SalonID: "salon-1"}

	locker := &fakeLocker{}
	notifier := &fakeNotifier{}
	svc := NewService(store, locker, notifier)
	svc.now = func() time.Time { return fixedNow }

	return &fixture{svc: svc, store: store, locker: locker, notifier: notifier}
}

func (f *fixture) addWorkRow(staffID string, start, end time.Time) {
	f.store.Availability["w-"+start.Format(time.RFC3339)] = &models.Availability{
		ID: "w-" + start.Format(time.RFC3339), StaffID: staffID, SalonID: "salon-1",
		Type: models.AvailabilityWork, Start: start, End: end,
	}
}

var (
	userActor  = api.Actor{ID: "user-1", Role: "user"}
	staffActor = api.Actor{ID: "staff-1", Role: "staff"}
	adminActor = api.Actor{ID: "admin-1", Role: "admin"}
)

func TestResolveDuration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dur, err := f.svc.ResolveDuration(ctx, "svc-cut", "salon-1")
	require.NoError(t, err)
	assert.Equal(t, 30, dur, "global duration without override")

	override := 45
	f.store.ServiceSalons["svc-cut|salon-1"].DurationMinutes = &override

	dur, err = f.svc.ResolveDuration(ctx, "svc-cut", "salon-1")
	require.NoError(t, err)
	assert.Equal(t, 45, dur, "salon override wins")

	dur, err = f.svc.ResolveDuration(ctx, "no-such-service", "salon-1")
	require.NoError(t, err)
	assert.Equal(t, 30, dur, "missing service falls back to the default")
}

// Changing a service's duration shifts the computed end of an existing
// booking without touching its stored row.
func TestBookingEndRecomputedFromCurrentDuration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateBooking(ctx, &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(10, 0).Format(time.RFC3339),
	}, userActor)
	require.NoError(t, err)
	assert.Equal(t, at(10, 30), created.EndTime)

	override := 60
	f.store.ServiceSalons["svc-cut|salon-1"].DurationMinutes = &override

	got, err := f.svc.GetBooking(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, at(10, 0), got.DateTime, "stored start unchanged")
	assert.Equal(t, at(11, 0), got.EndTime, "computed end follows the new duration")
}

func TestGetTimeslots_WorkWindow(t *testing.T) {
	f := newFixture(t)
	f.addWorkRow("staff-1", at(9, 0), at(17, 0))

	resp, err := f.svc.GetTimeslots(context.Background(), "staff-1", "svc-cut", "salon-1", "2025-01-06", 15)
	require.NoError(t, err)

	require.Len(t, resp.Slots, 31, "09:00 through 16:30 every 15 minutes")
	assert.Equal(t, at(9, 0).Format(time.RFC3339), resp.Slots[0])
	assert.Equal(t, at(16, 30).Format(time.RFC3339), resp.Slots[len(resp.Slots)-1])
	assert.Equal(t, 30, resp.DurationMinutes)
}

func TestGetTimeslots_ClosedDay(t *testing.T) {
	f := newFixture(t)
	salon := f.store.Salons["salon-1"]
	salon.OpeningHours[1].IsOpen = false // Monday
	f.addWorkRow("staff-1", at(9, 0), at(17, 0))

	resp, err := f.svc.GetTimeslots(context.Background(), "staff-1", "svc-cut", "salon-1", "2025-01-06", 15)
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestGetTimeslots_DefaultOpen(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.GetTimeslots(context.Background(), "staff-1", "svc-cut", "salon-1", "2025-01-06", 15)
	require.NoError(t, err)

	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, at(9, 0).Format(time.RFC3339), resp.Slots[0], "salon open bounds the pseudo-window")
	assert.Equal(t, at(17, 30).Format(time.RFC3339), resp.Slots[len(resp.Slots)-1])
}

func TestGetTimeslots_FullDayAbsence(t *testing.T) {
	f := newFixture(t)
	f.addWorkRow("staff-1", at(9, 0), at(17, 0))
	f.store.Availability["abs-1"] = &models.Availability{
		ID: "abs-1", StaffID: "staff-1", SalonID: "salon-1",
		Type:  models.AvailabilityAbsence,
		Start: monday, End: monday.Add(24*time.Hour - time.Second),
	}

	resp, err := f.svc.GetTimeslots(context.Background(), "staff-1", "svc-cut", "salon-1", "2025-01-06", 15)
	require.NoError(t, err)
	assert.Empty(t, resp.Slots, "absence wins over work")
}

func TestCreateBooking_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(10, 0).Format(time.RFC3339),
	}, userActor)
	require.NoError(t, err)

	assert.Equal(t, "user-1", booking.UserID)
	assert.Equal(t, string(models.BookingConfirmed), booking.Status)
	require.Len(t, booking.History, 1)
	assert.Equal(t, string(models.HistoryCreated), booking.History[0].Action)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "alex@example.com", f.notifier.sent[0])
}

// 10:00-10:30 booked; 10:15 with a 30-minute service overlaps and must be
// rejected with a booking-overlap reason.
func TestCreateBooking_OverlapRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(10, 0).Format(time.RFC3339),
	}, userActor)
	require.NoError(t, err)

	_, err = f.svc.CreateBooking(ctx, &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(10, 15).Format(time.RFC3339),
	}, userActor)
	require.Error(t, err)
	assert.ErrorIs(t, err, response.ErrConflict)
	assert.Contains(t, response.ConflictReason(err), "existing booking")
}

func TestCreateBooking_LeadTimeRejected(t *testing.T) {
	f := newFixture(t)
	f.svc.now = func() time.Time { return at(9, 45) }

	_, err := f.svc.CreateBooking(context.Background(), &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(10, 0).Format(time.RFC3339),
	}, userActor)
	require.Error(t, err)
	assert.ErrorIs(t, err, response.ErrConflict)
	assert.Contains(t, response.ConflictReason(err), "lead time")
}

// A work row from 08:00 must not open the 08:00 hour for direct booking when
// the salon itself opens at 09:00.
func TestCreateBooking_OutsideSalonHoursRejected(t *testing.T) {
	f := newFixture(t)
	f.addWorkRow("staff-1", at(8, 0), at(17, 0))

	_, err := f.svc.CreateBooking(context.Background(), &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(8, 0).Format(time.RFC3339),
	}, userActor)
	require.Error(t, err)
	assert.ErrorIs(t, err, response.ErrConflict)
	assert.Contains(t, response.ConflictReason(err), "opening hours")

	// Inside opening hours the same work row books fine.
	_, err = f.svc.CreateBooking(context.Background(), &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(9, 0).Format(time.RFC3339),
	}, userActor)
	assert.NoError(t, err)
}

func TestCreateBooking_SkillAndAssignmentChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// staff-2 cannot do coloring.
	_, err := f.svc.CreateBooking(ctx, &api.BookingRequest{
		StaffID: "staff-2", ServiceID: "svc-color", SalonID: "salon-1",
		DateTime: at(10, 0).Format(time.RFC3339),
	}, userActor)
	assert.ErrorIs(t, err, response.ErrForbidden)

	// Service without a salon assignment record.
	f.store.Services["svc-spa"] = &models.Service{ID: "svc-spa", Name: "Spa", DurationMinutes: 60}
	f.store.Staff["staff-1"].Skills = append(f.store.Staff["staff-1"].Skills, "svc-spa")

	_, err = f.svc.CreateBooking(ctx, &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-spa", SalonID: "salon-1",
		DateTime: at(10, 0).Format(time.RFC3339),
	}, userActor)
	assert.ErrorIs(t, err, response.ErrForbidden)
}

func TestCreateBooking_CustomerResolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A user cannot book for someone else.
	_, err := f.svc.CreateBooking(ctx, &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(10, 0).Format(time.RFC3339), CustomerID: "user-2",
	}, userActor)
	assert.ErrorIs(t, err, response.ErrForbidden)

	// Staff must name the customer.
	_, err = f.svc.CreateBooking(ctx, &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(11, 0).Format(time.RFC3339),
	}, staffActor)
	assert.ErrorIs(t, err, response.ErrBadRequest)

	booking, err := f.svc.CreateBooking(ctx, &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(11, 0).Format(time.RFC3339), CustomerID: "user-1",
	}, staffActor)
	require.NoError(t, err)
	assert.Equal(t, "user-1", booking.UserID)
}

func TestCreateBooking_Locked(t *testing.T) {
	f := newFixture(t)
	f.locker.deny = true

	_, err := f.svc.CreateBooking(context.Background(), &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(10, 0).Format(time.RFC3339),
	}, userActor)
	assert.ErrorIs(t, err, response.ErrLocked)
}

func TestUpdateBooking_RescheduleExcludesSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(10, 0).Format(time.RFC3339),
	}, userActor)
	require.NoError(t, err)

	// Nudge by 15 minutes: overlaps its own old slot, which must not block.
	newTime := at(10, 15).Format(time.RFC3339)
	updated, err := f.svc.UpdateBooking(ctx, booking.ID, &api.BookingUpdateRequest{
		DateTime: &newTime,
	}, userActor)
	require.NoError(t, err)

	assert.Equal(t, at(10, 15), updated.DateTime)
	require.Len(t, updated.History, 2)
	assert.Equal(t, string(models.HistoryRescheduled), updated.History[1].Action)
	assert.Contains(t, updated.History[1].Details, "moved from")
}

func TestUpdateBooking_ReassignStaff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(10, 0).Format(time.RFC3339),
	}, userActor)
	require.NoError(t, err)

	newStaff := "staff-2"
	updated, err := f.svc.UpdateBooking(ctx, booking.ID, &api.BookingUpdateRequest{
		StaffID: &newStaff,
	}, adminActor)
	require.NoError(t, err)

	assert.Equal(t, "staff-2", updated.StaffID)
	require.Len(t, updated.History, 2)
	assert.Equal(t, string(models.HistoryAssigned), updated.History[1].Action)
}

func TestUpdateBooking_ConflictWithOtherBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(10, 0).Format(time.RFC3339),
	}, userActor)
	require.NoError(t, err)

	second, err := f.svc.CreateBooking(ctx, &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(12, 0).Format(time.RFC3339),
	}, userActor)
	require.NoError(t, err)

	clash := at(10, 15).Format(time.RFC3339)
	_, err = f.svc.UpdateBooking(ctx, second.ID, &api.BookingUpdateRequest{
		DateTime: &clash,
	}, userActor)
	assert.ErrorIs(t, err, response.ErrConflict)
}

func TestCancelBooking_DeadlineAsymmetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(10, 0).Format(time.RFC3339),
	}, userActor)
	require.NoError(t, err)

	// 22 hours before start: inside the 24h deadline, user is refused.
	f.svc.now = func() time.Time { return at(10, 0).Add(-22 * time.Hour) }
	_, err = f.svc.CancelBooking(ctx, booking.ID, userActor)
	assert.ErrorIs(t, err, response.ErrForbidden)

	// Staff may cancel regardless of the deadline.
	cancelled, err := f.svc.CancelBooking(ctx, booking.ID, staffActor)
	require.NoError(t, err)
	assert.Equal(t, string(models.BookingCancelled), cancelled.Status)
	last := cancelled.History[len(cancelled.History)-1]
	assert.Equal(t, string(models.HistoryCancelled), last.Action)
}

func TestCancelBooking_UserBeforeDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(10, 0).Format(time.RFC3339),
	}, userActor)
	require.NoError(t, err)

	cancelled, err := f.svc.CancelBooking(ctx, booking.ID, userActor)
	require.NoError(t, err)
	assert.Equal(t, string(models.BookingCancelled), cancelled.Status)

	// The freed slot is bookable again.
	_, err = f.svc.CreateBooking(ctx, &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(10, 0).Format(time.RFC3339),
	}, userActor)
	assert.NoError(t, err)
}

func TestUpdateBooking_OnlyOwn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(10, 0).Format(time.RFC3339),
	}, userActor)
	require.NoError(t, err)

	newTime := at(11, 0).Format(time.RFC3339)
	_, err = f.svc.UpdateBooking(ctx, booking.ID, &api.BookingUpdateRequest{
		DateTime: &newTime,
	}, api.Actor{ID: "user-2", Role: "user"})
	assert.ErrorIs(t, err, response.ErrForbidden)
}

func TestCancelBooking_OnlyOwn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(10, 0).Format(time.RFC3339),
	}, userActor)
	require.NoError(t, err)

	_, err = f.svc.CancelBooking(ctx, booking.ID, api.Actor{ID: "user-2", Role: "user"})
	assert.ErrorIs(t, err, response.ErrForbidden)
}

func TestCreateAvailability_AbsenceSnapsToDayBounds(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.CreateAvailability(context.Background(), &api.AvailabilityRequest{
		StaffID: "staff-1", SalonID: "salon-1", Type: "absence",
		Start: at(14, 30).Format(time.RFC3339),
		End:   at(16, 0).Format(time.RFC3339),
		Note:  "dentist",
	}, staffActor)
	require.NoError(t, err)

	assert.Equal(t, monday, resp.Start)
	assert.Equal(t, monday.Add(24*time.Hour-time.Second), resp.End)
}

func TestCreateAvailability_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateAvailability(ctx, &api.AvailabilityRequest{
		StaffID: "staff-1", SalonID: "salon-1", Type: "work",
		Start: at(17, 0).Format(time.RFC3339),
		End:   at(9, 0).Format(time.RFC3339),
	}, staffActor)
	assert.ErrorIs(t, err, response.ErrBadRequest, "end before start")

	_, err = f.svc.CreateAvailability(ctx, &api.AvailabilityRequest{
		StaffID: "staff-1", SalonID: "salon-1", Type: "lunch",
		Start: at(12, 0).Format(time.RFC3339),
		End:   at(13, 0).Format(time.RFC3339),
	}, staffActor)
	assert.ErrorIs(t, err, response.ErrBadRequest, "unknown type")

	// Staff cannot edit another staff member's schedule.
	_, err = f.svc.CreateAvailability(ctx, &api.AvailabilityRequest{
		StaffID: "staff-2", SalonID: "salon-1", Type: "work",
		Start: at(9, 0).Format(time.RFC3339),
		End:   at(17, 0).Format(time.RFC3339),
	}, staffActor)
	assert.ErrorIs(t, err, response.ErrForbidden)
}

// Updating a row must not let staff move it into a colleague's schedule by
// swapping the staff_id.
func TestUpdateAvailability_CannotReassignToColleague(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateAvailability(ctx, &api.AvailabilityRequest{
		StaffID: "staff-1", SalonID: "salon-1", Type: "break",
		Start: at(12, 0).Format(time.RFC3339),
		End:   at(13, 0).Format(time.RFC3339),
	}, staffActor)
	require.NoError(t, err)

	_, err = f.svc.UpdateAvailability(ctx, created.ID, &api.AvailabilityRequest{
		StaffID: "staff-2", SalonID: "salon-1", Type: "break",
		Start: at(12, 0).Format(time.RFC3339),
		End:   at(13, 0).Format(time.RFC3339),
	}, staffActor)
	assert.ErrorIs(t, err, response.ErrForbidden)

	row, err := f.svc.GetAvailabilityByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", row.StaffID, "row must stay in the owner's schedule")

	// Admins may move a row, but only onto an existing staff member.
	_, err = f.svc.UpdateAvailability(ctx, created.ID, &api.AvailabilityRequest{
		StaffID: "no-such-staff", SalonID: "salon-1", Type: "break",
		Start: at(12, 0).Format(time.RFC3339),
		End:   at(13, 0).Format(time.RFC3339),
	}, adminActor)
	assert.ErrorIs(t, err, response.ErrNotFound)

	moved, err := f.svc.UpdateAvailability(ctx, created.ID, &api.AvailabilityRequest{
		StaffID: "staff-2", SalonID: "salon-1", Type: "break",
		Start: at(12, 0).Format(time.RFC3339),
		End:   at(13, 0).Format(time.RFC3339),
	}, adminActor)
	require.NoError(t, err)
	assert.Equal(t, "staff-2", moved.StaffID)
}

func defaultWeekRequest() *api.TemplateRequest {
	return &api.TemplateRequest{
		Name: "Default Week", StaffID: "staff-1", SalonID: "salon-1",
		Days: []api.TemplateDay{{
			Weekday: 1,
			Segments: []api.TemplateSegment{
				{Start: "09:00", End: "12:00", Type: "work"},
				{Start: "12:00", End: "12:30", Type: "break"},
				{Start: "12:30", End: "17:00", Type: "work"},
			},
		}},
	}
}

func TestApplyTemplate_ReplacePreservesAbsences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tpl, err := f.svc.CreateTemplate(ctx, defaultWeekRequest(), adminActor)
	require.NoError(t, err)

	// Prior schedule on the first Monday and an absence on the second.
	f.addWorkRow("staff-1", at(9, 0), at(17, 0))
	nextMonday := monday.AddDate(0, 0, 7)
	f.store.Availability["abs-next"] = &models.Availability{
		ID: "abs-next", StaffID: "staff-1", SalonID: "salon-1",
		Type:  models.AvailabilityAbsence,
		Start: nextMonday, End: nextMonday.Add(24*time.Hour - time.Second),
		Note: "vacation",
	}

	result, err := f.svc.ApplyTemplate(ctx, tpl.ID, &api.TemplateApplyRequest{
		WeekStart: "2025-01-06", Weeks: 2,
	}, adminActor)
	require.NoError(t, err)

	assert.Equal(t, 6, result.Created, "3 segments x 2 weeks")
	assert.Equal(t, 1, result.Replaced, "only the prior work row")

	_, err = f.svc.GetAvailabilityByID(ctx, "abs-next")
	assert.NoError(t, err, "absence must survive template replacement")

	rows, err := f.svc.ListAvailability(ctx, "staff-1", monday, nextMonday.AddDate(0, 0, 1))
	require.NoError(t, err)

	templated := 0
	for _, row := range rows {
		if row.Note == "Template: Default Week" {
			templated++
		}
	}
	assert.Equal(t, 6, templated)
}

func TestApplyTemplate_NonReplaceIsAdditive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tpl, err := f.svc.CreateTemplate(ctx, defaultWeekRequest(), adminActor)
	require.NoError(t, err)

	noReplace := false
	req := &api.TemplateApplyRequest{WeekStart: "2025-01-06", Weeks: 1, Replace: &noReplace}

	first, err := f.svc.ApplyTemplate(ctx, tpl.ID, req, adminActor)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Created)
	assert.Equal(t, 0, first.Replaced)

	second, err := f.svc.ApplyTemplate(ctx, tpl.ID, req, adminActor)
	require.NoError(t, err)
	assert.Equal(t, 3, second.Created)

	rows, err := f.svc.ListAvailability(ctx, "staff-1", monday, monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, rows, 6, "segments are additive, not deduplicated")
}

func TestCreateTemplate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := defaultWeekRequest()
	req.Days[0].Weekday = 7
	_, err := f.svc.CreateTemplate(ctx, req, adminActor)
	assert.ErrorIs(t, err, response.ErrBadRequest, "weekday out of range")

	req = defaultWeekRequest()
	req.Days[0].Segments[0].Start = "9:00"
	_, err = f.svc.CreateTemplate(ctx, req, adminActor)
	assert.ErrorIs(t, err, response.ErrBadRequest, "loose HH:mm")
}

func TestDeleteBooking_AdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, &api.BookingRequest{
		StaffID: "staff-1", ServiceID: "svc-cut", SalonID: "salon-1",
		DateTime: at(10, 0).Format(time.RFC3339),
	}, userActor)
	require.NoError(t, err)

	err = f.svc.DeleteBooking(ctx, booking.ID, userActor)
	assert.ErrorIs(t, err, response.ErrForbidden)

	err = f.svc.DeleteBooking(ctx, booking.ID, adminActor)
	require.NoError(t, err)

	_, err = f.svc.GetBooking(ctx, booking.ID)
	assert.True(t, errors.Is(err, response.ErrNotFound))
}
