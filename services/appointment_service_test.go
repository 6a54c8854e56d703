package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"modernmen-backend/models"
	"modernmen-backend/testutil"
)

type appointmentEnv struct {
	db       *gorm.DB
	f        *testutil.Fixture
	clock    *testutil.Clock
	notifier *testutil.FakeNotifier
	events   *testutil.Events
	svc      *AppointmentService
}

func newAppointmentEnv(t *testing.T) *appointmentEnv {
	db := testutil.NewDB(t)
	env := &appointmentEnv{
		db:       db,
		f:        testutil.Seed(t, db, "Sharp Cuts"),
		clock:    testutil.NewClock(testutil.At(0, 8, 0)),
		notifier: &testutil.FakeNotifier{},
		events:   &testutil.Events{},
	}
	env.svc = NewAppointmentService(db, env.notifier, env.events).WithClock(env.clock.Now)
	return env
}

func (e *appointmentEnv) book(t *testing.T, start time.Time) (*models.Appointment, error) {
	t.Helper()
	return e.svc.Create(context.Background(), testutil.Session(e.f.Manager), CreateAppointmentInput{
		CustomerID: e.f.Customer.ID,
		ServiceID:  e.f.Service.ID,
		StylistID:  e.f.Stylist.ID,
		StartTime:  start,
	})
}

func TestCreateAppointment(t *testing.T) {
	env := newAppointmentEnv(t)

	appt, err := env.book(t, testutil.At(0, 10, 0))
	require.NoError(t, err)

	assert.Equal(t, models.StatusScheduled, appt.Status)
	assert.Equal(t, 30, appt.Duration)
	assert.Equal(t, testutil.At(0, 10, 30), appt.EndTime)
	assert.Equal(t, int64(3500), appt.PriceCents)
	assert.Regexp(t, `^APT-20300107-[A-Z0-9]{4}$`, appt.BookingNumber)

	var customer models.Customer
	require.NoError(t, env.db.First(&customer, "id = ?", env.f.Customer.ID).Error)
	assert.Equal(t, 100, customer.LoyaltyPoints)

	assert.Len(t, env.notifier.EmailsTo(env.f.Customer.Email), 1)
	assert.Len(t, env.notifier.EmailsTo(env.f.StylistUser.Email), 1)
	assert.Equal(t, []string{EventAppointmentCreated}, env.events.Names)

	var history []models.AppointmentStatusChange
	require.NoError(t, env.db.Where("appointment_id = ?", appt.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusScheduled, history[0].ToStatus)
}

func TestCreateAppointmentConflicts(t *testing.T) {
	env := newAppointmentEnv(t)

	first, err := env.book(t, testutil.At(0, 10, 0))
	require.NoError(t, err)

	_, err = env.book(t, testutil.At(0, 10, 15))
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	_, err = env.book(t, testutil.At(0, 9, 45))
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// back-to-back bookings share an endpoint but do not overlap
	_, err = env.book(t, testutil.At(0, 10, 30))
	assert.NoError(t, err)
	_, err = env.book(t, testutil.At(0, 9, 30))
	assert.NoError(t, err)

	_, err = env.svc.ChangeStatus(context.Background(), testutil.Session(env.f.Manager), first.ID, models.StatusCancelled, "customer called")
	require.NoError(t, err)
	_, err = env.book(t, testutil.At(0, 10, 0))
	assert.NoError(t, err, "cancelled appointments free their slot")
}

func TestCreateAppointmentRoomConflict(t *testing.T) {
	env := newAppointmentEnv(t)
	room := models.Resource{TenantID: env.f.Tenant.ID, Type: models.ResourceRoom, Name: "Suite 1", IsActive: true}
	require.NoError(t, env.db.Create(&room).Error)

	other := models.Stylist{TenantID: env.f.Tenant.ID, UserID: testutil.NewUser(t, env.db, env.f.Tenant.ID, "stylist", "second@sharp.test").ID, IsActive: true}
	require.NoError(t, env.db.Create(&other).Error)

	actor := testutil.Session(env.f.Manager)
	_, err := env.svc.Create(context.Background(), actor, CreateAppointmentInput{
		CustomerID: env.f.Customer.ID, ServiceID: env.f.Service.ID, StylistID: env.f.Stylist.ID,
		RoomID: &room.ID, StartTime: testutil.At(0, 11, 0),
	})
	require.NoError(t, err)

	_, err = env.svc.Create(context.Background(), actor, CreateAppointmentInput{
		CustomerID: env.f.Customer.ID, ServiceID: env.f.Service.ID, StylistID: other.ID,
		RoomID: &room.ID, StartTime: testutil.At(0, 11, 0),
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestCreateAppointmentValidation(t *testing.T) {
	env := newAppointmentEnv(t)

	_, err := env.book(t, testutil.At(0, 7, 0))
	assert.ErrorIs(t, err, ErrInvalidInput, "past start")

	_, err = env.book(t, testutil.At(0, 17, 45))
	assert.ErrorIs(t, err, ErrOutsideHours, "runs past closing")

	_, err = env.book(t, testutil.At(0, 8, 30))
	assert.ErrorIs(t, err, ErrOutsideHours, "before opening")

	_, err = env.book(t, testutil.At(6, 10, 0))
	assert.ErrorIs(t, err, ErrOutsideHours, "closed on sunday")

	_, err = env.svc.Create(context.Background(), testutil.Session(env.f.Manager), CreateAppointmentInput{
		CustomerID: env.f.Customer.ID, ServiceID: env.f.Service.ID, StylistID: env.f.Stylist.ID,
		StartTime: testutil.At(0, 10, 0), Duration: 10,
	})
	assert.ErrorIs(t, err, ErrInvalidInput, "too short")

	_, err = env.svc.Create(context.Background(), testutil.Session(env.f.Manager), CreateAppointmentInput{
		CustomerID: env.f.Customer.ID, ServiceID: uuid.New(), StylistID: env.f.Stylist.ID,
		StartTime: testutil.At(0, 10, 0),
	})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, env.db.Model(&env.f.Stylist).Update("is_active", false).Error)
	_, err = env.book(t, testutil.At(0, 10, 0))
	assert.ErrorIs(t, err, ErrInactiveReference)
}

func TestCreateAppointmentStylistHours(t *testing.T) {
	env := newAppointmentEnv(t)
	hours := models.WorkingHours{"monday": {Open: "12:00", Close: "16:00"}}
	require.NoError(t, env.db.Model(&env.f.Stylist).Update("working_hours", hours).Error)

	_, err := env.book(t, testutil.At(0, 10, 0))
	assert.ErrorIs(t, err, ErrOutsideHours)

	_, err = env.book(t, testutil.At(0, 12, 0))
	assert.NoError(t, err)

	// tuesday is missing from the stylist's schedule
	_, err = env.book(t, testutil.At(1, 12, 0))
	assert.ErrorIs(t, err, ErrOutsideHours)
}

func TestCreateAppointmentAutoConfirm(t *testing.T) {
	env := newAppointmentEnv(t)
	require.NoError(t, env.db.Model(&models.Settings{}).
		Where("tenant_id = ?", env.f.Tenant.ID).
		Update("auto_confirm_appointments", true).Error)

	appt, err := env.book(t, testutil.At(0, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, appt.Status)
}

func TestCustomerBooksOnlyForThemselves(t *testing.T) {
	env := newAppointmentEnv(t)
	other := models.Customer{TenantID: env.f.Tenant.ID, Name: "Walk In", Phone: "+15550002222", IsActive: true}
	require.NoError(t, env.db.Create(&other).Error)

	actor := testutil.Session(env.f.CustomerUser)
	_, err := env.svc.Create(context.Background(), actor, CreateAppointmentInput{
		CustomerID: other.ID, ServiceID: env.f.Service.ID, StylistID: env.f.Stylist.ID,
		StartTime: testutil.At(0, 10, 0),
	})
	assert.ErrorIs(t, err, ErrForbidden)

	appt, err := env.svc.Create(context.Background(), actor, CreateAppointmentInput{
		ServiceID: env.f.Service.ID, StylistID: env.f.Stylist.ID, StartTime: testutil.At(0, 10, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, env.f.Customer.ID, appt.CustomerID)
}

func TestAppointmentVisibility(t *testing.T) {
	env := newAppointmentEnv(t)
	appt, err := env.book(t, testutil.At(0, 10, 0))
	require.NoError(t, err)

	_, err = env.svc.Get(context.Background(), testutil.Session(env.f.CustomerUser), appt.ID)
	assert.NoError(t, err)
	_, err = env.svc.Get(context.Background(), testutil.Session(env.f.StylistUser), appt.ID)
	assert.NoError(t, err)

	stranger := testutil.NewUser(t, env.db, env.f.Tenant.ID, "customer", "stranger@sharp.test")
	_, err = env.svc.Get(context.Background(), testutil.Session(stranger), appt.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	otherStylist := testutil.NewUser(t, env.db, env.f.Tenant.ID, "stylist", "other@sharp.test")
	_, err = env.svc.Get(context.Background(), testutil.Session(otherStylist), appt.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	foreign := testutil.Seed(t, env.db, "Other Shop")
	_, err = env.svc.Get(context.Background(), testutil.Session(foreign.Admin), appt.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChangeStatusLifecycle(t *testing.T) {
	env := newAppointmentEnv(t)
	actor := testutil.Session(env.f.Manager)
	appt, err := env.book(t, testutil.At(0, 10, 0))
	require.NoError(t, err)

	_, err = env.svc.ChangeStatus(context.Background(), actor, appt.ID, models.StatusCompleted, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.svc.ChangeStatus(context.Background(), actor, appt.ID, "finished", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.svc.ChangeStatus(context.Background(), actor, appt.ID, models.StatusInProgress, "")
	require.NoError(t, err)
	done, err := env.svc.ChangeStatus(context.Background(), actor, appt.ID, models.StatusCompleted, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)

	var customer models.Customer
	require.NoError(t, env.db.First(&customer, "id = ?", env.f.Customer.ID).Error)
	assert.Equal(t, 1, customer.TotalVisits)
	assert.Equal(t, int64(3500), customer.TotalSpentCents)
	assert.NotNil(t, customer.LastVisit)
	assert.Equal(t, 135, customer.LoyaltyPoints)

	_, err = env.svc.ChangeStatus(context.Background(), actor, appt.ID, models.StatusCancelled, "")
	assert.ErrorIs(t, err, ErrInvalidTransition, "completed is terminal")

	reloaded, err := env.svc.Get(context.Background(), actor, appt.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.History, 3)
}

func TestChangeStatusIsStaffOnly(t *testing.T) {
	env := newAppointmentEnv(t)
	appt, err := env.book(t, testutil.At(0, 10, 0))
	require.NoError(t, err)

	_, err = env.svc.ChangeStatus(context.Background(), testutil.Session(env.f.CustomerUser), appt.ID, models.StatusInProgress, "")
	assert.ErrorIs(t, err, ErrForbidden)

	otherStylist := testutil.NewUser(t, env.db, env.f.Tenant.ID, "stylist", "other-stylist@sharp.test")
	_, err = env.svc.ChangeStatus(context.Background(), testutil.Session(otherStylist), appt.ID, models.StatusConfirmed, "")
	assert.ErrorIs(t, err, ErrForbidden)

	confirmed, err := env.svc.ChangeStatus(context.Background(), testutil.Session(env.f.StylistUser), appt.ID, models.StatusConfirmed, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	var customer models.Customer
	require.NoError(t, env.db.First(&customer, "id = ?", env.f.Customer.ID).Error)
	assert.Zero(t, customer.TotalVisits)
}

func TestRescheduleAppointment(t *testing.T) {
	env := newAppointmentEnv(t)
	actor := testutil.Session(env.f.Manager)
	appt, err := env.book(t, testutil.At(0, 10, 0))
	require.NoError(t, err)
	_, err = env.book(t, testutil.At(0, 14, 0))
	require.NoError(t, err)

	busy := testutil.At(0, 14, 0)
	_, err = env.svc.Update(context.Background(), actor, appt.ID, UpdateAppointmentInput{StartTime: &busy})
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// moving within its own slot only conflicts with itself
	overlapSelf := testutil.At(0, 10, 15)
	_, err = env.svc.Update(context.Background(), actor, appt.ID, UpdateAppointmentInput{StartTime: &overlapSelf})
	assert.NoError(t, err)

	later := testutil.At(0, 15, 0)
	notes := "bring reference photo"
	moved, err := env.svc.Update(context.Background(), actor, appt.ID, UpdateAppointmentInput{StartTime: &later, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, later, moved.StartTime)
	assert.Equal(t, testutil.At(0, 15, 30), moved.EndTime)
	assert.Equal(t, notes, moved.Notes)
	assert.Contains(t, env.events.Names, EventAppointmentUpdated)

	other := testutil.NewUser(t, env.db, env.f.Tenant.ID, "stylist", "third@sharp.test")
	stylist := models.Stylist{TenantID: env.f.Tenant.ID, UserID: other.ID, IsActive: true}
	require.NoError(t, env.db.Create(&stylist).Error)
	_, err = env.svc.Update(context.Background(), testutil.Session(env.f.CustomerUser), appt.ID, UpdateAppointmentInput{StylistID: &stylist.ID})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCancelAppointment(t *testing.T) {
	env := newAppointmentEnv(t)
	appt, err := env.book(t, testutil.At(0, 10, 0))
	require.NoError(t, err)

	customer := testutil.Session(env.f.CustomerUser)
	cancelled, err := env.svc.Cancel(context.Background(), customer, appt.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, "Cancelled by customer", cancelled.CancellationReason)

	_, err = env.svc.Cancel(context.Background(), customer, appt.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	past, err := env.book(t, testutil.At(0, 11, 0))
	require.NoError(t, err)
	env.clock.Advance(4 * time.Hour)
	_, err = env.svc.Cancel(context.Background(), customer, past.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAvailability(t *testing.T) {
	env := newAppointmentEnv(t)
	_, err := env.book(t, testutil.At(0, 10, 0))
	require.NoError(t, err)

	slots, err := env.svc.Availability(context.Background(), env.f.Tenant.ID, env.f.Stylist.ID, env.f.Service.ID, testutil.At(0, 0, 0))
	require.NoError(t, err)
	require.Len(t, slots, 18)
	assert.Equal(t, testutil.At(0, 9, 0), slots[0].StartTime)
	assert.Equal(t, testutil.At(0, 17, 30), slots[17].StartTime)

	for _, s := range slots {
		booked := s.StartTime.Equal(testutil.At(0, 10, 0))
		assert.Equal(t, !booked, s.Available, s.StartTime.Format(time.Kitchen))
	}

	sunday, err := env.svc.Availability(context.Background(), env.f.Tenant.ID, env.f.Stylist.ID, env.f.Service.ID, testutil.At(6, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, sunday)

	env.clock.Advance(4 * time.Hour) // 12:00
	slots, err = env.svc.Availability(context.Background(), env.f.Tenant.ID, env.f.Stylist.ID, env.f.Service.ID, testutil.At(0, 0, 0))
	require.NoError(t, err)
	assert.False(t, slots[5].Available, "11:30 is already past")
	assert.True(t, slots[7].Available, "12:30 is still open")
}
