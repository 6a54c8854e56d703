package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modernmen-backend/models"
	"modernmen-backend/testutil"
)

func TestDeactivateStylistSweep(t *testing.T) {
	env := newAppointmentEnv(t)
	resources := NewResourceService(env.db, env.notifier, env.events).WithClock(env.clock.Now)

	early, err := env.book(t, testutil.At(0, 9, 0))
	require.NoError(t, err)
	first, err := env.book(t, testutil.At(0, 10, 0))
	require.NoError(t, err)
	second, err := env.book(t, testutil.At(1, 12, 0))
	require.NoError(t, err)
	cancelled, err := env.book(t, testutil.At(1, 15, 0))
	require.NoError(t, err)
	_, err = env.svc.ChangeStatus(context.Background(), testutil.Session(env.f.Manager), cancelled.ID, models.StatusCancelled, "")
	require.NoError(t, err)

	env.clock.Advance(90 * time.Minute) // 09:30, the 09:00 visit has started
	env.notifier.Emails = nil

	actor := env.f.Manager.ID
	result, err := resources.Deactivate(context.Background(), env.f.Tenant.ID, models.ResourceStaff, env.f.Stylist.ID, "sick leave", &actor)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Affected)
	assert.Zero(t, result.Failed)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID}, result.AppointmentIDs)
	assert.Len(t, env.notifier.EmailsTo(env.f.Customer.Email), 2)

	var stylist models.Stylist
	require.NoError(t, env.db.First(&stylist, "id = ?", env.f.Stylist.ID).Error)
	assert.False(t, stylist.IsActive)
	assert.Equal(t, "sick leave", stylist.DeactivationReason)
	assert.NotNil(t, stylist.DeactivatedAt)

	var flagged models.Appointment
	require.NoError(t, env.db.First(&flagged, "id = ?", first.ID).Error)
	assert.Equal(t, models.StatusRequiresRescheduling, flagged.Status)
	assert.True(t, flagged.RequiresRescheduling)
	assert.Equal(t, "sick leave", flagged.ReschedulingReason)
	require.NotNil(t, flagged.OriginalStartTime)
	assert.True(t, flagged.OriginalStartTime.Equal(testutil.At(0, 10, 0)))

	var untouched models.Appointment
	require.NoError(t, env.db.First(&untouched, "id = ?", early.ID).Error)
	assert.Equal(t, models.StatusScheduled, untouched.Status)
	var stillCancelled models.Appointment
	require.NoError(t, env.db.First(&stillCancelled, "id = ?", cancelled.ID).Error)
	assert.Equal(t, models.StatusCancelled, stillCancelled.Status)

	var logs []models.ResourceLog
	require.NoError(t, env.db.Where("resource_id = ?", env.f.Stylist.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ResourceActionDeactivated, logs[0].Action)
	assert.Equal(t, 2, logs[0].AffectedCount)

	_, err = env.book(t, testutil.At(1, 10, 0))
	assert.ErrorIs(t, err, ErrInactiveReference)
}

func TestReactivateStylistRestoresFreeSlots(t *testing.T) {
	env := newAppointmentEnv(t)
	resources := NewResourceService(env.db, env.notifier, env.events).WithClock(env.clock.Now)

	first, err := env.book(t, testutil.At(0, 10, 0))
	require.NoError(t, err)
	second, err := env.book(t, testutil.At(0, 12, 0))
	require.NoError(t, err)

	_, err = resources.Deactivate(context.Background(), env.f.Tenant.ID, models.ResourceStaff, env.f.Stylist.ID, "", nil)
	require.NoError(t, err)

	// a walk-in took the 12:00 slot while the stylist was flagged
	walkIn := models.Appointment{
		TenantID:      env.f.Tenant.ID,
		BookingNumber: "APT-20300107-WALK",
		CustomerID:    env.f.Customer.ID,
		ServiceID:     env.f.Service.ID,
		StylistID:     env.f.Stylist.ID,
		StartTime:     testutil.At(0, 12, 0),
		EndTime:       testutil.At(0, 12, 30),
		Duration:      30,
		Status:        models.StatusScheduled,
		PriceCents:    3500,
	}
	require.NoError(t, env.db.Create(&walkIn).Error)

	result, err := resources.Reactivate(context.Background(), env.f.Tenant.ID, models.ResourceStaff, env.f.Stylist.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Affected)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []uuid.UUID{first.ID}, result.AppointmentIDs)

	var restored models.Appointment
	require.NoError(t, env.db.First(&restored, "id = ?", first.ID).Error)
	assert.Equal(t, models.StatusConfirmed, restored.Status)
	assert.False(t, restored.RequiresRescheduling)

	var skipped models.Appointment
	require.NoError(t, env.db.First(&skipped, "id = ?", second.ID).Error)
	assert.Equal(t, models.StatusRequiresRescheduling, skipped.Status)

	var stylist models.Stylist
	require.NoError(t, env.db.First(&stylist, "id = ?", env.f.Stylist.ID).Error)
	assert.True(t, stylist.IsActive)
	assert.Nil(t, stylist.DeactivatedAt)

	var count int64
	require.NoError(t, env.db.Model(&models.ResourceLog{}).Where("resource_id = ?", env.f.Stylist.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestDeactivateRoom(t *testing.T) {
	env := newAppointmentEnv(t)
	resources := NewResourceService(env.db, env.notifier, env.events).WithClock(env.clock.Now)

	room := models.Resource{TenantID: env.f.Tenant.ID, Type: models.ResourceRoom, Name: "Spa Room", IsActive: true}
	require.NoError(t, env.db.Create(&room).Error)

	inRoom, err := env.svc.Create(context.Background(), testutil.Session(env.f.Manager), CreateAppointmentInput{
		CustomerID: env.f.Customer.ID, ServiceID: env.f.Service.ID, StylistID: env.f.Stylist.ID,
		RoomID: &room.ID, StartTime: testutil.At(0, 10, 0),
	})
	require.NoError(t, err)
	_, err = env.book(t, testutil.At(0, 11, 0))
	require.NoError(t, err)

	result, err := resources.Deactivate(context.Background(), env.f.Tenant.ID, models.ResourceRoom, room.ID, "flooded", nil)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{inRoom.ID}, result.AppointmentIDs)
	assert.Contains(t, env.events.Names, EventAppointmentRescheduling)

	_, err = env.svc.Create(context.Background(), testutil.Session(env.f.Manager), CreateAppointmentInput{
		CustomerID: env.f.Customer.ID, ServiceID: env.f.Service.ID, StylistID: env.f.Stylist.ID,
		RoomID: &room.ID, StartTime: testutil.At(0, 14, 0),
	})
	assert.ErrorIs(t, err, ErrInactiveReference)
}

func TestDeactivateErrors(t *testing.T) {
	env := newAppointmentEnv(t)
	resources := NewResourceService(env.db, env.notifier, env.events).WithClock(env.clock.Now)

	_, err := resources.Deactivate(context.Background(), env.f.Tenant.ID, "vehicle", uuid.New(), "", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = resources.Deactivate(context.Background(), env.f.Tenant.ID, models.ResourceRoom, uuid.New(), "", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	foreign := testutil.Seed(t, env.db, "Elsewhere")
	_, err = resources.Deactivate(context.Background(), foreign.Tenant.ID, models.ResourceStaff, env.f.Stylist.ID, "", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
