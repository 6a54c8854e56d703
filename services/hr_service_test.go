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

func TestClockInOut(t *testing.T) {
	env := newAppointmentEnv(t)
	hr := NewHRService(env.db).WithClock(env.clock.Now)
	ctx := context.Background()
	tenant, stylist := env.f.Tenant.ID, env.f.Stylist.ID

	_, err := hr.ClockOut(ctx, tenant, stylist, 0)
	assert.ErrorIs(t, err, ErrNotClockedIn)

	entry, err := hr.ClockIn(ctx, tenant, stylist, "opening shift")
	require.NoError(t, err)
	assert.Equal(t, models.ClockActive, entry.Status)

	_, err = hr.ClockIn(ctx, tenant, stylist, "")
	assert.ErrorIs(t, err, ErrAlreadyClockedIn)

	open, err := hr.OpenEntry(ctx, tenant, stylist)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, entry.ID, open.ID)

	_, err = hr.ApproveEntry(ctx, tenant, entry.ID, env.f.Manager.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "active entries cannot be approved")

	_, err = hr.ClockOut(ctx, tenant, stylist, -5)
	assert.ErrorIs(t, err, ErrInvalidInput)

	env.clock.Advance(10 * time.Hour)
	closed, err := hr.ClockOut(ctx, tenant, stylist, 30)
	require.NoError(t, err)
	assert.Equal(t, models.ClockCompleted, closed.Status)
	assert.Equal(t, 570, closed.WorkedMinutes)
	assert.Equal(t, 480, closed.RegularMinutes)
	assert.Equal(t, 90, closed.OvertimeMinutes)

	open, err = hr.OpenEntry(ctx, tenant, stylist)
	require.NoError(t, err)
	assert.Nil(t, open)

	approved, err := hr.ApproveEntry(ctx, tenant, entry.ID, env.f.Manager.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClockApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, env.f.Manager.ID, *approved.ApprovedBy)
}

func TestStylistForUser(t *testing.T) {
	env := newAppointmentEnv(t)
	hr := NewHRService(env.db)

	st, err := hr.StylistForUser(context.Background(), testutil.Session(env.f.StylistUser))
	require.NoError(t, err)
	assert.Equal(t, env.f.Stylist.ID, st.ID)

	_, err = hr.StylistForUser(context.Background(), testutil.Session(env.f.Manager))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGeneratePayroll(t *testing.T) {
	env := newAppointmentEnv(t)
	hr := NewHRService(env.db).WithClock(env.clock.Now)
	ctx := context.Background()
	manager := testutil.Session(env.f.Manager)

	appt, err := env.book(t, testutil.At(0, 10, 0))
	require.NoError(t, err)
	_, err = env.svc.ChangeStatus(ctx, manager, appt.ID, models.StatusInProgress, "")
	require.NoError(t, err)
	_, err = env.svc.ChangeStatus(ctx, manager, appt.ID, models.StatusCompleted, "")
	require.NoError(t, err)

	_, err = hr.ClockIn(ctx, env.f.Tenant.ID, env.f.Stylist.ID, "")
	require.NoError(t, err)
	env.clock.Advance(10 * time.Hour)
	_, err = hr.ClockOut(ctx, env.f.Tenant.ID, env.f.Stylist.ID, 30)
	require.NoError(t, err)

	start, end := testutil.Monday, testutil.Monday.AddDate(0, 0, 7)
	_, _, err = hr.GeneratePayroll(ctx, env.f.Tenant.ID, end, start)
	assert.ErrorIs(t, err, ErrInvalidInput)

	records, skipped, err := hr.GeneratePayroll(ctx, env.f.Tenant.ID, start, end)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, models.PayrollPending, rec.Status)
	assert.Equal(t, 480, rec.RegularMinutes)
	assert.Equal(t, 90, rec.OvertimeMinutes)
	assert.Equal(t, int64(3500), rec.RevenueCents)
	assert.Equal(t, int64(16000), rec.RegularPayCents)
	assert.Equal(t, int64(4500), rec.OvertimePayCents)
	assert.Equal(t, int64(350), rec.CommissionCents)
	assert.Equal(t, int64(20850), rec.GrossPayCents)
	assert.Equal(t, int64(5140), rec.TotalDeductionsCents)
	assert.Equal(t, int64(15710), rec.NetPayCents)

	again, skipped, err := hr.GeneratePayroll(ctx, env.f.Tenant.ID, start, end)
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.Equal(t, 1, skipped)
}

func TestUpdatePayrollStatus(t *testing.T) {
	env := newAppointmentEnv(t)
	hr := NewHRService(env.db).WithClock(env.clock.Now)
	ctx := context.Background()
	tenant, actor := env.f.Tenant.ID, env.f.Manager.ID

	records, _, err := hr.GeneratePayroll(ctx, tenant, testutil.Monday, testutil.Monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, records, 1)
	id := records[0].ID

	_, err = hr.UpdatePayrollStatus(ctx, tenant, id, models.PayrollPaid, actor, "")
	assert.ErrorIs(t, err, ErrInvalidTransition, "pending cannot skip approval")

	approved, err := hr.UpdatePayrollStatus(ctx, tenant, id, models.PayrollApproved, actor, "looks right")
	require.NoError(t, err)
	assert.Equal(t, models.PayrollApproved, approved.Status)
	assert.Equal(t, "looks right", approved.Notes)
	require.NotNil(t, approved.ApprovedBy)
	require.NotNil(t, approved.Stylist)

	paid, err := hr.UpdatePayrollStatus(ctx, tenant, id, models.PayrollPaid, actor, "")
	require.NoError(t, err)
	assert.Equal(t, models.PayrollPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)

	_, err = hr.UpdatePayrollStatus(ctx, tenant, id, models.PayrollPending, actor, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	foreign := testutil.Seed(t, env.db, "Another Shop")
	_, err = hr.UpdatePayrollStatus(ctx, foreign.Tenant.ID, id, models.PayrollApproved, actor, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSummarizePayroll(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	stats := SummarizePayroll([]models.PayrollRecord{
		{StylistID: a, GrossPayCents: 1000, NetPayCents: 800, Status: models.PayrollPending},
		{StylistID: a, GrossPayCents: 2000, NetPayCents: 1600, Status: models.PayrollPaid},
		{StylistID: b, GrossPayCents: 500, NetPayCents: 400, Status: models.PayrollApproved},
		{StylistID: b, GrossPayCents: 100, NetPayCents: 80, Status: models.PayrollRejected},
	})
	assert.Equal(t, PayrollStats{Employees: 2, TotalGross: 3600, TotalNet: 2880, Pending: 1, Approved: 1, Paid: 1}, stats)
}
