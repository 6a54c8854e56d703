package models

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"modernmen-backend/utils"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestAppointmentTransitions(t *testing.T) {
	allowed := [][2]string{
		{StatusScheduled, StatusConfirmed},
		{StatusScheduled, StatusRequiresRescheduling},
		{StatusConfirmed, StatusInProgress},
		{StatusConfirmed, StatusNoShow},
		{StatusInProgress, StatusCompleted},
		{StatusRequiresRescheduling, StatusScheduled},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransitionAppointment(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]string{
		{StatusCompleted, StatusScheduled},
		{StatusCancelled, StatusConfirmed},
		{StatusNoShow, StatusScheduled},
		{StatusInProgress, StatusNoShow},
		{StatusScheduled, StatusCompleted},
		{"bogus", StatusConfirmed},
	}
	for _, tr := range denied {
		assert.False(t, CanTransitionAppointment(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	assert.True(t, IsAppointmentStatus(StatusRequiresRescheduling))
	assert.False(t, IsAppointmentStatus("done"))
}

func TestOrderAndPayrollTransitions(t *testing.T) {
	assert.True(t, CanTransitionOrder(OrderPending, OrderProcessing))
	assert.True(t, CanTransitionOrder(OrderProcessing, OrderCancelled))
	assert.True(t, CanTransitionOrder(OrderDelivered, OrderRefunded))
	assert.False(t, CanTransitionOrder(OrderShipped, OrderCancelled))
	assert.False(t, CanTransitionOrder(OrderPending, OrderDelivered))
	assert.False(t, CanTransitionOrder(OrderRefunded, OrderPending))

	assert.True(t, CanTransitionPayroll(PayrollPending, PayrollApproved))
	assert.True(t, CanTransitionPayroll(PayrollApproved, PayrollPaid))
	assert.False(t, CanTransitionPayroll(PayrollPending, PayrollPaid))
	assert.False(t, CanTransitionPayroll(PayrollRejected, PayrollApproved))
	assert.False(t, CanTransitionPayroll(PayrollPaid, PayrollPending))
}

func TestAppointmentOverlaps(t *testing.T) {
	start := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)
	a := &Appointment{StartTime: start, EndTime: start.Add(30 * time.Minute)}

	assert.True(t, a.Overlaps(start.Add(15*time.Minute), start.Add(45*time.Minute)))
	assert.True(t, a.Overlaps(start.Add(-time.Hour), start.Add(time.Hour)))
	assert.False(t, a.Overlaps(start.Add(30*time.Minute), start.Add(time.Hour)), "back to back")
	assert.False(t, a.Overlaps(start.Add(-30*time.Minute), start))
}

func TestReferenceNumbers(t *testing.T) {
	at := time.Date(2030, 1, 7, 23, 0, 0, 0, time.UTC)
	assert.Regexp(t, regexp.MustCompile(`^APT-20300107-[0-9A-F]{4}$`), NewBookingNumber(at))
	assert.Regexp(t, regexp.MustCompile(`^ORD-20300107-[0-9A-F]{4}$`), NewOrderNumber(at))
}

func TestClockEntryClose(t *testing.T) {
	in := time.Date(2030, 1, 7, 8, 0, 0, 0, time.UTC)

	e := &ClockEntry{ClockIn: in, Status: ClockActive}
	e.Close(in.Add(10*time.Hour), 30)
	assert.Equal(t, 570, e.WorkedMinutes)
	assert.Equal(t, 480, e.RegularMinutes)
	assert.Equal(t, 90, e.OvertimeMinutes)
	assert.Equal(t, ClockCompleted, e.Status)
	require.NotNil(t, e.ClockOut)

	short := &ClockEntry{ClockIn: in}
	short.Close(in.Add(20*time.Minute), 45)
	assert.Zero(t, short.WorkedMinutes, "break longer than the shift")
	assert.Zero(t, short.OvertimeMinutes)
}

func TestProductStock(t *testing.T) {
	tests := []struct {
		current, min int
		status       string
		low, out     bool
	}{
		{0, 2, StockOut, true, true},
		{2, 2, StockLow, true, false},
		{3, 2, StockIn, false, false},
		{0, 0, StockOut, true, true},
	}
	for _, tt := range tests {
		p := &Product{CurrentStock: tt.current, MinStock: tt.min}
		p.Derive()
		assert.Equal(t, tt.status, p.Status)
		assert.Equal(t, tt.low, p.Low)
		assert.Equal(t, tt.out, p.Out)
	}
}

func TestWorkingHours(t *testing.T) {
	hours := DefaultBusinessHours()
	require.NoError(t, hours.Validate())

	mon, ok := hours.For(time.Monday)
	assert.True(t, ok)
	assert.Equal(t, DayHours{Open: "09:00", Close: "18:00"}, mon)

	_, ok = hours.For(time.Sunday)
	assert.False(t, ok)
	_, ok = WorkingHours{}.For(time.Monday)
	assert.False(t, ok)
	_, ok = WorkingHours(nil).For(time.Monday)
	assert.False(t, ok)

	assert.Error(t, WorkingHours{"funday": {Open: "09:00", Close: "10:00"}}.Validate())
	assert.Error(t, WorkingHours{"monday": {Open: "18:00", Close: "09:00"}}.Validate())
	assert.Error(t, WorkingHours{"monday": {Open: "9", Close: "18:00"}}.Validate())
	assert.NoError(t, WorkingHours{"monday": {Closed: true}}.Validate())
}

func TestLoyaltyTiers(t *testing.T) {
	cfg := LoyaltyConfig{Tiers: DefaultLoyaltyTiers()}
	assert.Equal(t, "Bronze", cfg.TierFor(0))
	assert.Equal(t, "Bronze", cfg.TierFor(499))
	assert.Equal(t, "Silver", cfg.TierFor(500))
	assert.Equal(t, "Gold", cfg.TierFor(2999))
	assert.Equal(t, "Platinum", cfg.TierFor(10000))
	assert.Empty(t, LoyaltyConfig{}.TierFor(100))
}

func TestReminderTemplateRender(t *testing.T) {
	tmpl := &ReminderTemplate{Message: "Hi [CustomerName], your [ServiceName] is at [Time]. [Unknown] stays."}
	got := tmpl.Render(map[string]string{
		"CustomerName": "Carl",
		"ServiceName":  "Fade",
		"Time":         "10:00",
	})
	assert.Equal(t, "Hi Carl, your Fade is at 10:00. [Unknown] stays.", got)

	assert.True(t, IsReminderType(ReminderBirthday))
	assert.False(t, IsReminderType("weekly"))
}

func TestMigrateFreshDatabase(t *testing.T) {
	db := openDB(t)

	for _, table := range []string{"stylists", "editor_templates", "appointments", "payroll_records"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasColumn(&Stylist{}, "Specializations"))
	assert.True(t, db.Migrator().HasColumn(&EditorTemplate{}, "Tags"))

	tmpl := EditorTemplate{TenantID: uuid.New(), Name: "Blank"}
	require.NoError(t, db.Create(&tmpl).Error)
	var found EditorTemplate
	require.NoError(t, db.First(&found, "id = ?", tmpl.ID).Error)
	assert.Empty(t, found.Tags)
}

func TestPersistedColumns(t *testing.T) {
	utils.PasswordCost = 4
	db := openDB(t)
	tenant := uuid.New()

	user := User{TenantID: tenant, Email: "a@b.test", Password: "secret123", Name: "A", Role: utils.RoleAdmin}
	require.NoError(t, db.Create(&user).Error)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.True(t, utils.CheckPasswordHash("secret123", user.Password))
	assert.True(t, user.IsStaff())

	settings := DefaultSettings(tenant, "Sharp Cuts")
	require.NoError(t, db.Create(&settings).Error)
	var loaded Settings
	require.NoError(t, db.First(&loaded, "tenant_id = ?", tenant).Error)
	assert.Equal(t, "0.08", loaded.TaxRate.String())
	assert.Equal(t, "Silver", loaded.Loyalty.TierFor(600))
	assert.True(t, loaded.Notifications.Reminders)
	_, open := loaded.BusinessHours.For(time.Saturday)
	assert.True(t, open)

	tmpl := EditorTemplate{
		TenantID: tenant,
		Name:     "Landing",
		Tags:     StringList{"hero", "dark mode"},
		Layout:   RawJSON(`{"components":[{"type":"hero"},{"type":"gallery"}]}`),
	}
	require.NoError(t, db.Create(&tmpl).Error)
	assert.Equal(t, int64(2), tmpl.ComponentCount)

	var found EditorTemplate
	require.NoError(t, db.First(&found, "id = ?", tmpl.ID).Error)
	assert.Equal(t, int64(2), found.ComponentCount)
	assert.Equal(t, StringList{"hero", "dark mode"}, found.Tags)
}
