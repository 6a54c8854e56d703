package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modernmen-backend/models"
	"modernmen-backend/testutil"
)

type reminderEnv struct {
	*appointmentEnv
	outbox    *testutil.FakeNotifier
	reminders *ReminderService
}

// newReminderEnv books today, tomorrow and the day after, and gives the
// fixture customer a birthday today.
func newReminderEnv(t *testing.T) *reminderEnv {
	env := newAppointmentEnv(t)
	for _, at := range []time.Time{testutil.At(0, 10, 0), testutil.At(1, 10, 0), testutil.At(2, 10, 0)} {
		_, err := env.book(t, at)
		require.NoError(t, err)
	}
	require.NoError(t, env.db.Model(&env.f.Customer).
		Update("birthday", time.Date(1990, time.January, 7, 0, 0, 0, 0, time.UTC)).Error)

	outbox := &testutil.FakeNotifier{}
	return &reminderEnv{
		appointmentEnv: env,
		outbox:         outbox,
		reminders:      NewReminderService(env.db, outbox).WithClock(env.clock.Now),
	}
}

func (e *reminderEnv) logs(t *testing.T) []models.ReminderLog {
	t.Helper()
	var logs []models.ReminderLog
	require.NoError(t, e.db.Where("tenant_id = ?", e.f.Tenant.ID).Order("type").Find(&logs).Error)
	return logs
}

func TestProcessTenantReminders(t *testing.T) {
	env := newReminderEnv(t)
	require.NoError(t, env.db.Create(&models.ReminderTemplate{
		TenantID: env.f.Tenant.ID, Type: models.ReminderBirthday, Message: "Happy birthday [CustomerName]!", IsActive: true,
	}).Error)

	// anniversary today but no anniversary template
	anniversary := time.Date(2015, time.January, 7, 0, 0, 0, 0, time.UTC)
	require.NoError(t, env.db.Create(&models.Customer{
		TenantID: env.f.Tenant.ID, Name: "Ann Iversary", Phone: "+15550003333", Email: "ann@example.com",
		Anniversary: &anniversary, IsActive: true,
	}).Error)

	sent := env.reminders.ProcessTenantReminders(context.Background(), env.f.Tenant.ID)
	assert.Equal(t, 2, sent)

	emails := env.outbox.EmailsTo(env.f.Customer.Email)
	require.Len(t, emails, 2)
	assert.Equal(t, "Appointment reminder", emails[0].Subject)
	assert.Equal(t, "Hi Carl Customer, this is a reminder of your Classic Cut appointment on Tue Jan 8 10:00.", emails[0].Body)
	assert.Equal(t, "Happy birthday from Sharp Cuts", emails[1].Subject)
	assert.Equal(t, "Happy birthday Carl Customer!", emails[1].Body)
	assert.Empty(t, env.outbox.EmailsTo("ann@example.com"))

	logs := env.logs(t)
	require.Len(t, logs, 2)
	assert.Equal(t, models.ReminderAppointment, logs[0].Type)
	assert.NotNil(t, logs[0].AppointmentID)
	assert.Nil(t, logs[0].TemplateID)
	assert.Equal(t, models.ReminderBirthday, logs[1].Type)
	assert.NotNil(t, logs[1].TemplateID)
	for _, l := range logs {
		assert.Equal(t, models.DeliverySent, l.Status)
		assert.Equal(t, models.ChannelEmail, l.Channel)
	}
}

func TestAppointmentReminderUsesTemplate(t *testing.T) {
	env := newReminderEnv(t)
	require.NoError(t, env.db.Create(&models.ReminderTemplate{
		TenantID: env.f.Tenant.ID, Type: models.ReminderAppointment, Message: "[CustomerName]: [ServiceName] at [Time]", IsActive: true,
	}).Error)

	env.reminders.ProcessTenantReminders(context.Background(), env.f.Tenant.ID)

	emails := env.outbox.EmailsTo(env.f.Customer.Email)
	require.NotEmpty(t, emails)
	assert.Equal(t, "Carl Customer: Classic Cut at Tue Jan 8 10:00", emails[0].Body)
}

func TestRemindersPreferSMS(t *testing.T) {
	env := newReminderEnv(t)
	require.NoError(t, env.db.Model(&models.Settings{}).
		Where("tenant_id = ?", env.f.Tenant.ID).
		Update("notify_sms", true).Error)

	sent := env.reminders.ProcessTenantReminders(context.Background(), env.f.Tenant.ID)
	assert.Equal(t, 1, sent, "birthday has no template")
	require.Len(t, env.outbox.SMS, 1)
	assert.Equal(t, env.f.Customer.Phone, env.outbox.SMS[0].To)
	assert.Empty(t, env.outbox.Emails)

	logs := env.logs(t)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ChannelSMS, logs[0].Channel)
}

func TestReminderFailureIsLogged(t *testing.T) {
	env := newReminderEnv(t)
	env.outbox.FailEmail = errors.New("smtp down")

	sent := env.reminders.ProcessTenantReminders(context.Background(), env.f.Tenant.ID)
	assert.Zero(t, sent)

	logs := env.logs(t)
	require.Len(t, logs, 1)
	assert.Equal(t, models.DeliveryFailed, logs[0].Status)
	assert.Equal(t, "smtp down", logs[0].ErrorMessage)
}

func TestRemindersDisabled(t *testing.T) {
	env := newReminderEnv(t)
	require.NoError(t, env.db.Model(&models.Settings{}).
		Where("tenant_id = ?", env.f.Tenant.ID).
		Update("notify_reminders", false).Error)

	assert.Zero(t, env.reminders.ProcessTenantReminders(context.Background(), env.f.Tenant.ID))
	assert.Empty(t, env.logs(t))
}

func TestSendDailyRemindersCoversActiveTenants(t *testing.T) {
	env := newReminderEnv(t)
	other := testutil.Seed(t, env.db, "Closed Shop")
	require.NoError(t, env.db.Model(&other.Tenant).Update("is_active", false).Error)

	env.reminders.SendDailyReminders(context.Background())
	assert.Len(t, env.logs(t), 1)

	var otherLogs int64
	require.NoError(t, env.db.Model(&models.ReminderLog{}).Where("tenant_id = ?", other.Tenant.ID).Count(&otherLogs).Error)
	assert.Zero(t, otherLogs)
}

func TestReminderScheduler(t *testing.T) {
	svc := NewReminderService(nil, &testutil.FakeNotifier{})
	assert.Error(t, svc.StartScheduler("every other tuesday"))

	require.NoError(t, svc.StartScheduler("0 9 * * *"))
	select {
	case <-svc.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}

	idle := NewReminderService(nil, nil)
	assert.Error(t, idle.Stop().Err(), "stopping an unstarted scheduler returns a finished context")
}
