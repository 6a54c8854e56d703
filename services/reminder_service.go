// services/reminder_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"modernmen-backend/models"
	"modernmen-backend/utils"
)

const defaultAppointmentReminder = "Hi [CustomerName], this is a reminder of your [ServiceName] appointment on [Time]."

type ReminderService struct {
	db       *gorm.DB
	notifier Notifier
	cron     *cron.Cron
	now      func() time.Time
}

func NewReminderService(db *gorm.DB, notifier Notifier) *ReminderService {
	return &ReminderService{db: db, notifier: notifier, now: time.Now}
}

func (s *ReminderService) WithClock(now func() time.Time) *ReminderService {
	s.now = now
	return s
}

// StartScheduler runs SendDailyReminders on the cron schedule until Stop.
func (s *ReminderService) StartScheduler(schedule string) error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(schedule, func() { s.SendDailyReminders(context.Background()) }); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	utils.Log.WithField("schedule", schedule).Info("Reminder scheduler started")
	return nil
}

func (s *ReminderService) Stop() context.Context {
	if s.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return s.cron.Stop()
}

func (s *ReminderService) SendDailyReminders(ctx context.Context) {
	utils.Log.Info("Starting daily reminder processing")

	var tenants []models.Tenant
	if err := s.db.WithContext(ctx).Find(&tenants, "is_active = ?", true).Error; err != nil {
		utils.Log.WithError(err).Error("Failed to fetch tenants")
		return
	}

	for _, tenant := range tenants {
		s.ProcessTenantReminders(ctx, tenant.ID)
	}

	utils.Log.Info("Daily reminder processing completed")
}

// ProcessTenantReminders sends tomorrow's appointment reminders and today's
// birthday and anniversary greetings. It returns the number of messages sent.
func (s *ReminderService) ProcessTenantReminders(ctx context.Context, tenantID uuid.UUID) int {
	log := utils.Log.WithField("tenant_id", tenantID.String())
	settings, err := LoadSettings(s.db.WithContext(ctx), tenantID)
	if err != nil {
		log.WithError(err).Error("Failed to load settings")
		return 0
	}
	if !settings.Notifications.Reminders {
		return 0
	}

	sent := s.sendAppointmentReminders(ctx, tenantID, settings)
	for _, kind := range []string{models.ReminderBirthday, models.ReminderAnniversary} {
		customers, err := s.customersWithEventToday(ctx, tenantID, kind, tenantLocation(settings))
		if err != nil {
			log.WithError(err).WithField("type", kind).Error("Failed to get customers")
			continue
		}
		sent += s.sendGreetings(ctx, tenantID, settings, customers, kind)
	}
	return sent
}

func (s *ReminderService) sendAppointmentReminders(ctx context.Context, tenantID uuid.UUID, settings models.Settings) int {
	loc := tenantLocation(settings)
	tomorrow := utils.BeginningOfDay(s.now().In(loc)).AddDate(0, 0, 1)

	var appts []models.Appointment
	if err := s.db.WithContext(ctx).Preload("Customer").Preload("Service").
		Where("tenant_id = ? AND status IN ? AND start_time >= ? AND start_time < ?",
			tenantID, models.ReschedulableStatuses, tomorrow.UTC(), tomorrow.AddDate(0, 0, 1).UTC()).
		Find(&appts).Error; err != nil {
		utils.Log.WithError(err).WithField("tenant_id", tenantID.String()).Error("Failed to get tomorrow's appointments")
		return 0
	}
	if len(appts) == 0 {
		return 0
	}

	template, _ := s.activeTemplate(ctx, tenantID, models.ReminderAppointment)
	sent := 0
	for i := range appts {
		a := &appts[i]
		if a.Customer == nil {
			continue
		}
		vars := map[string]string{
			"CustomerName": a.Customer.Name,
			"Time":         a.StartTime.In(loc).Format("Mon Jan 2 15:04"),
		}
		if a.Service != nil {
			vars["ServiceName"] = a.Service.Name
		}
		msg := (&models.ReminderTemplate{Message: defaultAppointmentReminder}).Render(vars)
		var templateID *uuid.UUID
		if template != nil {
			msg = template.Render(vars)
			templateID = &template.ID
		}
		if s.deliver(ctx, settings, a.Customer, models.ReminderAppointment, msg, templateID, &a.ID) {
			sent++
		}
	}
	return sent
}

func (s *ReminderService) activeTemplate(ctx context.Context, tenantID uuid.UUID, kind string) (*models.ReminderTemplate, error) {
	var template models.ReminderTemplate
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND type = ? AND is_active = ?", tenantID, kind, true).
		First(&template).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// customersWithEventToday matches month and day in Go so the same query runs
// on every supported database.
func (s *ReminderService) customersWithEventToday(ctx context.Context, tenantID uuid.UUID, kind string, loc *time.Location) ([]models.Customer, error) {
	var field string
	switch kind {
	case models.ReminderBirthday:
		field = "birthday"
	case models.ReminderAnniversary:
		field = "anniversary"
	default:
		return nil, fmt.Errorf("invalid event type: %s", kind)
	}

	var candidates []models.Customer
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ? AND "+field+" IS NOT NULL", tenantID, true).
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	today := s.now().In(loc)
	var out []models.Customer
	for _, c := range candidates {
		d := c.Birthday
		if kind == models.ReminderAnniversary {
			d = c.Anniversary
		}
		if d != nil && d.Month() == today.Month() && d.Day() == today.Day() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *ReminderService) sendGreetings(ctx context.Context, tenantID uuid.UUID, settings models.Settings, customers []models.Customer, kind string) int {
	if len(customers) == 0 {
		return 0
	}
	template, err := s.activeTemplate(ctx, tenantID, kind)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Log.WithError(err).Error("Failed to load reminder template")
		}
		utils.Log.WithFields(logrus.Fields{"tenant_id": tenantID.String(), "type": kind}).Debug("No active template")
		return 0
	}

	sent := 0
	for i := range customers {
		msg := template.Render(map[string]string{"CustomerName": customers[i].Name})
		if s.deliver(ctx, settings, &customers[i], kind, msg, &template.ID, nil) {
			sent++
		}
	}
	return sent
}

// deliver prefers SMS when enabled and the customer has a phone, otherwise
// email, and logs the attempt either way.
func (s *ReminderService) deliver(ctx context.Context, settings models.Settings, customer *models.Customer, kind, msg string, templateID, appointmentID *uuid.UUID) bool {
	channel := models.ChannelEmail
	var err error
	switch {
	case settings.Notifications.SMS && customer.Phone != "":
		channel = models.ChannelSMS
		_, err = s.notifier.SendSMS(ctx, customer.Phone, msg)
	case customer.Email != "":
		err = s.notifier.SendEmail(ctx, customer.Email, reminderSubject(kind, settings.BusinessName), msg)
	default:
		err = errors.New("customer has no phone or email")
	}

	status, errorMsg := models.DeliverySent, ""
	if err != nil {
		utils.Log.WithFields(logrus.Fields{
			"customer_id": customer.ID.String(),
			"channel":     channel,
		}).WithError(err).Warn("Failed to send reminder")
		status, errorMsg = models.DeliveryFailed, err.Error()
	}

	entry := models.ReminderLog{
		TenantID:      customer.TenantID,
		CustomerID:    customer.ID,
		TemplateID:    templateID,
		AppointmentID: appointmentID,
		Type:          kind,
		Message:       msg,
		Status:        status,
		ErrorMessage:  errorMsg,
		Channel:       channel,
		SentAt:        s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		utils.Log.WithError(err).WithField("customer_id", customer.ID.String()).Error("Failed to log reminder")
	}
	return status == models.DeliverySent
}

func reminderSubject(kind, business string) string {
	switch kind {
	case models.ReminderBirthday:
		return "Happy birthday from " + business
	case models.ReminderAnniversary:
		return "Happy anniversary from " + business
	}
	return "Appointment reminder"
}
