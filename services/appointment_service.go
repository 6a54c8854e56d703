package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"modernmen-backend/models"
	"modernmen-backend/utils"
)

const (
	MinAppointmentMinutes = 15
	MaxAppointmentMinutes = 480
	SlotInterval          = 30 * time.Minute
)

type AppointmentService struct {
	db       *gorm.DB
	notifier Notifier
	events   Publisher
	now      func() time.Time
}

func NewAppointmentService(db *gorm.DB, notifier Notifier, events Publisher) *AppointmentService {
	return &AppointmentService{db: db, notifier: notifier, events: events, now: time.Now}
}

// WithClock overrides the time source.
func (s *AppointmentService) WithClock(now func() time.Time) *AppointmentService {
	s.now = now
	return s
}

type CreateAppointmentInput struct {
	CustomerID  uuid.UUID
	ServiceID   uuid.UUID
	StylistID   uuid.UUID
	RoomID      *uuid.UUID
	EquipmentID *uuid.UUID
	StartTime   time.Time
	Duration    int
	Notes       string
}

// Create books an appointment. The overlap check and the insert are separate
// statements with no lock or unique constraint between them, so two
// concurrent requests for the same slot can both succeed.
func (s *AppointmentService) Create(ctx context.Context, actor utils.Session, in CreateAppointmentInput) (*models.Appointment, error) {
	db := s.db.WithContext(ctx)
	tenantID := actor.TenantID

	customer, err := s.resolveCustomer(db, actor, in.CustomerID)
	if err != nil {
		return nil, err
	}

	var service models.Service
	if err := db.Where("tenant_id = ? AND id = ?", tenantID, in.ServiceID).First(&service).Error; err != nil {
		return nil, notFound(err, "service")
	}
	if !service.IsActive {
		return nil, fmt.Errorf("%w: service", ErrInactiveReference)
	}

	stylist, err := s.activeStylist(db, tenantID, in.StylistID)
	if err != nil {
		return nil, err
	}

	for _, ref := range []struct {
		id   *uuid.UUID
		kind string
	}{{in.RoomID, models.ResourceRoom}, {in.EquipmentID, models.ResourceEquipment}} {
		if ref.id == nil {
			continue
		}
		if err := s.checkResource(db, tenantID, *ref.id, ref.kind); err != nil {
			return nil, err
		}
	}

	duration := in.Duration
	if duration == 0 {
		duration = service.Duration
	}
	if duration < MinAppointmentMinutes || duration > MaxAppointmentMinutes {
		return nil, fmt.Errorf("%w: duration must be between %d and %d minutes", ErrInvalidInput, MinAppointmentMinutes, MaxAppointmentMinutes)
	}

	settings, err := LoadSettings(db, tenantID)
	if err != nil {
		return nil, err
	}

	start := in.StartTime.UTC().Truncate(time.Minute)
	end := start.Add(time.Duration(duration) * time.Minute)
	if err := s.checkLeadTime(start, settings.BookingLeadMinutes); err != nil {
		return nil, err
	}
	if err := checkWorkingHours(stylist, settings, start, end); err != nil {
		return nil, err
	}

	if err := s.checkConflict(db, stylist.ID, in.RoomID, start, end, nil); err != nil {
		return nil, err
	}

	status := models.StatusScheduled
	if settings.AutoConfirmAppointments {
		status = models.StatusConfirmed
	}

	appt := &models.Appointment{
		TenantID:        tenantID,
		BookingNumber:   models.NewBookingNumber(s.now()),
		CustomerID:      customer.ID,
		ServiceID:       service.ID,
		StylistID:       stylist.ID,
		RoomID:          in.RoomID,
		EquipmentID:     in.EquipmentID,
		StartTime:       start,
		EndTime:         end,
		Duration:        duration,
		Status:          status,
		PriceCents:      service.PriceCents,
		Notes:           in.Notes,
		CreatedByUserID: &actor.UserID,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(appt).Error; err != nil {
			return err
		}
		return recordStatusChange(tx, appt.ID, "", status, &actor.UserID, "created")
	})
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	appt.Customer = customer
	appt.Service = &service
	appt.Stylist = stylist
	s.afterCreate(ctx, appt, settings)
	return appt, nil
}

func (s *AppointmentService) afterCreate(ctx context.Context, appt *models.Appointment, settings models.Settings) {
	log := utils.Log.WithFields(logrus.Fields{
		"appointment_id": appt.ID.String(),
		"booking_number": appt.BookingNumber,
	})

	if points := settings.Loyalty.PointsPerBooking; points > 0 {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			_, err := AddLoyaltyPoints(tx, appt.Customer, settings.Loyalty, points, models.LoyaltyEarned, "Appointment booked", &appt.ID)
			return err
		})
		if err != nil {
			log.WithError(err).Warn("booking loyalty points not awarded")
		}
	}

	when := appt.StartTime.Format("Mon Jan 2 2006 15:04 MST")
	if settings.Notifications.Email {
		notifyEmail(ctx, s.notifier, appt.Customer.Email,
			"Appointment "+appt.BookingNumber,
			fmt.Sprintf("Hi %s,\n\nYour %s appointment is booked for %s (status: %s).\nBooking number: %s\n",
				appt.Customer.Name, appt.Service.Name, when, appt.Status, appt.BookingNumber))
		if appt.Stylist.User != nil {
			notifyEmail(ctx, s.notifier, appt.Stylist.User.Email,
				"New appointment "+appt.BookingNumber,
				fmt.Sprintf("%s booked %s with you on %s.\n", appt.Customer.Name, appt.Service.Name, when))
		}
	}
	if settings.Notifications.SMS {
		notifySMS(ctx, s.notifier, appt.Customer.Phone,
			fmt.Sprintf("%s: %s booked for %s. Ref %s", settings.BusinessName, appt.Service.Name, when, appt.BookingNumber))
	}

	s.publish(appt.TenantID, EventAppointmentCreated, appt)
}

func (s *AppointmentService) publish(tenantID uuid.UUID, event string, payload any) {
	if s.events != nil {
		s.events.Publish(tenantID, event, payload)
	}
}

// resolveCustomer enforces that customers only book for themselves.
func (s *AppointmentService) resolveCustomer(db *gorm.DB, actor utils.Session, customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if actor.Role == utils.RoleCustomer {
		if err := db.Where("tenant_id = ? AND user_id = ?", actor.TenantID, actor.UserID).First(&customer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: no customer profile for this account", ErrForbidden)
			}
			return nil, err
		}
		if customerID != uuid.Nil && customerID != customer.ID {
			return nil, fmt.Errorf("%w: customers can only book for themselves", ErrForbidden)
		}
		return &customer, nil
	}

	if err := db.Where("tenant_id = ? AND id = ?", actor.TenantID, customerID).First(&customer).Error; err != nil {
		return nil, notFound(err, "customer")
	}
	return &customer, nil
}

func (s *AppointmentService) activeStylist(db *gorm.DB, tenantID, stylistID uuid.UUID) (*models.Stylist, error) {
	var stylist models.Stylist
	if err := db.Preload("User").Where("tenant_id = ? AND id = ?", tenantID, stylistID).First(&stylist).Error; err != nil {
		return nil, notFound(err, "stylist")
	}
	if !stylist.IsActive {
		return nil, fmt.Errorf("%w: stylist", ErrInactiveReference)
	}
	return &stylist, nil
}

func (s *AppointmentService) checkResource(db *gorm.DB, tenantID, id uuid.UUID, kind string) error {
	var r models.Resource
	if err := db.Where("tenant_id = ? AND id = ? AND type = ?", tenantID, id, kind).First(&r).Error; err != nil {
		return notFound(err, kind)
	}
	if !r.IsActive {
		return fmt.Errorf("%w: %s", ErrInactiveReference, kind)
	}
	return nil
}

func (s *AppointmentService) checkLeadTime(start time.Time, leadMinutes int) error {
	earliest := s.now().Add(time.Duration(leadMinutes) * time.Minute)
	if !start.After(earliest) {
		return fmt.Errorf("%w: appointment time must be in the future", ErrInvalidInput)
	}
	return nil
}

// checkConflict counts active appointments overlapping [start, end) for the
// stylist, and for the room when one is booked.
func (s *AppointmentService) checkConflict(db *gorm.DB, stylistID uuid.UUID, roomID *uuid.UUID, start, end time.Time, exclude *uuid.UUID) error {
	n, err := CountOverlapping(db, "stylist_id", stylistID, start, end, exclude)
	if err != nil {
		return fmt.Errorf("conflict check: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: stylist already has an appointment at this time", ErrSlotUnavailable)
	}
	if roomID == nil {
		return nil
	}
	n, err = CountOverlapping(db, "room_id", *roomID, start, end, exclude)
	if err != nil {
		return fmt.Errorf("conflict check: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: room is already booked at this time", ErrSlotUnavailable)
	}
	return nil
}

// CountOverlapping counts appointments in an active status whose interval
// intersects [start, end) on the given column.
func CountOverlapping(db *gorm.DB, column string, id uuid.UUID, start, end time.Time, exclude *uuid.UUID) (int64, error) {
	q := db.Model(&models.Appointment{}).
		Where(column+" = ? AND status IN ? AND start_time < ? AND end_time > ?",
			id, models.ActiveAppointmentStatuses, end, start)
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// checkWorkingHours requires [start, end) to sit inside one working day of
// the stylist, falling back to the business hours when the stylist has none.
func checkWorkingHours(stylist *models.Stylist, settings models.Settings, start, end time.Time) error {
	loc := tenantLocation(settings)
	ls, le := start.In(loc), end.In(loc)

	open, closeAt, ok := dayWindow(stylist, settings, ls)
	if !ok {
		return fmt.Errorf("%w: closed on %s", ErrOutsideHours, ls.Weekday())
	}
	if !utils.BeginningOfDay(ls).Equal(utils.BeginningOfDay(le.Add(-time.Minute))) {
		return fmt.Errorf("%w: appointment spans midnight", ErrOutsideHours)
	}
	sm := utils.MinuteOfDay(ls)
	em := sm + int(end.Sub(start).Minutes())
	if sm < open || em > closeAt {
		return fmt.Errorf("%w: %s hours are %s-%s", ErrOutsideHours, ls.Weekday(), clock(open), clock(closeAt))
	}
	return nil
}

// dayWindow returns open/close as minutes after midnight for the local day.
func dayWindow(stylist *models.Stylist, settings models.Settings, day time.Time) (int, int, bool) {
	hours := stylist.WorkingHours
	if len(hours) == 0 {
		hours = settings.BusinessHours
	}
	if len(hours) == 0 {
		hours = models.DefaultBusinessHours()
	}
	h, ok := hours.For(day.Weekday())
	if !ok {
		return 0, 0, false
	}
	open, err := utils.ParseClock(h.Open)
	if err != nil {
		return 0, 0, false
	}
	closeAt, err := utils.ParseClock(h.Close)
	if err != nil || closeAt <= open {
		return 0, 0, false
	}
	return open, closeAt, true
}

func tenantLocation(settings models.Settings) *time.Location {
	if settings.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func recordStatusChange(tx *gorm.DB, appointmentID uuid.UUID, from, to string, by *uuid.UUID, reason string) error {
	return tx.Create(&models.AppointmentStatusChange{
		AppointmentID: appointmentID,
		FromStatus:    from,
		ToStatus:      to,
		ChangedBy:     by,
		Reason:        reason,
	}).Error
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

// Get loads one appointment the actor is allowed to see.
func (s *AppointmentService) Get(ctx context.Context, actor utils.Session, id uuid.UUID) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).
		Preload("Customer").Preload("Service").Preload("Stylist.User").
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("tenant_id = ? AND id = ?", actor.TenantID, id).
		First(&appt).Error
	if err != nil {
		return nil, notFound(err, "appointment")
	}
	if err := s.authorize(s.db.WithContext(ctx), actor, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

// authorize limits customers and stylists to their own appointments.
func (s *AppointmentService) authorize(db *gorm.DB, actor utils.Session, appt *models.Appointment) error {
	switch actor.Role {
	case utils.RoleCustomer:
		var n int64
		if err := db.Model(&models.Customer{}).
			Where("id = ? AND user_id = ?", appt.CustomerID, actor.UserID).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: appointment", ErrNotFound)
		}
	case utils.RoleStylist:
		var n int64
		if err := db.Model(&models.Stylist{}).
			Where("id = ? AND user_id = ?", appt.StylistID, actor.UserID).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: not your appointment", ErrForbidden)
		}
	}
	return nil
}

// ChangeStatus is the staff path through the lifecycle. Stylists are limited
// to their own appointments; customers go through Cancel.
func (s *AppointmentService) ChangeStatus(ctx context.Context, actor utils.Session, id uuid.UUID, to, reason string) (*models.Appointment, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("%w: only staff can change appointment status", ErrForbidden)
	}
	return s.transition(ctx, actor, id, to, reason)
}

// transition applies a move from the allowed table and records it.
func (s *AppointmentService) transition(ctx context.Context, actor utils.Session, id uuid.UUID, to, reason string) (*models.Appointment, error) {
	if !models.IsAppointmentStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}
	appt, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransitionAppointment(appt.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, to)
	}

	settings, err := LoadSettings(s.db.WithContext(ctx), actor.TenantID)
	if err != nil {
		return nil, err
	}

	from := appt.Status
	updates := map[string]interface{}{"status": to}
	switch to {
	case models.StatusCancelled:
		updates["cancellation_reason"] = reason
	case models.StatusRequiresRescheduling:
		updates["requires_rescheduling"] = true
		updates["rescheduling_reason"] = reason
		if appt.OriginalStartTime == nil {
			updates["original_start_time"] = appt.StartTime
		}
	case models.StatusScheduled, models.StatusConfirmed:
		updates["requires_rescheduling"] = false
		updates["rescheduling_reason"] = ""
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND status = ?", appt.ID, from).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		}
		if err := recordStatusChange(tx, appt.ID, from, to, &actor.UserID, reason); err != nil {
			return err
		}
		if to == models.StatusCompleted {
			return s.completeVisit(tx, appt, settings)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	appt.Status = to
	if to == models.StatusCancelled {
		appt.CancellationReason = reason
		if settings.Notifications.Email && appt.Customer != nil {
			notifyEmail(ctx, s.notifier, appt.Customer.Email,
				"Appointment "+appt.BookingNumber+" cancelled",
				fmt.Sprintf("Hi %s,\n\nYour appointment on %s has been cancelled. %s\n",
					appt.Customer.Name, appt.StartTime.Format("Mon Jan 2 2006 15:04 MST"), reason))
		}
	}
	s.publish(appt.TenantID, EventAppointmentStatus, map[string]any{"id": appt.ID, "from": from, "to": to})
	return appt, nil
}

// completeVisit updates the customer's visit stats and spend-based points.
func (s *AppointmentService) completeVisit(tx *gorm.DB, appt *models.Appointment, settings models.Settings) error {
	var customer models.Customer
	if err := tx.First(&customer, "id = ?", appt.CustomerID).Error; err != nil {
		return err
	}
	now := s.now().UTC()
	if err := tx.Model(&customer).Updates(map[string]interface{}{
		"total_visits":      gorm.Expr("total_visits + ?", 1),
		"total_spent_cents": gorm.Expr("total_spent_cents + ?", appt.PriceCents),
		"last_visit":        now,
	}).Error; err != nil {
		return err
	}
	points := LoyaltyPointsForSpend(appt.PriceCents, settings.Loyalty.PointsPerCurrencyUnit)
	if points == 0 {
		return nil
	}
	_, err := AddLoyaltyPoints(tx, &customer, settings.Loyalty, points, models.LoyaltyEarned, "Appointment completed", &appt.ID)
	return err
}

type UpdateAppointmentInput struct {
	StartTime *time.Time
	Duration  *int
	StylistID *uuid.UUID
	Notes     *string
}

// Update edits notes and reschedules. A new time re-runs the hours and
// overlap checks and returns a requires-rescheduling appointment to the
// booked state.
func (s *AppointmentService) Update(ctx context.Context, actor utils.Session, id uuid.UUID, in UpdateAppointmentInput) (*models.Appointment, error) {
	appt, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	updates := map[string]interface{}{}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
		appt.Notes = *in.Notes
	}

	moving := in.StartTime != nil || in.Duration != nil || in.StylistID != nil
	var from, to string
	if moving {
		switch appt.Status {
		case models.StatusScheduled, models.StatusConfirmed, models.StatusRequiresRescheduling:
		default:
			return nil, fmt.Errorf("%w: cannot reschedule a %s appointment", ErrInvalidTransition, appt.Status)
		}

		settings, err := LoadSettings(db, actor.TenantID)
		if err != nil {
			return nil, err
		}
		stylist := appt.Stylist
		if in.StylistID != nil && *in.StylistID != appt.StylistID {
			if actor.Role == utils.RoleCustomer || actor.Role == utils.RoleStylist {
				return nil, fmt.Errorf("%w: only managers can reassign appointments", ErrForbidden)
			}
			if stylist, err = s.activeStylist(db, actor.TenantID, *in.StylistID); err != nil {
				return nil, err
			}
		}
		start := appt.StartTime
		if in.StartTime != nil {
			start = in.StartTime.UTC().Truncate(time.Minute)
		}
		duration := appt.Duration
		if in.Duration != nil {
			duration = *in.Duration
		}
		if duration < MinAppointmentMinutes || duration > MaxAppointmentMinutes {
			return nil, fmt.Errorf("%w: duration must be between %d and %d minutes", ErrInvalidInput, MinAppointmentMinutes, MaxAppointmentMinutes)
		}
		end := start.Add(time.Duration(duration) * time.Minute)

		if err := s.checkLeadTime(start, settings.BookingLeadMinutes); err != nil {
			return nil, err
		}
		if err := checkWorkingHours(stylist, settings, start, end); err != nil {
			return nil, err
		}
		if err := s.checkConflict(db, stylist.ID, appt.RoomID, start, end, &appt.ID); err != nil {
			return nil, err
		}

		updates["start_time"] = start
		updates["end_time"] = end
		updates["duration"] = duration
		updates["stylist_id"] = stylist.ID
		appt.StartTime, appt.EndTime, appt.Duration = start, end, duration
		appt.StylistID, appt.Stylist = stylist.ID, stylist

		if appt.Status == models.StatusRequiresRescheduling {
			from = appt.Status
			to = models.StatusScheduled
			if settings.AutoConfirmAppointments {
				to = models.StatusConfirmed
			}
			updates["status"] = to
			updates["requires_rescheduling"] = false
			updates["rescheduling_reason"] = ""
			appt.Status = to
			appt.RequiresRescheduling = false
			appt.ReschedulingReason = ""
		}
	}

	if len(updates) == 0 {
		return appt, nil
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Appointment{}).Where("id = ?", appt.ID).Updates(updates).Error; err != nil {
			return err
		}
		if to != "" {
			return recordStatusChange(tx, appt.ID, from, to, &actor.UserID, "rescheduled")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	if moving {
		s.publish(appt.TenantID, EventAppointmentUpdated, appt)
	}
	return appt, nil
}

// Cancel lets a customer cancel their own future booking.
func (s *AppointmentService) Cancel(ctx context.Context, actor utils.Session, id uuid.UUID, reason string) (*models.Appointment, error) {
	appt, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != models.StatusScheduled && appt.Status != models.StatusConfirmed {
		return nil, fmt.Errorf("%w: only scheduled or confirmed appointments can be cancelled", ErrInvalidTransition)
	}
	if !appt.StartTime.After(s.now()) {
		return nil, fmt.Errorf("%w: past appointments cannot be cancelled", ErrInvalidInput)
	}
	if reason == "" {
		reason = "Cancelled by customer"
	}
	return s.transition(ctx, actor, id, models.StatusCancelled, reason)
}

type Slot struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Available bool      `json:"available"`
}

// Availability lists the stylist's slots for a local calendar date, every
// SlotInterval across the working day, sized to the service duration.
func (s *AppointmentService) Availability(ctx context.Context, tenantID, stylistID, serviceID uuid.UUID, date time.Time) ([]Slot, error) {
	db := s.db.WithContext(ctx)

	var stylist models.Stylist
	if err := db.Where("tenant_id = ? AND id = ?", tenantID, stylistID).First(&stylist).Error; err != nil {
		return nil, notFound(err, "stylist")
	}
	var service models.Service
	if err := db.Where("tenant_id = ? AND id = ?", tenantID, serviceID).First(&service).Error; err != nil {
		return nil, notFound(err, "service")
	}
	settings, err := LoadSettings(db, tenantID)
	if err != nil {
		return nil, err
	}

	slots := []Slot{}
	if !stylist.IsActive {
		return slots, nil
	}
	loc := tenantLocation(settings)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	open, closeAt, ok := dayWindow(&stylist, settings, day)
	if !ok {
		return slots, nil
	}

	var booked []models.Appointment
	if err := db.Where("stylist_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
		stylistID, models.ActiveAppointmentStatuses,
		day.Add(time.Duration(closeAt)*time.Minute).UTC(),
		day.Add(time.Duration(open)*time.Minute).UTC()).
		Find(&booked).Error; err != nil {
		return nil, err
	}

	length := time.Duration(service.Duration) * time.Minute
	if length <= 0 {
		length = SlotInterval
	}
	now := s.now()
	dayClose := day.Add(time.Duration(closeAt) * time.Minute)
	for start := day.Add(time.Duration(open) * time.Minute); !start.Add(length).After(dayClose); start = start.Add(SlotInterval) {
		end := start.Add(length)
		slot := Slot{StartTime: start.UTC(), EndTime: end.UTC(), Available: start.After(now)}
		for i := range booked {
			if booked[i].Overlaps(start, end) {
				slot.Available = false
				break
			}
		}
		slots = append(slots, slot)
	}
	return slots, nil
}
