package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"modernmen-backend/models"
	"modernmen-backend/utils"
)

// ResourceService takes stylists, rooms and equipment out of service and back.
type ResourceService struct {
	db       *gorm.DB
	notifier Notifier
	events   Publisher
	now      func() time.Time
}

func NewResourceService(db *gorm.DB, notifier Notifier, events Publisher) *ResourceService {
	return &ResourceService{db: db, notifier: notifier, events: events, now: time.Now}
}

func (s *ResourceService) WithClock(now func() time.Time) *ResourceService {
	s.now = now
	return s
}

// SweepResult summarises one deactivation or reactivation pass.
type SweepResult struct {
	ResourceType   string      `json:"resourceType"`
	ResourceID     uuid.UUID   `json:"resourceId"`
	Affected       int         `json:"affected"`
	Failed         int         `json:"failed"`
	Skipped        int         `json:"skipped"`
	AppointmentIDs []uuid.UUID `json:"appointmentIds"`
}

func appointmentColumn(kind string) (string, error) {
	switch kind {
	case models.ResourceStaff:
		return "stylist_id", nil
	case models.ResourceRoom:
		return "room_id", nil
	case models.ResourceEquipment:
		return "equipment_id", nil
	}
	return "", fmt.Errorf("%w: unknown resource type %q", ErrInvalidInput, kind)
}

// setActive flips the flag on the stylist or resource row.
func (s *ResourceService) setActive(db *gorm.DB, tenantID uuid.UUID, kind string, id uuid.UUID, active bool, reason string) error {
	updates := map[string]interface{}{"is_active": active}
	if active {
		updates["deactivated_at"] = nil
		updates["deactivation_reason"] = ""
	} else {
		updates["deactivated_at"] = s.now().UTC()
		updates["deactivation_reason"] = reason
	}

	var res *gorm.DB
	if kind == models.ResourceStaff {
		res = db.Model(&models.Stylist{}).Where("tenant_id = ? AND id = ?", tenantID, id).Updates(updates)
	} else {
		res = db.Model(&models.Resource{}).Where("tenant_id = ? AND id = ? AND type = ?", tenantID, id, kind).Updates(updates)
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, kind)
	}
	return nil
}

// Deactivate marks the resource inactive and flags every future scheduled or
// confirmed appointment that uses it as requires-rescheduling, emailing each
// customer. Appointments are processed one at a time with no surrounding
// transaction: a failure on one is logged and counted, and the rest still
// run. If the process dies midway, the already-flagged appointments stay
// flagged and nothing resumes the remainder.
func (s *ResourceService) Deactivate(ctx context.Context, tenantID uuid.UUID, kind string, id uuid.UUID, reason string, actor *uuid.UUID) (*SweepResult, error) {
	column, err := appointmentColumn(kind)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "Resource unavailable"
	}
	db := s.db.WithContext(ctx)

	if err := s.setActive(db, tenantID, kind, id, false, reason); err != nil {
		return nil, err
	}

	var affected []models.Appointment
	if err := db.Preload("Customer").Preload("Service").
		Where("tenant_id = ? AND "+column+" = ? AND start_time > ? AND status IN ?",
			tenantID, id, s.now().UTC(), models.ReschedulableStatuses).
		Order("start_time ASC").
		Find(&affected).Error; err != nil {
		return nil, fmt.Errorf("find affected appointments: %w", err)
	}

	result := &SweepResult{ResourceType: kind, ResourceID: id, AppointmentIDs: []uuid.UUID{}}
	for i := range affected {
		appt := &affected[i]
		log := utils.Log.WithFields(logrus.Fields{
			"appointment_id": appt.ID.String(),
			"resource_type":  kind,
			"resource_id":    id.String(),
		})
		if err := s.flagForRescheduling(db, appt, reason, actor); err != nil {
			log.WithError(err).Error("failed to flag appointment for rescheduling")
			result.Failed++
			continue
		}
		result.Affected++
		result.AppointmentIDs = append(result.AppointmentIDs, appt.ID)

		if appt.Customer != nil {
			notifyEmail(ctx, s.notifier, appt.Customer.Email,
				"Your appointment needs to be rescheduled",
				reschedulingBody(appt, reason))
		}
		if s.events != nil {
			s.events.Publish(tenantID, EventAppointmentRescheduling, appt)
		}
	}

	s.audit(db, tenantID, kind, id, models.ResourceActionDeactivated, reason, result, actor)
	return result, nil
}

func (s *ResourceService) flagForRescheduling(db *gorm.DB, appt *models.Appointment, reason string, actor *uuid.UUID) error {
	original := appt.StartTime
	if appt.OriginalStartTime != nil {
		original = *appt.OriginalStartTime
	}
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND status = ?", appt.ID, appt.Status).
			Updates(map[string]interface{}{
				"status":                models.StatusRequiresRescheduling,
				"requires_rescheduling": true,
				"rescheduling_reason":   reason,
				"original_start_time":   original,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: appointment changed during sweep", ErrInvalidTransition)
		}
		if err := recordStatusChange(tx, appt.ID, appt.Status, models.StatusRequiresRescheduling, actor, reason); err != nil {
			return err
		}
		appt.Status = models.StatusRequiresRescheduling
		appt.RequiresRescheduling = true
		appt.ReschedulingReason = reason
		appt.OriginalStartTime = &original
		return nil
	})
}

// Reactivate marks the resource active and restores flagged appointments
// whose original time is still ahead to confirmed. One whose slot was taken
// in the meantime stays flagged and is counted as skipped.
func (s *ResourceService) Reactivate(ctx context.Context, tenantID uuid.UUID, kind string, id uuid.UUID, actor *uuid.UUID) (*SweepResult, error) {
	column, err := appointmentColumn(kind)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	if err := s.setActive(db, tenantID, kind, id, true, ""); err != nil {
		return nil, err
	}

	var flagged []models.Appointment
	if err := db.Preload("Customer").Preload("Service").
		Where("tenant_id = ? AND "+column+" = ? AND status = ? AND original_start_time > ?",
			tenantID, id, models.StatusRequiresRescheduling, s.now().UTC()).
		Order("original_start_time ASC").
		Find(&flagged).Error; err != nil {
		return nil, fmt.Errorf("find flagged appointments: %w", err)
	}

	result := &SweepResult{ResourceType: kind, ResourceID: id, AppointmentIDs: []uuid.UUID{}}
	for i := range flagged {
		appt := &flagged[i]
		log := utils.Log.WithField("appointment_id", appt.ID.String())

		start := *appt.OriginalStartTime
		end := start.Add(time.Duration(appt.Duration) * time.Minute)
		n, err := CountOverlapping(db, "stylist_id", appt.StylistID, start, end, &appt.ID)
		if err != nil {
			log.WithError(err).Error("failed to check slot before restoring")
			result.Failed++
			continue
		}
		if n > 0 {
			result.Skipped++
			continue
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Appointment{}).Where("id = ?", appt.ID).Updates(map[string]interface{}{
				"status":                models.StatusConfirmed,
				"start_time":            start,
				"end_time":              end,
				"requires_rescheduling": false,
				"rescheduling_reason":   "",
			}).Error; err != nil {
				return err
			}
			return recordStatusChange(tx, appt.ID, models.StatusRequiresRescheduling, models.StatusConfirmed, actor, "resource reactivated")
		})
		if err != nil {
			log.WithError(err).Error("failed to restore appointment")
			result.Failed++
			continue
		}
		result.Affected++
		result.AppointmentIDs = append(result.AppointmentIDs, appt.ID)

		if appt.Customer != nil {
			notifyEmail(ctx, s.notifier, appt.Customer.Email,
				"Your appointment is confirmed again",
				fmt.Sprintf("Hi %s,\n\nGood news: your appointment on %s is back on as originally booked.\n",
					appt.Customer.Name, start.Format("Mon Jan 2 2006 15:04 MST")))
		}
		if s.events != nil {
			s.events.Publish(tenantID, EventAppointmentStatus, map[string]any{
				"id": appt.ID, "from": models.StatusRequiresRescheduling, "to": models.StatusConfirmed,
			})
		}
	}

	s.audit(db, tenantID, kind, id, models.ResourceActionReactivated, "", result, actor)
	return result, nil
}

func (s *ResourceService) audit(db *gorm.DB, tenantID uuid.UUID, kind string, id uuid.UUID, action, reason string, result *SweepResult, actor *uuid.UUID) {
	entry := models.ResourceLog{
		TenantID:      tenantID,
		ResourceType:  kind,
		ResourceID:    id,
		Action:        action,
		Reason:        reason,
		AffectedCount: result.Affected,
		FailedCount:   result.Failed,
		PerformedBy:   actor,
	}
	if err := db.Create(&entry).Error; err != nil {
		utils.Log.WithError(err).WithField("resource_id", id.String()).Error("failed to write resource log")
	}
}

func reschedulingBody(appt *models.Appointment, reason string) string {
	service := "your"
	if appt.Service != nil {
		service = "your " + appt.Service.Name
	}
	return fmt.Sprintf("Hi %s,\n\nUnfortunately %s appointment on %s (ref %s) needs to be rescheduled.\nReason: %s\n\nPlease contact us or book a new time online.\n",
		appt.Customer.Name, service, appt.StartTime.Format("Mon Jan 2 2006 15:04 MST"), appt.BookingNumber, reason)
}
