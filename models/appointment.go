package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	StatusScheduled            = "scheduled"
	StatusConfirmed            = "confirmed"
	StatusInProgress           = "in-progress"
	StatusCompleted            = "completed"
	StatusCancelled            = "cancelled"
	StatusNoShow               = "no-show"
	StatusRequiresRescheduling = "requires-rescheduling"
)

// ActiveAppointmentStatuses block a stylist's time.
var ActiveAppointmentStatuses = []string{StatusScheduled, StatusConfirmed, StatusInProgress}

// ReschedulableStatuses are swept when a resource is deactivated.
var ReschedulableStatuses = []string{StatusScheduled, StatusConfirmed}

var appointmentTransitions = map[string][]string{
	StatusScheduled:            {StatusConfirmed, StatusInProgress, StatusCancelled, StatusNoShow, StatusRequiresRescheduling},
	StatusConfirmed:            {StatusInProgress, StatusCancelled, StatusNoShow, StatusRequiresRescheduling},
	StatusInProgress:           {StatusCompleted, StatusCancelled},
	StatusRequiresRescheduling: {StatusScheduled, StatusConfirmed, StatusCancelled},
}

func IsAppointmentStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted,
		StatusCancelled, StatusNoShow, StatusRequiresRescheduling:
		return true
	}
	return false
}

func CanTransitionAppointment(from, to string) bool {
	return slices.Contains(appointmentTransitions[from], to)
}

type Appointment struct {
	Base
	TenantID      uuid.UUID `gorm:"type:uuid;index;not null" json:"tenantId"`
	BookingNumber string    `gorm:"index;not null" json:"bookingNumber"`

	CustomerID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"customerId"`
	Customer    *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	ServiceID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"serviceId"`
	Service     *Service   `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	StylistID   uuid.UUID  `gorm:"type:uuid;index:idx_appointment_stylist_start,priority:1;not null" json:"stylistId"`
	Stylist     *Stylist   `gorm:"foreignKey:StylistID" json:"stylist,omitempty"`
	RoomID      *uuid.UUID `gorm:"type:uuid;index" json:"roomId,omitempty"`
	EquipmentID *uuid.UUID `gorm:"type:uuid;index" json:"equipmentId,omitempty"`

	StartTime time.Time `gorm:"index:idx_appointment_stylist_start,priority:2;not null" json:"startTime"`
	EndTime   time.Time `gorm:"not null" json:"endTime"`
	Duration  int       `gorm:"not null" json:"duration"`

	Status     string `gorm:"type:varchar(30);index;not null" json:"status"`
	PriceCents int64  `gorm:"not null" json:"price"`
	Notes      string `json:"notes"`

	CancellationReason   string     `json:"cancellationReason,omitempty"`
	RequiresRescheduling bool       `gorm:"default:false" json:"requiresRescheduling"`
	ReschedulingReason   string     `json:"reschedulingReason,omitempty"`
	OriginalStartTime    *time.Time `json:"originalStartTime,omitempty"`

	CreatedByUserID *uuid.UUID `gorm:"type:uuid" json:"createdByUserId,omitempty"`

	History []AppointmentStatusChange `gorm:"foreignKey:AppointmentID" json:"history,omitempty"`
}

// NewBookingNumber formats APT-YYYYMMDD-XXXX.
func NewBookingNumber(at time.Time) string {
	return "APT-" + at.UTC().Format("20060102") + "-" + shortCode()
}

// Overlaps reports whether [start, end) intersects the appointment.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && start.Before(a.EndTime)
}

// AppointmentStatusChange is one row of an appointment's status history.
type AppointmentStatusChange struct {
	Base
	AppointmentID uuid.UUID  `gorm:"type:uuid;index;not null" json:"appointmentId"`
	FromStatus    string     `gorm:"type:varchar(30)" json:"from"`
	ToStatus      string     `gorm:"type:varchar(30);not null" json:"to"`
	ChangedBy     *uuid.UUID `gorm:"type:uuid" json:"changedBy,omitempty"`
	Reason        string     `json:"reason,omitempty"`
}
