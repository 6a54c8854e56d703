package models

import (
	"strings"

	"github.com/google/uuid"
)

const (
	ReminderBirthday    = "birthday"
	ReminderAnniversary = "anniversary"
	ReminderAppointment = "appointment_reminder"
)

func IsReminderType(t string) bool {
	return t == ReminderBirthday || t == ReminderAnniversary || t == ReminderAppointment
}

type ReminderTemplate struct {
	Base
	TenantID uuid.UUID `gorm:"type:uuid;index;not null" json:"tenantId"`
	Type     string    `gorm:"type:varchar(30);not null" json:"type"`
	Message  string    `gorm:"type:text;not null" json:"message"`
	IsActive bool      `gorm:"default:true" json:"isActive"`
}

// Render fills the [CustomerName], [ServiceName] and [Time] placeholders.
func (t *ReminderTemplate) Render(vars map[string]string) string {
	msg := t.Message
	for k, v := range vars {
		msg = strings.ReplaceAll(msg, "["+k+"]", v)
	}
	return msg
}
